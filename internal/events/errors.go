package events

import "fmt"

// ValidationError reports a single malformed source record. It names the
// offending field and the record's provenance so operators can fix the
// source file; the rest of the load continues without it.
type ValidationError struct {
	Source string // originating file or URL
	Name   string // event name if known, may be empty
	Field  string // offending field
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("invalid event %q in %s: field %s: %s", e.Name, e.Source, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid event in %s: field %s: %s", e.Source, e.Field, e.Reason)
}

// RecurrenceError reports one unparsable or empty recurrence definition.
// It is scoped to that definition; sibling definitions still expand.
type RecurrenceError struct {
	Source string
	Name   string
	Reason string
	Err    error
}

func (e *RecurrenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recurrence %q in %s: %s: %v", e.Name, e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("recurrence %q in %s: %s", e.Name, e.Source, e.Reason)
}

func (e *RecurrenceError) Unwrap() error {
	return e.Err
}

// RefreshError reports a failure to build a new snapshot. The previously
// published snapshot keeps serving; this error is for operators only.
type RefreshError struct {
	Source string
	Err    error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh from %s failed: %v", e.Source, e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}
