package model

import (
	"strings"
	"time"
)

// EventTime is the interval of one event occurrence, in exactly one of
// two forms:
//
//   - AllDay: a whole-day, timezone-agnostic date range. Start and End
//     are midnights in UTC and carry no time-of-day meaning; End is the
//     last day of the event, inclusive.
//   - timed: Start and End are timezone-qualified instants with their
//     original UTC offset preserved.
type EventTime struct {
	AllDay bool
	Start  time.Time
	End    time.Time
}

// DateOnly builds a whole-day EventTime covering start through end inclusive.
func DateOnly(start, end time.Time) EventTime {
	return EventTime{
		AllDay: true,
		Start:  midnightUTC(start),
		End:    midnightUTC(end),
	}
}

// Timed builds a timezone-qualified EventTime.
func Timed(start, end time.Time) EventTime {
	return EventTime{Start: start, End: end}
}

// StartDate returns the calendar date the event begins, as a UTC midnight.
// For timed events the date is taken in the event's own timezone.
func (t EventTime) StartDate() time.Time {
	if t.AllDay {
		return t.Start
	}
	return midnightUTC(t.Start)
}

// EndDate returns the last calendar date the event covers, as a UTC midnight.
func (t EventTime) EndDate() time.Time {
	if t.AllDay {
		return t.End
	}
	return midnightUTC(t.End)
}

// Multiday reports whether the interval spans more than one calendar day.
func (t EventTime) Multiday() bool {
	return !t.StartDate().Equal(t.EndDate())
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Event is one concrete, dated folk-dance occurrence. Events are built
// during normalization or recurrence expansion and never mutated after.
type Event struct {
	// Name of the event. Required.
	Name string
	// Details is optional free-text about the event.
	Details string
	// Links are URLs with more information, in source order.
	Links []string

	Time EventTime

	Country string
	// State is set only for countries where it disambiguates (e.g. USA).
	State string
	City  string

	// Styles are the dance styles included in the event.
	Styles []DanceStyle
	// Workshop is true if the event includes one or more workshops or lessons.
	Workshop bool
	// Social is true if the event includes one or more social dances.
	Social bool
	// Cancelled events are kept and marked rather than dropped.
	Cancelled bool

	// Bands playing at the event, in source order.
	Bands []string
	// Callers calling at the event, if applicable.
	Callers []string

	// Price or price range, if known.
	Price string
	// Organisation running the event, if known.
	Organisation string

	// Source identifies the originating record (file name or URL) for
	// diagnostics. Attached during load, never read from the source itself.
	Source string
}

// Multiday reports whether the event spans more than one calendar day.
func (e *Event) Multiday() bool {
	return e.Time.Multiday()
}

// HasStyle reports whether the event includes the given dance style.
func (e *Event) HasStyle(style DanceStyle) bool {
	for _, s := range e.Styles {
		if s == style {
			return true
		}
	}
	return false
}

// Problems checks event-level semantic rules that hold beyond schema
// validation. It returns an empty list for a valid event.
func (e *Event) Problems() []string {
	var problems []string
	if !e.Workshop && !e.Social {
		problems = append(problems, "must have at least a workshop or a social")
	}
	if e.Time.End.Before(e.Time.Start) {
		problems = append(problems, "end is before start")
	}
	return problems
}

// Less orders events by ascending start, breaking ties by name
// case-insensitively so that snapshot order is deterministic.
func (e *Event) Less(other *Event) bool {
	a, b := e.sortKey(), other.sortKey()
	if !a.Equal(b) {
		return a.Before(b)
	}
	return strings.ToLower(e.Name) < strings.ToLower(other.Name)
}

// sortKey places whole-day events at their start date's UTC midnight and
// timed events at their absolute instant.
func (e *Event) sortKey() time.Time {
	if e.Time.AllDay {
		return e.Time.Start
	}
	return e.Time.Start.UTC()
}
