package events

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	appLog "folklist/internal/log"
	"folklist/internal/model"
)

const dateLayout = "2006-01-02"

// rawFile is the top-level shape of a source file. The per-record bodies
// stay as yaml.Node so that one malformed record does not poison the
// whole file.
type rawFile struct {
	Events    []yaml.Node `yaml:"events"`
	Recurring []yaml.Node `yaml:"recurring"`
}

// rawEvent mirrors the published source record schema. All date fields
// are kept as strings so validation can name the offending field instead
// of surfacing a YAML type error.
type rawEvent struct {
	Name         string   `yaml:"name"`
	Details      string   `yaml:"details"`
	Links        []string `yaml:"links"`
	StartDate    string   `yaml:"start_date"`
	EndDate      string   `yaml:"end_date"`
	Start        string   `yaml:"start"`
	End          string   `yaml:"end"`
	Country      string   `yaml:"country"`
	State        string   `yaml:"state"`
	City         string   `yaml:"city"`
	Styles       []string `yaml:"styles"`
	Workshop     bool     `yaml:"workshop"`
	Social       bool     `yaml:"social"`
	Cancelled    bool     `yaml:"cancelled"`
	Bands        []string `yaml:"bands"`
	Callers      []string `yaml:"callers"`
	Price        string   `yaml:"price"`
	Organisation string   `yaml:"organisation"`

	// Recurring definitions only.
	RRule   string   `yaml:"rrule"`
	ExDates []string `yaml:"exdates"`
}

var eventFields = map[string]bool{
	"name": true, "details": true, "links": true,
	"start_date": true, "end_date": true, "start": true, "end": true,
	"country": true, "state": true, "city": true,
	"styles": true, "workshop": true, "social": true, "cancelled": true,
	"bands": true, "callers": true, "price": true, "organisation": true,
}

var recurringFields = func() map[string]bool {
	m := map[string]bool{"rrule": true, "exdates": true}
	for k := range eventFields {
		m[k] = true
	}
	return m
}()

// ParseFile decodes one source file body into concrete events and
// recurrence definitions. Malformed records are returned as errors
// (ValidationError) alongside the records that did parse; the caller
// decides how to report them.
func ParseFile(source string, body []byte) ([]model.Event, []Definition, []error) {
	dec := yaml.NewDecoder(bytes.NewReader(body))
	dec.KnownFields(true)

	var file rawFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, []error{&ValidationError{Source: source, Field: "file", Reason: err.Error()}}
	}

	var (
		evs  []model.Event
		defs []Definition
		errs []error
	)
	for i := range file.Events {
		ev, err := decodeEvent(source, &file.Events[i], false)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		evs = append(evs, ev)
	}
	for i := range file.Recurring {
		def, err := decodeDefinition(source, &file.Recurring[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		defs = append(defs, def)
	}
	return evs, defs, errs
}

// decodeEvent validates and normalizes a single raw record node.
func decodeEvent(source string, node *yaml.Node, recurring bool) (model.Event, error) {
	raw, err := decodeRaw(source, node, recurring)
	if err != nil {
		return model.Event{}, err
	}
	return normalize(source, raw)
}

func decodeDefinition(source string, node *yaml.Node) (Definition, error) {
	raw, err := decodeRaw(source, node, true)
	if err != nil {
		return Definition{}, err
	}
	if raw.RRule == "" {
		return Definition{}, &ValidationError{Source: source, Name: raw.Name, Field: "rrule", Reason: "required for recurring definitions"}
	}
	template, err := normalize(source, raw)
	if err != nil {
		return Definition{}, err
	}
	def := Definition{Template: template, RRule: raw.RRule}
	for _, s := range raw.ExDates {
		d, perr := time.Parse(dateLayout, s)
		if perr != nil {
			return Definition{}, &ValidationError{Source: source, Name: raw.Name, Field: "exdates", Reason: fmt.Sprintf("bad date %q", s)}
		}
		def.ExDates = append(def.ExDates, d)
	}
	return def, nil
}

// decodeRaw decodes a mapping node into rawEvent, rejecting unknown
// fields. Node-level strictness keeps the check per record.
func decodeRaw(source string, node *yaml.Node, recurring bool) (rawEvent, error) {
	var raw rawEvent
	if node.Kind != yaml.MappingNode {
		return raw, &ValidationError{Source: source, Field: "record", Reason: "not a mapping"}
	}
	allowed := eventFields
	if recurring {
		allowed = recurringFields
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if !allowed[key] {
			return raw, &ValidationError{Source: source, Name: lookupName(node), Field: key, Reason: "unknown field"}
		}
	}
	if err := node.Decode(&raw); err != nil {
		return raw, &ValidationError{Source: source, Name: lookupName(node), Field: "record", Reason: err.Error()}
	}
	return raw, nil
}

// lookupName pulls the name value out of a mapping node so validation
// errors can identify the record even when decoding fails.
func lookupName(node *yaml.Node) string {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "name" {
			return node.Content[i+1].Value
		}
	}
	return ""
}

// normalize converts a validated raw record into a canonical Event.
// It performs the required-field and interval-form checks of the schema
// contract and fails with a ValidationError naming the offending field.
func normalize(source string, raw rawEvent) (model.Event, error) {
	fail := func(field, reason string) (model.Event, error) {
		return model.Event{}, &ValidationError{Source: source, Name: raw.Name, Field: field, Reason: reason}
	}

	if strings.TrimSpace(raw.Name) == "" {
		return fail("name", "required")
	}
	if strings.TrimSpace(raw.Country) == "" {
		return fail("country", "required")
	}
	if strings.TrimSpace(raw.City) == "" {
		return fail("city", "required")
	}

	dateOnly := raw.StartDate != "" || raw.EndDate != ""
	timed := raw.Start != "" || raw.End != ""
	var eventTime model.EventTime
	switch {
	case dateOnly && timed:
		return fail("start_date", "mixes date-only and datetime forms")
	case dateOnly:
		if raw.StartDate == "" {
			return fail("start_date", "required with end_date")
		}
		if raw.EndDate == "" {
			return fail("end_date", "required with start_date")
		}
		start, err := time.Parse(dateLayout, raw.StartDate)
		if err != nil {
			return fail("start_date", fmt.Sprintf("bad date %q", raw.StartDate))
		}
		end, err := time.Parse(dateLayout, raw.EndDate)
		if err != nil {
			return fail("end_date", fmt.Sprintf("bad date %q", raw.EndDate))
		}
		if end.Before(start) {
			return fail("end_date", "before start_date")
		}
		eventTime = model.DateOnly(start, end)
	case timed:
		if raw.Start == "" {
			return fail("start", "required with end")
		}
		if raw.End == "" {
			return fail("end", "required with start")
		}
		start, err := time.Parse(time.RFC3339, raw.Start)
		if err != nil {
			return fail("start", fmt.Sprintf("bad datetime %q", raw.Start))
		}
		end, err := time.Parse(time.RFC3339, raw.End)
		if err != nil {
			return fail("end", fmt.Sprintf("bad datetime %q", raw.End))
		}
		if end.Before(start) {
			return fail("end", "before start")
		}
		eventTime = model.Timed(start, end)
	default:
		return fail("start_date", "event needs either start_date/end_date or start/end")
	}

	styles := make([]model.DanceStyle, 0, len(raw.Styles))
	for _, tag := range raw.Styles {
		s, ok := model.StyleFromTag(tag)
		if !ok {
			return fail("styles", fmt.Sprintf("unknown style %q", tag))
		}
		styles = append(styles, s)
	}

	ev := model.Event{
		Name:         raw.Name,
		Details:      raw.Details,
		Links:        raw.Links,
		Time:         eventTime,
		Country:      raw.Country,
		State:        raw.State,
		City:         raw.City,
		Styles:       styles,
		Workshop:     raw.Workshop,
		Social:       raw.Social,
		Cancelled:    raw.Cancelled,
		Bands:        raw.Bands,
		Callers:      raw.Callers,
		Price:        raw.Price,
		Organisation: raw.Organisation,
		Source:       source,
	}
	if problems := ev.Problems(); len(problems) > 0 {
		return fail("event", strings.Join(problems, "; "))
	}
	return ev, nil
}

// Loader builds snapshots from a configured source: a single YAML file,
// a directory of YAML files, or an HTTP(S) URL.
type Loader struct {
	Fetcher *Fetcher
	Expand  ExpandConfig
}

type namedBody struct {
	source string
	body   []byte
}

// Load reads, validates, normalizes and expands all records reachable
// from source and returns a freshly built immutable snapshot.
//
// Load is partial-failure tolerant: a malformed record or recurrence
// definition is logged with its provenance and skipped, and the rest of
// the load proceeds. Only a transport-level failure (or an unreadable
// source) aborts the refresh, as a RefreshError.
func (l *Loader) Load(ctx context.Context, source string) (*Store, error) {
	bodies, err := l.read(ctx, source)
	if err != nil {
		return nil, &RefreshError{Source: source, Err: err}
	}

	var all []model.Event
	skipped := 0
	for _, nb := range bodies {
		evs, defs, errs := ParseFile(nb.source, nb.body)
		for _, perr := range errs {
			skipped++
			appLog.Error("skipping malformed record", perr, "source", nb.source)
		}
		all = append(all, evs...)
		for _, def := range defs {
			instances, eerr := Expand(def, l.Expand)
			if eerr != nil {
				skipped++
				appLog.Error("skipping recurrence definition", eerr, "source", nb.source, "name", def.Template.Name)
				continue
			}
			all = append(all, instances...)
		}
	}

	store := NewStore(all)
	appLog.Info("events loaded",
		"source", source,
		"files", len(bodies),
		"events", len(store.All()),
		"skipped", skipped,
	)
	return store, nil
}

func (l *Loader) read(ctx context.Context, source string) ([]namedBody, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		fetcher := l.Fetcher
		if fetcher == nil {
			fetcher = NewFetcher("")
		}
		res, err := fetcher.Fetch(ctx, source)
		if err != nil {
			return nil, err
		}
		return []namedBody{{source: source, body: res.Body}}, nil
	}

	info, err := os.Stat(source)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		body, err := os.ReadFile(source)
		if err != nil {
			return nil, err
		}
		return []namedBody{{source: source, body: body}}, nil
	}

	entries, err := os.ReadDir(source)
	if err != nil {
		return nil, err
	}
	var bodies []namedBody
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(source, entry.Name())
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, namedBody{source: path, body: body})
	}
	return bodies, nil
}
