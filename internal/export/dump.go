// Package export renders a filtered event list into the interchange
// formats: an iCalendar feed and three structured dumps (JSON, YAML,
// TOML) that share one document schema and round-trip losslessly.
package export

import (
	"encoding/json"
	"fmt"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"folklist/internal/model"
)

const dateLayout = "2006-01-02"

// EventDoc is the serialized form of one event. Field names and nesting
// are identical across JSON, YAML and TOML; only the syntax differs.
// Exactly one of the start_date/end_date and start/end pairs is set.
type EventDoc struct {
	Name    string   `json:"name" yaml:"name" toml:"name"`
	Details string   `json:"details,omitempty" yaml:"details,omitempty" toml:"details,omitempty"`
	Links   []string `json:"links,omitempty" yaml:"links,omitempty" toml:"links,omitempty"`

	StartDate string `json:"start_date,omitempty" yaml:"start_date,omitempty" toml:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty" yaml:"end_date,omitempty" toml:"end_date,omitempty"`
	Start     string `json:"start,omitempty" yaml:"start,omitempty" toml:"start,omitempty"`
	End       string `json:"end,omitempty" yaml:"end,omitempty" toml:"end,omitempty"`

	Country string `json:"country" yaml:"country" toml:"country"`
	State   string `json:"state,omitempty" yaml:"state,omitempty" toml:"state,omitempty"`
	City    string `json:"city" yaml:"city" toml:"city"`

	Styles    []string `json:"styles,omitempty" yaml:"styles,omitempty" toml:"styles,omitempty"`
	Workshop  bool     `json:"workshop" yaml:"workshop" toml:"workshop"`
	Social    bool     `json:"social" yaml:"social" toml:"social"`
	Cancelled bool     `json:"cancelled,omitempty" yaml:"cancelled,omitempty" toml:"cancelled,omitempty"`

	Bands   []string `json:"bands,omitempty" yaml:"bands,omitempty" toml:"bands,omitempty"`
	Callers []string `json:"callers,omitempty" yaml:"callers,omitempty" toml:"callers,omitempty"`

	Price        string `json:"price,omitempty" yaml:"price,omitempty" toml:"price,omitempty"`
	Organisation string `json:"organisation,omitempty" yaml:"organisation,omitempty" toml:"organisation,omitempty"`
}

// Document is the root of every structured dump.
type Document struct {
	Events []EventDoc `json:"events" yaml:"events" toml:"events"`
}

// NewDocument converts events into their serialized form, preserving
// order. The diagnostic source field is deliberately not exported.
func NewDocument(evs []model.Event) Document {
	docs := make([]EventDoc, 0, len(evs))
	for i := range evs {
		docs = append(docs, eventToDoc(&evs[i]))
	}
	return Document{Events: docs}
}

func eventToDoc(ev *model.Event) EventDoc {
	doc := EventDoc{
		Name:         ev.Name,
		Details:      ev.Details,
		Links:        ev.Links,
		Country:      ev.Country,
		State:        ev.State,
		City:         ev.City,
		Workshop:     ev.Workshop,
		Social:       ev.Social,
		Cancelled:    ev.Cancelled,
		Bands:        ev.Bands,
		Callers:      ev.Callers,
		Price:        ev.Price,
		Organisation: ev.Organisation,
	}
	for _, s := range ev.Styles {
		doc.Styles = append(doc.Styles, s.Tag())
	}
	if ev.Time.AllDay {
		doc.StartDate = ev.Time.Start.Format(dateLayout)
		doc.EndDate = ev.Time.End.Format(dateLayout)
	} else {
		doc.Start = ev.Time.Start.Format(time.RFC3339)
		doc.End = ev.Time.End.Format(time.RFC3339)
	}
	return doc
}

// Event converts a serialized event back into the canonical form. It is
// the inverse of eventToDoc and exists so the three dumps can be checked
// against each other.
func (d EventDoc) Event() (model.Event, error) {
	ev := model.Event{
		Name:         d.Name,
		Details:      d.Details,
		Links:        d.Links,
		Country:      d.Country,
		State:        d.State,
		City:         d.City,
		Workshop:     d.Workshop,
		Social:       d.Social,
		Cancelled:    d.Cancelled,
		Bands:        d.Bands,
		Callers:      d.Callers,
		Price:        d.Price,
		Organisation: d.Organisation,
	}
	for _, tag := range d.Styles {
		s, ok := model.StyleFromTag(tag)
		if !ok {
			return ev, fmt.Errorf("event %q: unknown style %q", d.Name, tag)
		}
		ev.Styles = append(ev.Styles, s)
	}
	switch {
	case d.StartDate != "":
		start, err := time.Parse(dateLayout, d.StartDate)
		if err != nil {
			return ev, fmt.Errorf("event %q: %w", d.Name, err)
		}
		end, err := time.Parse(dateLayout, d.EndDate)
		if err != nil {
			return ev, fmt.Errorf("event %q: %w", d.Name, err)
		}
		ev.Time = model.DateOnly(start, end)
	default:
		start, err := time.Parse(time.RFC3339, d.Start)
		if err != nil {
			return ev, fmt.Errorf("event %q: %w", d.Name, err)
		}
		end, err := time.Parse(time.RFC3339, d.End)
		if err != nil {
			return ev, fmt.Errorf("event %q: %w", d.Name, err)
		}
		ev.Time = model.Timed(start, end)
	}
	return ev, nil
}

// ToEvents converts the whole document back to canonical events.
func (d Document) ToEvents() ([]model.Event, error) {
	out := make([]model.Event, 0, len(d.Events))
	for _, doc := range d.Events {
		ev, err := doc.Event()
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// JSON renders the compact JSON dump. Output is deterministic for a
// given input; an empty input yields {"events":[]}.
func JSON(evs []model.Event) ([]byte, error) {
	return json.Marshal(NewDocument(evs))
}

// YAML renders the human-editable YAML dump, matching the source file
// schema.
func YAML(evs []model.Event) ([]byte, error) {
	return yaml.Marshal(NewDocument(evs))
}

// TOML renders the line-oriented TOML dump.
func TOML(evs []model.Event) ([]byte, error) {
	return toml.Marshal(NewDocument(evs))
}

// ParseJSON reads a JSON dump back into a Document.
func ParseJSON(data []byte) (Document, error) {
	var d Document
	err := json.Unmarshal(data, &d)
	return d, err
}

// ParseYAML reads a YAML dump back into a Document.
func ParseYAML(data []byte) (Document, error) {
	var d Document
	err := yaml.Unmarshal(data, &d)
	return d, err
}

// ParseTOML reads a TOML dump back into a Document.
func ParseTOML(data []byte) (Document, error) {
	var d Document
	err := toml.Unmarshal(data, &d)
	return d, err
}
