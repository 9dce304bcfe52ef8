package export

import (
	"strings"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"folklist/internal/model"
)

// uidNamespace seeds deterministic per-event UIDs so that identical
// input always serializes to byte-identical feed output.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("folklist"))

// ICS renders events as an iCalendar feed named after the filtered view.
// Whole-day events become date-only all-day entries; timed events carry
// their instants in UTC. Cancelled events are marked STATUS:CANCELLED
// rather than omitted.
func ICS(evs []model.Event, name string) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//folklist//folklist//EN")
	cal.SetName(name)
	cal.SetXWRCalName(name)

	for i := range evs {
		addEvent(cal, &evs[i])
	}
	return cal.Serialize()
}

func addEvent(cal *ics.Calendar, ev *model.Event) {
	uid := uuid.NewSHA1(uidNamespace, []byte(eventKey(ev))).String()
	e := cal.AddEvent(uid)

	// DTSTAMP derived from the event itself keeps output reproducible.
	e.SetDtStampTime(ev.Time.Start.UTC())

	if ev.Time.AllDay {
		e.SetAllDayStartAt(ev.Time.Start)
		// DTEND is exclusive in iCalendar.
		e.SetAllDayEndAt(ev.Time.End.AddDate(0, 0, 1))
	} else {
		e.SetStartAt(ev.Time.Start.UTC())
		e.SetEndAt(ev.Time.End.UTC())
	}

	e.SetSummary(ev.Name)
	e.SetLocation(location(ev))
	e.SetDescription(description(ev))
	if len(ev.Styles) > 0 {
		e.SetProperty(ics.ComponentPropertyCategories, strings.Join(styleNames(ev.Styles), ","))
	}
	if len(ev.Links) > 0 {
		e.SetURL(ev.Links[0])
	}
	if ev.Cancelled {
		e.SetStatus(ics.ObjectStatusCancelled)
	}
}

func eventKey(ev *model.Event) string {
	parts := []string{ev.Name, ev.Time.Start.UTC().Format("20060102T150405Z"), ev.Country, ev.City}
	return strings.Join(parts, "|")
}

func location(ev *model.Event) string {
	parts := []string{ev.City}
	if ev.State != "" {
		parts = append(parts, ev.State)
	}
	parts = append(parts, ev.Country)
	return strings.Join(parts, ", ")
}

// description mirrors the list view: details first, then styles, the
// workshop/social line, bands, callers, price and organisation.
func description(ev *model.Event) string {
	var b strings.Builder
	if ev.Details != "" {
		b.WriteString(ev.Details)
		b.WriteString("\n")
	}
	if len(ev.Styles) > 0 {
		b.WriteString("Dance styles: ")
		b.WriteString(strings.Join(styleNames(ev.Styles), ", "))
		b.WriteString("\n")
	}
	switch {
	case ev.Workshop && ev.Social:
		b.WriteString("Workshop and social dance.\n")
	case ev.Workshop:
		b.WriteString("Workshop only.\n")
	case ev.Social:
		b.WriteString("Social dance only.\n")
	}
	if len(ev.Bands) > 0 {
		b.WriteString("Bands: ")
		b.WriteString(strings.Join(ev.Bands, ", "))
		b.WriteString("\n")
	}
	if len(ev.Callers) > 0 {
		b.WriteString("Callers: ")
		b.WriteString(strings.Join(ev.Callers, ", "))
		b.WriteString("\n")
	}
	if ev.Price != "" {
		b.WriteString("Price: ")
		b.WriteString(ev.Price)
		b.WriteString("\n")
	}
	if ev.Organisation != "" {
		b.WriteString("Organised by: ")
		b.WriteString(ev.Organisation)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func styleNames(styles []model.DanceStyle) []string {
	out := make([]string, 0, len(styles))
	for _, s := range styles {
		out = append(out, s.Name())
	}
	return out
}
