// Package filter narrows an event snapshot along independent, optional
// dimensions and maps filters to and from canonical URL query strings.
package filter

import (
	"strings"
	"time"

	"folklist/internal/model"
)

// Tri is a three-way filter value. TriUnset matches events regardless of
// the underlying flag; TriTrue and TriFalse match only that flag value.
// This keeps "unset means both" explicit rather than leaning on a
// nullable bool.
type Tri int

const (
	TriUnset Tri = iota
	TriTrue
	TriFalse
)

// Matches reports whether a flag value passes this tri-state.
func (t Tri) Matches(v bool) bool {
	switch t {
	case TriTrue:
		return v
	case TriFalse:
		return !v
	default:
		return true
	}
}

func (t Tri) param() string {
	switch t {
	case TriTrue:
		return "true"
	case TriFalse:
		return "false"
	default:
		return ""
	}
}

// DateWindow classifies events relative to "now". Exactly one window is
// active at a time; WindowAll is the default and matches everything.
type DateWindow int

const (
	WindowAll DateWindow = iota
	WindowFuture
	WindowPast
	WindowThisWeekend
	WindowThisMonth
)

// Windows lists every DateWindow in tag order, for form rendering.
func Windows() []DateWindow {
	return []DateWindow{WindowAll, WindowFuture, WindowPast, WindowThisWeekend, WindowThisMonth}
}

var windowTags = map[DateWindow]string{
	WindowAll:         "all",
	WindowFuture:      "future",
	WindowPast:        "past",
	WindowThisWeekend: "this-weekend",
	WindowThisMonth:   "this-month",
}

// Tag returns the stable URL tag for the window.
func (w DateWindow) Tag() string {
	return windowTags[w]
}

// WindowFromTag resolves a tag; false for unknown tags.
func WindowFromTag(tag string) (DateWindow, bool) {
	for w, t := range windowTags {
		if t == tag {
			return w, true
		}
	}
	return WindowAll, false
}

// Filter is a set of independent predicates over events. The zero value
// matches every event.
type Filter struct {
	Date DateWindow

	Countries []string
	States    []string
	Cities    []string
	Styles    []model.DanceStyle

	Multiday  Tri
	Workshop  Tri
	Social    Tri
	Cancelled Tri

	Band         string
	Caller       string
	Organisation string
}

// HasSome reports whether any dimension beyond the date window is set.
func (f *Filter) HasSome() bool {
	return len(f.Countries) > 0 || len(f.States) > 0 || len(f.Cities) > 0 ||
		len(f.Styles) > 0 ||
		f.Multiday != TriUnset || f.Workshop != TriUnset ||
		f.Social != TriUnset || f.Cancelled != TriUnset ||
		f.Band != "" || f.Caller != "" || f.Organisation != ""
}

// Matches evaluates every dimension against the event and combines them
// with logical AND. An empty set dimension always matches.
func (f *Filter) Matches(ev *model.Event, now time.Time) bool {
	if !f.matchesWindow(ev, now) {
		return false
	}
	if !matchesSet(f.Countries, ev.Country) {
		return false
	}
	if !matchesSet(f.States, ev.State) {
		return false
	}
	if !matchesSet(f.Cities, ev.City) {
		return false
	}
	if len(f.Styles) > 0 && !intersectsStyles(f.Styles, ev.Styles) {
		return false
	}
	if !f.Multiday.Matches(ev.Multiday()) {
		return false
	}
	if !f.Workshop.Matches(ev.Workshop) {
		return false
	}
	if !f.Social.Matches(ev.Social) {
		return false
	}
	if !f.Cancelled.Matches(ev.Cancelled) {
		return false
	}
	if f.Band != "" && !containsFold(ev.Bands, f.Band) {
		return false
	}
	if f.Caller != "" && !containsFold(ev.Callers, f.Caller) {
		return false
	}
	if f.Organisation != "" && !strings.EqualFold(ev.Organisation, f.Organisation) {
		return false
	}
	return true
}

func (f *Filter) matchesWindow(ev *model.Event, now time.Time) bool {
	today := dateOf(now)
	switch f.Date {
	case WindowFuture:
		if ev.Time.AllDay {
			return !ev.Time.EndDate().Before(today)
		}
		return !ev.Time.End.Before(now)
	case WindowPast:
		if ev.Time.AllDay {
			return ev.Time.StartDate().Before(today)
		}
		return ev.Time.Start.Before(now)
	case WindowThisWeekend:
		sat, sun := weekendOf(today)
		return rangesIntersect(ev.Time.StartDate(), ev.Time.EndDate(), sat, sun)
	case WindowThisMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		return rangesIntersect(ev.Time.StartDate(), ev.Time.EndDate(), first, last)
	default:
		return true
	}
}

// Apply evaluates the filter over an already-sorted event sequence,
// preserving order. Filtering never fails; a contradictory filter just
// matches nothing.
func Apply(f Filter, evs []model.Event, now time.Time) []model.Event {
	out := make([]model.Event, 0)
	for i := range evs {
		if f.Matches(&evs[i], now) {
			out = append(out, evs[i])
		}
	}
	return out
}

// Title derives a human-readable title for the filtered view, used as
// the calendar feed name.
func (f *Filter) Title() string {
	what := "Folk dance"
	if len(f.Styles) == 1 {
		what = upperFirst(f.Styles[0].Name())
	}
	var where string
	switch {
	case len(f.Countries) == 1 && len(f.Cities) == 1:
		where = " in " + f.Cities[0] + ", " + f.Countries[0]
	case len(f.Countries) == 1:
		country := f.Countries[0]
		if country == "UK" || country == "USA" {
			where = " in the " + country
		} else {
			where = " in " + country
		}
	case len(f.Cities) == 1:
		where = " in " + f.Cities[0]
	}
	return what + " events" + where
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func matchesSet(set []string, value string) bool {
	if len(set) == 0 {
		return true
	}
	return containsFold(set, value)
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

func intersectsStyles(want, have []model.DanceStyle) bool {
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// weekendOf returns the Saturday and Sunday of the weekend "today"
// belongs to: the current weekend on Saturday or Sunday, otherwise the
// upcoming one.
func weekendOf(today time.Time) (time.Time, time.Time) {
	var sat time.Time
	switch today.Weekday() {
	case time.Saturday:
		sat = today
	case time.Sunday:
		sat = today.AddDate(0, 0, -1)
	default:
		sat = today.AddDate(0, 0, int(time.Saturday-today.Weekday()))
	}
	return sat, sat.AddDate(0, 0, 1)
}

func rangesIntersect(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
