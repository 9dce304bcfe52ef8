package filter

import (
	"testing"
	"time"

	"folklist/internal/model"
)

// now is a Wednesday; the surrounding weekend is June 15-16.
var now = time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)

func allDayEvent(name string, start, end time.Time) model.Event {
	return model.Event{
		Name:    name,
		Country: "France",
		City:    "Lyon",
		Social:  true,
		Time:    model.DateOnly(start, end),
	}
}

func springBall() model.Event {
	return model.Event{
		Name:    "Spring Ball",
		Country: "France",
		City:    "Lyon",
		Styles:  []model.DanceStyle{model.Balfolk},
		Social:  true,
		Time: model.DateOnly(
			time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC),
		),
	}
}

func TestDefaultFilterMatchesEverything(t *testing.T) {
	events := []model.Event{
		springBall(),
		allDayEvent("Past", now.AddDate(0, -2, 0), now.AddDate(0, -2, 0)),
		allDayEvent("Future", now.AddDate(0, 2, 0), now.AddDate(0, 2, 0)),
	}
	got := Apply(Filter{}, events, now)
	if len(got) != len(events) {
		t.Errorf("default filter matched %d of %d events", len(got), len(events))
	}
}

func TestSpringBallMultiday(t *testing.T) {
	ball := springBall()
	if !ball.Multiday() {
		t.Fatal("Spring Ball should be multiday")
	}

	include := Filter{Multiday: TriTrue}
	exclude := Filter{Multiday: TriFalse}
	if !include.Matches(&ball, now) {
		t.Error("multiday=true should include Spring Ball")
	}
	if exclude.Matches(&ball, now) {
		t.Error("multiday=false should exclude Spring Ball")
	}
	if got := Encode(include); got != "multiday=true" {
		t.Errorf("Encode = %q, want %q", got, "multiday=true")
	}
}

func TestDateWindows(t *testing.T) {
	past := allDayEvent("past", now.AddDate(0, 0, -30), now.AddDate(0, 0, -30))
	future := allDayEvent("future", now.AddDate(0, 0, 30), now.AddDate(0, 0, 30))
	weekend := allDayEvent("weekend",
		time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC))
	thisMonth := allDayEvent("this month",
		time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC))
	// Started in the past, still running: future but not past-only.
	running := allDayEvent("running", now.AddDate(0, 0, -1), now.AddDate(0, 0, 1))

	tests := []struct {
		window DateWindow
		event  *model.Event
		want   bool
	}{
		{WindowAll, &past, true},
		{WindowAll, &future, true},
		{WindowFuture, &future, true},
		{WindowFuture, &past, false},
		{WindowFuture, &running, true},
		{WindowPast, &past, true},
		{WindowPast, &future, false},
		{WindowPast, &running, true},
		{WindowThisWeekend, &weekend, true},
		{WindowThisWeekend, &thisMonth, false},
		{WindowThisWeekend, &past, false},
		{WindowThisMonth, &thisMonth, true},
		{WindowThisMonth, &weekend, true},
		{WindowThisMonth, &past, false},
	}
	for _, tc := range tests {
		f := Filter{Date: tc.window}
		if got := f.Matches(tc.event, now); got != tc.want {
			t.Errorf("window %s on %q = %v, want %v", tc.window.Tag(), tc.event.Name, got, tc.want)
		}
	}
}

func TestTimedDateWindow(t *testing.T) {
	ended := model.Event{
		Name: "ended", Country: "UK", City: "London", Social: true,
		Time: model.Timed(now.Add(-4*time.Hour), now.Add(-1*time.Hour)),
	}
	upcoming := model.Event{
		Name: "upcoming", Country: "UK", City: "London", Social: true,
		Time: model.Timed(now.Add(1*time.Hour), now.Add(4*time.Hour)),
	}

	futureF := Filter{Date: WindowFuture}
	if futureF.Matches(&ended, now) {
		t.Error("future window matched an already-ended timed event")
	}
	if !futureF.Matches(&upcoming, now) {
		t.Error("future window missed an upcoming timed event")
	}

	pastF := Filter{Date: WindowPast}
	if !pastF.Matches(&ended, now) {
		t.Error("past window missed an ended timed event")
	}
	if pastF.Matches(&upcoming, now) {
		t.Error("past window matched an upcoming timed event")
	}
}

func TestSetDimensions(t *testing.T) {
	ball := springBall()

	tests := []struct {
		desc   string
		filter Filter
		want   bool
	}{
		{"country match", Filter{Countries: []string{"France"}}, true},
		{"country fold", Filter{Countries: []string{"france"}}, true},
		{"country miss", Filter{Countries: []string{"UK"}}, false},
		{"country set with match", Filter{Countries: []string{"UK", "France"}}, true},
		{"city match", Filter{Cities: []string{"Lyon"}}, true},
		{"city miss", Filter{Cities: []string{"Paris"}}, false},
		{"style match", Filter{Styles: []model.DanceStyle{model.Balfolk}}, true},
		{"style miss", Filter{Styles: []model.DanceStyle{model.Contra}}, false},
		{"style set with match", Filter{Styles: []model.DanceStyle{model.Contra, model.Balfolk}}, true},
		{"state miss", Filter{States: []string{"CA"}}, false},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			if got := tc.filter.Matches(&ball, now); got != tc.want {
				t.Errorf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTriStateDimensions(t *testing.T) {
	workshopOnly := model.Event{
		Name: "Workshop", Country: "UK", City: "London", Workshop: true,
		Time: model.DateOnly(now, now),
	}
	socialOnly := model.Event{
		Name: "Social", Country: "UK", City: "London", Social: true,
		Time: model.DateOnly(now, now),
	}

	f := Filter{Workshop: TriTrue}
	if !f.Matches(&workshopOnly, now) || f.Matches(&socialOnly, now) {
		t.Error("workshop=true should match only the workshop event")
	}
	f = Filter{Workshop: TriFalse}
	if f.Matches(&workshopOnly, now) || !f.Matches(&socialOnly, now) {
		t.Error("workshop=false should match only the non-workshop event")
	}
	f = Filter{Workshop: TriUnset}
	if !f.Matches(&workshopOnly, now) || !f.Matches(&socialOnly, now) {
		t.Error("unset workshop should match both")
	}
}

// Disjoint style filters yield disjoint results; the union of styles
// yields the union of results.
func TestStyleConjunction(t *testing.T) {
	day := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	mk := func(name string, styles ...model.DanceStyle) model.Event {
		return model.Event{
			Name: name, Country: "UK", City: "London", Social: true,
			Styles: styles, Time: model.DateOnly(day, day),
		}
	}
	events := []model.Event{
		mk("balfolk only", model.Balfolk),
		mk("contra only", model.Contra),
		mk("both", model.Balfolk, model.Contra),
		mk("neither", model.Polish),
	}

	balfolk := Apply(Filter{Styles: []model.DanceStyle{model.Balfolk}}, events, now)
	contra := Apply(Filter{Styles: []model.DanceStyle{model.Contra}}, events, now)
	union := Apply(Filter{Styles: []model.DanceStyle{model.Balfolk, model.Contra}}, events, now)

	names := func(evs []model.Event) map[string]bool {
		m := map[string]bool{}
		for _, ev := range evs {
			m[ev.Name] = true
		}
		return m
	}
	b, c, u := names(balfolk), names(contra), names(union)

	if b["contra only"] || c["balfolk only"] {
		t.Error("disjoint single-style filters overlap on single-style events")
	}
	for name := range b {
		if !u[name] {
			t.Errorf("union missing %q from balfolk set", name)
		}
	}
	for name := range c {
		if !u[name] {
			t.Errorf("union missing %q from contra set", name)
		}
	}
	if len(u) != 3 {
		t.Errorf("union matched %d events, want 3", len(u))
	}
	if u["neither"] {
		t.Error("union matched an event with neither style")
	}
}

func TestApplyPreservesOrder(t *testing.T) {
	day := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	events := []model.Event{
		allDayEvent("a", day, day),
		allDayEvent("b", day.AddDate(0, 0, 1), day.AddDate(0, 0, 1)),
		allDayEvent("c", day.AddDate(0, 0, 2), day.AddDate(0, 0, 2)),
	}
	got := Apply(Filter{}, events, now)
	for i, ev := range got {
		if ev.Name != events[i].Name {
			t.Fatalf("order changed at %d: got %q want %q", i, ev.Name, events[i].Name)
		}
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		filter Filter
		want   string
	}{
		{Filter{}, "Folk dance events"},
		{Filter{Countries: []string{"France"}}, "Folk dance events in France"},
		{Filter{Countries: []string{"UK"}}, "Folk dance events in the UK"},
		{Filter{Styles: []model.DanceStyle{model.Balfolk}}, "Balfolk events"},
		{Filter{Countries: []string{"France"}, Cities: []string{"Lyon"}}, "Folk dance events in Lyon, France"},
	}
	for _, tc := range tests {
		if got := tc.filter.Title(); got != tc.want {
			t.Errorf("Title() = %q, want %q", got, tc.want)
		}
	}
}
