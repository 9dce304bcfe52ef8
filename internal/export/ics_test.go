package export

import (
	"strings"
	"testing"
	"time"

	"folklist/internal/model"
)

func TestICSAllDayEvent(t *testing.T) {
	evs := sampleEvents()
	feed := ICS(evs[:1], "Folk dance events")

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"METHOD:PUBLISH",
		"SUMMARY:Spring Ball",
		"DTSTART;VALUE=DATE:20240504",
		// DTEND is exclusive, one day past the inclusive end date.
		"DTEND;VALUE=DATE:20240506",
		"END:VCALENDAR",
	} {
		if !strings.Contains(feed, want) {
			t.Errorf("feed missing %q:\n%s", want, feed)
		}
	}
	if strings.Contains(feed, "STATUS:CANCELLED") {
		t.Error("uncancelled event marked cancelled")
	}
}

func TestICSTimedEventUTC(t *testing.T) {
	evs := sampleEvents()
	feed := ICS(evs[1:], "Folk dance events")

	// 19:30+02:00 is 17:30 UTC.
	for _, want := range []string{
		"DTSTART:20240305T173000Z",
		"DTEND:20240305T203000Z",
		"SUMMARY:Tuesday Contra",
	} {
		if !strings.Contains(feed, want) {
			t.Errorf("feed missing %q:\n%s", want, feed)
		}
	}
}

func TestICSCancelledStatus(t *testing.T) {
	evs := sampleEvents()
	evs[0].Cancelled = true
	feed := ICS(evs, "Folk dance events")

	if !strings.Contains(feed, "STATUS:CANCELLED") {
		t.Errorf("cancelled event not marked:\n%s", feed)
	}
	if !strings.Contains(feed, "SUMMARY:Spring Ball") {
		t.Error("cancelled event omitted from feed")
	}
}

func TestICSDeterministic(t *testing.T) {
	evs := sampleEvents()
	a := ICS(evs, "Folk dance events")
	b := ICS(evs, "Folk dance events")
	if a != b {
		t.Error("feed not byte-identical across calls")
	}

	// A fresh but identical event list must reuse the same UIDs.
	c := ICS(sampleEvents(), "Folk dance events")
	if a != c {
		t.Error("equal inputs produced different UIDs")
	}
}

func TestICSDescription(t *testing.T) {
	ev := sampleEvents()[0]
	desc := description(&ev)

	for _, want := range []string{
		"A grand weekend of dancing.",
		"Dance styles: Balfolk",
		"Workshop and social dance.",
		"Bands: Topette",
		"Price: 25€",
		"Organised by: Balfolk Lyon",
	} {
		if !strings.Contains(desc, want) {
			t.Errorf("description missing %q:\n%s", want, desc)
		}
	}
	if strings.HasSuffix(desc, "\n") {
		t.Error("description has trailing newline")
	}
}

func TestICSEmpty(t *testing.T) {
	feed := ICS(nil, "Folk dance events")
	if !strings.Contains(feed, "BEGIN:VCALENDAR") || strings.Contains(feed, "BEGIN:VEVENT") {
		t.Errorf("empty feed malformed:\n%s", feed)
	}
}

func TestEventKeyDistinguishesEvents(t *testing.T) {
	a := sampleEvents()[0]
	b := a
	b.Time = model.DateOnly(
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
	)
	if eventKey(&a) == eventKey(&b) {
		t.Error("events on different dates share a key")
	}
}
