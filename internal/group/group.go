// Package group buckets filtered event lists for the two views: by
// starting month for the list view, by day for the calendar view.
package group

import (
	"sort"
	"time"

	"folklist/internal/model"
)

// Month is one list-view bucket: all events starting in one calendar
// month, in the order they arrived from the filter engine.
type Month struct {
	// Start is the first day of the month.
	Start  time.Time
	Events []model.Event
}

// Name renders the bucket heading, e.g. "May 2024".
func (m *Month) Name() string {
	return m.Start.Format("January 2006")
}

// Months partitions a sorted event sequence into month buckets keyed by
// each event's start date. Every event appears exactly once, in its
// start month; multiday events are detectable via Event.Multiday.
func Months(evs []model.Event) []Month {
	var months []Month
	for i := range evs {
		start := evs[i].Time.StartDate()
		first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
		if len(months) == 0 || !months[len(months)-1].Start.Equal(first) {
			months = append(months, Month{Start: first})
		}
		last := &months[len(months)-1]
		last.Events = append(last.Events, evs[i])
	}
	return months
}

// Day is one calendar-view bucket.
type Day struct {
	Date   time.Time
	Events []model.Event
}

// Days partitions events into per-day buckets. A multiday event appears
// in every day bucket it spans, start and end day inclusive. Buckets are
// chronological and preserve the incoming event order within each day.
func Days(evs []model.Event) []Day {
	byDate := make(map[time.Time]*Day)
	var dates []time.Time
	for i := range evs {
		start := evs[i].Time.StartDate()
		end := evs[i].Time.EndDate()
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			bucket, ok := byDate[d]
			if !ok {
				bucket = &Day{Date: d}
				byDate[d] = bucket
				dates = append(dates, d)
			}
			bucket.Events = append(bucket.Events, evs[i])
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	out := make([]Day, 0, len(dates))
	for _, d := range dates {
		out = append(out, *byDate[d])
	}
	return out
}
