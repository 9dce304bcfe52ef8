package events

import (
	"time"

	"github.com/teambition/rrule-go"

	"folklist/internal/model"
)

const (
	defaultMaxOccurrences = 100
	defaultHorizonDays    = 365
)

// Definition is a recurring event: a template carrying every non-date
// attribute plus the anchor occurrence in Template.Time, an RRULE rule
// text, and optional exclusion dates.
type Definition struct {
	Template model.Event
	RRule    string
	ExDates  []time.Time
}

// ExpandConfig bounds recurrence expansion. Both limits are hard caps:
// open-ended rules are cut at whichever is hit first, never expanded
// past it.
type ExpandConfig struct {
	// Now anchors the horizon. Zero means time.Now().
	Now time.Time
	// HorizonDays is the maximum distance of an occurrence from Now.
	HorizonDays int
	// MaxOccurrences is the maximum number of instances per definition.
	MaxOccurrences int
}

func (c ExpandConfig) withDefaults() ExpandConfig {
	if c.Now.IsZero() {
		c.Now = time.Now()
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = defaultHorizonDays
	}
	if c.MaxOccurrences <= 0 {
		c.MaxOccurrences = defaultMaxOccurrences
	}
	return c
}

// Expand turns one recurrence definition into a finite, chronologically
// ordered sequence of concrete events. Each instance is a copy of the
// template with its interval replaced by one occurrence. Excluded and
// duplicate occurrence dates are dropped without counting against the
// occurrence cap.
//
// Expand fails with a RecurrenceError when the rule text cannot be
// parsed or denotes no occurrence at all; the caller is expected to skip
// just this definition.
func Expand(def Definition, cfg ExpandConfig) ([]model.Event, error) {
	cfg = cfg.withDefaults()

	rule, err := rrule.StrToRRule(def.RRule)
	if err != nil {
		return nil, &RecurrenceError{
			Source: def.Template.Source,
			Name:   def.Template.Name,
			Reason: "cannot parse rule",
			Err:    err,
		}
	}

	anchor := def.Template.Time.Start
	rule.DTStart(anchor)

	excluded := make(map[string]bool, len(def.ExDates))
	for _, d := range def.ExDates {
		excluded[d.Format(dateLayout)] = true
	}

	var (
		duration = def.Template.Time.End.Sub(def.Template.Time.Start)
		horizon  = cfg.Now.AddDate(0, 0, cfg.HorizonDays)
		out      []model.Event
		prev     time.Time
	)

	// Between bounds even open-ended rules to the horizon.
	for _, occ := range rule.Between(anchor, horizon, true) {
		if !prev.IsZero() && occ.Equal(prev) {
			continue
		}
		prev = occ
		if excluded[occ.Format(dateLayout)] {
			continue
		}

		instance := def.Template
		if def.Template.Time.AllDay {
			instance.Time = model.DateOnly(occ, occ.Add(duration))
		} else {
			instance.Time = model.Timed(occ, occ.Add(duration))
		}
		out = append(out, instance)
		if len(out) >= cfg.MaxOccurrences {
			break
		}
	}

	if len(out) == 0 {
		return nil, &RecurrenceError{
			Source: def.Template.Source,
			Name:   def.Template.Name,
			Reason: "rule yields no occurrences within the horizon",
		}
	}
	return out, nil
}
