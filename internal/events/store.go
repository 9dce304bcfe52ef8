package events

import (
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"folklist/internal/model"
)

// Store is one immutable snapshot of all loaded and expanded events,
// sorted by ascending start (ties broken by name, case-insensitively),
// plus precomputed distinct-value indices used for input suggestions.
//
// A Store is never mutated after NewStore returns; refreshing builds a
// brand-new Store and publishes it through a Holder.
type Store struct {
	events []model.Event

	countries     []string
	states        []string
	cities        []string
	bands         []string
	callers       []string
	organisations []string

	builtAt time.Time
}

// NewStore sorts the given events and derives the suggestion indices.
// The input slice is not retained.
func NewStore(evs []model.Event) *Store {
	sorted := make([]model.Event, len(evs))
	copy(sorted, evs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Less(&sorted[j])
	})

	s := &Store{events: sorted, builtAt: time.Now()}
	var bands, callers, organisations []string
	for i := range sorted {
		ev := &sorted[i]
		s.countries = append(s.countries, ev.Country)
		if ev.State != "" {
			s.states = append(s.states, ev.State)
		}
		s.cities = append(s.cities, ev.City)
		bands = append(bands, ev.Bands...)
		callers = append(callers, ev.Callers...)
		if ev.Organisation != "" {
			organisations = append(organisations, ev.Organisation)
		}
	}
	s.countries = distinctSorted(s.countries)
	s.states = distinctSorted(s.states)
	s.cities = distinctSorted(s.cities)
	s.bands = distinctSorted(bands)
	s.callers = distinctSorted(callers)
	s.organisations = distinctSorted(organisations)
	return s
}

// All returns the full sorted event sequence. Callers must not modify
// the returned slice.
func (s *Store) All() []model.Event { return s.events }

func (s *Store) Countries() []string     { return s.countries }
func (s *Store) States() []string        { return s.states }
func (s *Store) Cities() []string        { return s.cities }
func (s *Store) Bands() []string         { return s.bands }
func (s *Store) Callers() []string       { return s.callers }
func (s *Store) Organisations() []string { return s.organisations }

// BuiltAt is the wall-clock instant this snapshot was constructed.
func (s *Store) BuiltAt() time.Time { return s.builtAt }

// distinctSorted dedupes case-insensitively (first-seen casing wins) and
// sorts case-insensitively.
func distinctSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i]), strings.ToLower(out[j])
		if a != b {
			return a < b
		}
		return out[i] < out[j]
	})
	return out
}

// Holder publishes snapshots with an atomic pointer swap. Readers call
// Current once per request and work against that snapshot in full; a
// concurrent Publish is never visible partway through a request.
type Holder struct {
	ptr atomic.Pointer[Store]
}

// NewHolder returns a Holder pre-published with the given snapshot.
func NewHolder(s *Store) *Holder {
	h := &Holder{}
	h.Publish(s)
	return h
}

// Current returns the most recently published snapshot, or an empty one
// if nothing has been published yet.
func (h *Holder) Current() *Store {
	if s := h.ptr.Load(); s != nil {
		return s
	}
	return NewStore(nil)
}

// Publish atomically swaps in a new snapshot. Holders of the previous
// snapshot finish against it untouched.
func (h *Holder) Publish(s *Store) {
	h.ptr.Store(s)
}
