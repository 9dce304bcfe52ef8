package filter

import (
	"net/url"
	"sort"
	"strings"

	"folklist/internal/model"
)

// Query parameter names. Multi-valued dimensions repeat the same name.
const (
	paramDate         = "date"
	paramCountry      = "country"
	paramState        = "state"
	paramCity         = "city"
	paramStyle        = "style"
	paramMultiday     = "multiday"
	paramWorkshop     = "workshop"
	paramSocial       = "social"
	paramCancelled    = "cancelled"
	paramBand         = "band"
	paramCaller       = "caller"
	paramOrganisation = "organisation"
)

// Encode renders the filter as its canonical query string: only
// non-default dimensions appear, set values are sorted and deduplicated,
// keys are emitted in a fixed order and values percent-escaped. The
// default filter encodes to the empty string.
func Encode(f Filter) string {
	v := url.Values{}
	if f.Date != WindowAll {
		v.Set(paramDate, f.Date.Tag())
	}
	for _, c := range sortedSet(f.Countries) {
		v.Add(paramCountry, c)
	}
	for _, s := range sortedSet(f.States) {
		v.Add(paramState, s)
	}
	for _, c := range sortedSet(f.Cities) {
		v.Add(paramCity, c)
	}
	for _, s := range sortedStyles(f.Styles) {
		v.Add(paramStyle, s.Tag())
	}
	if t := f.Multiday.param(); t != "" {
		v.Set(paramMultiday, t)
	}
	if t := f.Workshop.param(); t != "" {
		v.Set(paramWorkshop, t)
	}
	if t := f.Social.param(); t != "" {
		v.Set(paramSocial, t)
	}
	if t := f.Cancelled.param(); t != "" {
		v.Set(paramCancelled, t)
	}
	if f.Band != "" {
		v.Set(paramBand, f.Band)
	}
	if f.Caller != "" {
		v.Set(paramCaller, f.Caller)
	}
	if f.Organisation != "" {
		v.Set(paramOrganisation, f.Organisation)
	}
	return v.Encode()
}

// Decode parses query parameters into a Filter. Decode is total and
// defensive: unknown parameter names are ignored, malformed values leave
// their dimension at the default, and parameter order never changes the
// result. The output is canonical, so Decode(Encode(f)) == f for any
// filter Encode can produce.
func Decode(q url.Values) Filter {
	var f Filter
	if tags, ok := q[paramDate]; ok {
		for _, tag := range tags {
			if w, valid := WindowFromTag(tag); valid {
				f.Date = w
				break
			}
		}
	}
	f.Countries = sortedSet(q[paramCountry])
	f.States = sortedSet(q[paramState])
	f.Cities = sortedSet(q[paramCity])
	for _, tag := range q[paramStyle] {
		if s, ok := model.StyleFromTag(tag); ok {
			f.Styles = append(f.Styles, s)
		}
	}
	f.Styles = sortedStyles(f.Styles)
	f.Multiday = decodeTri(q.Get(paramMultiday))
	f.Workshop = decodeTri(q.Get(paramWorkshop))
	f.Social = decodeTri(q.Get(paramSocial))
	f.Cancelled = decodeTri(q.Get(paramCancelled))
	f.Band = q.Get(paramBand)
	f.Caller = q.Get(paramCaller)
	f.Organisation = q.Get(paramOrganisation)
	return f
}

// DecodeString is Decode over a raw query string. A string that fails
// URL parsing entirely yields the default filter.
func DecodeString(query string) Filter {
	q, err := url.ParseQuery(query)
	if err != nil {
		return Filter{}
	}
	return Decode(q)
}

func decodeTri(s string) Tri {
	switch s {
	case "true":
		return TriTrue
	case "false":
		return TriFalse
	default:
		return TriUnset
	}
}

// sortedSet dedupes case-insensitively (first occurrence wins) and
// sorts. A nil result stands for "no constraint".
func sortedSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
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
	if len(out) == 0 {
		return nil
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

func sortedStyles(styles []model.DanceStyle) []model.DanceStyle {
	if len(styles) == 0 {
		return nil
	}
	seen := make(map[model.DanceStyle]bool, len(styles))
	out := make([]model.DanceStyle, 0, len(styles))
	for _, s := range styles {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
