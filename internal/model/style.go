package model

import "fmt"

// DanceStyle is a closed enumeration of dance genres. Each value has a
// stable URL-safe tag used in query strings and serialized event files,
// and a human-readable display name.
type DanceStyle int

const (
	Balfolk DanceStyle = iota
	Contra
	EnglishCeilidh
	IrishCeili
	IrishSet
	Italian
	EnglishCountryDance
	Polish
	Reeling
	ScottishCeilidh
	ScottishCountryDance
	Scandinavian
)

// Styles lists every DanceStyle in tag order. Form rendering and the
// query-string codec iterate this; do not reorder existing entries.
func Styles() []DanceStyle {
	return []DanceStyle{
		Balfolk,
		Contra,
		EnglishCeilidh,
		IrishCeili,
		IrishSet,
		Italian,
		EnglishCountryDance,
		Polish,
		Reeling,
		ScottishCeilidh,
		ScottishCountryDance,
		Scandinavian,
	}
}

var styleTags = map[DanceStyle]string{
	Balfolk:              "balfolk",
	Contra:               "contra",
	EnglishCeilidh:       "e-ceilidh",
	IrishCeili:           "ceili",
	IrishSet:             "irish-set",
	Italian:              "italian",
	EnglishCountryDance:  "ecd",
	Polish:               "polish",
	Reeling:              "reeling",
	ScottishCeilidh:      "s-ceilidh",
	ScottishCountryDance: "scd",
	Scandinavian:         "scandi",
}

var styleNames = map[DanceStyle]string{
	Balfolk:              "balfolk",
	Contra:               "contra",
	EnglishCeilidh:       "English ceilidh",
	IrishCeili:           "Irish céilí",
	IrishSet:             "Irish set",
	Italian:              "Italian",
	EnglishCountryDance:  "ECD",
	Polish:               "Polish",
	Reeling:              "Scottish reeling",
	ScottishCeilidh:      "Scottish cèilidh",
	ScottishCountryDance: "SCD",
	Scandinavian:         "Scandi",
}

var stylesByTag = func() map[string]DanceStyle {
	m := make(map[string]DanceStyle, len(styleTags))
	for s, tag := range styleTags {
		m[tag] = s
	}
	return m
}()

// Tag returns the stable URL-safe tag for the style.
func (s DanceStyle) Tag() string {
	return styleTags[s]
}

// Name returns the human-readable display name for the style.
func (s DanceStyle) Name() string {
	return styleNames[s]
}

func (s DanceStyle) String() string {
	return s.Name()
}

// StyleFromTag resolves a tag back to its DanceStyle. The second result
// is false for unknown tags.
func StyleFromTag(tag string) (DanceStyle, bool) {
	s, ok := stylesByTag[tag]
	return s, ok
}

// MarshalText implements encoding.TextMarshaler so styles serialize as
// their tag in JSON, YAML and TOML alike.
func (s DanceStyle) MarshalText() ([]byte, error) {
	return []byte(s.Tag()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *DanceStyle) UnmarshalText(text []byte) error {
	v, ok := StyleFromTag(string(text))
	if !ok {
		return &UnknownStyleError{Tag: string(text)}
	}
	*s = v
	return nil
}

// UnknownStyleError reports a style tag outside the closed set.
type UnknownStyleError struct {
	Tag string
}

func (e *UnknownStyleError) Error() string {
	return fmt.Sprintf("unknown dance style %q", e.Tag)
}
