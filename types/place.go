package types

import "strings"

// CategoryID is a dotted place category such as "service.police".
type CategoryID string

// Kind is the human readable name of the category: the final dot segment
// with underscores replaced by spaces.
func (c CategoryID) Kind() string {
	s := string(c)
	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	return strings.ReplaceAll(s, "_", " ")
}

// KeywordEntry maps a lowercase phrase to a place category.
type KeywordEntry struct {
	Keyword  string     `yaml:"keyword" json:"keyword"`
	Category CategoryID `yaml:"category" json:"category"`
}

// PlaceRecord is a single place returned by a places provider.
// Empty strings mean the provider did not supply the field.
type PlaceRecord struct {
	Name           string  `json:"name,omitempty"`
	Address        string  `json:"address,omitempty"`
	Phone          string  `json:"phone,omitempty"`
	DistanceMeters float64 `json:"distanceMeters"`
}

// SearchTier is one step of the progressive radius search.
type SearchTier struct {
	RadiusMeters int
	Limit        int
}

func (t SearchTier) RadiusKm() int {
	return t.RadiusMeters / 1000
}
