// Package category maps free-text requests to place categories.
package category

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go-safeher/types"

	"gopkg.in/yaml.v3"
)

// DefaultTable is the built-in keyword table. Order only matters between
// keywords of equal length.
var DefaultTable = []types.KeywordEntry{
	{Keyword: "police station", Category: "service.police"},
	{Keyword: "police", Category: "service.police"},
	{Keyword: "hospital", Category: "healthcare.hospital"},
	{Keyword: "emergency room", Category: "healthcare.hospital"},
	{Keyword: "ambulance", Category: "healthcare.hospital"},
	{Keyword: "fire station", Category: "service.fire_station"},
	{Keyword: "fire", Category: "service.fire_station"},
	{Keyword: "pharmacy", Category: "healthcare.pharmacy"},
	{Keyword: "chemist", Category: "healthcare.pharmacy"},
	{Keyword: "drugstore", Category: "healthcare.pharmacy"},
	{Keyword: "medicine", Category: "healthcare.pharmacy"},
	{Keyword: "clinic", Category: "healthcare.clinic_or_praxis"},
	{Keyword: "doctor", Category: "healthcare.clinic_or_praxis"},
}

var ErrEmptyTable = errors.New("category keyword table is empty")

// Resolver holds a read-only copy of a keyword table.
type Resolver struct {
	table []types.KeywordEntry
}

// NewResolver copies and normalizes table. Entries with a blank keyword or
// category are rejected.
func NewResolver(table []types.KeywordEntry) (*Resolver, error) {
	if len(table) == 0 {
		return nil, ErrEmptyTable
	}
	entries := make([]types.KeywordEntry, 0, len(table))
	for i, e := range table {
		kw := strings.ToLower(strings.TrimSpace(e.Keyword))
		if kw == "" || e.Category == "" {
			return nil, fmt.Errorf("category entry %d: keyword and category are required", i)
		}
		entries = append(entries, types.KeywordEntry{Keyword: kw, Category: e.Category})
	}
	return &Resolver{table: entries}, nil
}

// Default returns a resolver over DefaultTable.
func Default() *Resolver {
	r, err := NewResolver(DefaultTable)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve returns the category of the longest keyword contained in the
// utterance. Keywords of equal length are decided by table order.
func (r *Resolver) Resolve(utterance string) (types.CategoryID, bool) {
	text := strings.ToLower(utterance)
	best := -1
	for i, e := range r.table {
		if !strings.Contains(text, e.Keyword) {
			continue
		}
		if best < 0 || len(e.Keyword) > len(r.table[best].Keyword) {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return r.table[best].Category, true
}

// Supported lists the distinct place kinds in table order.
func (r *Resolver) Supported() []string {
	seen := make(map[types.CategoryID]bool)
	var kinds []string
	for _, e := range r.table {
		if seen[e.Category] {
			continue
		}
		seen[e.Category] = true
		kinds = append(kinds, e.Category.Kind())
	}
	return kinds
}

// LoadTable reads a keyword table from a YAML list of {keyword, category}.
func LoadTable(path string) ([]types.KeywordEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category table: %w", err)
	}
	var table []types.KeywordEntry
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse category table %s: %w", path, err)
	}
	if len(table) == 0 {
		return nil, ErrEmptyTable
	}
	return table, nil
}
