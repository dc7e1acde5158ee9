// Package query filters a definition's card catalog. Filtering is a pure
// function over the current catalog snapshot: no side effects, no result
// caching, and re-invocation with the same arguments yields the same cards
// as long as the catalog is unchanged.
package query

import (
	"strconv"
	"strings"

	"github.com/deckfort/cardtable-engine-go/src/gamedef"
	"github.com/deckfort/cardtable-engine-go/src/types"
)

// Filters describes one card search. Zero values match everything except
// the property maps, whose presence always constrains the result.
type Filters struct {
	// Case-insensitive substring filters; "" matches all.
	ID      string
	Name    string
	SetCode string

	// StringProperties are case-insensitive substring filters on custom
	// properties. A card lacking the property key is excluded.
	StringProperties map[string]string

	// IntMinProperties / IntMaxProperties bound integer-valued properties.
	// Bounds are not enforced on cards whose value does not parse as an
	// integer.
	IntMinProperties map[string]int
	IntMaxProperties map[string]int

	// EnumProperties require a bit overlap (bitmask-stored values) or an
	// exact declared-name match (ordinal enums). A key naming a property
	// declared in neither form excludes every card. Single-value matching
	// only; OR/AND combinations of enum values are not supported.
	EnumProperties map[string]int
}

// FilterCards returns every card matching all filters, in the catalog's
// insertion order.
func FilterCards(g *gamedef.CardGame, f Filters) []*types.Card {
	var out []*types.Card
	for _, card := range g.Cards.All() {
		if matches(g, card, f) {
			out = append(out, card)
		}
	}
	return out
}

func matches(g *gamedef.CardGame, card *types.Card, f Filters) bool {
	if !containsFold(card.ID, f.ID) ||
		!containsFold(card.Name, f.Name) ||
		!containsFold(card.SetCode, f.SetCode) {
		return false
	}

	for property, want := range f.StringProperties {
		value, ok := card.Properties[property]
		if !ok || !containsFold(value, want) {
			return false
		}
	}

	for property, min := range f.IntMinProperties {
		if value, ok := parseIntProperty(card, property); ok && value < min {
			return false
		}
	}
	for property, max := range f.IntMaxProperties {
		if value, ok := parseIntProperty(card, property); ok && value > max {
			return false
		}
	}

	for property, want := range f.EnumProperties {
		if !matchesEnum(g, card, property, want) {
			return false
		}
	}

	return true
}

func containsFold(value, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(needle))
}

// parseIntProperty parses a card property as an integer. Unparseable and
// absent values report ok=false, which callers treat as vacuously within
// bounds.
func parseIntProperty(card *types.Card, property string) (int, bool) {
	raw, ok := card.Properties[property]
	if !ok {
		return 0, false
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return value, true
}

// matchesEnum applies the two enum encodings. Values stored with an "0x"
// prefix are bitmasks and match on any overlapping bit. Otherwise the filter
// value is resolved through the property's enum declaration and compared
// against the stored name. Filters naming a property with neither form never
// match.
func matchesEnum(g *gamedef.CardGame, card *types.Card, property string, want int) bool {
	raw := card.Properties[property]

	if stored, ok := types.ParseBitmask(raw); ok {
		return stored&want != 0
	}

	if enum, ok := g.EnumFor(property); ok {
		if name, ok := enum.NameFor(want); ok {
			return raw == name
		}
	}
	return false
}
