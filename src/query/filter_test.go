package query

import (
	"testing"

	"github.com/deckfort/cardtable-engine-go/src/gamedef"
	"github.com/deckfort/cardtable-engine-go/src/types"
)

func testGame() *gamedef.CardGame {
	g := gamedef.New("/games", "Test", "")
	g.CardProperties = []types.PropertyDef{
		{Name: "text", Type: types.StringProperty},
		{Name: "cost", Type: types.IntegerProperty},
		{Name: "rarity", Type: types.EnumProperty},
		{Name: "colors", Type: types.EnumProperty},
	}
	g.Enums = []types.EnumDef{
		{Property: "rarity", Values: []types.EnumValue{
			{Value: 1, Name: "common"},
			{Value: 2, Name: "rare"},
		}},
	}

	g.PutCard(types.NewCard("A1", "Ace of Spades", "Standard", map[string]string{
		"text": "The highest card", "cost": "3", "rarity": "rare", "colors": "0x3",
	}))
	g.PutCard(types.NewCard("B2", "Two of Hearts", "Standard", map[string]string{
		"text": "A low card", "cost": "1", "rarity": "common", "colors": "0x4",
	}))
	g.PutCard(types.NewCard("C3", "Joker", "Extras", map[string]string{
		"text": "Wild", "cost": "X", "rarity": "rare", "colors": "0x1",
	}))
	return g
}

func ids(cards []*types.Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out
}

func assertIDs(t *testing.T, got []*types.Card, want ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("got cards %v, want %v", gotIDs, want)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("got cards %v, want %v", gotIDs, want)
		}
	}
}

func TestFilterCards_EmptyFiltersReturnEverything(t *testing.T) {
	g := testGame()
	got := FilterCards(g, Filters{})
	// Every card, in insertion order.
	assertIDs(t, got, "A1", "B2", "C3")
}

func TestFilterCards_Substrings(t *testing.T) {
	g := testGame()

	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{"Id substring", Filters{ID: "a1"}, []string{"A1"}},
		{"Name substring case-insensitive", Filters{Name: "of"}, []string{"A1", "B2"}},
		{"Set substring", Filters{SetCode: "extra"}, []string{"C3"}},
		{"All conditions AND", Filters{Name: "of", SetCode: "standard", ID: "b"}, []string{"B2"}},
		{"No match", Filters{Name: "dragon"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertIDs(t, FilterCards(g, tt.filters), tt.want...)
		})
	}
}

func TestFilterCards_StringProperties(t *testing.T) {
	g := testGame()

	got := FilterCards(g, Filters{StringProperties: map[string]string{"text": "card"}})
	assertIDs(t, got, "A1", "B2")

	// A property key absent on the card excludes it, strictly.
	g.PutCard(types.NewCard("D4", "Bare", "Standard", map[string]string{}))
	got = FilterCards(g, Filters{StringProperties: map[string]string{"text": ""}})
	assertIDs(t, got, "A1", "B2", "C3")
}

func TestFilterCards_IntegerBounds(t *testing.T) {
	g := testGame()

	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{"Min bound", Filters{IntMinProperties: map[string]int{"cost": 2}}, []string{"A1", "C3"}},
		{"Max bound", Filters{IntMaxProperties: map[string]int{"cost": 2}}, []string{"B2", "C3"}},
		{"Min and max", Filters{
			IntMinProperties: map[string]int{"cost": 1},
			IntMaxProperties: map[string]int{"cost": 2},
		}, []string{"B2", "C3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// C3's cost "X" does not parse: bounds are not enforced on it.
			assertIDs(t, FilterCards(g, tt.filters), tt.want...)
		})
	}
}

func TestFilterCards_BitmaskEnums(t *testing.T) {
	g := testGame()

	// Stored "0x3": filter 0x2 overlaps, filter 0x4 does not.
	got := FilterCards(g, Filters{ID: "A1", EnumProperties: map[string]int{"colors": 0x2}})
	assertIDs(t, got, "A1")

	got = FilterCards(g, Filters{ID: "A1", EnumProperties: map[string]int{"colors": 0x4}})
	assertIDs(t, got)
}

func TestFilterCards_OrdinalEnums(t *testing.T) {
	g := testGame()

	got := FilterCards(g, Filters{EnumProperties: map[string]int{"rarity": 2}})
	assertIDs(t, got, "A1", "C3")

	got = FilterCards(g, Filters{EnumProperties: map[string]int{"rarity": 1}})
	assertIDs(t, got, "B2")

	// A filter value missing from the declaration never matches.
	got = FilterCards(g, Filters{EnumProperties: map[string]int{"rarity": 99}})
	assertIDs(t, got)
}

func TestFilterCards_UndeclaredEnumPropertyExcludesAll(t *testing.T) {
	g := testGame()
	got := FilterCards(g, Filters{EnumProperties: map[string]int{"unheard-of": 1}})
	assertIDs(t, got)
}

func TestFilterCards_Restartable(t *testing.T) {
	g := testGame()
	f := Filters{Name: "of"}

	first := ids(FilterCards(g, f))
	second := ids(FilterCards(g, f))
	if len(first) != len(second) {
		t.Fatalf("re-invocation changed result size: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("re-invocation changed results: %v vs %v", first, second)
		}
	}
}
