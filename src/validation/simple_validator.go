package validation

import (
	"fmt"
	"slices"

	"github.com/deckfort/cardtable-engine-go/src/gamedef"
)

// ValidateDefinition checks a populated definition for the structural
// invariants the loader and query engine rely on.
func ValidateDefinition(g *gamedef.CardGame) error {
	if g.Name == "" {
		return fmt.Errorf("validation failed: game name must be a non-empty string")
	}
	if g.DeckMaxCount < 1 {
		return fmt.Errorf("validation failed: deckMaxCount must be a positive integer")
	}
	if g.GameStartHandCount < 0 {
		return fmt.Errorf("validation failed: gameStartHandCount must be a non-negative integer")
	}

	for _, field := range []struct{ name, value string }{
		{"cardIdIdentifier", g.CardIDIdentifier},
		{"cardNameIdentifier", g.CardNameIdentifier},
		{"cardSetIdentifier", g.CardSetIdentifier},
		{"setCodeIdentifier", g.SetCodeIdentifier},
		{"setNameIdentifier", g.SetNameIdentifier},
	} {
		if field.value == "" {
			return fmt.Errorf("validation failed: %s must be a non-empty string", field.name)
		}
	}

	for i, p := range g.CardProperties {
		if p.Name == "" {
			return fmt.Errorf("validation failed: cardProperties[%d].name must be a non-empty string", i)
		}
		if !slices.Contains(ValidPropertyTypes, string(p.Type)) {
			return fmt.Errorf("validation failed: cardProperties[%d].type %q is not a recognised property type", i, p.Type)
		}
	}

	seen := map[string]bool{}
	for i, e := range g.Enums {
		if e.Property == "" {
			return fmt.Errorf("validation failed: enums[%d].property must be a non-empty string", i)
		}
		if seen[e.Property] {
			return fmt.Errorf("validation failed: enums[%d].property %q is declared more than once", i, e.Property)
		}
		seen[e.Property] = true
	}

	return nil
}
