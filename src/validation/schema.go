package validation

import (
	"net/url"

	"github.com/Oudwins/zog"
	"github.com/deckfort/cardtable-engine-go/src/types"
)

// ValidPropertyTypes contains every recognised card property type.
var ValidPropertyTypes = propertyTypeNames()

func propertyTypeNames() []string {
	names := make([]string, 0, len(types.AllPropertyTypes))
	for _, t := range types.AllPropertyTypes {
		names = append(names, string(t))
	}
	return names
}

// isValidURLPtr checks that a string pointer holds a parseable, non-empty URL.
func isValidURLPtr(val *string, ctx zog.Ctx) bool {
	if val == nil || *val == "" {
		return false
	}
	_, err := url.Parse(*val)
	return err == nil
}

// uniqueEnumProperties validates that no two enum declarations target the
// same property.
func uniqueEnumProperties(val any, ctx zog.Ctx) bool {
	doc, ok := val.(*configDocument)
	if !ok {
		return true
	}
	seen := map[string]bool{}
	for _, enum := range doc.Enums {
		if enum.Property == "" {
			continue
		}
		if seen[enum.Property] {
			return false
		}
		seen[enum.Property] = true
	}
	return true
}

// PropertySchema validates one card property declaration.
var PropertySchema = zog.Struct(zog.Schema{
	"name":    zog.String().Required().Min(1, zog.Message("property name must be a non-empty string")),
	"type":    zog.String().Required().OneOf(ValidPropertyTypes, zog.Message("unrecognised property type")),
	"display": zog.String().Optional(),
})

// EnumValueSchema validates one enum value entry.
var EnumValueSchema = zog.Struct(zog.Schema{
	"value": zog.Int().Required(),
	"name":  zog.String().Required().Min(1, zog.Message("enum value name must be a non-empty string")),
})

// EnumSchema validates one enum declaration.
var EnumSchema = zog.Struct(zog.Schema{
	"property": zog.String().Required().Min(1, zog.Message("enum property must be a non-empty string")),
	"values":   zog.Slice(EnumValueSchema).Required(),
})

// ConfigSchema validates a game configuration document.
var ConfigSchema = zog.Struct(zog.Schema{
	"name":                 zog.String().Required().Min(1, zog.Message("game name must be a non-empty string")),
	"autoUpdateUrl":        zog.String().Optional().TestFunc(isValidURLPtr, zog.Message("autoUpdateUrl must be a valid URL")),
	"allCardsUrl":          zog.String().Optional().TestFunc(isValidURLPtr, zog.Message("allCardsUrl must be a valid URL")),
	"allCardsUrlPageCount": zog.Int().Optional().GTE(1, zog.Message("allCardsUrlPageCount must be a positive integer")),
	"allSetsUrl":           zog.String().Optional().TestFunc(isValidURLPtr, zog.Message("allSetsUrl must be a valid URL")),
	"deckMaxCount":         zog.Int().Optional().GTE(1, zog.Message("deckMaxCount must be a positive integer")),
	"gameStartHandCount":   zog.Int().Optional().GTE(0, zog.Message("gameStartHandCount must be a non-negative integer")),
	"cardProperties":       zog.Slice(PropertySchema).Optional(),
	"enums":                zog.Slice(EnumSchema).Optional(),
}).TestFunc(uniqueEnumProperties, zog.Message("enum property names must be unique"))

// configDocument is the destination shape for schema parsing. Only the
// validated subset of the configuration is materialized here.
type configDocument struct {
	Name                 string
	AutoUpdateUrl        string
	AllCardsUrl          string
	AllCardsUrlPageCount int
	AllSetsUrl           string
	DeckMaxCount         int
	GameStartHandCount   int
	CardProperties       []propertyDocument
	Enums                []enumDocument
}

type propertyDocument struct {
	Name    string
	Type    string
	Display string
}

type enumDocument struct {
	Property string
	Values   []enumValueDocument
}

type enumValueDocument struct {
	Value int
	Name  string
}
