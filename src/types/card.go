package types

import (
	"strconv"
	"strings"
)

// PropertyType describes how a custom card attribute is interpreted.
type PropertyType string

const (
	StringProperty         PropertyType = "string"
	IntegerProperty        PropertyType = "integer"
	BooleanProperty        PropertyType = "boolean"
	EnumProperty           PropertyType = "enum"
	EnumListProperty       PropertyType = "enumList"
	ObjectProperty         PropertyType = "object"
	ObjectEnumProperty     PropertyType = "objectEnum"
	ObjectEnumListProperty PropertyType = "objectEnumList"
)

var AllPropertyTypes = []PropertyType{
	StringProperty, IntegerProperty, BooleanProperty,
	EnumProperty, EnumListProperty,
	ObjectProperty, ObjectEnumProperty, ObjectEnumListProperty,
}

// PropertyDef declares the schema of one custom card attribute.
// Immutable once loaded from a game configuration.
type PropertyDef struct {
	Name    string       `json:"name"`
	Type    PropertyType `json:"type"`
	Display string       `json:"display,omitempty"`
}

// EnumValue maps one integer (ordinal or bit flag) to a display name.
type EnumValue struct {
	Value int    `json:"value"`
	Name  string `json:"name"`
}

// EnumDef declares the value set of one enum-typed property. Values are
// ordered; duplicate values make reverse lookup first-match-wins.
type EnumDef struct {
	Property string      `json:"property"`
	Values   []EnumValue `json:"values"`
}

// NameFor returns the display name for a value. First match wins.
func (e EnumDef) NameFor(value int) (string, bool) {
	for _, v := range e.Values {
		if v.Value == value {
			return v.Name, true
		}
	}
	return "", false
}

// ParseBitmask interprets a raw property value as a hex bitmask.
// Only values prefixed "0x" qualify.
func ParseBitmask(raw string) (int, bool) {
	if !strings.HasPrefix(raw, "0x") && !strings.HasPrefix(raw, "0X") {
		return 0, false
	}
	v, err := strconv.ParseInt(raw[2:], 16, 64)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

// Card is one catalog entry. Cards are only constructed from parsed records
// carrying a non-empty id and are immutable after construction, except for
// the transient image-loading flag owned by the image cache.
type Card struct {
	ID         string
	Name       string
	SetCode    string
	Properties map[string]string

	// IsLoadingImage marks an image fetch in flight for this card.
	// Mutated only by the image cache, under its lock.
	IsLoadingImage bool
}

// NewCard builds a card with a non-nil property map.
func NewCard(id, name, setCode string, properties map[string]string) *Card {
	if properties == nil {
		properties = map[string]string{}
	}
	return &Card{ID: id, Name: name, SetCode: setCode, Properties: properties}
}

// Set is one catalog set. CardsURL, when present, points at a deferred
// set-scoped card download.
type Set struct {
	Code     string
	Name     string
	CardsURL string
}
