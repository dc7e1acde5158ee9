// Package gamedef holds the aggregate definition of one card game: its
// remote sources, the identifier mapping used to interpret foreign JSON
// schemas, the property/enum schema, deck rules, and the in-memory catalogs
// of cards and sets.
package gamedef

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deckfort/cardtable-engine-go/src/types"
)

// Defaults applied by New. A minimal or malformed config still yields a
// usable definition.
const (
	DefaultCardImageFileType = "png"
	DefaultBannerFileType    = "png"
	DefaultDeckMaxCount      = 75
	DefaultHandStartCount    = 5
	DefaultPointsStartCount  = 20
	DefaultCardIDField       = "id"
	DefaultCardNameField     = "name"
	DefaultCardSetField      = "set"
	DefaultSetCodeField      = "code"
	DefaultSetNameField      = "name"
	DefaultSetCardsURLField  = "cardsUrl"
	DefaultSetCardsField     = "cards"
	DefaultPageIdentifier    = "?page="
	DefaultSetCode           = "Standard"
)

// CardGame is the aggregate root for one game: configuration plus catalog.
// It is constructed with defaults, then mutated in place by successive load
// passes. A failed load leaves previously loaded entries intact and records
// a sticky Error.
type CardGame struct {
	Name          string `json:"name"`
	AutoUpdate    bool   `json:"autoUpdate"`
	AutoUpdateURL string `json:"autoUpdateUrl"`

	AllCardsURL               string `json:"allCardsUrl"`
	AllCardsURLPageCount      int    `json:"allCardsUrlPageCount"`
	AllCardsURLPageIdentifier string `json:"allCardsUrlPageIdentifier"`
	AllCardsZipped            bool   `json:"allCardsZipped"`
	AllSetsURL                string `json:"allSetsUrl"`
	AllSetsZipped             bool   `json:"allSetsZipped"`

	BackgroundImageURL      string `json:"backgroundImageUrl"`
	BackgroundImageFileType string `json:"backgroundImageFileType"`
	CardBackImageURL        string `json:"cardBackImageUrl"`
	CardBackImageFileType   string `json:"cardBackImageFileType"`

	// CardImageURL is a template; see ExpandCardImageURL.
	CardImageURL      string `json:"cardImageUrl"`
	CardImageFileType string `json:"cardImageFileType"`

	CardIDIdentifier      string `json:"cardIdIdentifier"`
	CardNameIdentifier    string `json:"cardNameIdentifier"`
	CardSetIdentifier     string `json:"cardSetIdentifier"`
	SetCodeIdentifier     string `json:"setCodeIdentifier"`
	SetNameIdentifier     string `json:"setNameIdentifier"`
	SetCardsURLIdentifier string `json:"setCardsUrlIdentifier"`
	SetCardsIdentifier    string `json:"setCardsIdentifier"`
	SetCodeDefault        string `json:"setCodeDefault"`

	CardProperties []types.PropertyDef `json:"cardProperties"`
	Enums          []types.EnumDef     `json:"enums"`

	DeckMaxCount         int `json:"deckMaxCount"`
	GameStartHandCount   int `json:"gameStartHandCount"`
	GameStartPointsCount int `json:"gameStartPointsCount"`

	// Catalogs. Always non-nil, even before any load.
	Cards *types.CardCatalog `json:"-"`
	Sets  *types.SetCatalog  `json:"-"`

	// Load state for UI to branch on.
	Error         string `json:"-"`
	HasLoaded     bool   `json:"-"`
	IsDownloading bool   `json:"-"`

	gamesRoot string
}

// New builds a definition with every optional field defaulted. Pure data
// initialization, no error path.
func New(gamesRoot, name, autoUpdateURL string) *CardGame {
	return &CardGame{
		Name:          name,
		AutoUpdateURL: autoUpdateURL,

		AllCardsURLPageIdentifier: DefaultPageIdentifier,
		BackgroundImageFileType:   DefaultBannerFileType,
		CardBackImageFileType:     DefaultBannerFileType,
		CardImageFileType:         DefaultCardImageFileType,

		CardIDIdentifier:      DefaultCardIDField,
		CardNameIdentifier:    DefaultCardNameField,
		CardSetIdentifier:     DefaultCardSetField,
		SetCodeIdentifier:     DefaultSetCodeField,
		SetNameIdentifier:     DefaultSetNameField,
		SetCardsURLIdentifier: DefaultSetCardsURLField,
		SetCardsIdentifier:    DefaultSetCardsField,
		SetCodeDefault:        DefaultSetCode,

		DeckMaxCount:         DefaultDeckMaxCount,
		GameStartHandCount:   DefaultHandStartCount,
		GameStartPointsCount: DefaultPointsStartCount,

		Cards: types.NewCardCatalog(),
		Sets:  types.NewSetCatalog(),

		gamesRoot: gamesRoot,
	}
}

// Populate merge-populates the definition from a configuration document.
// Fields present in the JSON overwrite current values, absent fields are
// untouched.
func (g *CardGame) Populate(data []byte) error {
	if err := json.Unmarshal(data, g); err != nil {
		return fmt.Errorf("failed to parse game configuration: %w", err)
	}
	return nil
}

// SetError records a sticky load error. The first error wins; later phases
// must not mask the one that caused the failure.
func (g *CardGame) SetError(err error) {
	if g.Error == "" && err != nil {
		g.Error = err.Error()
	}
}

// ClearError resets the sticky error before a fresh load pass.
func (g *CardGame) ClearError() {
	g.Error = ""
}

// PutCard inserts or overwrites a card and ensures its set exists,
// auto-creating one with name=code when unseen.
func (g *CardGame) PutCard(card *types.Card) {
	g.Cards.Put(card)
	if card.SetCode == "" {
		return
	}
	if _, ok := g.Sets.Get(card.SetCode); !ok {
		g.Sets.Put(&types.Set{Code: card.SetCode, Name: card.SetCode})
	}
}

// EnumFor returns the enum declaration for a property name.
func (g *CardGame) EnumFor(property string) (types.EnumDef, bool) {
	for _, e := range g.Enums {
		if e.Property == property {
			return e, true
		}
	}
	return types.EnumDef{}, false
}

// PropertyFor returns the property declaration for a name.
func (g *CardGame) PropertyFor(name string) (types.PropertyDef, bool) {
	for _, p := range g.CardProperties {
		if p.Name == name {
			return p, true
		}
	}
	return types.PropertyDef{}, false
}

// CardsPageURL returns the remote URL for one page of the all-cards
// document. Page 1 is the bare URL, later pages append the configured page
// identifier and number.
func (g *CardGame) CardsPageURL(page int) string {
	if page <= 1 {
		return g.AllCardsURL
	}
	return fmt.Sprintf("%s%s%d", g.AllCardsURL, g.AllCardsURLPageIdentifier, page)
}

// PageCount returns the number of all-cards pages, at least 1.
func (g *CardGame) PageCount() int {
	if g.AllCardsURLPageCount < 1 {
		return 1
	}
	return g.AllCardsURLPageCount
}

// ExpandCardImageURL fills the card image URL template for one card.
// Supported placeholders: {cardId}, {cardName}, {setCode},
// {cardImageFileType}.
func (g *CardGame) ExpandCardImageURL(card *types.Card) string {
	if g.CardImageURL == "" {
		return ""
	}
	r := strings.NewReplacer(
		"{cardId}", card.ID,
		"{cardName}", card.Name,
		"{setCode}", card.SetCode,
		"{cardImageFileType}", g.CardImageFileType,
	)
	return r.Replace(g.CardImageURL)
}
