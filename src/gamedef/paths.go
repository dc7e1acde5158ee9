package gamedef

import (
	"fmt"
	"path/filepath"

	"github.com/deckfort/cardtable-engine-go/src/types"
	"github.com/gosimple/slug"
)

// Persisted layout, per game, under the games root:
//
//	<game>/<game>.json          configuration document
//	<game>/AllCards.json        card entries (page n >= 2: AllCards<n>.json)
//	<game>/AllSets.json         set entries
//	<game>/sets/<slug>.json     lazily fetched per-set card files
//	<game>/Background.<ext>     cached background image
//	<game>/CardBack.<ext>       cached card back image
//	<game>/sets/<slug>/<id>.<ext>  cached card images

// GamesRoot returns the directory all games live under.
func (g *CardGame) GamesRoot() string {
	return g.gamesRoot
}

// Directory returns the game's own directory.
func (g *CardGame) Directory() string {
	return filepath.Join(g.gamesRoot, g.Name)
}

// ConfigPath returns the path of the configuration document.
func (g *CardGame) ConfigPath() string {
	return filepath.Join(g.Directory(), g.Name+".json")
}

// CardsPath returns the local path for one page of the all-cards document.
func (g *CardGame) CardsPath(page int) string {
	if page <= 1 {
		return filepath.Join(g.Directory(), "AllCards.json")
	}
	return filepath.Join(g.Directory(), fmt.Sprintf("AllCards%d.json", page))
}

// SetsPath returns the local path of the all-sets document.
func (g *CardGame) SetsPath() string {
	return filepath.Join(g.Directory(), "AllSets.json")
}

// SetCardsPath returns the local path of a set's deferred card file. Set
// codes pass through a filesystem-safe slug transform.
func (g *CardGame) SetCardsPath(setCode string) string {
	return filepath.Join(g.Directory(), "sets", slug.Make(setCode)+".json")
}

// BackgroundPath returns the cached background image path.
func (g *CardGame) BackgroundPath() string {
	return filepath.Join(g.Directory(), "Background."+g.BackgroundImageFileType)
}

// CardBackPath returns the cached card back image path.
func (g *CardGame) CardBackPath() string {
	return filepath.Join(g.Directory(), "CardBack."+g.CardBackImageFileType)
}

// CardImagePath returns the cached artwork path for one card.
func (g *CardGame) CardImagePath(card *types.Card) string {
	setDir := slug.Make(card.SetCode)
	if setDir == "" {
		setDir = slug.Make(g.SetCodeDefault)
	}
	return filepath.Join(g.Directory(), "sets", setDir, card.ID+"."+g.CardImageFileType)
}
