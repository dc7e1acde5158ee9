// Package images caches decoded card artwork for one game and tracks which
// views are interested in which card. Entries are created lazily on first
// request and evicted once the last subscriber releases them.
package images

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"log/slog"
	"sync"

	"github.com/deckfort/cardtable-engine-go/src/gamedef"
	"github.com/deckfort/cardtable-engine-go/src/http"
	"github.com/deckfort/cardtable-engine-go/src/retry"
	"github.com/deckfort/cardtable-engine-go/src/storage"
	"github.com/deckfort/cardtable-engine-go/src/types"
	"github.com/disintegration/imaging"
)

// Subscriber receives a card's image once it is available. Implemented by
// whatever view displays the artwork.
type Subscriber interface {
	SetImage(cardID string, img image.Image)
}

// Cache holds decoded images for one game.
type Cache struct {
	client http.HTTPClient
	store  *storage.Store
	game   *gamedef.CardGame
	retry  retry.Config

	mu          sync.Mutex
	images      map[string]image.Image
	subscribers map[string]map[Subscriber]bool

	background image.Image
	cardBack   image.Image
}

// New creates an image cache for one definition.
func New(client http.HTTPClient, store *storage.Store, game *gamedef.CardGame) *Cache {
	return &Cache{
		client:      client,
		store:       store,
		game:        game,
		retry:       retry.DefaultConfig(),
		images:      make(map[string]image.Image),
		subscribers: make(map[string]map[Subscriber]bool),
	}
}

// LoadBanners decodes the cached background and card back images. A missing
// or undecodable file leaves the slot unset; the card back falls back to a
// generated placeholder so image delivery always has something to hand out.
func (c *Cache) LoadBanners() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.background = c.decodeFile(c.game.BackgroundPath())
	c.cardBack = c.decodeFile(c.game.CardBackPath())
	if c.cardBack == nil {
		c.cardBack = imaging.New(250, 350, color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff})
	}
}

// Background returns the game's background image, or nil when unset.
func (c *Cache) Background() image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.background
}

// CardBack returns the shared card back image, also used as the fetch
// failure fallback.
func (c *Cache) CardBack() image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cardBack
}

// RequestImage registers sub as interested in a card's image. A cached
// image is delivered synchronously; otherwise a fetch starts unless one is
// already in flight, in which case the subscriber waits for it.
func (c *Cache) RequestImage(sub Subscriber, cardID string) {
	card, ok := c.game.Cards.Get(cardID)

	c.mu.Lock()
	subs := c.subscribers[cardID]
	if subs == nil {
		subs = make(map[Subscriber]bool)
		c.subscribers[cardID] = subs
	}
	subs[sub] = true

	if img, cached := c.images[cardID]; cached {
		c.mu.Unlock()
		sub.SetImage(cardID, img)
		return
	}
	if !ok {
		fallback := c.cardBack
		c.mu.Unlock()
		sub.SetImage(cardID, fallback)
		return
	}
	if card.IsLoadingImage {
		c.mu.Unlock()
		return
	}
	card.IsLoadingImage = true
	c.mu.Unlock()

	go c.fetchAndCache(card)
}

// ReleaseImage removes sub's interest in a card. When the last subscriber
// leaves, the cache entry and its backing buffer are dropped.
func (c *Cache) ReleaseImage(sub Subscriber, cardID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	subs := c.subscribers[cardID]
	if subs == nil {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(c.subscribers, cardID)
		delete(c.images, cardID)
	}
}

// fetchAndCache obtains a card's image, local file first, then the game's
// card image URL. On total failure every subscriber receives the shared
// card back. The in-flight flag clears in all cases.
func (c *Cache) fetchAndCache(card *types.Card) {
	img := c.loadCardImage(card)

	c.mu.Lock()
	card.IsLoadingImage = false

	subs := c.subscribers[card.ID]
	waiting := make([]Subscriber, 0, len(subs))
	for sub := range subs {
		waiting = append(waiting, sub)
	}

	delivered := img
	if delivered == nil {
		delivered = c.cardBack
	} else if len(waiting) > 0 {
		c.images[card.ID] = img
	}
	c.mu.Unlock()

	for _, sub := range waiting {
		sub.SetImage(card.ID, delivered)
	}
}

func (c *Cache) loadCardImage(card *types.Card) image.Image {
	path := c.game.CardImagePath(card)
	if img := c.decodeFile(path); img != nil {
		return img
	}

	url := c.game.ExpandCardImageURL(card)
	if url == "" {
		return nil
	}

	resp, err := retry.Get(context.Background(), c.client, url, c.retry)
	if err != nil || !resp.OK() {
		slog.Warn("card image download failed", "card", card.ID, "url", url, "error", err)
		return nil
	}
	if err := c.store.Write(path, resp.Body); err != nil {
		slog.Warn("failed to cache card image", "card", card.ID, "path", path, "error", err)
	}

	img, err := imaging.Decode(bytes.NewReader(resp.Body))
	if err != nil {
		slog.Warn("failed to decode card image", "card", card.ID, "url", url, "error", err)
		return nil
	}
	return img
}

func (c *Cache) decodeFile(path string) image.Image {
	if !c.store.Exists(path) {
		return nil
	}
	data, err := c.store.Read(path)
	if err != nil {
		return nil
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Warn("failed to decode image file", "path", path, "error", err)
		return nil
	}
	return img
}
