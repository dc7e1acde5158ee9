// Package loader brings a card game definition from "just constructed" to
// "fully populated": config fetch and merge, paged and zipped card/set data
// downloads, entity materialization, and banner image caching. Any phase may
// fail over the network without corrupting already-loaded catalog state.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/deckfort/cardtable-engine-go/src/gamedef"
	"github.com/deckfort/cardtable-engine-go/src/http"
	"github.com/deckfort/cardtable-engine-go/src/retry"
	"github.com/deckfort/cardtable-engine-go/src/storage"
	"github.com/deckfort/cardtable-engine-go/src/types"
	"github.com/deckfort/cardtable-engine-go/src/validation"
)

// Load phases, in execution order.
const (
	PhaseConfig   = "config"
	PhaseRelocate = "relocate"
	PhaseCards    = "cards"
	PhaseSets     = "sets"
	PhaseImages   = "images"
)

// Hooks are optional progress callbacks. All may be nil.
type Hooks struct {
	// OnPhase fires when a load phase begins.
	OnPhase func(game, phase string)
	// OnUpdate fires after the configuration was re-fetched or relocated.
	OnUpdate func(g *gamedef.CardGame)
	// OnCardsLoaded fires after the card/set data phases complete.
	OnCardsLoaded func(g *gamedef.CardGame)
	// OnSetCardsLoaded fires after a deferred per-set card load.
	OnSetCardsLoaded func(g *gamedef.CardGame, set *types.Set)
}

// Loader orchestrates the load protocol. It holds no per-game state and does
// no locking; the registry serializes loads per definition.
type Loader struct {
	client http.HTTPClient
	store  *storage.Store
	retry  retry.Config
	hooks  Hooks
}

// New creates a loader over the given download primitive and file store.
func New(client http.HTTPClient, store *storage.Store, hooks Hooks) *Loader {
	return &Loader{
		client: client,
		store:  store,
		retry:  retry.DefaultConfig(),
		hooks:  hooks,
	}
}

// Load runs every phase in order. Errors are converted into the sticky
// Error on the definition rather than returned; HasLoaded is set whenever
// the phases ran to the end, which is not the same as error-free.
func (l *Loader) Load(ctx context.Context, g *gamedef.CardGame) {
	l.run(ctx, g, false)
}

// Update is a load that unconditionally re-fetches every remote source,
// regardless of the definition's auto-update policy.
func (l *Loader) Update(ctx context.Context, g *gamedef.CardGame) {
	l.run(ctx, g, true)
}

func (l *Loader) run(ctx context.Context, g *gamedef.CardGame, force bool) {
	g.ClearError()
	g.IsDownloading = true
	defer func() { g.IsDownloading = false }()

	if !l.loadConfig(ctx, g, force) {
		return
	}
	l.loadAllCards(ctx, g, force)
	l.loadAllSets(ctx, g, force)
	if l.hooks.OnCardsLoaded != nil {
		l.hooks.OnCardsLoaded(g)
	}
	l.loadBanners(ctx, g)

	g.HasLoaded = true
	slog.Info("game loaded", "game", g.Name, "cards", g.Cards.Len(), "sets", g.Sets.Len(), "error", g.Error)
}

// loadConfig runs the config and relocate phases. A config error aborts the
// whole load; the return value reports whether to continue.
func (l *Loader) loadConfig(ctx context.Context, g *gamedef.CardGame, force bool) bool {
	l.phase(g, PhaseConfig)

	if g.AutoUpdateURL != "" && (force || g.AutoUpdate || !l.store.Exists(g.ConfigPath())) {
		if err := l.download(ctx, g.AutoUpdateURL, g.ConfigPath()); err != nil {
			// Treated as file-absent; a local copy may still carry the load.
			slog.Warn("config download failed", "game", g.Name, "url", g.AutoUpdateURL, "error", err)
		}
	}

	data, err := l.store.Read(g.ConfigPath())
	if err != nil {
		g.SetError(fmt.Errorf("failed to read game configuration: %w", err))
		return false
	}

	oldDir := g.Directory()
	if err := g.Populate(data); err != nil {
		g.SetError(err)
		return false
	}
	if err := validation.ValidateDefinition(g); err != nil {
		g.SetError(err)
		return false
	}

	// A config may redirect its own identity by renaming the game.
	renamed := g.Directory() != oldDir
	if renamed || (g.AutoUpdate && g.AutoUpdateURL != "") {
		l.phase(g, PhaseRelocate)
		if renamed {
			if err := l.download(ctx, g.AutoUpdateURL, g.ConfigPath()); err != nil {
				slog.Warn("config re-fetch failed, keeping merged copy", "game", g.Name, "error", err)
				if err := l.store.Write(g.ConfigPath(), data); err != nil {
					g.SetError(err)
					return false
				}
			}
			if err := l.store.Delete(oldDir); err != nil {
				slog.Warn("failed to delete old game directory", "dir", oldDir, "error", err)
			}
		}
		if l.hooks.OnUpdate != nil {
			l.hooks.OnUpdate(g)
		}
	}
	return true
}

// loadAllCards downloads and parses every page of the all-cards document.
// A missing page file is skipped silently; a parse failure is a data error
// that aborts that file only.
func (l *Loader) loadAllCards(ctx context.Context, g *gamedef.CardGame, force bool) {
	l.phase(g, PhaseCards)

	for page := 1; page <= g.PageCount(); page++ {
		path := g.CardsPath(page)
		if g.AllCardsURL != "" && (force || g.AutoUpdate || !l.store.Exists(path)) {
			if err := l.fetchDataFile(ctx, g.CardsPageURL(page), path, g.AllCardsZipped); err != nil {
				slog.Warn("card data download failed", "game", g.Name, "page", page, "error", err)
			}
		}
		if !l.store.Exists(path) {
			continue
		}
		if err := l.parseCards(g, path, g.SetCodeDefault); err != nil {
			g.SetError(err)
		}
	}
}

// loadAllSets downloads and parses the all-sets document.
func (l *Loader) loadAllSets(ctx context.Context, g *gamedef.CardGame, force bool) {
	l.phase(g, PhaseSets)

	path := g.SetsPath()
	if g.AllSetsURL != "" && (force || g.AutoUpdate || !l.store.Exists(path)) {
		if err := l.fetchDataFile(ctx, g.AllSetsURL, path, g.AllSetsZipped); err != nil {
			slog.Warn("set data download failed", "game", g.Name, "error", err)
		}
	}
	if !l.store.Exists(path) {
		return
	}
	if err := l.parseSets(g, path); err != nil {
		g.SetError(err)
	}
}

// LoadSetCards performs the deferred set-scoped card download and parse for
// one set. Errors are recorded on the definition and returned.
func (l *Loader) LoadSetCards(ctx context.Context, g *gamedef.CardGame, set *types.Set) error {
	path := g.SetCardsPath(set.Code)
	if set.CardsURL != "" && (g.AutoUpdate || !l.store.Exists(path)) {
		if err := l.download(ctx, set.CardsURL, path); err != nil {
			slog.Warn("set card download failed", "game", g.Name, "set", set.Code, "error", err)
		}
	}
	if !l.store.Exists(path) {
		return nil
	}
	if err := l.parseCards(g, path, set.Code); err != nil {
		g.SetError(err)
		return err
	}
	if l.hooks.OnSetCardsLoaded != nil {
		l.hooks.OnSetCardsLoaded(g, set)
	}
	return nil
}

// loadBanners caches the background and card back images, local file first.
// Failure leaves the slot unset and is not fatal to the load.
func (l *Loader) loadBanners(ctx context.Context, g *gamedef.CardGame) {
	l.phase(g, PhaseImages)
	l.ensureFile(ctx, g.BackgroundPath(), g.BackgroundImageURL)
	l.ensureFile(ctx, g.CardBackPath(), g.CardBackImageURL)
}

func (l *Loader) ensureFile(ctx context.Context, path, url string) {
	if l.store.Exists(path) || url == "" {
		return
	}
	if err := l.download(ctx, url, path); err != nil {
		slog.Warn("image download failed", "url", url, "error", err)
	}
}

// fetchDataFile downloads a data document, extracting it first when the
// source is zipped.
func (l *Loader) fetchDataFile(ctx context.Context, url, path string, zipped bool) error {
	if !zipped {
		return l.download(ctx, url, path)
	}

	zipPath := path + ".zip"
	if err := l.download(ctx, url, zipPath); err != nil {
		return err
	}
	defer func() {
		if err := l.store.Delete(zipPath); err != nil {
			slog.Warn("failed to remove archive", "path", zipPath, "error", err)
		}
	}()

	extracted, err := l.store.ExtractZip(zipPath, filepath.Dir(path))
	if err != nil {
		return err
	}
	if l.store.Exists(path) {
		return nil
	}

	// The archived document rarely carries the local name; adopt the first
	// JSON entry as the data file.
	for _, name := range extracted {
		if strings.EqualFold(filepath.Ext(name), ".json") {
			data, err := l.store.Read(name)
			if err != nil {
				return err
			}
			if err := l.store.Write(path, data); err != nil {
				return err
			}
			return l.store.Delete(name)
		}
	}
	return fmt.Errorf("archive from %s contained no JSON document", url)
}

// download fetches a URL and writes the body to path. Non-2xx responses are
// errors; callers treat them as file-absent.
func (l *Loader) download(ctx context.Context, url, path string) error {
	resp, err := retry.Get(ctx, l.client, url, l.retry)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}
	return l.store.Write(path, resp.Body)
}

func (l *Loader) phase(g *gamedef.CardGame, phase string) {
	slog.Debug("load phase", "game", g.Name, "phase", phase)
	if l.hooks.OnPhase != nil {
		l.hooks.OnPhase(g.Name, phase)
	}
}
