// Package registry coordinates the installed game definitions: it
// enumerates games on storage, tracks the current selection, and dispatches
// download, update, select and delete operations to the loader. Loads for
// one game are serialized here; the loader itself does no locking.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/deckfort/cardtable-engine-go/src/gamedef"
	"github.com/deckfort/cardtable-engine-go/src/http"
	"github.com/deckfort/cardtable-engine-go/src/loader"
	"github.com/deckfort/cardtable-engine-go/src/retry"
	"github.com/deckfort/cardtable-engine-go/src/storage"
)

// Registry is the explicit coordinator handed to components that need
// catalog lookups or the current game. There is no process-wide instance.
type Registry struct {
	client http.HTTPClient
	store  *storage.Store
	loader *loader.Loader

	mu      sync.Mutex
	games   map[string]*gamedef.CardGame
	order   []string
	current string
	loading map[string]*sync.Mutex
}

// New creates a registry over the given games root store.
func New(client http.HTTPClient, store *storage.Store, hooks loader.Hooks) *Registry {
	return &Registry{
		client:  client,
		store:   store,
		loader:  loader.New(client, store, hooks),
		games:   make(map[string]*gamedef.CardGame),
		loading: make(map[string]*sync.Mutex),
	}
}

// Scan enumerates installed games: every subdirectory of the games root
// carrying a <dir>/<dir>.json configuration. Already-known definitions keep
// their loaded state.
func (r *Registry) Scan() error {
	dirs, err := r.store.Dirs(r.store.Root())
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range dirs {
		if _, known := r.games[name]; known {
			continue
		}
		g := gamedef.New(r.store.Root(), name, "")
		if !r.store.Exists(g.ConfigPath()) {
			slog.Debug("skipping directory without configuration", "dir", name)
			continue
		}
		r.games[name] = g
		r.order = append(r.order, name)
	}
	return nil
}

// Games returns every known definition in scan/download order.
func (r *Registry) Games() []*gamedef.CardGame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*gamedef.CardGame, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.games[name])
	}
	return out
}

// Get returns a definition by name.
func (r *Registry) Get(name string) (*gamedef.CardGame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[name]
	return g, ok
}

// Current returns the selected definition, or nil when none is selected.
func (r *Registry) Current() *gamedef.CardGame {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == "" {
		return nil
	}
	return r.games[r.current]
}

// Select makes a game current, loading it first if it has never loaded.
// An errored definition is still selectable; callers are expected to check
// its Error and offer deletion rather than proceed silently.
func (r *Registry) Select(ctx context.Context, name string) (*gamedef.CardGame, error) {
	g, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown game: %s", name)
	}

	if !g.HasLoaded {
		r.withLoadLock(name, func() {
			if !g.HasLoaded {
				r.loader.Load(ctx, g)
			}
		})
	}

	name = r.rekey(name, g)

	r.mu.Lock()
	r.current = name
	r.mu.Unlock()
	return g, nil
}

// rekey follows a definition whose config renamed it during a load, so the
// registry's index keeps matching the directory on disk.
func (r *Registry) rekey(name string, g *gamedef.CardGame) string {
	if g.Name == name {
		return name
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, name)
	r.games[g.Name] = g
	for i, n := range r.order {
		if n == name {
			r.order[i] = g.Name
			break
		}
	}
	if r.current == name {
		r.current = g.Name
	}
	slog.Info("game renamed by its configuration", "from", name, "to", g.Name)
	return g.Name
}

// Download installs a new game from its auto-update URL: fetch the
// configuration, name the game after it, persist it, then run a full load.
func (r *Registry) Download(ctx context.Context, url string) (*gamedef.CardGame, error) {
	resp, err := retry.Get(ctx, r.client, url, retry.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to download game configuration: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	var probe struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(resp.Body, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse game configuration: %w", err)
	}
	if probe.Name == "" {
		return nil, fmt.Errorf("game configuration from %s has no name", url)
	}

	g := gamedef.New(r.store.Root(), probe.Name, url)
	if err := r.store.Write(g.ConfigPath(), resp.Body); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if _, known := r.games[probe.Name]; !known {
		r.order = append(r.order, probe.Name)
	}
	r.games[probe.Name] = g
	r.current = probe.Name
	r.mu.Unlock()

	r.withLoadLock(probe.Name, func() {
		r.loader.Load(ctx, g)
	})
	r.rekey(probe.Name, g)
	return g, nil
}

// Update re-fetches every remote source of a game, bypassing its
// auto-update policy. This is the user-initiated retry path.
func (r *Registry) Update(ctx context.Context, name string) (*gamedef.CardGame, error) {
	g, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown game: %s", name)
	}
	r.withLoadLock(name, func() {
		r.loader.Update(ctx, g)
	})
	r.rekey(name, g)
	return g, nil
}

// LoadSetCards runs the deferred per-set card download for one set of a
// game.
func (r *Registry) LoadSetCards(ctx context.Context, name, setCode string) error {
	g, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("unknown game: %s", name)
	}
	set, ok := g.Sets.Get(setCode)
	if !ok {
		return fmt.Errorf("game %s has no set %s", name, setCode)
	}
	var err error
	r.withLoadLock(name, func() {
		err = r.loader.LoadSetCards(ctx, g, set)
	})
	return err
}

// Delete removes a game's directory and forgets its definition.
func (r *Registry) Delete(name string) error {
	g, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("unknown game: %s", name)
	}
	if err := r.store.Delete(g.Directory()); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.current == name {
		r.current = ""
	}
	return nil
}

// withLoadLock serializes load activity per game name.
func (r *Registry) withLoadLock(name string, fn func()) {
	r.mu.Lock()
	lock := r.loading[name]
	if lock == nil {
		lock = &sync.Mutex{}
		r.loading[name] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	fn()
}
