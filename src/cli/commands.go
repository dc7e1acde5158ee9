package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/deckfort/cardtable-engine-go/src/gamedef"
	"github.com/deckfort/cardtable-engine-go/src/http"
	"github.com/deckfort/cardtable-engine-go/src/loader"
	"github.com/deckfort/cardtable-engine-go/src/query"
	"github.com/deckfort/cardtable-engine-go/src/registry"
	"github.com/deckfort/cardtable-engine-go/src/storage"
	"github.com/deckfort/cardtable-engine-go/src/validation"
)

// CommandHandler handles CLI commands.
type CommandHandler struct {
	reg   *registry.Registry
	store *storage.Store
}

// NewCommandHandler creates a command handler over a games root store.
func NewCommandHandler(client http.HTTPClient, store *storage.Store) *CommandHandler {
	hooks := loader.Hooks{
		OnPhase: func(game, phase string) {
			slog.Info("loading", "game", game, "phase", phase)
		},
	}
	return &CommandHandler{
		reg:   registry.New(client, store, hooks),
		store: store,
	}
}

// List prints every installed game definition.
func (h *CommandHandler) List(ctx context.Context) error {
	if err := h.reg.Scan(); err != nil {
		return err
	}

	games := h.reg.Games()
	if len(games) == 0 {
		fmt.Println("no games installed")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCONFIG")
	for _, g := range games {
		fmt.Fprintf(w, "%s\t%s\n", g.Name, g.ConfigPath())
	}
	return w.Flush()
}

// Get downloads a new game from its auto-update URL and loads it.
func (h *CommandHandler) Get(ctx context.Context, config GetConfig) error {
	if config.URL == "" {
		return fmt.Errorf("get requires --url")
	}

	g, err := h.reg.Download(ctx, config.URL)
	if err != nil {
		return err
	}
	return h.report(g)
}

// Update re-fetches every remote source of an installed game.
func (h *CommandHandler) Update(ctx context.Context, name string) error {
	if err := h.requireGame(name); err != nil {
		return err
	}
	g, err := h.reg.Update(ctx, name)
	if err != nil {
		return err
	}
	return h.report(g)
}

// Cards loads a game and prints every card matching the filters.
func (h *CommandHandler) Cards(ctx context.Context, name string, config CardsConfig) error {
	if err := h.requireGame(name); err != nil {
		return err
	}
	g, err := h.reg.Select(ctx, name)
	if err != nil {
		return err
	}
	if g.Error != "" {
		slog.Warn("game loaded with errors, results may be partial", "game", g.Name, "error", g.Error)
	}

	cards := query.FilterCards(g, query.Filters{
		ID:               config.ID,
		Name:             config.Name,
		SetCode:          config.Set,
		StringProperties: config.Props,
		IntMinProperties: config.Mins,
		IntMaxProperties: config.Maxs,
		EnumProperties:   config.Enums,
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSET")
	for _, card := range cards {
		fmt.Fprintf(w, "%s\t%s\t%s\n", card.ID, card.Name, card.SetCode)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("%d of %d cards\n", len(cards), g.Cards.Len())
	return nil
}

// Delete removes an installed game and its cached data.
func (h *CommandHandler) Delete(ctx context.Context, name string) error {
	if err := h.requireGame(name); err != nil {
		return err
	}
	if err := h.reg.Delete(name); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", name)
	return nil
}

// Validate checks a game's configuration document against the schema.
func (h *CommandHandler) Validate(ctx context.Context, name string) error {
	if err := h.requireGame(name); err != nil {
		return err
	}
	g, ok := h.reg.Get(name)
	if !ok {
		return fmt.Errorf("unknown game: %s", name)
	}

	data, err := h.store.Read(g.ConfigPath())
	if err != nil {
		return err
	}
	if err := validation.ValidateConfigJSON(data); err != nil {
		return err
	}
	fmt.Printf("%s: configuration is valid\n", name)
	return nil
}

func (h *CommandHandler) requireGame(name string) error {
	if name == "" {
		return fmt.Errorf("a game name is required")
	}
	return h.reg.Scan()
}

func (h *CommandHandler) report(g *gamedef.CardGame) error {
	if g.Error != "" {
		// Errored games stay installed; the user decides whether to retry
		// with update or remove them with delete.
		return fmt.Errorf("game %s loaded with error: %s", g.Name, g.Error)
	}
	fmt.Printf("%s: %d cards, %d sets\n", g.Name, g.Cards.Len(), g.Sets.Len())
	return nil
}
