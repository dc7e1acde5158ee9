package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/deckfort/cardtable-engine-go/src/cli"
	httpClient "github.com/deckfort/cardtable-engine-go/src/http"
	"github.com/deckfort/cardtable-engine-go/src/storage"
	"github.com/lmittmann/tint"
)

var APP_VERSION = "unreleased"
var APP_LOC = "https://github.com/deckfort/cardtable-engine-go"

func main() {
	// Parse command line flags
	flags, err := cli.ParseFlags(os.Args, APP_VERSION)
	if err != nil {
		slog.Error("failed to parse flags", "error", err)
		os.Exit(1)
	}

	// Setup logging
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: flags.LogLevel,
	})))

	// Resolve the games root directory
	gamesDir := flags.GamesDir
	if gamesDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			slog.Error("failed to get current working directory", "error", err)
			os.Exit(1)
		}
		gamesDir = filepath.Join(cwd, "games")
	}

	store, err := storage.New(gamesDir)
	if err != nil {
		slog.Error("failed to set up games directory", "error", err)
		os.Exit(1)
	}

	// Setup HTTP client
	client := httpClient.NewRealHTTPClient(userAgent(), 0)

	// Create command handler
	handler := cli.NewCommandHandler(client, store)
	ctx := context.Background()

	// Execute command
	var cmdErr error
	switch flags.SubCommand {
	case cli.ListSubCommand:
		cmdErr = handler.List(ctx)
	case cli.GetSubCommand:
		cmdErr = handler.Get(ctx, flags.GetConfig)
	case cli.UpdateSubCommand:
		cmdErr = handler.Update(ctx, flags.GameName)
	case cli.CardsSubCommand:
		cmdErr = handler.Cards(ctx, flags.GameName, flags.CardsConfig)
	case cli.DeleteSubCommand:
		cmdErr = handler.Delete(ctx, flags.GameName)
	case cli.ValidateSubCommand:
		cmdErr = handler.Validate(ctx, flags.GameName)
	default:
		slog.Error("unknown subcommand", "subcommand", flags.SubCommand)
		os.Exit(1)
	}

	if cmdErr != nil {
		slog.Error("command failed", "command", flags.SubCommand, "error", cmdErr)
		os.Exit(1)
	}
}

func userAgent() string {
	return "cardtable-engine/" + APP_VERSION + " (" + APP_LOC + ")"
}
