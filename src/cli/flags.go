package cli

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"
)

// SubCommand represents CLI subcommands.
type SubCommand string

const (
	ListSubCommand     SubCommand = "list"
	GetSubCommand      SubCommand = "get"
	UpdateSubCommand   SubCommand = "update"
	CardsSubCommand    SubCommand = "cards"
	DeleteSubCommand   SubCommand = "delete"
	ValidateSubCommand SubCommand = "validate"
)

var KnownSubCommands = []SubCommand{
	ListSubCommand, GetSubCommand, UpdateSubCommand,
	CardsSubCommand, DeleteSubCommand, ValidateSubCommand,
}

// Flags holds all CLI flags and configuration.
type Flags struct {
	SubCommand  SubCommand
	LogLevel    slog.Level
	GamesDir    string
	GameName    string
	GetConfig   GetConfig
	CardsConfig CardsConfig
	ShowHelp    bool
	ShowVersion bool
}

// GetConfig configures the get subcommand.
type GetConfig struct {
	URL string
}

// CardsConfig configures the cards subcommand: one card search.
type CardsConfig struct {
	ID    string
	Name  string
	Set   string
	Props map[string]string
	Mins  map[string]int
	Maxs  map[string]int
	Enums map[string]int
}

// ParseFlags parses command line arguments and returns configuration.
func ParseFlags(args []string, version string) (*Flags, error) {
	flags := &Flags{}

	defaults := flag.NewFlagSet("cardtable", flag.ContinueOnError)
	defaults.BoolVarP(&flags.ShowHelp, "help", "h", false, "print this help and exit")
	defaults.BoolVarP(&flags.ShowVersion, "version", "V", false, "print program version and exit")

	var logLevelStr string
	defaults.StringVar(&logLevelStr, "log-level", "info", "verbosity level. one of: debug, info, warn, error")
	defaults.StringVar(&flags.GamesDir, "games-dir", "", "directory game definitions live under (default: ./games)")

	var subcommand string
	if len(args) > 1 {
		subcommand = args[1]
	}

	var flagset *flag.FlagSet
	getConfig := GetConfig{}
	var propPairs, minPairs, maxPairs, enumPairs []string

	switch subcommand {
	case string(GetSubCommand):
		flagset = flag.NewFlagSet("get", flag.ExitOnError)
		flagset.StringVar(&getConfig.URL, "url", "", "auto-update URL of the game to download")
		flagset.AddFlagSet(defaults)

	case string(CardsSubCommand):
		flagset = flag.NewFlagSet("cards", flag.ExitOnError)
		flagset.StringVar(&flags.CardsConfig.ID, "id", "", "card id substring filter")
		flagset.StringVar(&flags.CardsConfig.Name, "name", "", "card name substring filter")
		flagset.StringVar(&flags.CardsConfig.Set, "set", "", "set code substring filter")
		flagset.StringArrayVar(&propPairs, "prop", nil, "string property filter, property=substring")
		flagset.StringArrayVar(&minPairs, "min", nil, "integer property lower bound, property=n")
		flagset.StringArrayVar(&maxPairs, "max", nil, "integer property upper bound, property=n")
		flagset.StringArrayVar(&enumPairs, "enum", nil, "enum property filter, property=value")
		flagset.AddFlagSet(defaults)

	case string(ListSubCommand), string(UpdateSubCommand),
		string(DeleteSubCommand), string(ValidateSubCommand):
		flagset = flag.NewFlagSet(subcommand, flag.ExitOnError)
		flagset.AddFlagSet(defaults)

	default:
		flagset = defaults
	}

	if err := flagset.Parse(args[1:]); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if flags.ShowHelp {
		printUsage(flagset)
		os.Exit(0)
	}
	if flags.ShowVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if subcommand == "" || !slices.Contains(KnownSubCommands, SubCommand(subcommand)) {
		printUsage(flagset)
		return nil, fmt.Errorf("unknown subcommand: %s", subcommand)
	}

	// Positional game name after the subcommand.
	if rest := flagset.Args(); len(rest) > 1 {
		flags.GameName = rest[1]
	}

	logLevelMap := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	logLevel, exists := logLevelMap[logLevelStr]
	if !exists {
		return nil, fmt.Errorf("unknown log level: %s", logLevelStr)
	}

	var err error
	if flags.CardsConfig.Props, err = parseStringPairs(propPairs); err != nil {
		return nil, err
	}
	if flags.CardsConfig.Mins, err = parseIntPairs(minPairs); err != nil {
		return nil, err
	}
	if flags.CardsConfig.Maxs, err = parseIntPairs(maxPairs); err != nil {
		return nil, err
	}
	if flags.CardsConfig.Enums, err = parseIntPairs(enumPairs); err != nil {
		return nil, err
	}

	flags.SubCommand = SubCommand(subcommand)
	flags.LogLevel = logLevel
	flags.GetConfig = getConfig

	return flags, nil
}

func parseStringPairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("expected property=value, got %q", pair)
		}
		out[key] = value
	}
	return out, nil
}

func parseIntPairs(pairs []string) (map[string]int, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]int, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("expected property=number, got %q", pair)
		}
		// Accept both decimal and 0x-prefixed bitmask values.
		n, err := strconv.ParseInt(value, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("expected integer value in %q: %w", pair, err)
		}
		out[key] = int(n)
	}
	return out, nil
}

// printUsage prints usage information.
func printUsage(flagset *flag.FlagSet) {
	fmt.Println("usage: cardtable <list|get|update|cards|delete|validate> [game] [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  list       List installed game definitions")
	fmt.Println("  get        Download and load a game from its auto-update URL")
	fmt.Println("  update     Re-fetch every remote source of an installed game")
	fmt.Println("  cards      Load a game and print cards matching the given filters")
	fmt.Println("  delete     Remove an installed game and its cached data")
	fmt.Println("  validate   Check a game's configuration document")
	fmt.Println()
	fmt.Println("Options:")
	flagset.PrintDefaults()
}
