package cmd

import (
	stdErrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/lepinkainen/bookjournal/internal/cache"
	"github.com/lepinkainen/bookjournal/internal/config"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"
)

// stdout is where commands print their results
var stdout io.Writer = os.Stdout

// CLI represents the complete command structure for the bookjournal application
type CLI struct {
	// Global flags
	Config string `help:"Path to config file (defaults to ./config.yaml)" type:"path"`
	Strict bool   `help:"Report unknown book IDs and invalid finished-field updates as errors"`
	Debug  bool   `help:"Enable debug logging"`

	List   ListCmd   `cmd:"" help:"List books in the journal"`
	Add    AddCmd    `cmd:"" help:"Add a book to the to-be-read list"`
	Edit   EditCmd   `cmd:"" help:"Edit title, author or read level of a book"`
	Finish FinishCmd `cmd:"" help:"Mark a book as finished"`
	TBR    TBRCmd    `cmd:"" name:"tbr" help:"Move a book back to the to-be-read list"`
	Rate   RateCmd   `cmd:"" help:"Set rating and notes of a finished book"`
	Remove RemoveCmd `cmd:"" help:"Remove a book from the journal"`
	Enrich EnrichCmd `cmd:"" help:"Look up covers for books that have none"`
	Import ImportCmd `cmd:"" help:"Import books from a CSV file or exported notes"`
	Export ExportCmd `cmd:"" help:"Export the journal to JSON, YAML or Markdown"`
	Serve  ServeCmd  `cmd:"" help:"Run the remote key-value endpoint backed by SQLite"`
	Cache  CacheCmd  `cmd:"" help:"Manage the cover lookup cache"`
}

// CacheCmd groups the cache subcommands
type CacheCmd struct {
	Clear cache.ClearCacheCmd `cmd:"" help:"Remove cached cover lookups"`
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	opts := []kong.Option{
		kong.Name("bookjournal"),
		kong.Description("A personal reading journal with remote sync and cover lookup."),
		kong.UsageOnError(),
	}
	return kong.New(cli, append(opts, options...)...)
}

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI

	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	initLogging(cli.Debug)

	if err := initConfig(cli.Config); err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	applyFlags(&cli)

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// initConfig layers defaults, config file, .env and environment variables into viper
func initConfig(configFile string) error {
	config.SetDefaults()

	// A missing .env is normal; anything else is worth a warning
	if err := godotenv.Load(); err != nil && !stdErrors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	viper.SetEnvPrefix("BOOKJOURNAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && stdErrors.As(err, &notFound) {
			slog.Debug("Config file not found, using defaults and environment")
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	slog.Debug("Loaded config file", "path", viper.ConfigFileUsed())
	return nil
}

// applyFlags lets global flags override configuration
func applyFlags(cli *CLI) {
	if cli.Strict {
		viper.Set("journal.strict", true)
	}
}

func initLogging(debug bool) {
	level := parseLogLevel(os.Getenv("BOOKJOURNAL_LOG_LEVEL"))
	if debug {
		level = slog.LevelDebug
	}

	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}

func parseLogLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
