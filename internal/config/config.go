// Package config loads service settings from .env, the environment and flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the board service.
type Config struct {
	Addr          string `env:"PROJA_ADDR" envDefault:":8080"`
	DBPath        string `env:"PROJA_DB_PATH" envDefault:"data/proja.db"`
	SeedFile      string `env:"PROJA_SEED_FILE"`
	StaticDir     string `env:"PROJA_STATIC_DIR" envDefault:"web/dist"`
	Lang          string `env:"PROJA_LANG" envDefault:"en"`
	DefaultAuthor string `env:"PROJA_DEFAULT_AUTHOR"`
	FeedSize      int    `env:"PROJA_FEED_SIZE" envDefault:"50"`
	LogDev        bool   `env:"PROJA_LOG_DEV" envDefault:"false"`
}

// Load reads dotenvPath (when present), then the environment, then args.
// Flags win over environment variables.
func Load(dotenvPath string, args []string) (Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	flags := flag.NewFlagSet("proja", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flags.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to sqlite catalog; empty disables it")
	flags.StringVar(&cfg.SeedFile, "seed", cfg.SeedFile, "YAML board seed; empty uses the built-in demo board")
	flags.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "Directory with built frontend")
	flags.StringVar(&cfg.Lang, "lang", cfg.Lang, "Language of labels and notifications (en, ru)")
	flags.StringVar(&cfg.DefaultAuthor, "author", cfg.DefaultAuthor, "Author of comments posted without one; empty uses the localized default")
	flags.IntVar(&cfg.FeedSize, "feed-size", cfg.FeedSize, "Number of recent notifications kept in memory")
	flags.BoolVar(&cfg.LogDev, "log-dev", cfg.LogDev, "Use human-friendly development logging")
	if err := flags.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	if cfg.FeedSize <= 0 {
		return Config{}, fmt.Errorf("feed size must be positive, got %d", cfg.FeedSize)
	}
	return cfg, nil
}
