package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"proja/internal/board"
	"proja/internal/config"
	"proja/internal/locale"
	"proja/internal/notify"
	"proja/internal/seed"
	"proja/internal/server"
	"proja/internal/storage/sqlite"
)

func main() {
	cfg, err := config.Load(".env", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.LogDev)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("proja stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("server stopped")
	_ = logger.Sync()
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func ginMode(dev bool) string {
	if dev {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}

// defaultAuthor prefers the configured author and falls back to the catalog's.
func defaultAuthor(cfg config.Config, catalog *locale.Catalog) string {
	if author := strings.TrimSpace(cfg.DefaultAuthor); author != "" {
		return author
	}
	return catalog.DefaultAuthor()
}

func run(cfg config.Config, logger *zap.Logger) error {
	gin.SetMode(ginMode(cfg.LogDev))

	bundle, err := locale.NewBundle()
	if err != nil {
		return err
	}
	catalog := locale.New(bundle, cfg.Lang)

	var store *sqlite.Store
	if cfg.DBPath != "" {
		store, err = sqlite.Open(cfg.DBPath, logger)
		if err != nil {
			return fmt.Errorf("open catalog: %w", err)
		}
		defer store.Close()
	}

	initial, err := loadSeed(context.Background(), cfg, store)
	if err != nil {
		return err
	}

	feed := notify.NewFeed(cfg.FeedSize)
	notifier := notify.Multi{feed, notify.NewLogger(logger)}
	deps := server.Deps{
		Feed:      feed,
		Bundle:    bundle,
		Logger:    logger,
		Lang:      catalog.Lang(),
		StaticDir: cfg.StaticDir,
	}
	if store != nil {
		notifier = append(notifier, notify.NewJournal(store, logger, 2*time.Second))
		deps.Activity = store
		deps.Catalog = store
	}

	b, err := board.New(initial.Snapshot(),
		board.WithNotifier(notifier),
		board.WithLabeler(catalog),
		board.WithDefaultAuthor(defaultAuthor(cfg, catalog)),
	)
	if err != nil {
		return fmt.Errorf("build board: %w", err)
	}
	deps.Board = b
	logger.Info("board ready",
		zap.Int("projects", len(initial.Projects)),
		zap.Int("tasks", len(initial.Tasks)),
		zap.String("lang", catalog.Lang()),
	)

	srv := server.New(deps)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server stopped unexpectedly: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// loadSeed picks the starting board: the catalog when it has one, otherwise the
// seed file or the built-in demo board, which is then imported into an empty catalog.
func loadSeed(ctx context.Context, cfg config.Config, store *sqlite.Store) (seed.Board, error) {
	if store != nil {
		empty, err := store.IsEmpty(ctx)
		if err != nil {
			return seed.Board{}, err
		}
		if !empty {
			return store.LoadBoard(ctx)
		}
	}

	var (
		b   seed.Board
		err error
	)
	if cfg.SeedFile != "" {
		b, err = seed.LoadFile(cfg.SeedFile)
	} else {
		b, err = seed.Default()
	}
	if err != nil {
		return seed.Board{}, err
	}

	if store != nil {
		if err := store.ImportBoard(ctx, b); err != nil {
			return seed.Board{}, err
		}
	}
	return b, nil
}
