// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/postframe/internal/api"
	"github.com/starford/postframe/internal/docservice"
	"github.com/starford/postframe/internal/editor"
	"github.com/starford/postframe/internal/imagesrc"
	"github.com/starford/postframe/internal/index"
	"github.com/starford/postframe/internal/masks"
	"github.com/starford/postframe/internal/mcpserver"
	"github.com/starford/postframe/internal/sse"
	"github.com/starford/postframe/internal/storage"
)

// backend holds the components shared by the HTTP and MCP servers.
type backend struct {
	logger  *slog.Logger
	store   *storage.FS
	db      *index.DB
	docs    *docservice.Service
	fetcher *imagesrc.Fetcher
	masks   *masks.Catalogue
}

func (b *backend) Close() error {
	return b.db.Close()
}

// editorOptions returns the options every editing session is built with.
func (b *backend) editorOptions(cfg *Config) []editor.Option {
	return []editor.Option{
		editor.WithLogger(b.logger),
		editor.WithLoader(b.fetcher),
		editor.WithCatalogue(b.masks),
		editor.WithHistoryLimit(cfg.Editor.HistoryLimit),
		editor.WithCanvas(cfg.Editor.Canvas.Width, cfg.Editor.Canvas.Height),
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func openBackend(app *application) (*backend, error) {
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Int("history_limit", cfg.Editor.HistoryLimit),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure document directory exists.
	if err := os.MkdirAll(cfg.Storage.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	// Run initial sync.
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	fetcher := imagesrc.NewFetcher(
		imagesrc.WithTimeout(cfg.Editor.FetchTimeout),
		imagesrc.WithMaxBytes(cfg.Editor.MaxImageBytes),
		imagesrc.WithMaxDimension(cfg.Editor.MaxImageDimension),
	)

	return &backend{
		logger:  logger,
		store:   store,
		db:      db,
		docs:    docservice.NewService(store, db),
		fetcher: fetcher,
		masks:   masks.NewCatalogue(),
	}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	b, err := openBackend(app)
	if err != nil {
		return err
	}
	defer b.Close()
	logger := b.logger

	// SSE broker.
	broker := sse.NewBroker(cfg.Events.CatalogueThrottle)
	defer broker.Close()

	ws := api.NewWorkspace(cfg.Editor.MaxSessions, func(sessionID string, c editor.Change) {
		broker.PublishSessionChange(sessionID, c)
	}, b.editorOptions(cfg)...)

	h := api.NewHandler(ws, b.docs, b.masks, broker)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, _, err := b.docs.List(r.Context(), 1, 0, ""); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start document watcher with SSE callback.
	g.Go(func() error {
		if err := index.Watch(gCtx, b.db, b.store, cfg.Storage.Path, logger, func(kind, id string) {
			broker.PublishDocumentEvent(kind, id)
		}); err != nil {
			logger.Error("document watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		// Stops the watcher.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

// RunMCP serves one editing session over MCP on stdin/stdout until the
// client disconnects.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}

	b, err := openBackend(app)
	if err != nil {
		return err
	}
	defer b.Close()

	srv := mcpserver.New(b.docs, b.fetcher, b.editorOptions(app.config)...)
	b.logger.Info("Starting MCP stdio server")
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// ListMasks writes the mask catalogue ids, one per line.
func ListMasks(w io.Writer) error {
	for _, id := range masks.NewCatalogue().IDs() {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return err
		}
	}
	return nil
}
