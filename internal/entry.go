// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/linkvault/internal/api"
	"github.com/starford/linkvault/internal/auth"
	"github.com/starford/linkvault/internal/digest"
	"github.com/starford/linkvault/internal/document"
	"github.com/starford/linkvault/internal/mcpserver"
	"github.com/starford/linkvault/internal/metrics"
	"github.com/starford/linkvault/internal/sse"
	"github.com/starford/linkvault/internal/storage"
	"github.com/starford/linkvault/internal/vault"
	"github.com/starford/linkvault/internal/watch"
)

var errConfigRequired = errors.New("config is required")

// Session is an opened vault together with the backend it persists into.
type Session struct {
	Vault  *vault.Vault
	Logger *slog.Logger
	store  storage.Provider
}

// Close releases the storage backend.
func (s *Session) Close() error {
	return s.store.Close()
}

// Open builds the logger, storage backend, password gate and vault described
// by opts and loads persisted state. notifiers receive every vault change.
func Open(ctx context.Context, opts []Option, notifiers ...vault.Notifier) (*Session, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	cfg := app.config

	out := app.logOutput
	if out == nil {
		out = os.Stdout
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("password_hasher", cfg.Password.Hasher),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if cfg.Storage.Driver == storage.DriverFS {
		if err := os.MkdirAll(cfg.Storage.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	store, err := storage.Open(cfg.Storage.Options(), logger)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	hasher, err := digest.ForName(cfg.Password.Hasher, cfg.Password.BcryptCost)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	docs := document.New(store,
		document.WithKey(cfg.Storage.DocumentKey),
		document.WithLogger(logger))
	gate := auth.New(store,
		auth.WithKey(cfg.Storage.PasswordKey),
		auth.WithHasher(hasher),
		auth.WithLogger(logger))
	v := vault.New(docs, gate,
		vault.WithNotifier(vault.Fanout(notifiers...)),
		vault.WithLogger(logger))

	if err := v.Load(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load vault: %w", err)
	}

	sections, links := docs.Stats()
	logger.Info("Vault loaded",
		slog.Int("sections", sections),
		slog.Int("links", links),
		slog.String("auth", v.AuthState().String()))

	return &Session{Vault: v, Logger: logger, store: store}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// SSE broker.
	broker := sse.NewBroker(cfg.Events.Throttle)
	defer broker.Close()

	sess, err := Open(ctx, opts, vault.NotifierFunc(func(c vault.Change) {
		broker.PublishChange(c.Kind, c.ID)
	}))
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()
	logger := sess.Logger

	var apiOpts []api.Option
	if rl := cfg.Auth.PasswordRate; rl.Enabled {
		apiOpts = append(apiOpts, api.WithPasswordLimit(rl.Interval, rl.Burst))
	}
	apiRouter := api.NewRouter(sess.Vault, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, apiOpts...)

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
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Reload when another process edits the data directory.
	if cfg.Watch.Enabled && cfg.Storage.Watchable() {
		keys := []string{cfg.Storage.DocumentKey, cfg.Storage.PasswordKey}
		g.Go(func() error {
			if err := watch.Watch(gCtx, cfg.Storage.Path, keys, sess.Vault, cfg.Watch.Debounce, logger); err != nil {
				logger.Warn("watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

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

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// ServeMCP exposes the vault over MCP on stdin/stdout until the client
// disconnects.
func ServeMCP(ctx context.Context, opts ...Option) error {
	opts = append(opts, WithLogOutput(os.Stderr))
	sess, err := Open(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	sess.Logger.Info("MCP server starting on stdio")
	return mcpserver.New(sess.Vault).ServeStdio()
}
