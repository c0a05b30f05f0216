// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"bufio"
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

	"github.com/starford/tagscan/internal/api"
	"github.com/starford/tagscan/internal/mcpserver"
	"github.com/starford/tagscan/internal/sse"
	"github.com/starford/tagscan/internal/tagservice"
	"github.com/starford/tagscan/internal/vault"
	"github.com/starford/tagscan/internal/watch"
)

// env is what every mode needs once options are applied.
type env struct {
	cfg    *Config
	logger *slog.Logger
	svc    *tagservice.Service
	stdout io.Writer
}

func newEnv(opts []Option) (*application, *env, error) {
	app := &application{
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		version: "dev",
	}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}
	cfg := app.config
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	// Stdout carries tags, so logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(app.stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	root, err := vault.Resolve(cfg.Vault.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve vault: %w", err)
	}

	scanner := app.scanner
	if scanner == nil {
		scanner, err = cfg.Inline.Scanner(cfg.Scan.Extension)
		if err != nil {
			return nil, nil, err
		}
	}

	logger.Debug("Configuration loaded",
		slog.String("vault_path", root),
		slog.String("extension", cfg.Scan.Extension),
		slog.Int("workers", cfg.Scan.Workers),
		slog.Bool("inline", cfg.Inline.Enabled),
		slog.String("inline_engine", cfg.Inline.Engine),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc := tagservice.New(root,
		tagservice.WithExtension(cfg.Scan.Extension),
		tagservice.WithWorkers(cfg.Scan.Workers),
		tagservice.WithScanner(scanner),
		tagservice.WithLogger(logger),
	)
	return app, &env{cfg: cfg, logger: logger, svc: svc, stdout: app.stdout}, nil
}

// Run collects the vault's tags and prints them one per line. With watching
// enabled it then keeps printing newly seen tags until ctx is cancelled or a
// termination signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app, rt, err := newEnv(opts)
	if err != nil {
		return err
	}

	set, err := rt.svc.Raw(ctx, rt.cfg.Inline.Enabled)
	if err != nil {
		return err
	}
	seen := set.Normalized()

	out := bufio.NewWriter(rt.stdout)
	for _, t := range seen.Slice() {
		fmt.Fprintln(out, t)
	}
	if err := out.Flush(); err != nil {
		return fmt.Errorf("write tags: %w", err)
	}

	if !app.watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return watch.Run(ctx, rt.svc.Root(), rt.svc.Extension(), seen, rt.logger, func(tag, _ string) {
		fmt.Fprintln(out, tag)
		if err := out.Flush(); err != nil {
			rt.logger.Warn("write tag failed", slog.String("error", err.Error()))
		}
	})
}

// Serve runs the HTTP API with live tag events until ctx is cancelled or a
// termination signal arrives.
func Serve(ctx context.Context, opts ...Option) error {
	_, rt, err := newEnv(opts)
	if err != nil {
		return err
	}
	cfg, logger := rt.cfg, rt.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", rt.svc.Root()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	apiRouter := api.NewRouter(rt.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, cfg.Inline.Enabled)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
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

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Seed the watcher with the current tags so only new ones are announced.
	seed, err := rt.svc.Raw(ctx, false)
	if err != nil {
		return err
	}
	seen := seed.Normalized()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watch.Run(gCtx, rt.svc.Root(), rt.svc.Extension(), seen, logger, broker.PublishTag)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// SSE handlers block until their clients go away; close the broker
		// first so Shutdown does not wait on them.
		broker.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group's context so the watcher stops with the
// server.
var errShutdown = errors.New("shutdown")

// ServeMCP serves the list_tags tool over stdio.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, rt, err := newEnv(opts)
	if err != nil {
		return err
	}
	rt.logger.Info("MCP server starting", slog.String("vault_path", rt.svc.Root()))

	srv := mcpserver.New(rt.svc, app.version, rt.cfg.Inline.Enabled)
	if err := srv.Listen(ctx, app.stdin, rt.stdout); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// Tags is the one-shot pipeline without printing, for callers embedding the
// scanner.
func Tags(ctx context.Context, opts ...Option) ([]string, error) {
	_, rt, err := newEnv(opts)
	if err != nil {
		return nil, err
	}
	set, err := rt.svc.Raw(ctx, rt.cfg.Inline.Enabled)
	if err != nil {
		return nil, err
	}
	return set.Normalized().Slice(), nil
}
