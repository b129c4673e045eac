// Package internal wires configuration, engine, and the featlint run modes.
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

	"github.com/starford/featlint/internal/api"
	"github.com/starford/featlint/internal/engine"
	"github.com/starford/featlint/internal/history"
	"github.com/starford/featlint/internal/layout"
	"github.com/starford/featlint/internal/mcpserver"
	"github.com/starford/featlint/internal/metrics"
	"github.com/starford/featlint/internal/report"
	"github.com/starford/featlint/internal/rule"
	"github.com/starford/featlint/internal/vcs"
	"github.com/starford/featlint/internal/watch"
)

// NewLogger initializes the structured JSON logger on stderr and installs
// it as the default. The report itself goes to stdout; logs must not
// interleave with it.
func NewLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// ResolveRoot returns explicit when set, otherwise discovers the project
// root from the current directory via git.
func ResolveRoot(cfg *Config, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	return vcs.ProjectRoot(cwd, cfg.Vcs.RepositoryName)
}

// newEngine builds the scan engine from configuration. The returned
// cleanup closes the history database when one is configured.
func newEngine(cfg *Config, logger *slog.Logger) (*engine.Engine, func(), error) {
	if err := cfg.Layout.Validate(); err != nil {
		return nil, nil, fmt.Errorf("layout config: %w", err)
	}

	set := rule.Catalog(rule.Config{LocatorClass: cfg.Rules.LocatorClass})
	eng := engine.New(cfg.Layout.Segments(), set, logger)

	cleanup := func() {}
	if cfg.History.Path != "" {
		db, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("init history: %w", err)
		}
		eng.SetHistory(db)
		cleanup = func() { db.Close() }
	}
	return eng, cleanup, nil
}

// Lint runs one scan sequence for feature under root, writing the text
// report to out. Rule failures are informational; only discovery and I/O
// problems return an error.
func Lint(cfg *Config, feature, root string, out io.Writer) error {
	logger := NewLogger(cfg)

	eng, cleanup, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	return eng.Lint(root, feature, &report.Printer{W: out})
}

// Watch lints feature once, then re-scans subdirectories as their files
// change until ctx is cancelled or an interrupt arrives.
func Watch(ctx context.Context, cfg *Config, feature, root string, out io.Writer) error {
	logger := NewLogger(cfg)

	eng, cleanup, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := eng.Lint(root, feature, &report.Printer{W: out}); err != nil {
		return err
	}

	proj, err := layout.Resolve(root, feature, cfg.Layout.Segments())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return watch.Run(ctx, proj, eng.Rules(), out, logger)
}

// Run starts the HTTP API server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	if app.root == "" {
		return fmt.Errorf("project root is required")
	}

	cfg := app.config
	logger := NewLogger(cfg)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("project_root", app.root),
		slog.String("log_level", cfg.App.LogLevel.String()))

	eng, cleanup, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	apiRouter := api.NewRouter(eng, app.root, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

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

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
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

// ServeMCP starts the MCP server on stdin/stdout.
func ServeMCP(cfg *Config, root string) error {
	logger := NewLogger(cfg)

	eng, cleanup, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	return mcpserver.New(eng, root).ServeStdio()
}

// PrintHistory writes the most recent recorded runs to out.
func PrintHistory(cfg *Config, limit int, out io.Writer) error {
	NewLogger(cfg)

	if cfg.History.Path == "" {
		return fmt.Errorf("history: no database path configured")
	}
	db, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.RecentRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "# No recorded runs")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(out, "#%d  %s  %s  pass=%d fail=%d\n",
			run.ID,
			run.StartedAt.Format(time.RFC3339),
			run.Feature,
			run.Passed, run.Failed)
	}
	return nil
}

// RecordMetrics runs the session metrics recorder, reading FEATURE STAGE
// lines from in and writing CSV rows to outPath.
func RecordMetrics(ctx context.Context, cfg *Config, outPath string, in io.Reader) error {
	logger := NewLogger(cfg)

	if err := cfg.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rec := metrics.New(cfg.Metrics.ClientURL, cfg.Metrics.PackageName, logger)
	return rec.Run(ctx, in, outPath)
}
