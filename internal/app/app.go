package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	inboundhttp "github.com/sophialabs/apiaudit/internal/infrastructure/inbound/http"
	"github.com/sophialabs/apiaudit/internal/infrastructure/outbound/filesystem"
	"github.com/sophialabs/apiaudit/internal/infrastructure/outbound/logging"
	"github.com/sophialabs/apiaudit/internal/infrastructure/outbound/specsource"
	"github.com/sophialabs/apiaudit/internal/infrastructure/wiring"
)

// App is the thin lifecycle manager that delegates dependency construction to
// wiring.Container. In record mode it runs the recording proxy in front of
// the target service and finalizes the audit on shutdown; in report mode it
// regenerates the report from artifacts already on disk.
type App struct {
	cfg        Config
	container  *wiring.Container
	httpServer *http.Server
}

// New constructs the application.
func New(cfg Config) (*App, error) {
	logger := logging.New(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	store := filesystem.NewOSStore()

	var source specsource.Source
	switch {
	case cfg.SpecURL != "":
		source = specsource.NewHTTPSource(cfg.SpecURL, nil, logger)
	case cfg.SpecFile != "":
		source = specsource.NewFileSource(cfg.SpecFile, store)
	default:
		source = nil
	}

	container, err := wiring.New(wiring.Params{
		ArtifactDir: cfg.ArtifactDir,
		Source:      source,
		Exclude:     cfg.Exclude,
		Logger:      logger,
		Store:       store,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to wire infrastructure: %w", err)
	}

	a := &App{
		cfg:       cfg,
		container: container,
	}

	if cfg.TargetURL != "" {
		target, err := url.Parse(cfg.TargetURL)
		if err != nil {
			return nil, fmt.Errorf("invalid target URL %q: %w", cfg.TargetURL, err)
		}
		proxy := inboundhttp.NewProxyServer(target, container.Auditor(), container.Recorder(), logger)
		a.httpServer = &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      proxy,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		}
	}

	return a, nil
}

// Run executes the recording lifecycle: prepare artifacts, snapshot the
// specification, proxy traffic until SIGINT/SIGTERM or context cancellation,
// then tear down and write the report.
func (a *App) Run(ctx context.Context) error {
	if a.httpServer == nil {
		return fmt.Errorf("no target service configured; record mode requires one")
	}

	logger := a.container.Logger()
	auditor := a.container.Auditor()

	auditor.Prepare(ctx)
	if err := auditor.Record(ctx); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher := a.setupWatcher()
	if watcher != nil {
		defer watcher.Stop()
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting audit proxy", "addr", a.httpServer.Addr, "target", a.cfg.TargetURL)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down audit proxy...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	if err := auditor.Teardown(context.Background()); err != nil {
		return err
	}

	logger.Info("audit proxy stopped")
	return nil
}

// Report regenerates the report from the artifacts already on disk.
func (a *App) Report(ctx context.Context) error {
	return a.container.GenerateReportUseCase().Execute(ctx, a.container.Auditor().RunID())
}

// setupWatcher re-snapshots the specification when a file source changes
// during a long recording session. Watching is best effort.
func (a *App) setupWatcher() *filesystem.Watcher {
	if a.cfg.SpecFile == "" {
		return nil
	}

	logger := a.container.Logger()
	auditor := a.container.Auditor()

	watcher, err := filesystem.NewWatcher(a.cfg.SpecFile, a.cfg.WatcherDebounce, logger, func() {
		if err := auditor.Record(context.Background()); err != nil {
			logger.Error("specification reload failed", "error", err)
			return
		}
		logger.Info("specification snapshot refreshed")
	})
	if err != nil {
		logger.Warn("file watcher not available", "error", err)
		return nil
	}

	watcher.Start()
	logger.Info("file watcher started", "spec", a.cfg.SpecFile)
	return watcher
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
