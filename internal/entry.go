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
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/history"
	"github.com/starford/jera/internal/report"
	"github.com/starford/jera/internal/server"
	"github.com/starford/jera/internal/sse"
	"github.com/starford/jera/internal/storage"
	"github.com/starford/jera/internal/updater"
	"github.com/starford/jera/internal/watcher"
)

// commitMessageEnv is the environment fallback for the release notes
// message, set by the CI workflow.
const commitMessageEnv = "JERA_COMMIT_MESSAGE"

func newApplication(opts ...Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger builds the structured logger: tinted console output for humans,
// JSON for CI log collectors.
func newLogger(cfg *Config) *slog.Logger {
	if cfg.App.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      cfg.App.LogLevel,
		TimeFormat: time.TimeOnly,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}

// buildUpdater wires the storage provider and updater from config.
func buildUpdater(cfg *Config, logger *slog.Logger) (*storage.FS, *updater.Updater, error) {
	store, err := storage.NewFS(cfg.Repo.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	u := updater.New(store, logger, cfg.Manifest.Path, cfg.DB.Files)
	return store, u, nil
}

// releaseMessage resolves the notes message: explicit option, then the
// environment, then the repository HEAD commit. Returns "" when no source
// yields one.
func (a *application) releaseMessage(logger *slog.Logger) string {
	if a.message != "" {
		return a.message
	}
	if msg := os.Getenv(commitMessageEnv); msg != "" {
		return msg
	}
	msg, err := history.HeadMessage(a.config.Repo.Path)
	if err != nil {
		logger.Debug("no HEAD commit message available", slog.String("error", err.Error()))
		return ""
	}
	return msg
}

// RunUpdate performs one manifest update: hash the tracked files and, if
// any digest differs from the manifest, rewrite it with fresh digests, the
// release message as notes, and a bumped patch version.
func RunUpdate(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg)

	_, u, err := buildUpdater(cfg, logger)
	if err != nil {
		return err
	}

	if app.dryRun {
		res, err := u.Preview(ctx)
		if err != nil {
			return err
		}
		if !res.Updated {
			logger.Info("dry run: manifest up to date", slog.String("version", res.OldVersion.String()))
			return nil
		}
		logger.Info("dry run: manifest would update",
			slog.String("old_version", res.OldVersion.String()),
			slog.String("new_version", res.NewVersion.String()),
			slog.Any("changed", res.Changed))
		return nil
	}

	msg := app.releaseMessage(logger)
	if msg == "" {
		return fmt.Errorf("release message required: pass --message, set %s, or run inside a git repository with commits", commitMessageEnv)
	}

	_, err = u.Update(ctx, msg)
	return err
}

// RunVerify recomputes the digests and fails when any tracked file is stale
// relative to the manifest. Nothing is written.
func RunVerify(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg)

	_, u, err := buildUpdater(cfg, logger)
	if err != nil {
		return err
	}

	stale, err := u.Verify(ctx)
	if err != nil {
		return err
	}
	if len(stale) > 0 {
		return fmt.Errorf("%w: %s", apperr.ErrStale, strings.Join(stale, ", "))
	}
	logger.Info("manifest current", slog.String("manifest", cfg.Manifest.Path))
	return nil
}

// RunCheck cross-checks the replacements file against the mod database and
// fails when any replacement entry is obsolete. Nothing is written.
func RunCheck(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg)

	replacementsPath, ok := cfg.DB.Files["replacements"]
	if !ok {
		return fmt.Errorf("check requires a %q entry in db.files", "replacements")
	}
	databasePath, ok := cfg.DB.Files["dictionary"]
	if !ok {
		return fmt.Errorf("check requires a %q entry in db.files", "dictionary")
	}

	store, err := storage.NewFS(cfg.Repo.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	obsolete, err := report.New(store, logger, replacementsPath, databasePath).Check(ctx)
	if err != nil {
		return err
	}
	if len(obsolete) == 0 {
		logger.Info("no obsolete replacements", slog.String("replacements", replacementsPath))
		return nil
	}

	names := make([]string, len(obsolete))
	for i, o := range obsolete {
		names[i] = o.SteamID
		logger.Warn("obsolete replacement",
			slog.String("steam_id", o.SteamID),
			slog.String("name", o.Name),
			slog.String("original_version", o.OriginalVersion),
			slog.String("replacement_version", o.ReplacementVersion))
	}
	return fmt.Errorf("%w: %s", apperr.ErrObsolete, strings.Join(names, ", "))
}

// RunWatch watches the tracked data files and re-runs the update whenever
// one changes, until interrupted.
func RunWatch(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg)

	store, u, err := buildUpdater(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	apply := func() {
		// Watch mode tolerates a missing message: the local tree may not
		// have a commit for the change yet.
		msg := app.releaseMessage(logger)
		if _, err := u.Update(gCtx, msg); err != nil {
			logger.Error("update failed", slog.String("error", err.Error()))
		}
	}

	g.Go(func() error {
		return watcher.Watch(gCtx, store.Root(), cfg.DB.TrackedPaths(), logger, apply)
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	return g.Wait()
}

// RunServe starts the read-only preview server. With the watch option it
// also runs the file watcher and pushes manifest.updated events to
// connected clients.
func RunServe(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg)

	store, u, err := buildUpdater(cfg, logger)
	if err != nil {
		return err
	}

	broker := sse.NewBroker()
	defer broker.Close()

	h := server.NewHandler(store, cfg.Manifest.Path, cfg.DB.Files)
	r := server.NewRouter(h, broker)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("preview server starting",
		slog.String("address", cfg.App.HTTP.Address()),
		slog.Bool("watch", app.watch))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	if app.watch {
		apply := func() {
			msg := app.releaseMessage(logger)
			res, err := u.Update(gCtx, msg)
			if err != nil {
				logger.Error("update failed", slog.String("error", err.Error()))
				return
			}
			if res.Updated {
				broker.PublishManifestUpdate(res.OldVersion.String(), res.NewVersion.String(), res.Changed)
			}
		}
		g.Go(func() error {
			return watcher.Watch(gCtx, store.Root(), cfg.DB.TrackedPaths(), logger, apply)
		})
	}

	g.Go(func() error {
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
			logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
		}

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("preview server stopped")
	return nil
}
