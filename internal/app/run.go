package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aqdash/internal/config"
	"aqdash/internal/datastore"
	"aqdash/internal/httpapi"
	"aqdash/internal/metrics"
	"aqdash/internal/modules/airquality"
	"aqdash/internal/modules/airquality/controller"
	"aqdash/internal/modules/airquality/views"
)

// NewRouter assembles the HTTP surface around a dataset source.
func NewRouter(source controller.DatasetSource, m *metrics.Metrics) chi.Router {
	var hm httpapi.Metrics
	if m != nil {
		hm = m
	}
	mux := httpapi.NewMux(source, hm)
	airquality.RegisterFeature(mux, source)
	return mux
}

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"dataPath", cfg.DataPath,
		"watchData", cfg.WatchData,
		"readTimeout", cfg.ReadTimeout,
		"writeTimeout", cfg.WriteTimeout,
		"shutdownTimeout", cfg.ShutdownTimeout,
	)

	if err := views.LoadTemplates(); err != nil {
		return err
	}

	m := metrics.New()
	cache := datastore.NewCache(
		datastore.WithLogger(slog.Default()),
		datastore.WithObserver(m),
	)
	source := cache.Source(cfg.DataPath)

	// A dataset that cannot be loaded at startup is fatal.
	ds, err := source.Dataset(ctx)
	if err != nil {
		return err
	}
	slog.Info("dataset loaded", "path", cfg.DataPath, "rows", ds.Len(), "cities", len(ds.Cities()))

	if cfg.WatchData {
		watcher, err := datastore.NewWatcher(cfg.DataPath, cache, slog.Default())
		if err != nil {
			slog.Warn("data file watcher unavailable (continuing without reload)", "error", err)
		} else {
			go func() {
				if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					slog.Error("data file watcher stopped", "error", err)
				}
			}()
		}
	}

	srv := httpapi.NewServer(cfg, NewRouter(source, m))

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
