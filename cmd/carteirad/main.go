// Command carteirad serves member card and registration form generation
// over HTTP.
//
// Configuration comes from an optional file (-config), an optional .env file
// and CARTEIRA_ prefixed environment variables, e.g.:
//
//	CARTEIRA_SERVER_ADDR=:8080
//	CARTEIRA_PHOTO_CACHE=redis CARTEIRA_REDIS_HOST=redis
//	CARTEIRA_CHURCH_NOME_IGREJA="Igreja Evangélica Central"
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lvillar/carteira/config"
	"github.com/lvillar/carteira/docgen"
	"github.com/lvillar/carteira/httpapi"
	"github.com/lvillar/carteira/logging"
	"github.com/lvillar/carteira/photo"
	"github.com/lvillar/carteira/qrimage"
)

var version = "dev"

func main() {
	configFile := flag.String("config", "", "optional config file (yaml, json or toml)")
	dotEnv := flag.String("env", ".env", "optional .env file")
	flag.Parse()

	cfg, err := config.Load(*configFile, *dotEnv)
	if err != nil {
		slog.Error("loading configuration", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cache, closeCache, err := photoCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	resolver := photo.NewResolver(append(cfg.ResolverOptions(),
		photo.WithCache(cache, cfg.Photo.CacheTTL),
		photo.WithLogger(log),
	)...)
	svc := docgen.New(
		docgen.WithPhotoResolver(resolver),
		docgen.WithSettings(cfg.Church),
		docgen.WithQR(cfg.QR.Size, qrimage.ParseLevel(cfg.QR.Level)),
		docgen.WithMetrics(docgen.NewMetrics(reg)),
		docgen.WithLogger(log),
	)
	handler := httpapi.New(svc,
		httpapi.WithFetcher(resolver),
		httpapi.WithExportDefaults(cfg.ExportOptions()...),
		httpapi.WithMetrics(reg, httpapi.NewMetrics(reg)),
		httpapi.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		httpapi.WithLogger(log),
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.Server.Addr, "version", version, "photo_cache", cfg.Photo.Cache)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// photoCache builds the configured cache backend and its cleanup function.
func photoCache(ctx context.Context, cfg *config.Config) (photo.Cache, func(), error) {
	switch cfg.Photo.Cache {
	case config.CacheRedis:
		client, err := photo.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return photo.NewRedisCache(client, cfg.Redis.Namespace), func() { _ = client.Close() }, nil
	case config.CacheMemory:
		return photo.NewMemoryCache(nil), func() {}, nil
	default:
		return nil, func() {}, nil
	}
}
