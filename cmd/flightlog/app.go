package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/felixhommels/mcsbt-capstone-be/internal/api"
	"github.com/felixhommels/mcsbt-capstone-be/internal/config"
	"github.com/felixhommels/mcsbt-capstone-be/internal/enrich"
	"github.com/felixhommels/mcsbt-capstone-be/internal/ingestion"
	"github.com/felixhommels/mcsbt-capstone-be/internal/logging"
	"github.com/felixhommels/mcsbt-capstone-be/internal/reference"
	"github.com/felixhommels/mcsbt-capstone-be/internal/store"
)

var log = logging.For("main")

// App wires the service collaborators from configuration.
type App struct {
	config   *config.Config
	db       *gorm.DB
	redis    *redis.Client
	store    store.Store
	lookup   reference.Lookup
	client   *ingestion.Client
	composer *enrich.Composer
	routes   *ingestion.RouteFinder
	server   *http.Server
}

// NewApp opens storage and builds the enrichment pipeline.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{config: cfg}

	db, err := store.OpenDB(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	a.db = db

	if a.store, err = store.NewGormStore(db); err != nil {
		a.Close()
		return nil, err
	}

	if a.lookup, err = a.setupReference(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.client = ingestion.NewClient(
		ingestion.WithBaseURL(cfg.FR24.BaseURL),
		ingestion.WithAPIKey(cfg.FR24.APIKey),
		ingestion.WithTimeout(cfg.FR24.Timeout),
	)
	resolver := ingestion.NewResolver(a.client, ingestion.WithStaleWindow(cfg.StaleWindowDays))
	a.composer = enrich.NewComposer(resolver, a.lookup, enrich.WithStore(a.store))
	a.routes = ingestion.NewRouteFinder(cfg.AviationStack.BaseURL, cfg.AviationStack.APIKey, nil)

	if cfg.FR24.APIKey == "" {
		log.Warn("fr24.api_key not set, telemetry requests will be unauthenticated")
	}
	log.Info("app initialized",
		"database", cfg.Database.Driver,
		"reference_cache", cfg.Reference.Cache,
		"stale_window_days", cfg.StaleWindowDays)
	return a, nil
}

func (a *App) setupReference(ctx context.Context) (reference.Lookup, error) {
	cfg := a.config
	refStore := reference.NewGormStore(a.db)
	if err := refStore.Migrate(); err != nil {
		return nil, err
	}
	if cfg.Reference.Seed {
		if err := refStore.Import(ctx, reference.SeedAirports(reference.NewMemory())); err != nil {
			return nil, err
		}
	}

	switch cfg.Reference.Cache {
	case "memory":
		return reference.NewCached(refStore, reference.NewLocalCache(cfg.Reference.CacheTTL, 2*cfg.Reference.CacheTTL), cfg.Reference.CacheTTL), nil
	case "redis":
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Redis.Addr, err)
		}
		return reference.NewCached(refStore, reference.NewRedisCache(a.redis, "flightlog:ref:"), cfg.Reference.CacheTTL), nil
	default:
		return refStore, nil
	}
}

// Serve runs the HTTP API until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if a.config.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required to serve the API")
	}

	srv := api.NewServer(api.Deps{
		Enricher:    a.composer,
		Store:       a.store,
		Routes:      a.routes,
		Verifier:    api.NewVerifier(a.config.Auth.JWTSecret, a.config.Auth.Algorithm),
		CORSOrigins: a.config.CORS.Origins,
	})
	a.server = &http.Server{
		Addr:         a.config.HTTP.Address(),
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	return nil
}

// Close releases database and cache connections.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warn("closing redis", "error", err)
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
