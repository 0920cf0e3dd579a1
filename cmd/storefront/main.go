package main

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ArtStore/internal/catalog"
	"ArtStore/internal/config"
	"ArtStore/internal/favorites"
	"ArtStore/internal/interact"
	"ArtStore/internal/kvstore"
	"ArtStore/internal/storefront"
	"ArtStore/internal/viewer"
	"ArtStore/pkg/kit"
)

const (
	service     = "storefront"
	openTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	kv, err := kvstore.Open(ctx, cfg.KV())
	cancel()
	if err != nil {
		log.Fatal("open storage failed", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}

	favs := favorites.New(kv, favorites.Options{
		Key:      cfg.FavoritesKey,
		Retries:  cfg.PersistRetries,
		Debounce: cfg.PersistDebounce(),
		Log:      log.Named("favorites"),
		Metrics:  favorites.NewMetrics(reg),
	})

	ctx, cancel = context.WithTimeout(context.Background(), openTimeout)
	favs.Hydrate(ctx)
	cancel()

	cat := catalog.NewClient(cfg.CatalogURL, cfg.CatalogTimeout())
	cat.Log = log.Named("catalog")
	cat.Metrics = catalog.NewMetrics(reg)

	var tokens *viewer.TokenMaker
	if cfg.JWTSecret != "" {
		if tokens, err = viewer.NewTokenMaker(cfg.JWTSecret); err != nil {
			log.Fatal("init token maker failed", zap.Error(err))
		}
	} else {
		log.Info("JWT_SECRET not set, sessions disabled")
	}

	s := &storefront.Server{
		Catalog:        cat,
		Favorites:      favs,
		Board:          interact.NewBoard(),
		Storage:        kv,
		Tokens:         tokens,
		TokenTTL:       cfg.TokenTTL(),
		Profile:        cfg.DefaultProfile(),
		CommentLimiter: kit.NewIPRateLimiter(cfg.CommentsPerMinute, time.Minute),
		Log:            log,
	}

	h := storefront.NewHandler(s, storefront.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
	})

	shutdown := func(ctx context.Context) error {
		return errors.Join(favs.Close(ctx), kv.Close())
	}

	if err := kit.RunHTTPServer(":"+cfg.Port, h, log, shutdown); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
