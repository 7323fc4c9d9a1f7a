package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pawshearts/internal/bootstrap"
	"pawshearts/internal/catalog"
	"pawshearts/internal/http/handlers"
	httpapi "pawshearts/internal/http/httpapi"
	"pawshearts/internal/impact"
	"pawshearts/internal/infra"
	"pawshearts/internal/infra/geoip"
	"pawshearts/internal/middleware"
	"pawshearts/internal/pins"
	"pawshearts/internal/seo"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer rt.Close()

	cat, err := catalog.Open(cfg.CatalogPath, cfg.AmazonAssociateTag)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load catalog")
	}
	if cfg.CatalogPath != "" {
		watcher, err := catalog.NewWatcher(cat, cfg.CatalogPath, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to watch catalog")
		}
		if err := watcher.Start(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to watch catalog")
		}
		defer watcher.Stop()
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		defer resolver.Close()
		lookup = resolver.CountryCode
	}

	region, err := seo.ParseRegion(cfg.SEODefaultRegion)
	if err != nil {
		logger.Warn().Str("region", cfg.SEODefaultRegion).Msg("unsupported SEO_DEFAULT_REGION, using US")
		region = seo.US
	}

	if cfg.AdminJWTSecret == "" {
		logger.Warn().Msg("ADMIN_JWT_SECRET is empty, admin routes are open")
	}

	now := func() time.Time { return time.Now().In(cfg.Location) }
	app := &handlers.App{
		Ledger: impact.NewService(rt.Store, impact.ServiceOptions{
			Location: cfg.Location,
			Logger:   logger,
		}),
		Pins: pins.NewService(rt.Store, pins.Options{
			BoardName: cfg.PinterestBoardName,
			Logger:    logger,
		}),
		Catalog:       cat,
		DefaultRegion: region,
		AdminSecret:   cfg.AdminJWTSecret,
		Logger:        logger,
		Now:           now,
	}

	if cfg.WorkerInline {
		publisher, err := bootstrap.Publisher(ctx, cfg, rt.Runner, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build publisher")
		}
		worker := bootstrap.Worker(cfg, rt.Store, publisher, logger)
		go func() {
			if err := worker.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("inline worker stopped")
			}
		}()
	} else if cfg.LedgerDriver == infra.DriverFile {
		logger.Warn().Msg("file store without WORKER_INLINE: queued pins are not published")
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CountryLookup:   lookup,
	})
	server := infra.NewHTTPServer(cfg, router)
	logger.Info().Str("addr", server.Addr()).Str("driver", cfg.LedgerDriver).Msg("API listening")
	if err := server.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("http server failed")
	}
	logger.Info().Msg("server stopped")
}
