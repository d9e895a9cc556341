package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "hotel_booking/internal/adapters/http_server"
	"hotel_booking/internal/adapters/objectstore"
	"hotel_booking/internal/adapters/observability"
	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage"
	"hotel_booking/internal/storage/memory"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	logger, logCloser := observability.NewLogger(cfg.AppEnv, cfg.LogLevel, cfg.LogFile)
	log.Logger = logger
	defer logCloser.Close()
	cfg.Warn()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open store failed")
	}
	defer store.Close()

	var cache domain.Cache = memory.NewCache()
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed; cache calls will miss until it is back")
		}
		defer rc.Close()
		cache = rc
	}

	var objects domain.ObjectStore
	if cfg.ObjectStoreURL != "" {
		oc, err := objectstore.New(cfg.ObjectStoreURL, cfg.ObjectStorePublicURL, cfg.ObjectStoreKey, cfg.ObjectStoreRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize object store client")
		}
		objects = oc
	}

	ratings := app.NewRatingAggregator(store)
	h := &server.Handlers{
		Catalog:  app.NewCatalogService(store, ratings, cache, objects, cfg.CacheTTL),
		Bookings: app.NewBookingService(store),
		Reviews:  app.NewReviewService(store, ratings, cache, cfg.CacheTTL),
		Users:    app.NewUserService(store),
		Ping:     store.Ping,
	}

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	// optional second listener so scrapes can stay off the public port
	if msrv := observability.Serve(reg, cfg.MetricsAddr); msrv != nil {
		defer msrv.Close()
	}
	srv.MountHandlers(h, server.Options{JWTSecret: cfg.JWTSecret, ReviewsPerMinute: cfg.ReviewsPerMinute})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreDriver).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
