package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/pricetracker-service/internal/adapter/firecrawl"
	"github.com/user/pricetracker-service/internal/adapter/postgres"
	"github.com/user/pricetracker-service/internal/delivery/http/handler"
	"github.com/user/pricetracker-service/internal/delivery/http/router"
	"github.com/user/pricetracker-service/internal/usecase"
	"github.com/user/pricetracker-service/pkg/config"
	"github.com/user/pricetracker-service/pkg/logger"
	"github.com/user/pricetracker-service/pkg/metrics"
	"github.com/user/pricetracker-service/pkg/ratelimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("could not load config: " + err.Error())
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic("could not build logger: " + err.Error())
	}
	defer log.Sync()

	m := metrics.New(prometheus.DefaultRegisterer)

	ctx := context.Background()

	dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatal("unable to connect to database", zap.Error(err))
	}
	defer dbpool.Close()
	log.Info("postgresql connection pool established")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("unable to connect to redis", zap.Error(err))
	}
	log.Info("redis connection established")

	// Repositories and the extraction client.
	productRepo := postgres.NewProductRepo(dbpool)
	historyRepo := postgres.NewPriceHistoryRepo(dbpool)
	extractor := firecrawl.NewClient(cfg.ExtractorBaseURL, cfg.ExtractorAPIKey, cfg.ExtractorTimeout(), log)

	// Use cases.
	ingestor := usecase.NewIngestor(productRepo, historyRepo, extractor, m, log)

	// HTTP server.
	limiter := ratelimit.New(rdb, "pricetracker:ratelimit:", cfg.IngestRateLimit, cfg.IngestRateBurst)
	apiHandler := handler.NewHandler(ingestor, log)
	httpRouter := router.New(apiHandler, m, limiter, cfg.JWTSecret, log)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second, // extraction calls can be slow
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("could not start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exiting")
}
