package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront/internal/api"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/favorite"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/user"
	"github.com/example/storefront/internal/infrastructure/cache"
	"github.com/example/storefront/internal/infrastructure/kafka"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		// logger config comes from the same environment; fall back to defaults
		logger.New(logger.DefaultConfig()).Fatal("invalid configuration", zap.Error(err))
	}

	log := logger.NewForEnvironment(cfg.Env, cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()
	log = log.Named("api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting storefront api",
		zap.String("env", cfg.Env),
		zap.String("port", cfg.HTTPPort),
		zap.Strings("kafka_brokers", cfg.KafkaBrokers),
		zap.String("kafka_topic", cfg.KafkaTopic),
		zap.Bool("redis_cache", cfg.RedisAddr != ""))

	db, err := store.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()
	log.Info("connected to PostgreSQL")

	if cfg.MigrateOnStart {
		if err := store.RunMigrations(db); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
		log.Info("migrations applied")
	}

	var productCache cache.ProductCache
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			log.Warn("redis unavailable, product cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			productCache = cache.NewRedisCache(rdb, cfg.ProductCacheTTL)
		}
	}

	var publisher order.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		publisher = producer
	} else {
		log.Info("KAFKA_BROKERS not set, order events are not published")
	}

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)

	products := product.NewService(store.NewPostgresProductStore(db), productCache, log)
	if cfg.MigrateOnStart {
		// seed migrations may have changed the catalog
		if err := products.Invalidate(ctx); err != nil {
			log.Warn("failed to invalidate product cache", zap.Error(err))
		}
	}

	cartStore := store.NewPostgresCartStore(db)
	handlers := api.NewHandlers(
		products,
		cart.NewService(cartStore, log),
		favorite.NewService(store.NewPostgresFavoriteStore(db)),
		order.NewService(store.NewPostgresOrderStore(db), publisher, log),
		log,
	)
	authHandlers := api.NewAuthHandlers(user.NewService(store.NewPostgresUserStore(db), log), jwtService, log)

	router := api.NewRouter(api.RouterConfig{
		Handlers:     handlers,
		AuthHandlers: authHandlers,
		JWTService:   jwtService,
		Logger:       log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server started", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
