package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/superscan/internal/cache"
	"github.com/fjod/go_cart/superscan/internal/config"
	h "github.com/fjod/go_cart/superscan/internal/http"
	"github.com/fjod/go_cart/superscan/internal/publisher"
	"github.com/fjod/go_cart/superscan/internal/repository"
	"github.com/fjod/go_cart/superscan/internal/service"
	"github.com/fjod/go_cart/superscan/pkg/logger"
	"github.com/fjod/go_cart/superscan/pkg/telemetry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal("failed to set up tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	store, err := openStore(cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}
	defer store.Close()

	var opts []service.Option
	if cfg.MongoURI != "" {
		db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer func() { _ = db.Client().Disconnect(context.Background()) }()

		carts := repository.NewMongoCartRepository(db)
		if idx, ok := carts.(interface{ CreateIndexes(context.Context) error }); ok {
			if err := idx.CreateIndexes(ctx); err != nil {
				log.Fatal("failed to create cart indexes", zap.Error(err))
			}
		}
		opts = append(opts, service.WithCartRepository(carts))
		log.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))
	}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("redis connection failed", zap.Error(err))
		}
		opts = append(opts, service.WithCartCache(cache.NewRedisCache(redisClient)))
		log.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))
	}

	pos := service.NewPOS(store, log, opts...)
	if err := pos.Load(ctx); err != nil {
		log.Fatal("failed to load state", zap.Error(err))
	}

	if len(cfg.KafkaBrokers) > 0 {
		poller := publisher.NewOutboxPoller(store, log, cfg.KafkaTopic, cfg.OutboxTick, cfg.KafkaBrokers...)
		defer poller.Close()
		go poller.Run(ctx)
		log.Info("outbox poller started", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: h.NewRouter(pos, h.RouterConfig{
			RequestTimeout:     cfg.RequestTimeout,
			MaxRequestBodySize: cfg.MaxRequestBodySize,
			ServiceName:        cfg.ServiceName,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("superscan starting", zap.String("port", cfg.HTTPPort), zap.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			stop()
		}
	}()

	// Graceful shutdown
	<-ctx.Done()

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	log.Info("server exited")
}

func openStore(cfg *config.Config, log *zap.Logger) (repository.Store, error) {
	if cfg.StorageDriver == "memory" {
		log.Warn("using in-memory storage, data is lost on exit")
		return repository.NewMemoryStore(cfg.Currency), nil
	}

	store, err := repository.NewSQLStore(repository.Config{
		Driver:     cfg.StorageDriver,
		SQLitePath: cfg.SQLitePath,
		Postgres: repository.Credentials{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
		},
		MigrationsPath: cfg.MigrationsPath,
		Currency:       cfg.Currency,
	})
	if err != nil {
		return nil, err
	}

	if err := store.RunMigrations(cfg.MigrationsPath); err != nil {
		_ = store.Close()
		return nil, err
	}
	log.Info("database migrations completed", zap.String("driver", cfg.StorageDriver))
	return store, nil
}
