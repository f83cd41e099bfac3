package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avast/retry-go/v4"
	redisdriver "github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/catattrans/umkm-api/internal/api"
	"github.com/catattrans/umkm-api/internal/api/metrics"
	"github.com/catattrans/umkm-api/internal/core/service"
	"github.com/catattrans/umkm-api/internal/core/session"
	"github.com/catattrans/umkm-api/internal/infrastructure/config"
	"github.com/catattrans/umkm-api/internal/infrastructure/db/mongo"
	"github.com/catattrans/umkm-api/internal/infrastructure/db/redis"
	"github.com/catattrans/umkm-api/internal/infrastructure/queue"
	"github.com/catattrans/umkm-api/internal/infrastructure/uploads"
	"github.com/catattrans/umkm-api/pkg/logger"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "catattrans-api",
		Pretty:  !cfg.IsProduction(),
	})

	// --- Storage backends, retried so a cold docker-compose start settles ---
	var (
		mongoClient *mongodriver.Client
		db          *mongodriver.Database
	)
	err = retry.Do(func() error {
		mongoClient, db, err = mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		return err
	}, retry.Context(ctx), retry.Attempts(5), retry.Delay(2*time.Second))
	if err != nil {
		log.Fatal().Err(err).Msg("mongo unreachable")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	var rdb *redisdriver.Client
	err = retry.Do(func() error {
		rdb, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return err
	}, retry.Context(ctx), retry.Attempts(5), retry.Delay(2*time.Second))
	if err != nil {
		log.Fatal().Err(err).Msg("redis unreachable")
	}
	defer func() { _ = rdb.Close() }()

	// --- Repositories and indexes ---
	userRepo := mongo.NewUserRepository(db)
	txRepo := mongo.NewTransactionRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user indexes")
	}
	if err := txRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("transaction indexes")
	}

	attachments, err := uploads.NewOnDisk(cfg.Uploads.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("upload store")
	}

	// --- Services ---
	blacklist := redis.NewTokenBlacklist(rdb)
	authService := service.NewAuthService(userRepo, blacklist, cfg.JWTSecret, cfg.TokenTTL)
	userService := service.NewUserService(userRepo, log)
	txService := service.NewTransactionService(txRepo, attachments, log)
	dashService := service.NewDashboardService(txRepo, log)

	// --- Session cache: redis store, sharded background revalidation ---
	dispatcher := queue.NewDispatcher(cfg.Session.Workers, log)
	dispatcher.Start(ctx)
	go watchQueueDepth(ctx, dispatcher)

	sessionStore := redis.NewSessionStore(rdb, cfg.Session.CacheTTL)
	cache := session.New(sessionStore, authService, authService, authService, log,
		session.WithRunner(dispatcher))

	e := api.NewRouter(cfg, cache, api.Services{
		Auth:         authService,
		Users:        userService,
		Transactions: txService,
		Dashboard:    dashService,
	}, db, rdb, log)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}

// watchQueueDepth samples the revalidation backlog for the metrics endpoint.
func watchQueueDepth(ctx context.Context, d *queue.Dispatcher) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.RevalidationQueueDepth.Set(float64(d.Depth()))
		}
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
