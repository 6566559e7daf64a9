package main

import (
	"context"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	"github.com/taskhive/taskhive/adapters/codec"
	"github.com/taskhive/taskhive/adapters/events"
	"github.com/taskhive/taskhive/adapters/hash"
	"github.com/taskhive/taskhive/adapters/inference"
	"github.com/taskhive/taskhive/adapters/postgres"
	"github.com/taskhive/taskhive/adapters/store"
	"github.com/taskhive/taskhive/config"
	"github.com/taskhive/taskhive/logging"
	"github.com/taskhive/taskhive/ports"
	"github.com/taskhive/taskhive/service"
	transport "github.com/taskhive/taskhive/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("error").Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel)
	ctx := context.Background()

	tokenCodec, err := codec.NewJWTCodec([]byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		log.Error("failed to create codec", "error", err)
		os.Exit(1)
	}

	var revocations ports.RevocationStore
	var publisher ports.EventPublisher

	switch cfg.RevocationBackend {
	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("failed to parse redis URL", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		revocations = store.NewRedisStore(redisClient)

		wmPublisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewSlogLogger(log),
		)
		if err != nil {
			log.Error("failed to create event publisher", "error", err)
			os.Exit(1)
		}
		publisher = events.NewWatermillPublisher(wmPublisher)

	default:
		log.Warn("using in-process revocation store; revocations will not be visible to other instances")
		revocations = store.NewMemoryStore(cfg.RevocationCapacity)
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.RunMigrations(ctx, db); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	users := postgres.NewUserRepository(db)
	taskRepo := postgres.NewTaskRepository(db)
	hasher := hash.NewBcryptHasher(0)
	analyzer := inference.NewOllamaAnalyzer(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.OllamaAPIKey, cfg.OllamaTimeout, log)

	tokens := service.NewTokenService(tokenCodec, revocations, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	auth := service.NewAuthService(tokens, users, hasher, publisher, log)
	tasks := service.NewTaskService(taskRepo, analyzer, log)

	router := transport.SetupRouter(auth, tasks, log)

	log.Info("starting server", "addr", cfg.HTTPAddr, "revocation_backend", cfg.RevocationBackend)
	if err := router.Run(cfg.HTTPAddr); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
