package main

import (
	"context"
	"expvar"
	"log"
	"runtime"
	"time"

	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/configs"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/events"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/logging"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/meetings"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/messaging"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/profanity"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/ratelimiter"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/tracing"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/ws"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/persistence/db"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/persistence/repository"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/presence"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/presentation/api"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/presentation/handler/health"
	meetingsHandler "github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/presentation/handler/meetings"
	"go.uber.org/zap"
)

const (
	serviceName = "chatpi-server"
)

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	logger := zap.Must(zap.NewProduction()).Sugar()
	defer logger.Sync()

	structuredLogger := logging.NewLogger(logging.NewDefaultConfig())

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	structuredLogger.Info(logging.General, logging.Startup, "starting presence server", map[logging.ExtraKey]any{
		"config_path": configPath,
	})

	registry := presence.NewRegistry()
	roomManager := ws.NewRoomManager(cfg.HTTP.AllowedOrigins)

	meetingsClient := meetings.NewClient(meetings.Config{
		BaseURL: cfg.Backend.BaseURL,
		Token:   cfg.Backend.Token,
		Timeout: cfg.Backend.Timeout,
	})

	var serviceOpts []presence.Option

	if cfg.AMQP.Enabled {
		rabbitmq, err := messaging.NewRabbitMQ(cfg.AMQP.URI)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitmq.Close()

		log.Println("Starting RabbitMQ connection")

		presencePublisher := events.NewPresencePublisher(rabbitmq)
		serviceOpts = append(serviceOpts, presence.WithEventPublisher(presencePublisher))

		if cfg.Mongo.Enabled {
			mongoCfg := &db.MongoConfig{
				URI:               cfg.Mongo.URI,
				Database:          cfg.Mongo.Database,
				ConnectionTimeout: 10 * time.Second,
			}

			mongoClient, err := db.NewMongoClient(ctx, mongoCfg)
			if err != nil {
				log.Fatal(err)
			}
			defer db.DisconnectMongo(ctx, mongoClient)

			auditRepository := repository.NewPresenceAuditLogRepository(db.GetDatabase(mongoClient, mongoCfg))
			if err := auditRepository.EnsureIndexes(ctx); err != nil {
				log.Fatal(err)
			}

			auditConsumer := events.NewAuditConsumer(rabbitmq, auditRepository, structuredLogger)
			go func() {
				if err := auditConsumer.Listen(); err != nil {
					logger.Errorw("audit consumer stopped", "error", err)
				}
			}()
		}
	}

	if cfg.Chat.MaskProfanity {
		serviceOpts = append(serviceOpts, presence.WithMessageFilter(profanity.Default()))
	}

	presenceService := presence.NewService(registry, roomManager, meetingsClient, structuredLogger, serviceOpts...)

	chatLimiter := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.Chat.MaxRatePerSecond,
		MaxBurst:         cfg.Chat.MaxBurst,
	})

	wsCore := ws.NewCore(roomManager, presenceService, chatLimiter)
	go wsCore.Run(ctx)

	wsHandler := meetingsHandler.NewHandler(roomManager, wsCore)
	healthHandler := health.NewHandler()

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})
	app := api.NewApplication(*cfg, *wsHandler, *healthHandler, logger, rl)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Fatal(err)
	}

	// Flush pending backend notifications before exiting.
	presenceService.Wait()
}
