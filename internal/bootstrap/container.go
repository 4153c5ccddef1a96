package bootstrap

import (
	"context"
	"log"

	"ai-blueprint-be/internal/config"
	"ai-blueprint-be/internal/controller"
	"ai-blueprint-be/internal/handler"
	"ai-blueprint-be/internal/pkg/logger"
	"ai-blueprint-be/internal/pkg/mailer"
	"ai-blueprint-be/internal/repository/implementation"
	"ai-blueprint-be/internal/repository/memory"
	"ai-blueprint-be/internal/service"
	"ai-blueprint-be/internal/websocket"
	"ai-blueprint-be/pkg/llm/factory"

	pktNats "ai-blueprint-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	GenerationController controller.IGenerationController
	ReportController     controller.IReportController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & live progress
	ProgressHandler *handler.ProgressHandler
	WebSocketHub    *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. LLM Provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// In-Memory Progress Store
	progressRepo := memory.NewProgressRepository(cfg.Progress.TerminalTTL)

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/progress.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Services
	reportRepo := implementation.NewReportRepository(db)

	publisherService := service.NewPublisherService(cfg.App.ProgressTopicName, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.ProgressTopicName,
		wsHub,
		emailService,
		natsPub,
		sysLogger,
	)

	generationService := service.NewGenerationService(
		llmProvider,
		progressRepo,
		reportRepo,
		publisherService,
		sysLogger,
	)
	reportService := service.NewReportService(reportRepo)

	// WS Handler
	progressHandler := handler.NewProgressHandler(wsHub, wsLogger)

	// 5. Controllers
	return &Container{
		GenerationController: controller.NewGenerationController(generationService),
		ReportController:     controller.NewReportController(reportService),

		ConsumerService: consumerService,

		ProgressHandler: progressHandler,
		WebSocketHub:    wsHub,
	}
}
