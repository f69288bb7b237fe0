package bootstrap

import (
	"context"
	"log"

	"ai-studynotes-be/internal/config"
	"ai-studynotes-be/internal/controller"
	"ai-studynotes-be/internal/handler"
	"ai-studynotes-be/internal/pkg/logger"
	"ai-studynotes-be/internal/repository/memory"
	"ai-studynotes-be/internal/repository/unitofwork"
	"ai-studynotes-be/internal/service"
	"ai-studynotes-be/internal/websocket"
	"ai-studynotes-be/pkg/embedding"
	"ai-studynotes-be/pkg/llm/factory"
	"ai-studynotes-be/pkg/studygen"
	"ai-studynotes-be/pkg/transcribe"

	pktNats "ai-studynotes-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	NoteController    controller.INoteController
	CaptureController controller.ICaptureController
	JobController     controller.IJobController
	FolderController  controller.IFolderController

	// Background Services (Exposed for main.go to run)
	WorkerService        service.IWorkerService
	EmbedConsumerService service.IEmbedConsumerService
	XpListenerService    service.IXpListenerService

	// WebSockets
	ProgressHandler *handler.ProgressHandler
	WebSocketHub    *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbedModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)
	} else {
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Keys.OpenAI, "", cfg.Ai.OpenAIEmbedModel)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.OpenAIEmbedModel)
	}

	llmBaseURL := cfg.Ai.LLMBaseURL
	if cfg.Ai.LLMProvider == "ollama" {
		llmBaseURL = cfg.Ai.OllamaBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL,
		cfg.Keys.OpenAI,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	generator := studygen.NewGenerator(llmProvider)
	transcriber := transcribe.NewOpenAITranscriber(cfg.Keys.OpenAI, "", cfg.Ai.TranscribeModel)

	// In-memory job tray
	jobRepo := memory.NewJobRepository()

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

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

	wsLogger := logger.NewIsolatedLogger("logs/progress.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Services
	processPublisher := service.NewPublisherService(pubSub, cfg.Keys.ProcessTopic)
	embedPublisher := service.NewPublisherService(pubSub, cfg.Keys.EmbedTopic)

	noteService := service.NewNoteService(
		uowFactory,
		generator,
		embeddingProvider,
		natsPub,
		wsHub,
		sysLogger,
	)

	pipelineService := service.NewPipelineService(
		uowFactory,
		processPublisher,
		jobRepo,
		cfg.Limits,
		"uploads",
		sysLogger,
	)

	workerService := service.NewWorkerService(
		pubSub,
		cfg.Keys.ProcessTopic,
		uowFactory,
		noteService,
		jobRepo,
		transcriber,
		generator,
		embedPublisher,
		natsPub,
		cfg.Limits,
		sysLogger,
	)

	embedConsumerService := service.NewEmbedConsumerService(
		pubSub,
		cfg.Keys.EmbedTopic,
		uowFactory,
		embeddingProvider,
		sysLogger,
	)

	authService := service.NewAuthService(uowFactory, cfg.Limits)
	jobService := service.NewJobService(jobRepo)
	folderService := service.NewFolderService(uowFactory)
	xpListenerService := service.NewXpListenerService(natsSub, wsHub, sysLogger)

	// 6. Controllers
	return &Container{
		AuthController:    controller.NewAuthController(authService),
		NoteController:    controller.NewNoteController(noteService),
		CaptureController: controller.NewCaptureController(pipelineService),
		JobController:     controller.NewJobController(jobService),
		FolderController:  controller.NewFolderController(folderService),

		WorkerService:        workerService,
		EmbedConsumerService: embedConsumerService,
		XpListenerService:    xpListenerService,

		ProgressHandler: handler.NewProgressHandler(wsHub, wsLogger),
		WebSocketHub:    wsHub,
	}
}
