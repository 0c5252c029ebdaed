package bootstrap

import (
	"context"
	"log"

	"ai-learning-partner-be/internal/config"
	"ai-learning-partner-be/internal/controller"
	"ai-learning-partner-be/internal/pkg/logger"
	"ai-learning-partner-be/internal/pkg/storage"
	"ai-learning-partner-be/internal/repository/memory"
	"ai-learning-partner-be/internal/repository/unitofwork"
	"ai-learning-partner-be/internal/service"
	"ai-learning-partner-be/pkg/embedding"
	"ai-learning-partner-be/pkg/generator"
	"ai-learning-partner-be/pkg/llm/factory"
	pktNats "ai-learning-partner-be/pkg/nats"
	"ai-learning-partner-be/pkg/websearch"
	"ai-learning-partner-be/pkg/youtube"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	SessionController  controller.ISessionController
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController
	LessonController   controller.ILessonController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
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
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

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

	contentGenerator := generator.New(llmProvider, cfg.Ai.LLMModel, cfg.Ai.LLMModelFast)

	// In-memory session storage
	sessionRepo := memory.NewSessionRepository()

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
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
	webSearchClient := websearch.NewClient(rdb)

	var objectStore service.ObjectStore
	objectStorage, err := storage.NewObjectStorage(
		cfg.Storage.Endpoint,
		cfg.Storage.AccessKeyID,
		cfg.Storage.SecretAccessKey,
		cfg.Storage.BucketName,
		cfg.Storage.UseSSL,
	)
	if err != nil {
		// Raw file storage is a convenience; ingestion still works without it.
		log.Printf("[WARN] Failed to connect to MinIO: %v", err)
	} else {
		objectStore = objectStorage
	}

	// 5. Services
	publisherService := service.NewPublisherService(pubSub, cfg.App.EmbedChunksTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.EmbedChunksTopic,
		uowFactory,
		embeddingProvider,
		natsPub,
		sysLogger,
	)

	authService := service.NewAuthService(uowFactory)
	sessionService := service.NewSessionService(sessionRepo, uowFactory)
	documentService := service.NewDocumentService(
		uowFactory,
		publisherService,
		objectStore,
		youtube.NewClient(),
		sysLogger,
		cfg.Ai.ChunkSize,
		cfg.Ai.ChunkOverlap,
	)
	chatService := service.NewChatService(
		uowFactory,
		sessionRepo,
		contentGenerator,
		embeddingProvider,
		webSearchClient,
		sysLogger,
		cfg.Ai.RagTopK,
	)
	lessonService := service.NewLessonService(
		uowFactory,
		sessionRepo,
		contentGenerator,
		natsPub,
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		AuthController:     controller.NewAuthController(authService),
		SessionController:  controller.NewSessionController(sessionService),
		ChatController:     controller.NewChatController(chatService),
		DocumentController: controller.NewDocumentController(documentService),
		LessonController:   controller.NewLessonController(lessonService),

		ConsumerService: consumerService,

		Logger: sysLogger,
	}
}
