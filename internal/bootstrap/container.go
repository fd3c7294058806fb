package bootstrap

import (
	"context"
	"log"
	"time"

	"school-assistant-be/internal/config"
	"school-assistant-be/internal/constant"
	"school-assistant-be/internal/controller"
	"school-assistant-be/internal/entity"
	"school-assistant-be/internal/handler"
	"school-assistant-be/internal/pkg/logger"
	"school-assistant-be/internal/repository/contract"
	"school-assistant-be/internal/repository/implementation"
	"school-assistant-be/internal/repository/memory"
	"school-assistant-be/internal/service"
	"school-assistant-be/internal/websocket"
	"school-assistant-be/pkg/agent"
	"school-assistant-be/pkg/embedding"
	"school-assistant-be/pkg/llm/factory"
	"school-assistant-be/pkg/portal"
	"school-assistant-be/pkg/vectorstore"
	memorystore "school-assistant-be/pkg/vectorstore/memory"
	"school-assistant-be/pkg/vectorstore/pgvector"

	pktNats "school-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatbotController  controller.IChatbotController
	DocumentController controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

// NewContainer wires every dependency. db may be nil; the application then
// runs fully in memory (volatile history, in-memory vector index).
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Embedding Provider
	var embeddingProvider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "gemini":
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	case "openai":
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Ai.OpenAIAPIKey, cfg.Ai.OpenAIEmbedModel)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.OpenAIEmbedModel)
	default:
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbedModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)
	}

	// LLM Provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// In-Memory Session Storage (agent state per conversation)
	sessionRepo := memory.NewSessionRepository()

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
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
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Vector Index
	var vectorStore vectorstore.VectorStore
	if cfg.Docs.VectorStore == "pgvector" && db != nil {
		pgStore, err := pgvector.NewStorage(db, cfg.Docs.PgvectorDim)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize pgvector store: %v", err)
		}
		vectorStore = pgStore
		log.Printf("[INFO] Using Vector Store: PGVECTOR (dim=%d)", cfg.Docs.PgvectorDim)
	} else {
		vectorStore = memorystore.NewStorage()
		log.Printf("[INFO] Using Vector Store: MEMORY")
	}

	// Repositories
	var (
		chatSessionRepo contract.ChatSessionRepository
		chatMessageRepo contract.ChatMessageRepository
		documentRepo    contract.DocumentRepository
	)
	if db != nil {
		if err := db.AutoMigrate(&entity.ChatSession{}, &entity.ChatMessage{}, &entity.Document{}); err != nil {
			log.Fatalf("[FATAL] Failed to migrate schema: %v", err)
		}
		chatSessionRepo = implementation.NewChatSessionRepository(db)
		chatMessageRepo = implementation.NewChatMessageRepository(db)
		documentRepo = implementation.NewDocumentRepository(db)
	} else {
		chatSessionRepo = memory.NewChatSessionRepository()
		chatMessageRepo = memory.NewChatMessageRepository()
		documentRepo = memory.NewDocumentRepository()
	}

	// Services
	publisherService := service.NewPublisherService(constant.TopicDocumentIngested, pubSub)
	documentService := service.NewDocumentService(
		vectorStore,
		embeddingProvider,
		documentRepo,
		publisherService,
		cfg.Docs.ChunkSize,
		cfg.Docs.ChunkOverlap,
		cfg.Docs.SearchTopK,
		sysLogger,
	)

	portalClient := portal.NewClient(cfg.Portal.BaseURL, time.Duration(cfg.Portal.TimeoutSeconds)*time.Second)
	registry := service.BuildToolRegistry(portalClient, documentService, cfg.Docs.SearchTopK)

	agentLogger := logger.NewIsolatedLogger("logs/agent.log")
	executor := agent.NewExecutor(llmProvider, registry, cfg.Agent.MaxTurns, agentLogger)

	chatbotService := service.NewChatbotService(
		chatSessionRepo,
		chatMessageRepo,
		sessionRepo,
		executor,
		natsPub,
		sysLogger,
	)

	consumerService := service.NewConsumerService(
		pubSub,
		constant.TopicDocumentIngested,
		wsHub,
		natsPub,
		sysLogger,
	)

	notifService := service.NewNotificationService(natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}

	notifHandler := handler.NewNotificationHandler(wsHub, wsLogger)

	return &Container{
		ChatbotController:  controller.NewChatbotController(chatbotService),
		DocumentController: controller.NewDocumentController(documentService),

		ConsumerService: consumerService,

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
	}
}
