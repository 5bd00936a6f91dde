package bootstrap

import (
	"context"
	"log"

	"ai-studyroom-be/internal/config"
	"ai-studyroom-be/internal/controller"
	"ai-studyroom-be/internal/handler"
	"ai-studyroom-be/internal/pkg/logger"
	"ai-studyroom-be/internal/repository/memory"
	"ai-studyroom-be/internal/repository/unitofwork"
	"ai-studyroom-be/internal/service"
	"ai-studyroom-be/internal/websocket"
	"ai-studyroom-be/pkg/embedding"
	"ai-studyroom-be/pkg/extract"
	"ai-studyroom-be/pkg/llm/factory"
	pktNats "ai-studyroom-be/pkg/nats"
	"ai-studyroom-be/pkg/rag"
	"ai-studyroom-be/pkg/topiccrypt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController

	// WebSocket
	ChatWsHandler *handler.ChatWsHandler
	WebSocketHub  *websocket.Hub

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService
	AuditService    service.IAuditService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	}

	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

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
		rdb = nil
	}

	// 5. Crypto and retrieval
	gateway := topiccrypt.NewGateway(cfg.Crypto.MasterKey)
	keyRepo := memory.NewTopicKeyRepository()
	keyService := service.NewTopicKeyService(uowFactory, keyRepo)

	retriever := service.NewChunkRetriever(uowFactory)
	answerer := rag.NewAnswerer(embeddingProvider, retriever, llmProvider, cfg.Ingest.TopK, cfg.Chat.AnswerTimeout)

	extractor := extract.NewRegistry()

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Chat.IngestTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Chat.IngestTopic,
		uowFactory,
		embeddingProvider,
		natsPub,
		cfg.Ingest.ChunkWords,
		cfg.Ingest.OverlapWords,
		sysLogger,
	)

	chatService := service.NewChatService(uowFactory, gateway, keyService, natsPub, rdb, sysLogger)
	topicService := service.NewTopicService(uowFactory)
	documentService := service.NewDocumentService(uowFactory, extractor, publisherService, answerer, sysLogger)

	var auditService service.IAuditService
	if natsSub != nil {
		auditService = service.NewAuditService(natsSub, uowFactory, sysLogger)
	}

	// 7. WebSocket layer
	wsLogger := logger.NewIsolatedLogger("logs/chat.log")
	wsHub := websocket.NewHub(wsLogger)
	mediator := websocket.NewMediator(
		wsHub,
		chatService,
		answerer,
		keyService,
		gateway,
		topicService,
		natsPub,
		cfg.Chat.TriggerPrefix,
		cfg.Chat.HistoryLimit,
		wsLogger,
	)
	chatWsHandler := handler.NewChatWsHandler(wsHub, mediator, chatService, wsLogger)

	return &Container{
		ChatController:     controller.NewChatController(chatService, wsHub),
		DocumentController: controller.NewDocumentController(documentService),
		ChatWsHandler:      chatWsHandler,
		WebSocketHub:       wsHub,
		ConsumerService:    consumerService,
		AuditService:       auditService,
	}
}
