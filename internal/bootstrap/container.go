package bootstrap

import (
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"rag-chatbot-be/internal/config"
	"rag-chatbot-be/internal/controller"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/internal/repository/unitofwork"
	"rag-chatbot-be/internal/service"
	"rag-chatbot-be/internal/websocket"
	"rag-chatbot-be/pkg/embedding"
	"rag-chatbot-be/pkg/llm/factory"
	"rag-chatbot-be/pkg/vectorindex"
)

type Container struct {
	// Controllers
	ChatBotController   controller.IChatBotController
	KnowledgeController controller.IKnowledgeController
	QueryController     controller.IQueryController
	ChatController      controller.IChatController

	// WebSocket streaming
	StreamHandler *websocket.StreamHandler

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

	// 3. Providers
	embeddingProvider := newEmbeddingProvider(cfg)

	generator, err := factory.NewGenerator(factory.Config{
		Provider:       cfg.Ai.LLMProvider,
		Model:          cfg.Ai.LLMModel,
		GeminiAPIKey:   cfg.Keys.GoogleGemini,
		OllamaBaseURL:  cfg.Ai.OllamaBaseURL,
		StreamGroupLen: cfg.Ai.StreamGroupSize,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	index := newVectorIndex(cfg, db)

	// 4. Services
	publisherService := service.NewPublisherService(cfg.App.IngestedTopicName, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.IngestedTopicName,
		uowFactory,
		sysLogger,
	)

	timeouts := service.StageTimeouts{
		Store:    cfg.Timeouts.Store,
		Index:    cfg.Timeouts.Index,
		Provider: cfg.Timeouts.Provider,
	}

	chatbotService := service.NewChatBotService(uowFactory, sysLogger)
	knowledgeService := service.NewKnowledgeService(
		chatbotService,
		embeddingProvider,
		index,
		publisherService,
		timeouts,
		sysLogger,
	)
	queryService := service.NewQueryService(chatbotService, embeddingProvider, index)
	chatService := service.NewChatService(
		uowFactory,
		chatbotService,
		embeddingProvider,
		index,
		generator,
		timeouts,
		sysLogger,
	)

	// 5. Controllers
	return &Container{
		ChatBotController:   controller.NewChatBotController(chatbotService),
		KnowledgeController: controller.NewKnowledgeController(knowledgeService),
		QueryController:     controller.NewQueryController(queryService),
		ChatController:      controller.NewChatController(chatService),

		StreamHandler: websocket.NewStreamHandler(chatService, sysLogger),

		ConsumerService: consumerService,
		Logger:          sysLogger,
	}
}

func newEmbeddingProvider(cfg *config.Config) embedding.Provider {
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbeddingModel)
		return embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbeddingModel,
			cfg.Ai.EmbeddingDimension,
		)
	case "deterministic":
		// Local development without any model server.
		log.Printf("[INFO] Using Embedding Provider: DETERMINISTIC (dim %d)", cfg.Ai.EmbeddingDimension)
		return embedding.NewDeterministicProvider(cfg.Ai.EmbeddingDimension)
	default:
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
		return embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}
}

func newVectorIndex(cfg *config.Config, db *gorm.DB) vectorindex.Index {
	switch cfg.Vector.Engine {
	case "pgvector":
		log.Printf("[INFO] Using Vector Engine: PGVECTOR")
		idx := vectorindex.NewPgVectorIndex(db)
		if err := idx.Migrate(); err != nil {
			log.Fatalf("[FATAL] Failed to migrate pgvector tables: %v", err)
		}
		return idx
	case "memory":
		log.Printf("[INFO] Using Vector Engine: MEMORY")
		return vectorindex.NewMemoryIndex()
	default:
		log.Printf("[INFO] Using Vector Engine: ELASTICSEARCH (%s)", cfg.Vector.ElasticsearchURL)
		client, err := vectorindex.NewElasticClient(cfg.Vector.ElasticsearchURL)
		if err != nil {
			log.Fatalf("[FATAL] Failed to create Elasticsearch client: %v", err)
		}
		return vectorindex.NewElasticIndex(client)
	}
}
