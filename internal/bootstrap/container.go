package bootstrap

import (
	"context"
	"log"

	"juris-rag-be/internal/config"
	"juris-rag-be/internal/controller"
	"juris-rag-be/internal/handler"
	"juris-rag-be/internal/pkg/logger"
	"juris-rag-be/internal/repository/memory"
	"juris-rag-be/internal/repository/unitofwork"
	"juris-rag-be/internal/service"
	"juris-rag-be/internal/websocket"
	"juris-rag-be/pkg/embedding"
	"juris-rag-be/pkg/events"
	"juris-rag-be/pkg/llm/factory"
	"juris-rag-be/pkg/rag/citation"
	ragcontext "juris-rag-be/pkg/rag/context"
	"juris-rag-be/pkg/rag/feedback"
	"juris-rag-be/pkg/rag/pipeline"
	"juris-rag-be/pkg/rag/query"
	"juris-rag-be/pkg/rag/response"
	"juris-rag-be/pkg/rag/search"
	"juris-rag-be/pkg/rag/session"
	"juris-rag-be/pkg/vectorindex"

	pktNats "juris-rag-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const FeedbackTopic = "legal.feedback"

type Container struct {
	// Controllers
	LegalQueryController controller.ILegalQueryController
	FeedbackController   controller.IFeedbackController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	SessionHandler *handler.SessionHandler
	WebSocketHub   *websocket.Hub

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	wsLogger := logger.NewIsolatedLogger(cfg.App.TransportLogPath)

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)

	// 3. Model providers
	embeddingProvider := embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
	log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)

	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	var publisher events.Publisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		publisher = natsPub
	}

	var index vectorindex.Index = vectorindex.NewPgVectorIndex(embeddingProvider, uowFactory)
	var rdb *redis.Client
	if cfg.Rag.CacheEnabled {
		rdb = newRedisClient(cfg.App.RedisURL)
		index = vectorindex.NewCachedIndex(index, rdb, cfg.Rag.CacheTTL, sysLogger)
	}

	// 5. RAG pipeline
	synthCfg := response.DefaultConfig()
	synthCfg.Temperature = cfg.Ai.Temperature
	synthCfg.MaxTokens = cfg.Ai.MaxTokens
	synthCfg.Timeout = cfg.Ai.GenerationTimeout
	synthCfg.PenalizeDroppedCitations = cfg.Rag.PenalizeDroppedCitations

	ragPipeline := pipeline.New(
		query.NewAnalyzer(nil, nil),
		search.NewOrchestrator(index, search.Config{
			TopK:      cfg.Rag.TopK,
			Threshold: cfg.Rag.SimilarityThreshold,
			Timeout:   cfg.Rag.SearchTimeout,
		}, sysLogger),
		ragcontext.NewAssembler(ragcontext.Config{
			TokenBudget:         cfg.Rag.ContextTokenBudget,
			MinTruncationTokens: cfg.Rag.MinTruncationTokens,
			HistoryTurns:        cfg.Rag.HistoryTurns,
			IncludeHistory:      cfg.Rag.IncludeHistory,
		}, nil),
		response.NewSynthesizer(llmProvider, synthCfg, sysLogger),
		citation.NewResolver(nil),
		cfg.Rag.TopK,
		sysLogger,
	)

	// 6. Services
	legalQueryService := service.NewLegalQueryService(uowFactory, ragPipeline, publisher, sysLogger)
	feedbackService := service.NewFeedbackService(feedback.NewAggregator(uowFactory), pubSub, FeedbackTopic, sysLogger)
	consumerService := service.NewConsumerService(pubSub, FeedbackTopic, publisher, sysLogger)

	// 7. Sessions and WebSocket Hub
	sessionRepo := memory.NewSessionRepository(cfg.Session.IdleTTL, cfg.Session.CleanupInterval)
	sessionManager := session.NewManager(sessionRepo, cfg.Session.MaxHistory)
	wsHub := websocket.NewHub(sessionManager, legalQueryService, wsLogger)
	// An expired session takes its connection with it.
	sessionRepo.OnEvicted(wsHub.Evict)

	c := &Container{
		LegalQueryController: controller.NewLegalQueryController(legalQueryService),
		FeedbackController:   controller.NewFeedbackController(feedbackService),
		ConsumerService:      consumerService,
		SessionHandler:       handler.NewSessionHandler(wsHub, wsLogger),
		WebSocketHub:         wsHub,
	}
	c.closers = append(c.closers, wsHub.Shutdown, natsPub.Close, func() { _ = pubSub.Close() })
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}
	c.closers = append(c.closers, func() {
		_ = sysLogger.Sync()
		_ = wsLogger.Sync()
	})
	return c
}

// Close releases connections, live sessions first.
func (c *Container) Close() {
	for _, fn := range c.closers {
		fn()
	}
}

func newRedisClient(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	return rdb
}
