package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/HKUGenAI/legal-chatbot/internal/common"
	"github.com/HKUGenAI/legal-chatbot/internal/handlers"
	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
	"github.com/HKUGenAI/legal-chatbot/internal/services/dialogue"
	"github.com/HKUGenAI/legal-chatbot/internal/services/llm"
	"github.com/HKUGenAI/legal-chatbot/internal/services/processing"
	"github.com/HKUGenAI/legal-chatbot/internal/services/retrieval"
	"github.com/HKUGenAI/legal-chatbot/internal/services/sessions"
	"github.com/HKUGenAI/legal-chatbot/internal/services/similarity"
	"github.com/HKUGenAI/legal-chatbot/internal/services/topics"
	"github.com/HKUGenAI/legal-chatbot/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager

	// Core services
	LLMService       interfaces.LLMService
	SimilarityScorer interfaces.SimilarityScorer
	RetrievalService interfaces.RetrievalService
	TopicService     interfaces.TopicService
	Controller       interfaces.DialogueController
	SessionManager   *sessions.Manager

	// Background maintenance
	ProcessingService *processing.Service
	Scheduler         *processing.Scheduler

	// HTTP handlers
	ChatHandler   *handlers.ChatHandler
	TopicsHandler *handlers.TopicsHandler
	CorpusHandler *handlers.CorpusHandler
	StatusHandler *handlers.StatusHandler
	WSHandler     *handlers.WebSocketHandler
}

// New wires the application together. Construction order follows the
// dependency chain: storage, LLM, domain services, handlers.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	storageManager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	badgerManager := storageManager.(*badger.Manager)
	if err := badgerManager.LoadCorpusFromFiles(config.Corpus.Dir); err != nil {
		logger.Warn().Err(err).Msg("Corpus load failed, continuing with stored passages")
	}

	llmService, err := llm.NewService(config, storageManager.KeyValueStorage(), logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize LLM service: %w", err)
	}

	topicService, err := topics.NewService(config.Topics.Path, llmService, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to load topic taxonomy: %w", err)
	}

	scorer := similarity.NewScorer(llmService, logger)
	retrievalService := retrieval.NewService(storageManager.PassageStorage(), llmService, config.Retrieval.MinSimilarity, logger)
	controller := dialogue.NewController(llmService, scorer, retrievalService, topicService, config, logger)
	sessionManager := sessions.NewManager(controller, storageManager.SessionStorage(), &config.Sessions, logger)

	processingService := processing.NewService(storageManager.PassageStorage(), llmService, config, logger)
	scheduler := processing.NewScheduler(processingService, sessionManager, badgerManager, logger)

	wsHandler := handlers.NewWebSocketHandler(logger)

	app := &App{
		Config:            config,
		Logger:            logger,
		StorageManager:    storageManager,
		LLMService:        llmService,
		SimilarityScorer:  scorer,
		RetrievalService:  retrievalService,
		TopicService:      topicService,
		Controller:        controller,
		SessionManager:    sessionManager,
		ProcessingService: processingService,
		Scheduler:         scheduler,
		ChatHandler:       handlers.NewChatHandler(sessionManager, llmService, wsHandler, logger),
		TopicsHandler:     handlers.NewTopicsHandler(topicService, logger),
		CorpusHandler:     handlers.NewCorpusHandler(storageManager.PassageStorage(), retrievalService, scheduler, logger),
		StatusHandler:     handlers.NewStatusHandler(config, storageManager.PassageStorage(), sessionManager, logger),
		WSHandler:         wsHandler,
	}

	if config.Processing.Enabled {
		if err := scheduler.Start(config.Processing.Schedule); err != nil {
			logger.Warn().Err(err).Msg("Failed to start maintenance scheduler")
		}
	}

	logger.Info().Msg("Application initialized")
	return app, nil
}

// Close releases application resources in reverse construction order
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	return nil
}
