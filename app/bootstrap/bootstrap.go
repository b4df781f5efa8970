package bootstrap

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aihub/textbook-rag/internal/config"
	"github.com/aihub/textbook-rag/internal/database"
	"github.com/aihub/textbook-rag/internal/knowledge"
	"github.com/aihub/textbook-rag/internal/logger"
	"github.com/aihub/textbook-rag/internal/rag"
	"github.com/aihub/textbook-rag/internal/services"
	"github.com/aihub/textbook-rag/internal/translation"
	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// App encapsulates lifecycle resources that need to be cleaned up on shutdown.
type App struct {
	ChatService        *services.ChatService
	SessionService     *services.SessionService
	ProfileService     *services.ProfileService
	TranslationService *translation.Service
	Metrics            *services.MetricsService
	VectorStore        knowledge.VectorStore
	Ingestor           *knowledge.Ingestor

	cleanupTasks []func() error
}

// Global app instance for controllers to access
var globalApp *App

// GetApp returns the global app instance
func GetApp() *App {
	return globalApp
}

// Init bootstraps configuration, logger, database connections and the
// service graph required by the Beego application.
func Init() (*App, error) {
	// Load environment variables from .env if present (non-fatal if missing).
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.GetAppConfig()

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	if err := logger.InitLogger(cfg.Server.Env, os.Getenv("LOG_LEVEL")); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	app := &App{}

	if _, err := database.InitDB(); err != nil {
		return nil, err
	}

	// 翻译缓存按配置选择进程内或Redis实现
	var cache translation.Cache
	if cfg.Translation.CacheProvider == "redis" {
		client, err := database.InitRedis()
		if err != nil {
			return nil, err
		}
		app.cleanupTasks = append(app.cleanupTasks, database.CloseRedis)
		cache = translation.NewRedisCache(client)
	} else {
		cache = translation.NewMemoryCache()
	}

	embedder := knowledge.NewOpenAIEmbedder(
		cfg.AI.OpenAIAPIKey,
		cfg.AI.OpenAIBaseURL,
		cfg.AI.EmbeddingModel,
	)

	store, err := buildVectorStore(cfg)
	if err != nil {
		return nil, err
	}
	app.VectorStore = store

	chunker, err := knowledge.NewChunker(cfg.Corpus.ChunkSize, cfg.Corpus.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("invalid chunking config: %w", err)
	}

	var metrics *services.MetricsService
	if cfg.Prometheus.Enabled {
		metrics = services.NewMetricsService()
	}
	app.Metrics = metrics

	app.Ingestor = knowledge.NewIngestor(chunker, embedder, store, cfg.VectorStore.Collection)
	if metrics != nil {
		app.Ingestor.WithMetrics(metrics)
	}

	retriever := rag.NewRetriever(embedder, store, cfg.VectorStore.Collection, cfg.AI.TopK)

	clientConfig := openai.DefaultConfig(cfg.AI.OpenAIAPIKey)
	if cfg.AI.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.AI.OpenAIBaseURL
	}
	completionClient := openai.NewClientWithConfig(clientConfig)

	engine := rag.NewEngine(retriever, completionClient, cfg.AI.LLMModel, cfg.AI.Temperature, cfg.AI.MaxTokens)

	translator := translation.NewGoogleTranslator(10 * time.Second)
	app.TranslationService = translation.NewService(
		translator, cache,
		cfg.Translation.SourceLang,
		cfg.Translation.TargetLang,
	)
	if metrics != nil {
		app.TranslationService.WithMetrics(metrics)
	}

	app.SessionService = services.NewSessionService(database.DB)
	app.ProfileService = services.NewProfileService(database.DB)
	app.ChatService = services.NewChatService(
		app.SessionService,
		app.ProfileService,
		engine,
		app.TranslationService,
		metrics,
	)

	globalApp = app
	logger.Info("application bootstrapped",
		zap.String("env", cfg.Server.Env),
		zap.String("vector_store", cfg.VectorStore.Provider),
		zap.String("llm_model", cfg.AI.LLMModel))

	return app, nil
}

func buildVectorStore(cfg *config.Config) (knowledge.VectorStore, error) {
	switch cfg.VectorStore.Provider {
	case "milvus":
		return knowledge.NewMilvusVectorStore(knowledge.MilvusOptions{
			Address:  cfg.VectorStore.Milvus.Address,
			Username: cfg.VectorStore.Milvus.Username,
			Password: cfg.VectorStore.Milvus.Password,
			Database: cfg.VectorStore.Milvus.Database,
			Distance: cfg.VectorStore.Distance,
			UseTLS:   cfg.VectorStore.Milvus.UseTLS,
		})
	default:
		return knowledge.NewQdrantVectorStore(knowledge.QdrantOptions{
			Endpoint: cfg.VectorStore.Qdrant.Endpoint,
			APIKey:   cfg.VectorStore.Qdrant.APIKey,
			Distance: cfg.VectorStore.Distance,
			UseTLS:   cfg.VectorStore.Qdrant.UseTLS,
		})
	}
}

// Shutdown releases resources acquired during Init.
func (a *App) Shutdown() {
	for _, task := range a.cleanupTasks {
		if err := task(); err != nil {
			logger.Warn("cleanup task failed", zap.Error(err))
		}
	}
	logger.Sync()
}
