package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	AI          AIConfig
	Corpus      CorpusConfig
	VectorStore VectorStoreConfig
	Translation TranslationConfig
	Prometheus  PrometheusConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	URL string
}

type RedisConfig struct {
	Host string
	Port string
	DB   int
}

// AIConfig OpenAI兼容服务配置（可通过BaseURL指向OpenRouter等网关）
type AIConfig struct {
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	EmbeddingModel string
	LLMModel       string
	Temperature    float64
	MaxTokens      int
	TopK           int
}

// CorpusConfig 教材语料切分配置
type CorpusConfig struct {
	Root         string
	ChunkSize    int
	ChunkOverlap int
}

type VectorStoreConfig struct {
	Provider   string // qdrant 或 milvus
	Collection string
	VectorSize int
	Distance   string
	Qdrant     QdrantConfig
	Milvus     MilvusConfig
}

type QdrantConfig struct {
	Endpoint string
	APIKey   string
	UseTLS   bool
}

type MilvusConfig struct {
	Address  string
	Username string
	Password string
	Database string
	UseTLS   bool
}

// TranslationConfig 译文后处理配置
type TranslationConfig struct {
	SourceLang    string
	TargetLang    string
	CacheProvider string // memory 或 redis
}

type PrometheusConfig struct {
	Enabled bool
}

var AppConfig *Config

// GetAppConfig 获取全局配置
func GetAppConfig() *Config {
	return AppConfig
}

// Load 加载配置：默认值 -> 配置文件（可选） -> 环境变量覆盖
func Load() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./conf")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// 配置文件缺失不致命，全部走默认值和环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	applyEnvOverrides()

	AppConfig = &Config{
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
			Env:  viper.GetString("server.env"),
		},
		Database: DatabaseConfig{
			URL: viper.GetString("database.url"),
		},
		Redis: RedisConfig{
			Host: viper.GetString("redis.host"),
			Port: viper.GetString("redis.port"),
			DB:   viper.GetInt("redis.db"),
		},
		AI: AIConfig{
			OpenAIAPIKey:   viper.GetString("ai.openai_api_key"),
			OpenAIBaseURL:  viper.GetString("ai.openai_base_url"),
			EmbeddingModel: viper.GetString("ai.embedding_model"),
			LLMModel:       viper.GetString("ai.llm_model"),
			Temperature:    viper.GetFloat64("ai.temperature"),
			MaxTokens:      viper.GetInt("ai.max_tokens"),
			TopK:           viper.GetInt("ai.top_k"),
		},
		Corpus: CorpusConfig{
			Root:         viper.GetString("corpus.root"),
			ChunkSize:    viper.GetInt("corpus.chunk_size"),
			ChunkOverlap: viper.GetInt("corpus.chunk_overlap"),
		},
		VectorStore: VectorStoreConfig{
			Provider:   viper.GetString("vector_store.provider"),
			Collection: viper.GetString("vector_store.collection"),
			VectorSize: viper.GetInt("vector_store.vector_size"),
			Distance:   viper.GetString("vector_store.distance"),
			Qdrant: QdrantConfig{
				Endpoint: viper.GetString("vector_store.qdrant.endpoint"),
				APIKey:   viper.GetString("vector_store.qdrant.api_key"),
				UseTLS:   viper.GetBool("vector_store.qdrant.use_tls"),
			},
			Milvus: MilvusConfig{
				Address:  viper.GetString("vector_store.milvus.address"),
				Username: viper.GetString("vector_store.milvus.username"),
				Password: viper.GetString("vector_store.milvus.password"),
				Database: viper.GetString("vector_store.milvus.database"),
				UseTLS:   viper.GetBool("vector_store.milvus.use_tls"),
			},
		},
		Translation: TranslationConfig{
			SourceLang:    viper.GetString("translation.source_lang"),
			TargetLang:    viper.GetString("translation.target_lang"),
			CacheProvider: viper.GetString("translation.cache_provider"),
		},
		Prometheus: PrometheusConfig{
			Enabled: viper.GetBool("prometheus.enabled"),
		},
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("ai.embedding_model", "text-embedding-3-small")
	viper.SetDefault("ai.llm_model", "openai/gpt-3.5-turbo")
	viper.SetDefault("ai.temperature", 0.7)
	viper.SetDefault("ai.max_tokens", 500)
	viper.SetDefault("ai.top_k", 5)

	viper.SetDefault("corpus.root", "../docs")
	viper.SetDefault("corpus.chunk_size", 1000)
	viper.SetDefault("corpus.chunk_overlap", 200)

	viper.SetDefault("vector_store.provider", "qdrant")
	viper.SetDefault("vector_store.collection", "physical_ai_textbook")
	viper.SetDefault("vector_store.vector_size", 1536)
	viper.SetDefault("vector_store.distance", "Cosine")
	viper.SetDefault("vector_store.milvus.database", "default")

	viper.SetDefault("translation.source_lang", "en")
	viper.SetDefault("translation.target_lang", "ur")
	viper.SetDefault("translation.cache_provider", "memory")

	viper.SetDefault("prometheus.enabled", true)
}

// applyEnvOverrides 兼容历史部署使用的环境变量名
func applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		viper.Set("ai.openai_api_key", key)
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		viper.Set("ai.openai_base_url", baseURL)
	}
	if model := os.Getenv("EMBEDDING_MODEL"); model != "" {
		viper.Set("ai.embedding_model", model)
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		viper.Set("ai.llm_model", model)
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		viper.Set("database.url", dbURL)
	}
	if endpoint := os.Getenv("QDRANT_URL"); endpoint != "" {
		viper.Set("vector_store.qdrant.endpoint", endpoint)
	}
	if apiKey := os.Getenv("QDRANT_API_KEY"); apiKey != "" {
		viper.Set("vector_store.qdrant.api_key", apiKey)
	}
	if name := os.Getenv("QDRANT_COLLECTION_NAME"); name != "" {
		viper.Set("vector_store.collection", name)
	}
	if topK := os.Getenv("TOP_K_RESULTS"); topK != "" {
		viper.Set("ai.top_k", topK)
	}
	if temperature := os.Getenv("TEMPERATURE"); temperature != "" {
		viper.Set("ai.temperature", temperature)
	}
	if maxTokens := os.Getenv("MAX_TOKENS"); maxTokens != "" {
		viper.Set("ai.max_tokens", maxTokens)
	}
	if chunkSize := os.Getenv("CHUNK_SIZE"); chunkSize != "" {
		viper.Set("corpus.chunk_size", chunkSize)
	}
	if overlap := os.Getenv("CHUNK_OVERLAP"); overlap != "" {
		viper.Set("corpus.chunk_overlap", overlap)
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		viper.Set("server.port", port)
	}
}

// Validate 校验启动必需的配置项，占位值视为缺失
func Validate(cfg *Config) error {
	required := map[string]string{
		"OPENAI_API_KEY": cfg.AI.OpenAIAPIKey,
		"QDRANT_URL":     cfg.VectorStore.Qdrant.Endpoint,
		"DATABASE_URL":   cfg.Database.URL,
	}
	if cfg.VectorStore.Provider == "milvus" {
		delete(required, "QDRANT_URL")
		required["MILVUS_ADDRESS"] = cfg.VectorStore.Milvus.Address
	}

	var missing []string
	for name, value := range required {
		if value == "" || strings.Contains(value, "your_") || strings.Contains(value, "placeholder") {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing or invalid configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
