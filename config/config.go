package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port         string         `mapstructure:"port"`
	Provider     string         `mapstructure:"provider"` // "gemini" or "openai"
	AIEndpoint   string         `mapstructure:"ai_endpoint"`
	Model        string         `mapstructure:"model"`
	EmbedModel   string         `mapstructure:"embed_model"`
	GoogleAPIKey string         `mapstructure:"GOOGLE_API_KEY"`
	OpenAIAPIKey string         `mapstructure:"OPENAI_API_KEY"`
	UploadDir    string         `mapstructure:"upload_dir"`
	DatabasePath string         `mapstructure:"database_path"`
	Weaviate     WeaviateConfig `mapstructure:"weaviate"`
	Pipeline     PipelineConfig `mapstructure:"pipeline"`
}

type WeaviateConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"WEAVIATE_APIKEY"`
}

// PipelineConfig carries every tunable of the document-to-insight pipeline.
// Nothing here is hard-coded inside the pipeline itself.
type PipelineConfig struct {
	MaxChunkSize      int           `mapstructure:"max_chunk_size"`
	OverlapSize       int           `mapstructure:"overlap_size"`
	TopK              int           `mapstructure:"top_k"`
	PromptTokenBudget int           `mapstructure:"prompt_token_budget"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	BackoffBase       time.Duration `mapstructure:"backoff_base"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("port", "8000")
	v.SetDefault("provider", "gemini")
	v.SetDefault("model", "gemini-1.5-flash")
	v.SetDefault("embed_model", "text-embedding-004")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("database_path", "startup_analyzer.db")
	v.SetDefault("pipeline.max_chunk_size", 1500)
	v.SetDefault("pipeline.overlap_size", 150)
	v.SetDefault("pipeline.top_k", 3)
	v.SetDefault("pipeline.prompt_token_budget", 6000)
	v.SetDefault("pipeline.max_attempts", 3)
	v.SetDefault("pipeline.backoff_base", 500*time.Millisecond)
	v.SetDefault("pipeline.request_timeout", 60*time.Second)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.BindEnv("GOOGLE_API_KEY")
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("weaviate.WEAVIATE_APIKEY", "WEAVIATE_APIKEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}
