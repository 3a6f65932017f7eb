package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the itinerary planner.
type Config struct {
	KnowledgeBase KnowledgeBaseConfig `yaml:"knowledge_base"`
	Index         IndexConfig         `yaml:"index"`
	Chunking      ChunkingConfig      `yaml:"chunking"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	Retrieve      RetrieveConfig      `yaml:"retrieve"`
	Weather       WeatherConfig       `yaml:"weather"`
	LLM           LLMConfig           `yaml:"llm"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// KnowledgeBaseConfig locates the destination documents.
type KnowledgeBaseConfig struct {
	Path     string   `yaml:"path"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// IndexConfig holds the persisted index location.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// ChunkingConfig controls the document splitter.
type ChunkingConfig struct {
	MaxSize int `yaml:"max_size"` // soft upper bound, in characters
	Overlap int `yaml:"overlap"`  // characters shared between consecutive chunks
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai", "ollama", "mock"
	Model     string `yaml:"model"`       // e.g., "text-embedding-3-small"
	BaseURL   string `yaml:"base_url"`    // override for self-hosted endpoints
	APIKeyEnv string `yaml:"api_key_env"` // environment variable for API key
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK         int `yaml:"top_k"`         // default single-query fragment count
	DestinationK int `yaml:"destination_k"` // widened count for destination lookups
}

// WeatherConfig holds the weather lookup configuration.
type WeatherConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Units     string `yaml:"units"`
	Lang      string `yaml:"lang"`
}

// LLMConfig holds the chat-completion endpoint configuration.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		KnowledgeBase: KnowledgeBaseConfig{
			Path:     "knowledge_base",
			Includes: []string{"*.txt"},
			Excludes: []string{},
		},
		Index: IndexConfig{
			Path: filepath.Join("data", "index.db"),
		},
		Chunking: ChunkingConfig{
			MaxSize: 500,
			Overlap: 50,
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
			BatchSize: 100,
		},
		Retrieve: RetrieveConfig{
			TopK:         3,
			DestinationK: 5,
		},
		Weather: WeatherConfig{
			BaseURL:   "https://api.openweathermap.org/data/2.5",
			APIKeyEnv: "OPENWEATHER_API_KEY",
			Units:     "metric",
			Lang:      "en",
		},
		LLM: LLMConfig{
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama-3.3-70b-versatile",
			APIKeyEnv:   "GROQ_API_KEY",
			Temperature: 0.7,
			MaxTokens:   2048,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for wayfarer.yaml).
func LoadFromDir(dir string) (*Config, error) {
	// Try wayfarer.yaml in the directory
	path := filepath.Join(dir, "wayfarer.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	// Try .wayfarer/config.yaml
	path = filepath.Join(dir, ".wayfarer", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	// Return defaults
	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IndexPath resolves the persisted index path against the root directory.
func IndexPath(dir string, cfg *Config) string {
	if filepath.IsAbs(cfg.Index.Path) {
		return cfg.Index.Path
	}
	return filepath.Join(dir, cfg.Index.Path)
}

// KnowledgeBasePath resolves the knowledge-base path against the root
// directory.
func KnowledgeBasePath(dir string, cfg *Config) string {
	if filepath.IsAbs(cfg.KnowledgeBase.Path) {
		return cfg.KnowledgeBase.Path
	}
	return filepath.Join(dir, cfg.KnowledgeBase.Path)
}
