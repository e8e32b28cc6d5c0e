package config

import (
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	LLM       LLMConfig       `yaml:"llm"`
	Prompt    PromptConfig    `yaml:"prompt"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite, mysql
	DSN  string `yaml:"dsn"`
}

type LLMConfig struct {
	DefaultModel string          `yaml:"default_model"`
	Timeout      time.Duration   `yaml:"timeout"` // 单次上游调用超时
	Anthropic    AnthropicConfig `yaml:"anthropic"`
	OpenAI       OpenAIConfig    `yaml:"openai"`
}

type AnthropicConfig struct {
	APIURL    string `yaml:"api_url"`
	APIKey    string `yaml:"-"` // 仅从环境变量读取
	Version   string `yaml:"version"`
	MaxTokens int    `yaml:"max_tokens"`
}

type OpenAIConfig struct {
	APIURL    string `yaml:"api_url"`
	APIKey    string `yaml:"-"` // 仅从环境变量读取
	MaxTokens int    `yaml:"max_tokens"`
}

type PromptConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type ReconcileConfig struct {
	// MatchBrand 为 true 时按 (brand, reference_name) 判断是否已存在，默认只比较 reference_name
	MatchBrand bool `yaml:"match_brand"`
}

var (
	cfg  *Config
	once sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		cfg = loadConfig()
	})
	return cfg
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "./data/app.db",
		},
		LLM: LLMConfig{
			DefaultModel: "claude-3-opus-20240229",
			Timeout:      60 * time.Second,
			Anthropic: AnthropicConfig{
				APIURL:    "https://api.anthropic.com/v1/messages",
				Version:   "2023-06-01",
				MaxTokens: 1024,
			},
			OpenAI: OpenAIConfig{
				APIURL:    "https://api.openai.com/v1/chat/completions",
				MaxTokens: 1024,
			},
		},
		Prompt: PromptConfig{
			CacheTTL: 5 * time.Minute,
		},
	}
}

func loadConfig() *Config {
	config := Default()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		yaml.Unmarshal(data, config)
	}

	applyEnv(config)
	return config
}

// applyEnv 环境变量优先级高于配置文件，密钥只从环境变量读取
func applyEnv(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		config.Server.Mode = mode
	}

	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if dbDSN := os.Getenv("DB_DSN"); dbDSN != "" {
		config.Database.DSN = dbDSN
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.LLM.Anthropic.APIKey = key
	}
	if url := os.Getenv("ANTHROPIC_API_URL"); url != "" {
		config.LLM.Anthropic.APIURL = url
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.LLM.OpenAI.APIKey = key
	}
	if url := os.Getenv("OPENAI_API_URL"); url != "" {
		config.LLM.OpenAI.APIURL = url
	}
	if model := os.Getenv("DEFAULT_AI_MODEL"); model != "" {
		config.LLM.DefaultModel = model
	}
	if timeout := os.Getenv("LLM_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.LLM.Timeout = d
		}
	}
}
