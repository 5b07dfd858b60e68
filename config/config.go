// Package config loads application configuration from a JSON config
// file and CHIENOWA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the FAQ assistant.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Index    IndexConfig    `mapstructure:"index"`
	Drive    DriveConfig    `mapstructure:"drive"`
	Slack    SlackConfig    `mapstructure:"slack"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig contains completion service settings.
type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
}

func (l LLMConfig) Validate() error {
	if strings.TrimSpace(l.APIKey) == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if strings.TrimSpace(l.Model) == "" {
		return fmt.Errorf("llm.model is required")
	}
	return nil
}

// IndexConfig contains search index settings.
type IndexConfig struct {
	Dir  string `mapstructure:"dir"`
	TopK int    `mapstructure:"top_k"`
}

// DriveConfig contains Google Drive source settings.
type DriveConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	FolderID        string `mapstructure:"folder_id"`
}

// SlackConfig contains Slack source settings.
type SlackConfig struct {
	Token     string `mapstructure:"token"`
	ChannelID string `mapstructure:"channel_id"`
	DaysBack  int    `mapstructure:"days_back"`
}

// RedisConfig contains the processed-source ledger settings. An empty
// Addr disables the ledger.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// PipelineConfig contains extraction pipeline settings.
type PipelineConfig struct {
	MaxChunkSize int `mapstructure:"max_chunk_size"`
}

// Load reads configuration from path, or from the default search paths
// when path is empty. A missing config file is not an error; environment
// variables and defaults still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("llm.timeout", time.Minute)
	v.SetDefault("index.dir", "./data/index")
	v.SetDefault("index.top_k", 3)
	v.SetDefault("slack.days_back", 30)
	v.SetDefault("pipeline.max_chunk_size", 1000)

	// Empty defaults register the keys with viper so AutomaticEnv can
	// fill them during Unmarshal.
	for _, key := range []string{
		"llm.api_key", "drive.credentials_file", "drive.folder_id",
		"slack.token", "slack.channel_id", "redis.addr", "redis.password",
	} {
		v.SetDefault(key, "")
	}

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("CHIENOWA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.LLM.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
