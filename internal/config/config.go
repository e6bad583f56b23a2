// Package config provides typed application configuration loaded via Viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/jonesrussell/newswatch/internal/logger"
)

// Default values applied when neither config file nor environment provides one.
const (
	DefaultServerAddress  = ":8080"
	DefaultReadTimeout    = 15 * time.Second
	DefaultWriteTimeout   = 15 * time.Second
	DefaultIdleTimeout    = 60 * time.Second
	DefaultPageSize       = 20
	DefaultMaxConcurrent  = 20
	DefaultWindowMinutes  = 60
	DefaultRunInterval    = 60
	DefaultRequestTimeout = 30 * time.Second
	DefaultEmbeddingModel = "text-embedding-ada-002"
	DefaultChatModel      = "gpt-4o-mini"
	DefaultSystemPrompt   = "You are a helpful assistant that provides insights based on crypto news articles."
	DefaultSearchLimit    = 5
)

// Config is the root application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logger   logger.Config  `mapstructure:"logger"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// OpenAIConfig holds embedding and chat completion settings.
type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	ChatModel      string `mapstructure:"chat_model"`
	SystemPrompt   string `mapstructure:"system_prompt"`
}

// ScraperConfig holds ingestion run settings.
type ScraperConfig struct {
	// Sources lists the enabled source adapters by name.
	Sources []string `mapstructure:"sources"`
	// PageSize is the listing page size requested from each source.
	PageSize int `mapstructure:"page_size"`
	// MaxConcurrent bounds in-flight network operations across all adapters.
	MaxConcurrent int `mapstructure:"max_concurrent"`
	// WindowMinutes is the recency window applied after fan-in.
	WindowMinutes int `mapstructure:"window_minutes"`
	// StrictWindow drops articles whose publish date is missing or unparsable.
	// The default keeps them to avoid silent data loss.
	StrictWindow bool `mapstructure:"strict_window"`
	// RunIntervalMinutes is the scheduler interval between ingestion runs.
	RunIntervalMinutes int `mapstructure:"run_interval_minutes"`
	// RequestTimeout bounds each outbound HTTP request.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Errors returned during configuration validation.
var (
	ErrMissingDatabaseHost = errors.New("database host is required")
	ErrMissingOpenAIKey    = errors.New("openai api key is required")
	ErrNoSources           = errors.New("at least one source must be enabled")
)

// Load unmarshals the Viper state into a validated Config.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills zero values that validation does not require explicitly.
func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = DefaultServerAddress
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = DefaultIdleTimeout
	}
	if c.Scraper.PageSize == 0 {
		c.Scraper.PageSize = DefaultPageSize
	}
	if c.Scraper.MaxConcurrent == 0 {
		c.Scraper.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.Scraper.WindowMinutes == 0 {
		c.Scraper.WindowMinutes = DefaultWindowMinutes
	}
	if c.Scraper.RunIntervalMinutes == 0 {
		c.Scraper.RunIntervalMinutes = DefaultRunInterval
	}
	if c.Scraper.RequestTimeout == 0 {
		c.Scraper.RequestTimeout = DefaultRequestTimeout
	}
	if c.OpenAI.EmbeddingModel == "" {
		c.OpenAI.EmbeddingModel = DefaultEmbeddingModel
	}
	if c.OpenAI.ChatModel == "" {
		c.OpenAI.ChatModel = DefaultChatModel
	}
	if c.OpenAI.SystemPrompt == "" {
		c.OpenAI.SystemPrompt = DefaultSystemPrompt
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
}

// ValidateIngestion checks the settings the scrape and scheduler commands need.
func (c *Config) ValidateIngestion() error {
	if c.Database.Host == "" {
		return ErrMissingDatabaseHost
	}
	if c.OpenAI.APIKey == "" {
		return ErrMissingOpenAIKey
	}
	if len(c.Scraper.Sources) == 0 {
		return ErrNoSources
	}
	return nil
}

// ValidateServer checks the settings the httpd command needs.
func (c *Config) ValidateServer() error {
	if c.Database.Host == "" {
		return ErrMissingDatabaseHost
	}
	if c.OpenAI.APIKey == "" {
		return ErrMissingOpenAIKey
	}
	return nil
}
