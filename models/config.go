// Package models defines data structures for configuration and extraction results.
package models

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPrice         = 49.99
	DefaultRating        = 4.5
	DefaultCategory      = "General"
	DefaultStatus        = "Unknown"
	DefaultSnippetLength = 120
	DefaultMaxInputBytes = 256 * 1024
	DefaultDBName        = "llm-chat-extractor.db"
)

// ExtractConfig holds the fallback values applied by the extraction engines.
type ExtractConfig struct {
	DefaultPrice    float64 `yaml:"default_price"`
	DefaultRating   float64 `yaml:"default_rating"`
	DefaultCategory string  `yaml:"default_category"`
	DefaultStatus   string  `yaml:"default_status"`
	NormalizeHTML   bool    `yaml:"normalize_html"`
	SnippetLength   int     `yaml:"snippet_length"`
	MaxInputBytes   int     `yaml:"max_input_bytes"`
}

// ServeConfig holds HTTP settings for the serve command.
type ServeConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// AppConfig is the top level configuration file layout.
type AppConfig struct {
	Extract  ExtractConfig `yaml:"extract"`
	DBPath   string        `yaml:"db_path"`
	Serve    ServeConfig   `yaml:"serve"`
	LogLevel string        `yaml:"log_level"`
}

// DefaultExtractConfig returns the fallback values used when no config is given.
func DefaultExtractConfig() ExtractConfig {
	return ExtractConfig{
		DefaultPrice:    DefaultPrice,
		DefaultRating:   DefaultRating,
		DefaultCategory: DefaultCategory,
		DefaultStatus:   DefaultStatus,
		NormalizeHTML:   true,
		SnippetLength:   DefaultSnippetLength,
		MaxInputBytes:   DefaultMaxInputBytes,
	}
}

func DefaultConfig() *AppConfig {
	return &AppConfig{
		Extract: DefaultExtractConfig(),
		Serve: ServeConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		LogLevel: "info",
	}
}

// LoadConfig reads a YAML config file on top of the defaults, then applies
// LCE_* environment overrides. An empty path or a missing file yields the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *AppConfig) applyEnv() {
	c.DBPath = getEnv("LCE_DB_PATH", c.DBPath)
	c.Serve.Addr = getEnv("LCE_LISTEN_ADDR", c.Serve.Addr)
	c.LogLevel = getEnv("LCE_LOG_LEVEL", c.LogLevel)
	c.Extract.DefaultPrice = getEnvAsFloat("LCE_DEFAULT_PRICE", c.Extract.DefaultPrice)
	c.Extract.DefaultCategory = getEnv("LCE_DEFAULT_CATEGORY", c.Extract.DefaultCategory)
}

// Validate checks the loaded configuration.
func (c *AppConfig) Validate() error {
	if c.Extract.DefaultPrice < 0 {
		return fmt.Errorf("extract.default_price must not be negative, got %v", c.Extract.DefaultPrice)
	}
	if c.Extract.DefaultRating < 0 || c.Extract.DefaultRating > 5 {
		return fmt.Errorf("extract.default_rating must be within 0..5, got %v", c.Extract.DefaultRating)
	}
	if c.Extract.SnippetLength < 0 {
		return fmt.Errorf("extract.snippet_length must not be negative")
	}
	if c.Serve.Addr == "" {
		return fmt.Errorf("serve.addr is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
