package config

import (
	"errors"
	"os"
	"time"
)

// ValkeyConfig описывает подключение к кешу популярности
type ValkeyConfig struct {
	Enabled       bool
	Addr          string
	Password      string
	DB            int
	PopularityTTL time.Duration
}

// ElasticsearchConfig описывает поисковый индекс спектаклей
type ElasticsearchConfig struct {
	Enabled    bool
	URL        string
	Index      string
	Username   string
	Password   string
	MaxRetries int
	Timeout    time.Duration
}

func loadValkeyConfig() ValkeyConfig {
	return ValkeyConfig{
		Enabled:       getEnvBool("VALKEY_ENABLED", true),
		Addr:          getEnv("VALKEY_ADDR", "localhost:6379"),
		Password:      os.Getenv("VALKEY_PASSWORD"),
		DB:            getEnvInt("VALKEY_DB", 0),
		PopularityTTL: getEnvDuration("POPULARITY_CACHE_TTL", 5*time.Minute),
	}
}

func loadElasticsearchConfig() ElasticsearchConfig {
	return ElasticsearchConfig{
		Enabled:    getEnvBool("ELASTICSEARCH_ENABLED", true),
		URL:        getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
		Index:      getEnv("ELASTICSEARCH_INDEX", "plays"),
		Username:   os.Getenv("ELASTICSEARCH_USERNAME"),
		Password:   os.Getenv("ELASTICSEARCH_PASSWORD"),
		MaxRetries: getEnvInt("ELASTICSEARCH_MAX_RETRIES", 3),
		Timeout:    getEnvDuration("ELASTICSEARCH_TIMEOUT", 30*time.Second),
	}
}

// Validate отклоняет конфигурацию, с которой нельзя запускаться в release режиме
func (c *Config) Validate() error {
	if c.GinMode == "release" && c.Auth.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in release mode")
	}
	if c.Valkey.Enabled && c.Valkey.PopularityTTL <= 0 {
		return errors.New("POPULARITY_CACHE_TTL must be positive")
	}
	if c.Jobs.PopularityRefreshInterval <= 0 {
		return errors.New("POPULARITY_REFRESH_INTERVAL must be positive")
	}
	return nil
}
