package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"theater/internal/database"
	"theater/internal/messaging"
)

const defaultJWTSecret = "change-me"

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// Сколько ждать базу данных при старте
	DBWaitTimeout time.Duration

	Database      database.Config
	NATS          messaging.Config
	Valkey        ValkeyConfig
	Elasticsearch ElasticsearchConfig
	Auth          AuthConfig
	Jobs          JobsConfig
}

// AuthConfig содержит параметры выпуска JWT и хеширования паролей
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// JobsConfig содержит расписание фоновых задач
type JobsConfig struct {
	PopularityRefreshInterval time.Duration
}

// Load загружает конфигурацию из .env (если есть) и переменных окружения
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,
		DBWaitTimeout:  getEnvDuration("DB_WAIT_TIMEOUT", 60*time.Second),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "theater"),
			Password:           getEnv("DB_PASSWORD", "theater"),
			DBName:             getEnv("DB_NAME", "theater"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			Enabled:   getEnvBool("NATS_ENABLED", true),
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "theater"),
			ClientID:  getEnv("NATS_CLIENT_ID", "theater-api"),
		},

		Valkey:        loadValkeyConfig(),
		Elasticsearch: loadElasticsearchConfig(),

		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", defaultJWTSecret),
			TokenTTL:   getEnvDuration("JWT_TTL", 24*time.Hour),
			BcryptCost: getEnvInt("BCRYPT_COST", 10),
		},

		Jobs: JobsConfig{
			PopularityRefreshInterval: getEnvDuration("POPULARITY_REFRESH_INTERVAL", time.Minute),
		},
	}
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration понимает формат time.ParseDuration, например "90s" или "5m"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
