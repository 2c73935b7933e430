package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Quotes     QuotesConfig
	Refresh    RefreshConfig
	Metadata   MetadataConfig
	Log        LogConfig
	Migrations string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	Host            string
	ShutdownTimeout time.Duration
}

// Addr returns host:port for http.Server
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// RedisConfig holds Redis configuration. An empty Addr disables the quote cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// KafkaConfig holds Kafka configuration. No brokers disables both directions.
type KafkaConfig struct {
	Brokers     []string
	EventsTopic string
	TradesTopic string
	GroupID     string
}

// Enabled reports whether any brokers are configured
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// QuotesConfig holds quote API configuration
type QuotesConfig struct {
	BaseURL           string
	DefaultFXRate     decimal.Decimal
	Timeout           time.Duration
	RequestsPerSecond int
}

// RefreshConfig holds the periodic quote refresh settings
type RefreshConfig struct {
	Enabled  bool
	Schedule string
	Timeout  time.Duration
}

// MetadataConfig holds the instrument name list paths
type MetadataConfig struct {
	KRStockList string
	USStockList string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level   string
	Format  string
	Service string
}

// Load reads configuration from environment variables, after loading a .env
// file from the working directory when one exists
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "portfolio"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			URL:      getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "portfolio"),
			TTL:      getEnvAsDuration("REDIS_QUOTE_TTL", 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers:     getEnvAsList("KAFKA_BROKERS"),
			EventsTopic: getEnv("KAFKA_EVENTS_TOPIC", "portfolio-events"),
			TradesTopic: getEnv("KAFKA_TRADES_TOPIC", "trade-events"),
			GroupID:     getEnv("KAFKA_GROUP_ID", "portfolio-tracker"),
		},
		Quotes: QuotesConfig{
			BaseURL:           getEnv("QUOTE_API_URL", "http://localhost:5000"),
			DefaultFXRate:     getEnvAsDecimal("DEFAULT_FX_RATE", decimal.NewFromInt(1450)),
			Timeout:           getEnvAsDuration("QUOTE_API_TIMEOUT", 5*time.Second),
			RequestsPerSecond: getEnvAsInt("QUOTE_API_RPS", 5),
		},
		Refresh: RefreshConfig{
			Enabled:  getEnvAsBool("REFRESH_ENABLED", true),
			Schedule: getEnv("REFRESH_SCHEDULE", "@every 1m"),
			Timeout:  getEnvAsDuration("REFRESH_TIMEOUT", 50*time.Second),
		},
		Metadata: MetadataConfig{
			KRStockList: getEnv("KR_STOCK_LIST", "data/stock_list_kr.csv"),
			USStockList: getEnv("US_STOCK_LIST", "data/stock_list_us.csv"),
		},
		Log: LogConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Format:  getEnv("LOG_FORMAT", "json"),
			Service: getEnv("SERVICE_NAME", "portfolio-tracker"),
		},
		Migrations: getEnv("MIGRATIONS_PATH", "db/migrations"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !c.Quotes.DefaultFXRate.IsPositive() {
		return fmt.Errorf("DEFAULT_FX_RATE must be positive")
	}
	if c.Quotes.RequestsPerSecond <= 0 {
		return fmt.Errorf("QUOTE_API_RPS must be positive")
	}
	if c.Refresh.Enabled && c.Refresh.Schedule == "" {
		return fmt.Errorf("REFRESH_SCHEDULE is required when refresh is enabled")
	}
	return nil
}

// ConnectionString returns the PostgreSQL connection string. DATABASE_URL wins when set.
func (d *DatabaseConfig) ConnectionString() string {
	if d.URL != "" {
		return d.URL
	}
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if v, err := decimal.NewFromString(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping empty items
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
