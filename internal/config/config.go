package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/coinsniper/coinsniper/internal/models"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Market   MarketConfig
	Exchange ExchangeConfig
	Strategy StrategyConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// RedisConfig holds the price cache configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PriceTTL time.Duration
}

// MarketConfig holds the market data provider configuration
type MarketConfig struct {
	BaseURL string
}

// ExchangeConfig selects and parameterizes the order execution venue
type ExchangeConfig struct {
	Name         string
	PaperBalance decimal.Decimal
}

// StrategyConfig holds the sniper strategy parameters. Read once at engine
// construction; nothing here is consulted mid-run.
type StrategyConfig struct {
	MaxCoinAgeHours        float64
	MinMarketCap           decimal.Decimal
	MinVolume24h           decimal.Decimal
	PollInterval           time.Duration
	SellDwell              time.Duration
	MaxConcurrentPositions int
	ScanSchedule           string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "coinsniper"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "db/migrations"),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "sniper-events"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PriceTTL: getEnvSeconds("REDIS_PRICE_TTL_SECONDS", 2),
		},
		Market: MarketConfig{
			BaseURL: getEnv("MARKET_BASE_URL", "http://localhost:9000"),
		},
		Exchange: ExchangeConfig{
			Name:         getEnv("EXCHANGE", "paper"),
			PaperBalance: getEnvDecimal("EXCHANGE_PAPER_BALANCE", "1000"),
		},
		Strategy: StrategyConfig{
			MaxCoinAgeHours:        getEnvFloat("STRATEGY_MAX_COIN_AGE_HOURS", 24),
			MinMarketCap:           getEnvDecimal("STRATEGY_MIN_MARKET_CAP", "100000"),
			MinVolume24h:           getEnvDecimal("STRATEGY_MIN_VOLUME_24H", "50000"),
			PollInterval:           getEnvSeconds("STRATEGY_POLL_INTERVAL_SECONDS", 3),
			SellDwell:              getEnvSeconds("STRATEGY_SELL_DWELL_SECONDS", 30),
			MaxConcurrentPositions: getEnvInt("STRATEGY_MAX_CONCURRENT_POSITIONS", 1),
			ScanSchedule:           getEnv("STRATEGY_SCAN_SCHEDULE", "@every 1m"),
		},
	}
}

// Criteria returns the candidate filter derived from the strategy settings.
func (s *StrategyConfig) Criteria() models.CandidateCriteria {
	return models.CandidateCriteria{
		MaxAgeHours:  s.MaxCoinAgeHours,
		MinMarketCap: s.MinMarketCap,
		MinVolume24h: s.MinVolume24h,
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvInt(key, defaultValue)) * time.Second
}

func getEnvDecimal(key, defaultValue string) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	d, _ := decimal.NewFromString(defaultValue)
	return d
}
