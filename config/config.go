package config

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const (
	DefaultAPIURL   = "http://localhost:8000/api"
	DefaultBranchID = "1"
)

type Config struct {
	Port string

	APIURL      string
	BranchID    string
	SessionID   string
	CSRFToken   string
	HTTPTimeout time.Duration

	OrderEntryURL string
	PaymentURL    string

	StoreDriver string

	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string

	RedisHost string
	RedisPort string

	KafkaBroker     string
	KafkaTopic      string
	KafkaGroupID    string
	ActivityEnabled bool

	LogLevel string
}

// Load reads .env (when present) and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port: getEnv("PORT", "8084"),

		APIURL:      firstEnv([]string{"API_URL", "NEXT_PUBLIC_API_URL"}, DefaultAPIURL),
		BranchID:    firstEnv([]string{"API_BRANCH_ID", "NEXT_PUBLIC_API_BRANCH_ID"}, DefaultBranchID),
		SessionID:   os.Getenv("API_SESSION_ID"),
		CSRFToken:   os.Getenv("API_CSRF_TOKEN"),
		HTTPTimeout: getDuration("API_TIMEOUT", 10*time.Second),

		OrderEntryURL: getEnv("ORDER_ENTRY_URL", "http://localhost:3000/orders/new"),
		PaymentURL:    getEnv("PAYMENT_URL", "http://localhost:3000/transactions"),

		StoreDriver: getEnv("STORE_DRIVER", "memory"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBName:     os.Getenv("DB_NAME"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),

		RedisHost: getEnv("REDIS_HOST", "localhost"),
		RedisPort: getEnv("REDIS_PORT", "6379"),

		KafkaBroker:     os.Getenv("KAFKA_BROKER"),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "table-board"),
		KafkaGroupID:    getEnv("KAFKA_GROUP_ID", "table-board-activity"),
		ActivityEnabled: getBool("ACTIVITY_ENABLED", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func MustInitPostgres(cfg Config, logger *logrus.Logger) *sql.DB {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}

	if err = db.Ping(); err != nil {
		logger.WithError(err).Fatal("failed to ping database")
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func MustInitRedis(cfg Config, logger *logrus.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisHost + ":" + cfg.RedisPort,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect to redis")
	}

	return client
}

// NewKafkaWriter returns nil when no broker is configured.
func NewKafkaWriter(cfg Config) *kafka.Writer {
	if cfg.KafkaBroker == "" {
		return nil
	}
	return &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBroker),
		Topic:    cfg.KafkaTopic,
		Balancer: &kafka.LeastBytes{},
	}
}

// NewKafkaReader returns nil unless a broker is configured and activity
// aggregation is switched on.
func NewKafkaReader(cfg Config) *kafka.Reader {
	if cfg.KafkaBroker == "" || !cfg.ActivityEnabled {
		return nil
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.KafkaBroker},
		Topic:    cfg.KafkaTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstEnv(keys []string, defaultValue string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	// bare numbers are seconds
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
