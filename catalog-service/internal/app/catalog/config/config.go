package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const defaultDatabase = "ecommerce"

var productionOrigins = []string{
	"https://ecommerce-app-omega-two-64.vercel.app",
	"https://ecommerce-cart-service-f2a908c60d8a.herokuapp.com",
	"https://34.95.5.30.nip.io",
	"http://34.95.5.30.nip.io",
	"https://ecommerce-product-service-56575270905a.herokuapp.com",
}

var developmentOrigins = []string{
	"https://ecommerce-app-omega-two-64.vercel.app",
	"https://34.95.5.30.nip.io",
	"http://34.95.5.30.nip.io",
	"http://localhost:3000",
	"http://localhost:8080",
}

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host        string
	Port        string
	Environment string
	CORSOrigins []string
	// MaxBodyBytes caps JSON request bodies.
	MaxBodyBytes int64
}

type DatabaseConfig struct {
	URI            string
	Name           string
	ConnectRetries int
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	CategoriesTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// JWTConfig enables auth on write routes when Secret is set.
type JWTConfig struct {
	Secret string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type LogConfig struct {
	Level        string
	LogstashAddr string
}

// Load reads the environment, after an optional .env file, and fails when
// MONGO_URI is missing.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", getEnv("NODE_ENV", "development"))

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("PORT", "3001"),
			Environment:  env,
			CORSOrigins:  getEnvAsSlice("CORS_ORIGINS", defaultOrigins(env)),
			MaxBodyBytes: getEnvAsInt64("MAX_BODY_BYTES", 10<<20),
		},
		Database: DatabaseConfig{
			URI:            os.Getenv("MONGO_URI"),
			Name:           os.Getenv("MONGO_DATABASE"),
			ConnectRetries: getEnvAsInt("MONGO_CONNECT_RETRIES", 10),
			ConnectTimeout: getEnvAsDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:          getEnv("REDIS_ADDR", ""),
			Password:      getEnv("REDIS_PASSWORD", ""),
			DB:            getEnvAsInt("REDIS_DB", 0),
			CategoriesTTL: getEnvAsDuration("CATEGORIES_CACHE_TTL", time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsSlice("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "catalog_events"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvAsFloat("RATE_LIMIT_RPS", 50),
			Burst: getEnvAsInt("RATE_LIMIT_BURST", 100),
		},
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}

	if cfg.Database.URI == "" {
		return nil, errors.New("missing required environment variable: MONGO_URI")
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = databaseFromURI(cfg.Database.URI)
	}

	return cfg, nil
}

func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

func (c *KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

func defaultOrigins(env string) []string {
	if env == "production" {
		return productionOrigins
	}
	return developmentOrigins
}

// databaseFromURI returns the database named in a MongoDB connection string,
// or the default when the URI names none or does not parse.
func databaseFromURI(uri string) string {
	if cs, err := connstring.ParseAndValidate(uri); err == nil && cs.Database != "" {
		return cs.Database
	}
	return defaultDatabase
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if n, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return n
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
