package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	EnvPrefix       = "seeder"
	DefaultDatabase = "ecommerce"
)

// Config holds every setting of the seeder. Fields are read once at startup
// and passed down explicitly.
type Config struct {
	App         AppConfig
	Mongo       MongoConfig
	Import      ImportConfig
	Deals       DealsConfig
	Redis       RedisConfig
	ExchangeAPI ExchangeAPIConfig
	Schedule    ScheduleConfig
}

type AppConfig struct {
	Env          string `envconfig:"APP_ENV" default:"development"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogstashAddr string `envconfig:"LOGSTASH_ADDR"`
	// Seed drives every random choice; 0 means seed from the clock.
	Seed uint64 `envconfig:"SEEDER_RANDOM_SEED" default:"0"`
}

type MongoConfig struct {
	URI            string        `envconfig:"MONGO_URI" required:"true"`
	Database       string        `envconfig:"MONGO_DATABASE"`
	ConnectTimeout time.Duration `envconfig:"MONGO_CONNECT_TIMEOUT" default:"10s"`
	ConnectRetries int           `envconfig:"MONGO_CONNECT_RETRIES" default:"10"`
}

type ImportConfig struct {
	DataDir   string          `envconfig:"SEEDER_DATA_DIR" default:"data/kaggle-datasets"`
	BatchSize int             `envconfig:"SEEDER_IMPORT_BATCH_SIZE" default:"100"`
	InrToDzd  decimal.Decimal `envconfig:"SEEDER_INR_TO_DZD_RATE" default:"1.6"`
}

type DealsConfig struct {
	Target    int `envconfig:"SEEDER_DEALS_TARGET" default:"150"`
	BatchSize int `envconfig:"SEEDER_DEALS_BATCH_SIZE" default:"50"`
}

// RedisConfig is optional; an empty Addr disables the exchange rate cache.
type RedisConfig struct {
	Addr     string        `envconfig:"REDIS_ADDR"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"2"`
	TTL      time.Duration `envconfig:"REDIS_RATES_TTL" default:"60m"`
}

type ExchangeAPIConfig struct {
	URL     string        `envconfig:"EXCHANGE_API_URL"`
	Timeout time.Duration `envconfig:"EXCHANGE_API_TIMEOUT" default:"10s"`
}

type ScheduleConfig struct {
	Deals      string `envconfig:"SEEDER_DEALS_SCHEDULE" default:"0 3 * * *"`
	HealthAddr string `envconfig:"SEEDER_HEALTH_ADDR" default:":8090"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Mongo.URI) == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if c.Import.BatchSize <= 0 {
		errs = append(errs, errors.New("SEEDER_IMPORT_BATCH_SIZE must be positive"))
	}
	if !c.Import.InrToDzd.IsPositive() {
		errs = append(errs, errors.New("SEEDER_INR_TO_DZD_RATE must be positive"))
	}
	if c.Deals.Target <= 0 {
		errs = append(errs, errors.New("SEEDER_DEALS_TARGET must be positive"))
	}
	if c.Deals.BatchSize <= 0 {
		errs = append(errs, errors.New("SEEDER_DEALS_BATCH_SIZE must be positive"))
	}
	if _, err := cron.ParseStandard(c.Schedule.Deals); err != nil {
		errs = append(errs, fmt.Errorf("SEEDER_DEALS_SCHEDULE: %w", err))
	}

	return errors.Join(errs...)
}

// DatabaseName prefers MONGO_DATABASE, then the database in the URI path.
func (c *MongoConfig) DatabaseName() string {
	if c.Database != "" {
		return c.Database
	}
	if cs, err := connstring.ParseAndValidate(c.URI); err == nil && cs.Database != "" {
		return cs.Database
	}
	return DefaultDatabase
}

// RatesCacheEnabled reports whether both Redis and the rates API are configured.
func (c *Config) RatesCacheEnabled() bool {
	return c.Redis.Addr != "" && c.ExchangeAPI.URL != ""
}
