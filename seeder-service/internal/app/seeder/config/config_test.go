package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "data/kaggle-datasets", cfg.Import.DataDir)
	assert.Equal(t, 100, cfg.Import.BatchSize)
	assert.True(t, cfg.Import.InrToDzd.Equal(decimal.RequireFromString("1.6")))
	assert.Equal(t, 150, cfg.Deals.Target)
	assert.Equal(t, 50, cfg.Deals.BatchSize)
	assert.Equal(t, 60*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "0 3 * * *", cfg.Schedule.Deals)
	assert.False(t, cfg.RatesCacheEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("SEEDER_DEALS_TARGET", "40")
	t.Setenv("SEEDER_INR_TO_DZD_RATE", "1.62")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("EXCHANGE_API_URL", "http://rates.local/latest/INR")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 40, cfg.Deals.Target)
	assert.Equal(t, "1.62", cfg.Import.InrToDzd.String())
	assert.True(t, cfg.RatesCacheEnabled())
}

func TestLoad_MissingMongoURI(t *testing.T) {
	t.Setenv("MONGO_URI", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Mongo:    MongoConfig{URI: "mongodb://localhost:27017"},
			Import:   ImportConfig{BatchSize: 100, InrToDzd: decimal.NewFromFloat(1.6)},
			Deals:    DealsConfig{Target: 150, BatchSize: 50},
			Schedule: ScheduleConfig{Deals: "0 3 * * *"},
		}
	}

	t.Run("valid", func(t *testing.T) {
		cfg := valid()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("bad schedule", func(t *testing.T) {
		cfg := valid()
		cfg.Schedule.Deals = "0 */30 * * * *"
		assert.ErrorContains(t, cfg.Validate(), "SEEDER_DEALS_SCHEDULE")
	})

	t.Run("non-positive rate", func(t *testing.T) {
		cfg := valid()
		cfg.Import.InrToDzd = decimal.Zero
		assert.ErrorContains(t, cfg.Validate(), "SEEDER_INR_TO_DZD_RATE")
	})

	t.Run("collects several errors", func(t *testing.T) {
		cfg := valid()
		cfg.Deals.Target = 0
		cfg.Deals.BatchSize = -1
		err := cfg.Validate()
		assert.ErrorContains(t, err, "SEEDER_DEALS_TARGET")
		assert.ErrorContains(t, err, "SEEDER_DEALS_BATCH_SIZE")
	})
}

func TestDatabaseName(t *testing.T) {
	tests := []struct {
		name string
		cfg  MongoConfig
		want string
	}{
		{"explicit", MongoConfig{URI: "mongodb://h/shop", Database: "other"}, "other"},
		{"from uri", MongoConfig{URI: "mongodb://localhost:27017/shop?retryWrites=true"}, "shop"},
		{"default", MongoConfig{URI: "mongodb://localhost:27017"}, DefaultDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DatabaseName())
		})
	}
}
