package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"techdeals/pkg/metrics"
	"techdeals/seeder-service/internal/app/seeder/entity"

	"github.com/redis/go-redis/v9"
)

var (
	ErrRateNotFound = errors.New("exchange rate not found")
	ErrRateCorrupt  = errors.New("exchange rate entry is malformed")
)

// Rates are stored as one hash per currency: rates:<CUR> -> {rate, base, updated_at}.
const (
	fieldRate      = "rate"
	fieldBase      = "base"
	fieldUpdatedAt = "updated_at"
)

type exchangeRateRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewExchangeRateRepository(client *redis.Client, ttl time.Duration) ExchangeRateRepository {
	return &exchangeRateRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *exchangeRateRepository) Get(ctx context.Context, currency string) (*entity.ExchangeRate, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	fields, err := r.client.HGetAll(ctx, entity.GetRedisKeyForRate(currency)).Result()
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to read exchange rate %s: %w", currency, err)
	}
	if len(fields) == 0 {
		metrics.RecordCacheMiss(serviceName, entity.RedisKeyPrefixRate)
		return nil, fmt.Errorf("%w: %s", ErrRateNotFound, currency)
	}
	metrics.RecordCacheHit(serviceName, entity.RedisKeyPrefixRate)

	return decodeRate(currency, fields)
}

// SetMultiple writes every rate and its expiry in a single transaction.
func (r *exchangeRateRepository) SetMultiple(ctx context.Context, rates []*entity.ExchangeRate) error {
	if len(rates) == 0 {
		return nil
	}

	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpPipeline)
	defer timer.ObserveDuration()

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, rate := range rates {
			key := entity.GetRedisKeyForRate(rate.Currency)
			pipe.HSet(ctx, key,
				fieldRate, strconv.FormatFloat(rate.Rate, 'f', -1, 64),
				fieldBase, rate.Base,
				fieldUpdatedAt, rate.UpdatedAt.UnixMilli(),
			)
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpPipeline)
		return fmt.Errorf("failed to store %d exchange rates: %w", len(rates), err)
	}
	return nil
}

func decodeRate(currency string, fields map[string]string) (*entity.ExchangeRate, error) {
	rate, err := strconv.ParseFloat(fields[fieldRate], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s rate %q", ErrRateCorrupt, currency, fields[fieldRate])
	}

	result := &entity.ExchangeRate{Currency: currency, Rate: rate, Base: fields[fieldBase]}
	if raw := fields[fieldUpdatedAt]; raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s updated_at %q", ErrRateCorrupt, currency, raw)
		}
		result.UpdatedAt = time.UnixMilli(ms).UTC()
	}
	return result, nil
}
