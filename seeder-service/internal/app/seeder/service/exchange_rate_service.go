package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"techdeals/pkg/logger"
	"techdeals/pkg/metrics"
	"techdeals/seeder-service/internal/app/seeder/entity"
	"techdeals/seeder-service/internal/app/seeder/repository"

	"github.com/shopspring/decimal"
)

const (
	SourceCurrency = "INR"
	staleRateAge   = 2 * time.Hour
)

// StaticRateProvider always returns the configured rate.
type StaticRateProvider struct {
	rate decimal.Decimal
}

func NewStaticRateProvider(rate decimal.Decimal) *StaticRateProvider {
	return &StaticRateProvider{rate: rate}
}

func (p *StaticRateProvider) Rate(context.Context) decimal.Decimal {
	return p.rate
}

// ExchangeRateService keeps INR based rates in Redis and serves the DZD rate
// from there. Any failure falls back to the static rate.
type ExchangeRateService struct {
	rateRepo repository.ExchangeRateRepository
	client   ExchangeRateAPIClient
	fallback decimal.Decimal
	now      func() time.Time
}

func NewExchangeRateService(
	rateRepo repository.ExchangeRateRepository,
	client ExchangeRateAPIClient,
	fallback decimal.Decimal,
) *ExchangeRateService {
	return &ExchangeRateService{
		rateRepo: rateRepo,
		client:   client,
		fallback: fallback,
		now:      time.Now,
	}
}

// FetchAndStoreRates refreshes the cache. API failures are only logged so the
// scheduler keeps running on cached or static rates.
func (s *ExchangeRateService) FetchAndStoreRates(ctx context.Context) error {
	resp, err := s.client.FetchRates(ctx)
	if err != nil {
		metrics.SeederExchangeRateUpdates.WithLabelValues("api_error").Inc()
		logger.Warn().Err(err).Msg("Failed to fetch exchange rates, keeping cached values")
		return nil
	}

	base := strings.ToUpper(resp.Base)
	if base == "" {
		base = SourceCurrency
	}

	now := s.now()
	rates := make([]*entity.ExchangeRate, 0, len(resp.Rates))
	for currency, rate := range resp.Rates {
		rates = append(rates, &entity.ExchangeRate{
			Currency:  strings.ToUpper(currency),
			Rate:      rate,
			Base:      base,
			UpdatedAt: now,
		})
	}

	if err := s.rateRepo.SetMultiple(ctx, rates); err != nil {
		metrics.SeederExchangeRateUpdates.WithLabelValues("store_error").Inc()
		return fmt.Errorf("failed to store rates in redis: %w", err)
	}

	metrics.SeederExchangeRateUpdates.WithLabelValues("success").Inc()
	logger.Info().Int("count", len(rates)).Str("base", base).Msg("Stored exchange rates")
	return nil
}

// Rate returns the cached INR to DZD rate, fetching it once when the cache
// is empty.
func (s *ExchangeRateService) Rate(ctx context.Context) decimal.Decimal {
	rate, err := s.rateRepo.Get(ctx, entity.TargetCurrency)
	if errors.Is(err, repository.ErrRateNotFound) {
		if err = s.FetchAndStoreRates(ctx); err == nil {
			rate, err = s.rateRepo.Get(ctx, entity.TargetCurrency)
		}
	}
	if err != nil {
		logger.Warn().Err(err).Str("fallback", s.fallback.String()).Msg("Using static exchange rate")
		return s.fallback
	}

	if rate.Base != SourceCurrency || rate.Rate <= 0 {
		logger.Warn().
			Str("base", rate.Base).
			Float64("rate", rate.Rate).
			Str("fallback", s.fallback.String()).
			Msg("Cached exchange rate unusable, using static rate")
		return s.fallback
	}

	if age := s.now().Sub(rate.UpdatedAt); age > staleRateAge {
		logger.Warn().Dur("age", age).Msg("Using outdated exchange rate")
	}

	return decimal.NewFromFloat(rate.Rate)
}
