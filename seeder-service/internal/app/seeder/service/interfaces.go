package service

import (
	"context"

	"techdeals/seeder-service/internal/app/seeder/entity"

	"github.com/shopspring/decimal"
)

// RateProvider supplies the INR to DZD conversion rate for an import run.
type RateProvider interface {
	Rate(ctx context.Context) decimal.Decimal
}

// ExchangeRateAPIClient talks to the external rates API.
type ExchangeRateAPIClient interface {
	FetchRates(ctx context.Context) (*entity.ExchangeRatesResponse, error)
}

// ExchangeRateServiceInterface refreshes the cached rates on a schedule.
type ExchangeRateServiceInterface interface {
	RateProvider
	FetchAndStoreRates(ctx context.Context) error
}

type ImporterInterface interface {
	Run(ctx context.Context) (*entity.ImportSummary, error)
}

type DealServiceInterface interface {
	Generate(ctx context.Context, target int) (*entity.DealSummary, error)
}

type CleanupServiceInterface interface {
	Run(ctx context.Context) (*entity.CleanupSummary, error)
}
