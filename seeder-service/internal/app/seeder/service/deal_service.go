package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"techdeals/pkg/logger"
	"techdeals/pkg/metrics"
	"techdeals/seeder-service/internal/app/seeder/entity"
	"techdeals/seeder-service/internal/app/seeder/repository"
)

const DefaultDealBatchSize = 50

// DealEligibility is the product filter deals are drawn from.
var DealEligibility = repository.EligibilityCriteria{
	MinStock:  30,
	MinRating: 3.5,
	MinPrice:  1000,
}

// DealService replaces the deals collection with a fresh generated set.
type DealService struct {
	products  repository.ProductRepository
	deals     repository.DealRepository
	counters  repository.CounterRepository
	rng       *rand.Rand
	now       func() time.Time
	batchSize int
}

func NewDealService(
	products repository.ProductRepository,
	deals repository.DealRepository,
	counters repository.CounterRepository,
	rng *rand.Rand,
	batchSize int,
) *DealService {
	if batchSize <= 0 {
		batchSize = DefaultDealBatchSize
	}
	return &DealService{
		products:  products,
		deals:     deals,
		counters:  counters,
		rng:       rng,
		now:       time.Now,
		batchSize: batchSize,
	}
}

func (s *DealService) Generate(ctx context.Context, target int) (*entity.DealSummary, error) {
	if target <= 0 {
		target = DefaultDealTarget
	}
	summary := &entity.DealSummary{}

	removed, err := s.deals.DeleteAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to clear deals: %w", err)
	}
	if removed > 0 {
		logger.Info().Int64("count", removed).Msg("Removed existing deals")
	}

	eligible, err := s.products.FindEligible(ctx, DealEligibility)
	if err != nil {
		return nil, fmt.Errorf("failed to load eligible products: %w", err)
	}
	summary.Eligible = len(eligible)

	if len(eligible) == 0 {
		logger.Warn().Msg("No suitable products found for deals")
		return summary, nil
	}

	selected := SelectProducts(s.rng, eligible, target)
	summary.Selected = len(selected)
	logger.Info().
		Int("eligible", summary.Eligible).
		Int("selected", summary.Selected).
		Int("target", target).
		Msg("Selected products for deals")

	builder := NewDealBuilder(s.rng, s.now)
	deals := make([]entity.Deal, len(selected))
	for i, p := range selected {
		deals[i] = builder.Build(p)
	}

	first, err := s.counters.Reserve(ctx, repository.DealCounter, len(deals))
	if err != nil {
		return nil, fmt.Errorf("failed to reserve deal ids: %w", err)
	}
	for i := range deals {
		deals[i].DealID = first + int64(i)
	}

	for start := 0; start < len(deals); start += s.batchSize {
		batch := deals[start:min(start+s.batchSize, len(deals))]

		n, err := s.deals.InsertMany(ctx, batch)
		summary.Inserted += n
		for _, d := range batch[:min(n, len(batch))] {
			metrics.SeederDealsGenerated.WithLabelValues(d.Department).Inc()
			metrics.SeederDealDiscount.Observe(float64(d.Discount))
		}
		if err != nil {
			summary.FailedBatches++
			metrics.SeederBatchFailures.WithLabelValues(entity.DealsCollection).Inc()
			logger.Error().
				Err(err).
				Int("batch_start", start).
				Int("batch_size", len(batch)).
				Int("inserted", n).
				Msg("Deal batch insert failed")
			continue
		}
		logger.Debug().Int("inserted", summary.Inserted).Int("of", len(deals)).Msg("Inserted deal batch")
	}

	if err := s.collectStats(ctx, summary); err != nil {
		return summary, err
	}

	for _, st := range summary.ByDepartment {
		logger.Info().
			Str("department", st.Department).
			Int64("count", st.Count).
			Float64("avg_discount", st.AvgDiscount).
			Float64("avg_savings", st.AvgSavings).
			Msg("Deals per department")
	}
	logger.Info().
		Int64("total", summary.Total).
		Int64("current", summary.Current).
		Int64("upcoming", summary.Upcoming).
		Int("failed_batches", summary.FailedBatches).
		Msg("Deal generation finished")

	return summary, nil
}

func (s *DealService) collectStats(ctx context.Context, summary *entity.DealSummary) error {
	now := s.now()
	var err error

	if summary.Total, err = s.deals.Count(ctx); err != nil {
		return fmt.Errorf("failed to count deals: %w", err)
	}
	if summary.ByDepartment, err = s.deals.StatsByDepartment(ctx); err != nil {
		return fmt.Errorf("failed to aggregate deals: %w", err)
	}
	if summary.Current, err = s.deals.CountCurrent(ctx, now); err != nil {
		return fmt.Errorf("failed to count current deals: %w", err)
	}
	if summary.Upcoming, err = s.deals.CountUpcoming(ctx, now); err != nil {
		return fmt.Errorf("failed to count upcoming deals: %w", err)
	}
	return nil
}
