package service

import (
	"context"
	"fmt"

	"techdeals/pkg/logger"
	"techdeals/seeder-service/internal/app/seeder/entity"
	"techdeals/seeder-service/internal/app/seeder/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

// CleanupService empties the catalog collections and rebuilds their indexes.
type CleanupService struct {
	products repository.ProductRepository
	deals    repository.DealRepository
	counters repository.CounterRepository
	indexes  repository.IndexManager
}

func NewCleanupService(
	products repository.ProductRepository,
	deals repository.DealRepository,
	counters repository.CounterRepository,
	indexes repository.IndexManager,
) *CleanupService {
	return &CleanupService{
		products: products,
		deals:    deals,
		counters: counters,
		indexes:  indexes,
	}
}

func (s *CleanupService) Run(ctx context.Context) (*entity.CleanupSummary, error) {
	summary := &entity.CleanupSummary{}
	var err error

	if summary.ProductsBefore, err = s.products.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if summary.DealsBefore, err = s.deals.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count deals: %w", err)
	}
	logger.Info().
		Int64("products", summary.ProductsBefore).
		Int64("deals", summary.DealsBefore).
		Msg("Current catalog size")

	if _, err := s.products.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to delete products: %w", err)
	}
	if _, err := s.deals.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to delete deals: %w", err)
	}
	if _, err := s.counters.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset counters: %w", err)
	}

	s.rebuildIndexes(ctx, entity.ProductsCollection, repository.ProductIndexes())
	s.rebuildIndexes(ctx, entity.DealsCollection, repository.DealIndexes())

	if summary.ProductsAfter, err = s.products.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if summary.DealsAfter, err = s.deals.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count deals: %w", err)
	}

	logger.Info().
		Int64("products", summary.ProductsAfter).
		Int64("deals", summary.DealsAfter).
		Msg("Cleanup finished")

	return summary, nil
}

// rebuildIndexes logs index failures but never fails the cleanup.
func (s *CleanupService) rebuildIndexes(ctx context.Context, collection string, models []mongo.IndexModel) {
	if err := s.indexes.DropIndexes(ctx, collection); err != nil {
		logger.Warn().Err(err).Str("collection", collection).Msg("Could not drop indexes")
	}

	names, err := s.indexes.CreateIndexes(ctx, collection, models)
	if err != nil {
		logger.Warn().Err(err).Str("collection", collection).Msg("Could not create indexes")
		return
	}
	logger.Info().Str("collection", collection).Strs("indexes", names).Msg("Indexes created")
}
