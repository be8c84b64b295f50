package repository

import (
	"context"
	"errors"
	"time"

	"techdeals/seeder-service/internal/app/seeder/entity"

	"go.mongodb.org/mongo-driver/mongo"
)

const serviceName = "seeder-service"

// EligibilityCriteria are the minimums a product must meet to back a deal.
type EligibilityCriteria struct {
	MinStock  int
	MinRating float64
	MinPrice  int64
}

type ProductRepository interface {
	// InsertMany writes products with ordered=false and returns how many were
	// stored, even when some documents were rejected.
	InsertMany(ctx context.Context, products []entity.Product) (int, error)
	FindEligible(ctx context.Context, criteria EligibilityCriteria) ([]entity.Product, error)
	Count(ctx context.Context) (int64, error)
	CountByCategory(ctx context.Context) ([]entity.CategoryCount, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type DealRepository interface {
	// InsertMany writes deals in order and returns how many were stored.
	InsertMany(ctx context.Context, deals []entity.Deal) (int, error)
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountCurrent(ctx context.Context, now time.Time) (int64, error)
	CountUpcoming(ctx context.Context, now time.Time) (int64, error)
	StatsByDepartment(ctx context.Context) ([]entity.DepartmentStat, error)
}

// CounterRepository hands out integer ids from the counters collection.
type CounterRepository interface {
	// Reserve allocates n consecutive ids and returns the first one.
	Reserve(ctx context.Context, name string, n int) (int64, error)
	Reset(ctx context.Context) (int64, error)
}

type IndexManager interface {
	DropIndexes(ctx context.Context, collection string) error
	CreateIndexes(ctx context.Context, collection string, models []mongo.IndexModel) ([]string, error)
}

type ExchangeRateRepository interface {
	Get(ctx context.Context, currency string) (*entity.ExchangeRate, error)
	SetMultiple(ctx context.Context, rates []*entity.ExchangeRate) error
}

// insertedFromError derives the stored document count of a failed bulk insert.
// Unordered inserts keep going past bad documents; ordered inserts stop at the
// first one.
func insertedFromError(batchLen int, ordered bool, err error) int {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return 0
	}
	if len(bwe.WriteErrors) == 0 {
		return batchLen
	}
	if ordered {
		return bwe.WriteErrors[0].Index
	}
	if n := batchLen - len(bwe.WriteErrors); n > 0 {
		return n
	}
	return 0
}
