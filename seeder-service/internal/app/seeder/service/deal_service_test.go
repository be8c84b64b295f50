package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"techdeals/seeder-service/internal/app/seeder/entity"
	"techdeals/seeder-service/internal/app/seeder/repository"
	"techdeals/seeder-service/internal/app/seeder/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func eligibleProducts(n int) []entity.Product {
	out := make([]entity.Product, n)
	categories := []string{entity.CategoryLaptops, entity.CategorySmartphones, entity.CategoryAudio}
	for i := range out {
		out[i] = entity.Product{
			ID:         int64(i + 1),
			SKU:        fmt.Sprintf("SKU-%03d", i),
			Title:      fmt.Sprintf("Product %d", i),
			Price:      int64(10000 + i*1000),
			Currency:   entity.TargetCurrency,
			Category:   categories[i%len(categories)],
			Department: "Dept",
			Image:      "https://img.example.com/p.jpg",
			Stock:      100,
			Rating:     4.2,
			Brand:      "Brand",
			IsActive:   true,
		}
	}
	return out
}

func anyDeals(n int) interface{} {
	return mock.MatchedBy(func(batch []entity.Deal) bool { return len(batch) == n })
}

func TestDealService_Generate(t *testing.T) {
	// Arrange
	products := new(mocks.MockProductRepository)
	deals := new(mocks.MockDealRepository)
	counters := new(mocks.MockCounterRepository)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	var stored []entity.Deal
	capture := func(args mock.Arguments) { stored = append(stored, args.Get(1).([]entity.Deal)...) }

	deals.On("DeleteAll", ctx).Return(int64(12), nil)
	products.On("FindEligible", ctx, DealEligibility).Return(eligibleProducts(60), nil)
	counters.On("Reserve", ctx, repository.DealCounter, 60).Return(int64(1), nil)
	deals.On("InsertMany", ctx, anyDeals(25)).Return(25, nil).Run(capture).Twice()
	deals.On("InsertMany", ctx, anyDeals(10)).Return(10, nil).Run(capture).Once()
	deals.On("Count", ctx).Return(int64(60), nil)
	deals.On("StatsByDepartment", ctx).Return([]entity.DepartmentStat{{Department: "Dept", Count: 60, AvgDiscount: 22.5, AvgSavings: 3100}}, nil)
	deals.On("CountCurrent", ctx, now).Return(int64(30), nil)
	deals.On("CountUpcoming", ctx, now).Return(int64(20), nil)

	svc := NewDealService(products, deals, counters, NewRand(3), 25)
	svc.now = func() time.Time { return now }

	// Act
	summary, err := svc.Generate(ctx, 150)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 60, summary.Eligible)
	assert.Equal(t, 60, summary.Selected)
	assert.Equal(t, 60, summary.Inserted)
	assert.Equal(t, int64(30), summary.Current)
	assert.Equal(t, int64(20), summary.Upcoming)
	require.Len(t, summary.ByDepartment, 1)

	require.Len(t, stored, 60)
	productIDs := make(map[int64]bool)
	for i, d := range stored {
		assert.Equal(t, int64(i+1), d.DealID)
		assert.False(t, productIDs[d.ProductID])
		productIDs[d.ProductID] = true
		assert.Less(t, d.Price, d.OriginalPrice)
		assert.True(t, d.StartDate.Before(d.EndDate))
	}

	deals.AssertExpectations(t)
	products.AssertExpectations(t)
	counters.AssertExpectations(t)
}

func TestDealService_Generate_NoEligibleProducts(t *testing.T) {
	// Arrange
	products := new(mocks.MockProductRepository)
	deals := new(mocks.MockDealRepository)
	counters := new(mocks.MockCounterRepository)
	ctx := context.Background()

	deals.On("DeleteAll", ctx).Return(int64(0), nil)
	products.On("FindEligible", ctx, DealEligibility).Return([]entity.Product{}, nil)

	// Act
	summary, err := NewDealService(products, deals, counters, NewRand(1), 0).Generate(ctx, 0)

	// Assert
	require.NoError(t, err)
	assert.Zero(t, summary.Inserted)
	counters.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything)
	deals.AssertNotCalled(t, "InsertMany", mock.Anything, mock.Anything)
}

func TestDealService_Generate_FailedBatchIsSkipped(t *testing.T) {
	// Arrange
	products := new(mocks.MockProductRepository)
	deals := new(mocks.MockDealRepository)
	counters := new(mocks.MockCounterRepository)
	ctx := context.Background()

	deals.On("DeleteAll", ctx).Return(int64(0), nil)
	products.On("FindEligible", ctx, DealEligibility).Return(eligibleProducts(20), nil)
	counters.On("Reserve", ctx, repository.DealCounter, 20).Return(int64(500), nil)
	deals.On("InsertMany", ctx, anyDeals(10)).Return(4, errors.New("write error")).Once()
	deals.On("InsertMany", ctx, anyDeals(10)).Return(10, nil).Once()
	deals.On("Count", ctx).Return(int64(14), nil)
	deals.On("StatsByDepartment", ctx).Return([]entity.DepartmentStat{}, nil)
	deals.On("CountCurrent", ctx, mock.Anything).Return(int64(0), nil)
	deals.On("CountUpcoming", ctx, mock.Anything).Return(int64(0), nil)

	// Act
	summary, err := NewDealService(products, deals, counters, NewRand(1), 10).Generate(ctx, 20)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 14, summary.Inserted)
	assert.Equal(t, 1, summary.FailedBatches)
	assert.Equal(t, int64(14), summary.Total)
}

func TestDealService_Generate_StoreErrors(t *testing.T) {
	t.Run("delete fails", func(t *testing.T) {
		deals := new(mocks.MockDealRepository)
		deals.On("DeleteAll", mock.Anything).Return(int64(0), errors.New("no primary"))

		_, err := NewDealService(new(mocks.MockProductRepository), deals, new(mocks.MockCounterRepository), NewRand(1), 0).
			Generate(context.Background(), 10)

		assert.ErrorContains(t, err, "failed to clear deals")
	})

	t.Run("eligible query fails", func(t *testing.T) {
		products := new(mocks.MockProductRepository)
		deals := new(mocks.MockDealRepository)
		deals.On("DeleteAll", mock.Anything).Return(int64(0), nil)
		products.On("FindEligible", mock.Anything, DealEligibility).Return(nil, errors.New("timeout"))

		_, err := NewDealService(products, deals, new(mocks.MockCounterRepository), NewRand(1), 0).
			Generate(context.Background(), 10)

		assert.ErrorContains(t, err, "failed to load eligible products")
	})
}
