package mocks

import (
	"context"
	"time"

	"techdeals/seeder-service/internal/app/seeder/entity"
	"techdeals/seeder-service/internal/app/seeder/repository"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) InsertMany(ctx context.Context, products []entity.Product) (int, error) {
	args := m.Called(ctx, products)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) FindEligible(ctx context.Context, criteria repository.EligibilityCriteria) ([]entity.Product, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) CountByCategory(ctx context.Context) ([]entity.CategoryCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CategoryCount), args.Error(1)
}

func (m *MockProductRepository) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockDealRepository struct {
	mock.Mock
}

func (m *MockDealRepository) InsertMany(ctx context.Context, deals []entity.Deal) (int, error) {
	args := m.Called(ctx, deals)
	return args.Int(0), args.Error(1)
}

func (m *MockDealRepository) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDealRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDealRepository) CountCurrent(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDealRepository) CountUpcoming(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDealRepository) StatsByDepartment(ctx context.Context) ([]entity.DepartmentStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.DepartmentStat), args.Error(1)
}

type MockCounterRepository struct {
	mock.Mock
}

func (m *MockCounterRepository) Reserve(ctx context.Context, name string, n int) (int64, error) {
	args := m.Called(ctx, name, n)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCounterRepository) Reset(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockIndexManager struct {
	mock.Mock
}

func (m *MockIndexManager) DropIndexes(ctx context.Context, collection string) error {
	args := m.Called(ctx, collection)
	return args.Error(0)
}

func (m *MockIndexManager) CreateIndexes(ctx context.Context, collection string, models []mongo.IndexModel) ([]string, error) {
	args := m.Called(ctx, collection, models)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) Get(ctx context.Context, currency string) (*entity.ExchangeRate, error) {
	args := m.Called(ctx, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) SetMultiple(ctx context.Context, rates []*entity.ExchangeRate) error {
	args := m.Called(ctx, rates)
	return args.Error(0)
}
