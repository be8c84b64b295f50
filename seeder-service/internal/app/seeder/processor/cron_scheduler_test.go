package processor

import (
	"context"
	"errors"
	"testing"

	"techdeals/seeder-service/internal/app/seeder/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDealService struct {
	mock.Mock
}

func (m *MockDealService) Generate(ctx context.Context, target int) (*entity.DealSummary, error) {
	args := m.Called(ctx, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DealSummary), args.Error(1)
}

type MockExchangeRateService struct {
	mock.Mock
}

func (m *MockExchangeRateService) FetchAndStoreRates(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockExchangeRateService) Rate(ctx context.Context) decimal.Decimal {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal)
}

func TestNewCronScheduler(t *testing.T) {
	dealSvc := new(MockDealService)

	scheduler := NewCronScheduler(dealSvc, nil, 150)

	assert.NotNil(t, scheduler.cron)
	assert.Equal(t, 150, scheduler.target)
	assert.Empty(t, scheduler.GetEntries())
}

func TestCronScheduler_Start_RunsImmediately(t *testing.T) {
	// Arrange
	dealSvc := new(MockDealService)
	rateSvc := new(MockExchangeRateService)
	scheduler := NewCronScheduler(dealSvc, rateSvc, 150)

	rateSvc.On("FetchAndStoreRates", mock.Anything).Return(nil).Once()
	dealSvc.On("Generate", mock.Anything, 150).Return(&entity.DealSummary{Inserted: 150}, nil).Once()

	// Act
	err := scheduler.Start(context.Background(), "0 3 * * *")

	// Assert
	assert.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)
	scheduler.Stop()
	dealSvc.AssertExpectations(t)
	rateSvc.AssertExpectations(t)
}

func TestCronScheduler_Start_InvalidSchedule(t *testing.T) {
	scheduler := NewCronScheduler(new(MockDealService), nil, 150)

	err := scheduler.Start(context.Background(), "invalid cron expression")

	assert.Error(t, err)
}

func TestCronScheduler_FailuresDoNotStopScheduling(t *testing.T) {
	// Arrange
	dealSvc := new(MockDealService)
	rateSvc := new(MockExchangeRateService)
	scheduler := NewCronScheduler(dealSvc, rateSvc, 10)

	rateSvc.On("FetchAndStoreRates", mock.Anything).Return(errors.New("redis down"))
	dealSvc.On("Generate", mock.Anything, 10).Return(nil, errors.New("no primary"))

	// Act
	err := scheduler.Start(context.Background(), "@hourly")
	require.NoError(t, err)
	entries := scheduler.GetEntries()
	require.Len(t, entries, 1)
	entries[0].WrappedJob.Run()
	entries[0].WrappedJob.Run()
	scheduler.Stop()

	// Assert
	dealSvc.AssertNumberOfCalls(t, "Generate", 3)
	rateSvc.AssertNumberOfCalls(t, "FetchAndStoreRates", 3)
}

func TestCronScheduler_TickDuringInitialRunIsSkipped(t *testing.T) {
	// Arrange
	dealSvc := new(MockDealService)
	scheduler := NewCronScheduler(dealSvc, nil, 10)

	running := make(chan struct{})
	release := make(chan struct{})
	dealSvc.On("Generate", mock.Anything, 10).Return(&entity.DealSummary{}, nil).Run(func(mock.Arguments) {
		select {
		case running <- struct{}{}:
			<-release
		default:
		}
	})

	started := make(chan error, 1)
	go func() { started <- scheduler.Start(context.Background(), "@hourly") }()
	<-running

	// Act
	entries := scheduler.GetEntries()
	require.Len(t, entries, 1)
	entries[0].WrappedJob.Run()
	close(release)
	require.NoError(t, <-started)

	// Assert
	dealSvc.AssertNumberOfCalls(t, "Generate", 1)

	entries[0].WrappedJob.Run()
	scheduler.Stop()
	dealSvc.AssertNumberOfCalls(t, "Generate", 2)
}

func TestCronScheduler_PanicIsRecovered(t *testing.T) {
	dealSvc := new(MockDealService)
	scheduler := NewCronScheduler(dealSvc, nil, 1)
	dealSvc.On("Generate", mock.Anything, 1).Run(func(mock.Arguments) { panic("cursor closed") }).Return(nil, nil)

	assert.NotPanics(t, func() {
		assert.NoError(t, scheduler.Start(context.Background(), "@hourly"))
	})
	scheduler.Stop()
}

func TestCronScheduler_WithoutRatesService(t *testing.T) {
	dealSvc := new(MockDealService)
	scheduler := NewCronScheduler(dealSvc, nil, 5)
	dealSvc.On("Generate", mock.Anything, 5).Return(&entity.DealSummary{}, nil)

	assert.NoError(t, scheduler.Start(context.Background(), "@hourly"))
	scheduler.Stop()

	dealSvc.AssertNumberOfCalls(t, "Generate", 1)
}

func TestCronScheduler_CanceledContextSkipsRun(t *testing.T) {
	dealSvc := new(MockDealService)
	scheduler := NewCronScheduler(dealSvc, nil, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, scheduler.Start(ctx, "@hourly"))
	scheduler.Stop()

	dealSvc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}
