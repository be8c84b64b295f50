package processor

import (
	"context"
	"sync/atomic"
	"time"

	"techdeals/pkg/logger"
	"techdeals/pkg/metrics"
	"techdeals/seeder-service/internal/app/seeder/service"

	"github.com/robfig/cron/v3"
)

// CronScheduler regenerates deals on a schedule. When a rates service is
// set, rates are refreshed before every run.
type CronScheduler struct {
	cron        *cron.Cron
	chain       cron.Chain
	dealSvc     service.DealServiceInterface
	exchangeSvc service.ExchangeRateServiceInterface
	target      int
}

func NewCronScheduler(
	dealSvc service.DealServiceInterface,
	exchangeSvc service.ExchangeRateServiceInterface,
	target int,
) *CronScheduler {
	cronLog := logger.CronLogger{}

	return &CronScheduler{
		cron:        cron.New(cron.WithLogger(cronLog)),
		chain:       cron.NewChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		dealSvc:     dealSvc,
		exchangeSvc: exchangeSvc,
		target:      target,
	}
}

// Start registers the job and runs it once before returning. The initial run
// and the cron ticks share one wrapped job, so a tick that fires while the
// initial run is still going is skipped.
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting cron scheduler")

	var started atomic.Bool
	job := s.chain.Then(cron.FuncJob(func() {
		trigger := "initial"
		if started.Load() {
			trigger = "cron"
		}
		s.run(ctx, trigger)
	}))
	if _, err := s.cron.AddJob(schedule, job); err != nil {
		return err
	}

	s.cron.Start()
	job.Run()
	started.Store(true)

	return nil
}

func (s *CronScheduler) run(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()

	if s.exchangeSvc != nil {
		if err := s.exchangeSvc.FetchAndStoreRates(ctx); err != nil {
			logger.Warn().Err(err).Str("trigger", trigger).Msg("Failed to update exchange rates")
		}
	}

	summary, err := s.dealSvc.Generate(ctx, s.target)
	metrics.ObserveSeederRun("deals", start, err)
	if err != nil {
		logger.Error().Err(err).Str("trigger", trigger).Msg("Deal regeneration failed")
		return
	}

	logger.Info().
		Str("trigger", trigger).
		Int("inserted", summary.Inserted).
		Dur("took", time.Since(start)).
		Msg("Deals regenerated")
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler")
	<-s.cron.Stop().Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
