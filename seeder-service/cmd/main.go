package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"techdeals/pkg/logger"
	"techdeals/pkg/metrics"
	"techdeals/seeder-service/internal/app/seeder/config"
	"techdeals/seeder-service/internal/app/seeder/handler"
	"techdeals/seeder-service/internal/app/seeder/processor"
	"techdeals/seeder-service/internal/app/seeder/repository"
	"techdeals/seeder-service/internal/app/seeder/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const serviceName = "seeder-service"

const usage = `Usage: seeder [flags] <command>

Commands:
  cleanup    empty products, deals and counters and rebuild indexes
  import     load the CSV datasets into products
  deals      regenerate the deals collection
  all        cleanup, import and deals in sequence
  schedule   regenerate deals on SEEDER_DEALS_SCHEDULE and serve health checks

Flags:
`

func main() {
	dataDir := flag.String("data", "", "directory with the CSV datasets (overrides SEEDER_DATA_DIR)")
	target := flag.Int("target", 0, "number of deals to generate (overrides SEEDER_DEALS_TARGET)")
	seed := flag.Uint64("seed", 0, "random seed, 0 seeds from the clock (overrides SEEDER_RANDOM_SEED)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Init(serviceName, "info")
		logger.Fatal().Err(err).Msg("Failed to load config")
	}
	if *dataDir != "" {
		cfg.Import.DataDir = *dataDir
	}
	if *target > 0 {
		cfg.Deals.Target = *target
	}
	if *seed != 0 {
		cfg.App.Seed = *seed
	}

	initLogger(cfg)
	logger.Info().Str("command", command).Str("env", cfg.App.Env).Msg("Starting seeder")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := connectMongoDB(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mongoClient.Disconnect(disconnectCtx)
	}()

	db := mongoClient.Database(cfg.Mongo.DatabaseName())
	logger.Info().Str("database", db.Name()).Msg("Connected to MongoDB")

	productRepo := repository.NewProductRepository(db)
	dealRepo := repository.NewDealRepository(db)
	counterRepo := repository.NewCounterRepository(db)
	indexManager := repository.NewIndexManager(db)

	var (
		redisClient *redis.Client
		rateRepo    repository.ExchangeRateRepository
		exchangeSvc service.ExchangeRateServiceInterface
		rates       service.RateProvider = service.NewStaticRateProvider(cfg.Import.InrToDzd)
	)
	if cfg.RatesCacheEnabled() {
		redisClient, err = connectRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, using static exchange rate")
		} else {
			defer redisClient.Close()
			rateRepo = repository.NewExchangeRateRepository(redisClient, cfg.Redis.TTL)
			svc := service.NewExchangeRateService(
				rateRepo,
				service.NewExchangeRateAPIClient(cfg.ExchangeAPI.URL, cfg.ExchangeAPI.Timeout),
				cfg.Import.InrToDzd,
			)
			rates = svc
			exchangeSvc = svc
		}
	}

	rng := service.NewRand(cfg.App.Seed)
	cleanupSvc := service.NewCleanupService(productRepo, dealRepo, counterRepo, indexManager)
	importer := service.NewImporter(productRepo, counterRepo, rates, rng, cfg.Import.DataDir, cfg.Import.BatchSize)
	dealSvc := service.NewDealService(productRepo, dealRepo, counterRepo, rng, cfg.Deals.BatchSize)

	cleanup := func() error {
		_, err := cleanupSvc.Run(ctx)
		return err
	}
	importProducts := func() error {
		_, err := importer.Run(ctx)
		return err
	}
	generateDeals := func() error {
		_, err := dealSvc.Generate(ctx, cfg.Deals.Target)
		return err
	}

	switch command {
	case "cleanup":
		err = runPipeline("cleanup", cleanup)
	case "import":
		err = runPipeline("import", importProducts)
	case "deals":
		err = runPipeline("deals", generateDeals)
	case "all":
		err = runPipeline("cleanup", cleanup)
		if err == nil {
			err = runPipeline("import", importProducts)
		}
		if err == nil {
			err = runPipeline("deals", generateDeals)
		}
	case "schedule":
		err = runSchedule(ctx, cfg, dealSvc, exchangeSvc,
			handler.NewHealthCheckHandler(mongoClient, redisClient, rateRepo))
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error().Err(err).Str("command", command).Msg("Seeder failed")
		os.Exit(1)
	}
	logger.Info().Str("command", command).Msg("Seeder finished")
}

func runPipeline(name string, fn func() error) error {
	start := time.Now()
	logger.Info().Str("pipeline", name).Msg("Pipeline started")

	err := fn()
	metrics.ObserveSeederRun(name, start, err)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	logger.Info().Str("pipeline", name).Dur("took", time.Since(start)).Msg("Pipeline completed")
	return nil
}

func runSchedule(
	ctx context.Context,
	cfg *config.Config,
	dealSvc service.DealServiceInterface,
	exchangeSvc service.ExchangeRateServiceInterface,
	healthHandler *handler.HealthCheckHandler,
) error {
	mux := http.NewServeMux()
	healthHandler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:              cfg.Schedule.HealthAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Schedule.HealthAddr).Msg("Starting health HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Health HTTP server error")
		}
	}()
	logger.Info().Msg("Health and metrics endpoints: /health, /health/readiness, /health/liveness, /metrics")

	scheduler := processor.NewCronScheduler(dealSvc, exchangeSvc, cfg.Deals.Target)
	if err := scheduler.Start(ctx, cfg.Schedule.Deals); err != nil {
		return fmt.Errorf("failed to start cron scheduler: %w", err)
	}

	<-ctx.Done()
	logger.Info().Msg("Shutting down scheduler")

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func initLogger(cfg *config.Config) {
	if cfg.App.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.App.LogstashAddr, serviceName, cfg.App.LogLevel); err == nil {
			return
		}
	}
	logger.Init(serviceName, cfg.App.LogLevel)
}

func connectMongoDB(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	retries := max(cfg.ConnectRetries, 1)
	opts := options.Client().ApplyURI(cfg.URI).SetConnectTimeout(cfg.ConnectTimeout)

	var lastErr error
	for i := 0; i < retries; i++ {
		client, err := mongo.Connect(ctx, opts)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
			err = client.Ping(pingCtx, readpref.Primary())
			cancel()
			if err == nil {
				return client, nil
			}
			client.Disconnect(context.Background())
		}
		lastErr = err

		logger.Warn().Err(err).Int("attempt", i+1).Int("of", retries).Msg("Failed to connect to MongoDB")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", retries, lastErr)
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}
