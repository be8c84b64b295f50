package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"techdeals/catalog-service/internal/app/catalog/config"
	"techdeals/catalog-service/internal/app/catalog/handler"
	"techdeals/catalog-service/internal/app/catalog/repository"
	"techdeals/catalog-service/internal/app/catalog/service"
	"techdeals/catalog-service/internal/app/catalog/util"
	"techdeals/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const serviceName = "catalog-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(serviceName, "info")
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	initLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := connectMongoDB(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mongoClient.Disconnect(disconnectCtx)
	}()

	db := mongoClient.Database(cfg.Database.Name)
	logger.Info().Str("database", db.Name()).Msg("Successfully connected to MongoDB")

	var cache util.CategoryCache = util.NoopCache{}
	if cfg.Redis.Enabled() {
		redisClient, err := util.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, categories are served without cache")
		} else {
			cache = redisClient
			logger.Info().Str("addr", cfg.Redis.Addr).Msg("Successfully connected to Redis")
		}
	}
	defer cache.Close()

	var publisher util.MessagePublisher = util.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		publisher = util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka producer initialized")
	}
	defer publisher.Close()

	productRepo := repository.NewProductRepository(db)
	dealRepo := repository.NewDealRepository(db)
	counterRepo := repository.NewCounterRepository(db)

	productService := service.NewProductService(productRepo, counterRepo, cache, publisher, cfg.Redis.CategoriesTTL)
	dealService := service.NewDealService(dealRepo, counterRepo, publisher)

	authMiddleware := handler.NewAuthMiddleware(cfg.JWT.Secret)
	if !authMiddleware.Enabled() {
		logger.Warn().Msg("JWT_SECRET is not set, write routes are open")
	}

	router := handler.SetupRoutes(handler.Handlers{
		Products: handler.NewProductHandler(productService),
		Deals:    handler.NewDealHandler(dealService),
		Health:   handler.NewHealthHandler(mongoClient, cfg.Server.Environment),
		Auth:     authMiddleware,
	}, cfg)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	logStartup(cfg, router.Routes())

	<-ctx.Done()
	logger.Info().Msg("Shutting down Catalog Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	logger.Info().Msg("Catalog Service stopped gracefully")
}

func logStartup(cfg *config.Config, routes []gin.RouteInfo) {
	logger.Info().
		Str("version", "1.0.0").
		Str("env", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("origins", strings.Join(cfg.Server.CORSOrigins, ", ")).
		Msg("Starting Catalog Service")

	for _, r := range routes {
		logger.Info().Str("method", r.Method).Str("path", r.Path).Msg("Route registered")
	}
	logger.Info().Int("routes", len(routes)).Str("addr", cfg.Server.Address()).Msg("Catalog Service ready")
}

func initLogger(cfg *config.Config) {
	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, serviceName, cfg.Log.Level); err == nil {
			return
		}
	}
	logger.Init(serviceName, cfg.Log.Level)
}

func connectMongoDB(ctx context.Context, cfg config.DatabaseConfig) (*mongo.Client, error) {
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
