package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"techdeals/pkg/logger"
	"techdeals/seeder-service/internal/app/seeder/entity"
	"techdeals/seeder-service/internal/app/seeder/repository"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	checkTimeout = 5 * time.Second
	staleRateAge = 2 * time.Hour
)

// dependency is one health check. A failing required dependency marks the
// scheduler unhealthy; an optional one only reports a warning.
type dependency struct {
	name     string
	required bool
	check    func(ctx context.Context) error
}

// HealthCheckHandler serves the scheduler's health endpoints. Redis and the rate
// repository are optional and reported as disabled when nil.
type HealthCheckHandler struct {
	deps     []dependency
	disabled []string
}

func NewHealthCheckHandler(
	mongoClient *mongo.Client,
	redisClient *redis.Client,
	rateRepo repository.ExchangeRateRepository,
) *HealthCheckHandler {
	h := &HealthCheckHandler{}
	h.deps = append(h.deps, dependency{name: "database", required: true, check: func(ctx context.Context) error {
		return mongoClient.Ping(ctx, readpref.Primary())
	}})

	if redisClient != nil {
		h.deps = append(h.deps, dependency{name: "redis", required: true, check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	} else {
		h.disabled = append(h.disabled, "redis")
	}

	if rateRepo != nil {
		h.deps = append(h.deps, dependency{name: "exchange_rates", check: func(ctx context.Context) error {
			return checkRateFreshness(ctx, rateRepo)
		}})
	}
	return h
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}

// HealthCheck reports every dependency. Error details are only shown for
// optional dependencies, required ones collapse to "unhealthy" except the database.
func (h *HealthCheckHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	resp := HealthResponse{Status: "healthy", Checks: make(map[string]string), Timestamp: time.Now()}
	for _, name := range h.disabled {
		resp.Checks[name] = "disabled"
	}

	for _, p := range h.deps {
		err := p.check(ctx)
		switch {
		case err == nil:
			resp.Checks[p.name] = "healthy"
		case !p.required:
			resp.Checks[p.name] = "warning: " + err.Error()
		case p.name == "database":
			resp.Checks[p.name] = "unhealthy: " + err.Error()
			resp.Status = "unhealthy"
		default:
			resp.Checks[p.name] = "unhealthy"
			resp.Status = "unhealthy"
		}
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error().Err(err).Msg("Failed to write health response")
	}
}

// Readiness fails on the first required dependency that is down.
func (h *HealthCheckHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	for _, p := range h.deps {
		if !p.required {
			continue
		}
		if err := p.check(ctx); err != nil {
			logger.Warn().Err(err).Str("dependency", p.name).Msg("Readiness check failed")
			http.Error(w, p.name+" not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

func (h *HealthCheckHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}

func (h *HealthCheckHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /health/readiness", h.Readiness)
	mux.HandleFunc("GET /health/liveness", h.Liveness)
}

func checkRateFreshness(ctx context.Context, rates repository.ExchangeRateRepository) error {
	rate, err := rates.Get(ctx, entity.TargetCurrency)
	if err != nil {
		return err
	}

	if age := time.Since(rate.UpdatedAt); age > staleRateAge {
		logger.Warn().Dur("age", age).Str("currency", rate.Currency).Msg("Exchange rate is outdated")
	}
	return nil
}
