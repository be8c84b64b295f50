package handler

import (
	"context"
	"net/http"
	"time"

	"techdeals/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	healthServiceName = "product-service"
	serviceVersion    = "1.0.0"
	pingTimeout       = 3 * time.Second
)

var healthFeatures = []string{"Products", "Deals", "Search", "Analytics"}

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

type HealthHandler struct {
	db          Pinger
	environment string
}

func NewHealthHandler(db Pinger, environment string) *HealthHandler {
	return &HealthHandler{db: db, environment: environment}
}

type DatabaseHealth struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
}

type HealthResponse struct {
	Status      string         `json:"status"`
	Service     string         `json:"service"`
	Version     string         `json:"version"`
	Environment string         `json:"environment"`
	Timestamp   string         `json:"timestamp"`
	Database    DatabaseHealth `json:"database"`
	Features    []string       `json:"features"`
}

// HealthCheck answers 503 when the database ping fails.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	status, dbStatus, code := "healthy", "connected", http.StatusOK
	if err := h.db.Ping(ctx, readpref.Primary()); err != nil {
		logger.Warn().Err(err).Msg("Health check database ping failed")
		status, dbStatus, code = "unhealthy", "disconnected", http.StatusServiceUnavailable
	}

	c.JSON(code, HealthResponse{
		Status:      status,
		Service:     healthServiceName,
		Version:     serviceVersion,
		Environment: h.environment,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Database: DatabaseHealth{
			Status:   dbStatus,
			Provider: "MongoDB",
		},
		Features: healthFeatures,
	})
}
