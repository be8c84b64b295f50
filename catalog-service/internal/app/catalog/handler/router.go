package handler

import (
	_ "embed"
	"net/http"
	"time"

	"techdeals/catalog-service/internal/app/catalog/config"
	"techdeals/pkg/logger"
	"techdeals/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed openapi.yaml
var openAPISpec []byte

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Products *ProductHandler
	Deals    *DealHandler
	Health   *HealthHandler
	Auth     *AuthMiddleware
}

// SetupRoutes builds the engine with its global middleware. Read routes are
// open; write routes go through the auth middleware.
func SetupRoutes(h Handlers, cfg *config.Config) *gin.Engine {
	production := cfg.Server.IsProduction()
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(Recovery(production))

	// Request log is only kept outside production.
	if !production {
		router.Use(logger.GinLoggerMiddleware("/health", "/metrics"))
	}

	router.Use(metrics.GinPrometheusMiddleware(serviceName))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", logger.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(Errors(production))

	router.GET("/health", h.Health.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/api-docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml", openAPISpec)
	})

	api := router.Group("")
	api.Use(RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	api.Use(BodyLimit(cfg.Server.MaxBodyBytes))

	write := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(h.Auth.WriteAccess(), handler)
	}

	products := api.Group("/products")
	{
		products.GET("", h.Products.ListProducts)
		products.GET("/stats", h.Products.GetStats)
		products.GET("/search/:term", h.Products.SearchProducts)
		products.GET("/department/:department", h.Products.ListByDepartment)
		products.GET("/category/:category", h.Products.ListByCategory)
		products.GET("/brand/:brand", h.Products.ListByBrand)
		products.GET("/price/:minPrice/:maxPrice", h.Products.ListByPriceRange)
		products.GET("/sku/:sku", h.Products.GetProductBySKU)
		products.GET("/inventory/low-stock", h.Products.LowStock)
		products.GET("/:id", h.Products.GetProduct)

		products.POST("", write(h.Products.CreateProduct)...)
		products.PUT("/:id", write(h.Products.UpdateProduct)...)
		products.DELETE("/:id", write(h.Products.DeleteProduct)...)
		products.PATCH("/:id/stock", write(h.Products.UpdateStock)...)
		products.PATCH("/:id/restore", write(h.Products.RestoreProduct)...)
		products.DELETE("/:id/hard-delete", write(h.Products.HardDeleteProduct)...)
	}

	api.GET("/categories", h.Products.GetCategories)

	deals := api.Group("/deals")
	{
		deals.GET("", h.Deals.ListDeals)
		deals.GET("/stats", h.Deals.GetStats)
		deals.GET("/search/:term", h.Deals.SearchDeals)
		deals.GET("/department/:department", h.Deals.ListByDepartment)
		deals.GET("/product/:productId", h.Deals.ListByProduct)
		deals.GET("/price/:minPrice/:maxPrice", h.Deals.ListByPriceRange)
		deals.GET("/top-rated", h.Deals.TopRated)
		deals.GET("/recent", h.Deals.Recent)
		deals.GET("/:id", h.Deals.GetDeal)

		deals.POST("", write(h.Deals.CreateDeal)...)
		deals.POST("/seed", write(h.Deals.SeedDeals)...)
		deals.PUT("/:id", write(h.Deals.UpdateDeal)...)
		deals.DELETE("/:id", write(h.Deals.DeleteDeal)...)
		deals.PATCH("/:id/restore", write(h.Deals.RestoreDeal)...)
		deals.DELETE("/:id/hard-delete", write(h.Deals.HardDeleteDeal)...)
	}

	router.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, "Route not found")
	})

	return router
}
