package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"techdeals/catalog-service/internal/app/catalog/config"
	"techdeals/catalog-service/internal/app/catalog/repository/mocks"
	"techdeals/catalog-service/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret"

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(ctx context.Context, rp *readpref.ReadPref) error {
	return p.err
}

type testEnv struct {
	router    *gin.Engine
	products  *mocks.MockProductRepository
	deals     *mocks.MockDealRepository
	counters  *mocks.MockCounterRepository
	cache     *mocks.MockCategoryCache
	publisher *mocks.MockMessagePublisher
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Environment:  "test",
			CORSOrigins:  []string{"http://localhost:3000"},
			MaxBodyBytes: 1 << 20,
		},
		RateLimit: config.RateLimitConfig{RPS: 1000, Burst: 1000},
	}
}

func setupTestEnv(cfg *config.Config, jwtSecret string, dbErr error) *testEnv {
	env := &testEnv{
		products:  new(mocks.MockProductRepository),
		deals:     new(mocks.MockDealRepository),
		counters:  new(mocks.MockCounterRepository),
		cache:     new(mocks.MockCategoryCache),
		publisher: new(mocks.MockMessagePublisher),
	}
	env.cache.On("DeleteCategories", mock.Anything).Return(nil).Maybe()
	env.publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	productService := service.NewProductService(env.products, env.counters, env.cache, env.publisher, time.Hour)
	dealService := service.NewDealService(env.deals, env.counters, env.publisher)

	env.router = SetupRoutes(Handlers{
		Products: NewProductHandler(productService),
		Deals:    NewDealHandler(dealService),
		Health:   NewHealthHandler(fakePinger{err: dbErr}, cfg.Server.Environment),
		Auth:     NewAuthMiddleware(jwtSecret),
	}, cfg)
	return env
}

func newTestEnv() *testEnv {
	return setupTestEnv(testConfig(), "", nil)
}

func perform(router http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func signToken(role string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		UserID:   "user-1",
		RoleName: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, _ := token.SignedString([]byte(testSecret))
	return "Bearer " + signed
}

var errStorage = errors.New("connection pool exhausted")
