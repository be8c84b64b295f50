package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"techdeals/catalog-service/internal/app/catalog/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const serviceName = "catalog-service"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDealNotFound    = errors.New("deal not found")
	ErrDuplicateKey    = errors.New("duplicate key")
)

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// List applies the query filters; department, category and brand match
	// case-insensitively but exactly.
	List(ctx context.Context, q entity.ProductQuery) ([]entity.Product, int64, error)
	// Search runs a $text query over title and description, active only.
	Search(ctx context.Context, term string, page, limit int) ([]entity.Product, int64, error)
	LowStock(ctx context.Context, threshold, page, limit int) ([]entity.Product, int64, error)
	Stats(ctx context.Context) (*entity.ProductStats, error)
	Categories(ctx context.Context) ([]string, error)
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStock sets stock to *stock or adds *delta, never going below 0.
	UpdateStock(ctx context.Context, id int64, stock, delta *int) (*entity.Product, error)
	SetActive(ctx context.Context, id int64, active bool) (*entity.Product, error)
	Delete(ctx context.Context, id int64) error
}

type DealRepository interface {
	Create(ctx context.Context, deal *entity.Deal) error
	// InsertMany writes deals unordered and returns how many were stored.
	InsertMany(ctx context.Context, deals []entity.Deal) (int, error)
	GetByDealID(ctx context.Context, dealID int64) (*entity.Deal, error)
	List(ctx context.Context, q entity.DealQuery, now time.Time) ([]entity.Deal, int64, error)
	// Search matches the term as a literal, case-insensitive substring of
	// title or description.
	Search(ctx context.Context, term string, page, limit int) ([]entity.Deal, int64, error)
	ListByProduct(ctx context.Context, productID int64) ([]entity.Deal, error)
	TopRated(ctx context.Context, limit int) ([]entity.Deal, error)
	Recent(ctx context.Context, limit int) ([]entity.Deal, error)
	Stats(ctx context.Context, now time.Time) (*entity.DealStats, error)
	Update(ctx context.Context, deal *entity.Deal) error
	SetActive(ctx context.Context, dealID int64, active bool) (*entity.Deal, error)
	Delete(ctx context.Context, dealID int64) error
}

// CounterRepository hands out integer ids shared with the seeder.
type CounterRepository interface {
	// Reserve allocates n consecutive ids and returns the first one.
	Reserve(ctx context.Context, name string, n int) (int64, error)
}

// Counter names in the counters collection.
const (
	ProductCounter = "products"
	DealCounter    = "deals"
)

// exactMatch builds a case-insensitive, anchored regex for an exact value.
func exactMatch(value string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(value) + "$", Options: "i"}
}

func containsMatch(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}

func priceRange(filter bson.M, minPrice, maxPrice *int64) {
	if minPrice == nil && maxPrice == nil {
		return
	}
	cond := bson.M{}
	if minPrice != nil {
		cond["$gte"] = *minPrice
	}
	if maxPrice != nil {
		cond["$lte"] = *maxPrice
	}
	filter["price"] = cond
}

func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// insertedFromError derives the stored document count of a failed unordered
// bulk insert.
func insertedFromError(batchLen int, err error) int {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return 0
	}
	if n := batchLen - len(bwe.WriteErrors); n > 0 {
		return n
	}
	return 0
}
