package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"techdeals/catalog-service/internal/app/catalog/entity"
	"techdeals/catalog-service/internal/app/catalog/repository"
	"techdeals/catalog-service/internal/app/catalog/util"
	"techdeals/pkg/logger"
	"techdeals/pkg/sku"
)

const publishTimeout = 3 * time.Second

// ProductService owns product reads and writes. Writes invalidate the
// categories cache and publish a product event; neither side effect can fail
// the request.
type ProductService struct {
	products      repository.ProductRepository
	counters      repository.CounterRepository
	cache         util.CategoryCache
	publisher     util.MessagePublisher
	categoriesTTL time.Duration
	now           func() time.Time
}

// NewProductService wires the product repository, id counters, categories
// cache and event publisher.
func NewProductService(
	products repository.ProductRepository,
	counters repository.CounterRepository,
	cache util.CategoryCache,
	publisher util.MessagePublisher,
	categoriesTTL time.Duration,
) *ProductService {
	return &ProductService{
		products:      products,
		counters:      counters,
		cache:         cache,
		publisher:     publisher,
		categoriesTTL: categoriesTTL,
		now:           time.Now,
	}
}

// ListProducts returns one page of products matching q and the total match count.
func (s *ProductService) ListProducts(ctx context.Context, q entity.ProductQuery) ([]entity.Product, int64, error) {
	products, total, err := s.products.List(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// ListByPriceRange is ListProducts with the price bounds checked first.
func (s *ProductService) ListByPriceRange(ctx context.Context, q entity.ProductQuery) ([]entity.Product, int64, error) {
	if err := checkPriceRange(q.MinPrice, q.MaxPrice); err != nil {
		return nil, 0, err
	}
	return s.ListProducts(ctx, q)
}

// SearchProducts runs a text search over active product titles and descriptions.
func (s *ProductService) SearchProducts(ctx context.Context, term string, page, limit int) ([]entity.Product, int64, error) {
	products, total, err := s.products.Search(ctx, term, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}
	return products, total, nil
}

// LowStock lists active products with stock below threshold, lowest first.
func (s *ProductService) LowStock(ctx context.Context, threshold, page, limit int) ([]entity.Product, int64, error) {
	products, total, err := s.products.LowStock(ctx, threshold, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list low stock products: %w", err)
	}
	return products, total, nil
}

// GetProduct returns ErrProductNotFound when no product has the id.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, mapProductError(err, "failed to get product")
	}
	return product, nil
}

// GetProductBySKU looks a product up by its unique SKU.
func (s *ProductService) GetProductBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	product, err := s.products.GetBySKU(ctx, sku)
	if err != nil {
		return nil, mapProductError(err, "failed to get product")
	}
	return product, nil
}

// GetStats aggregates catalog totals.
func (s *ProductService) GetStats(ctx context.Context) (*entity.ProductStats, error) {
	stats, err := s.products.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get product stats: %w", err)
	}
	return stats, nil
}

// GetCategories reads through the Redis cache.
func (s *ProductService) GetCategories(ctx context.Context) ([]string, error) {
	categories, err := s.cache.GetCategories(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Categories cache read failed")
	} else if len(categories) > 0 {
		return categories, nil
	}

	categories, err = s.products.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	if err := s.cache.SetCategories(ctx, categories, s.categoriesTTL); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache categories")
	}

	return categories, nil
}

// CreateProduct reserves the next product id and stores the product. A
// missing SKU is generated from brand, category and title.
func (s *ProductService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error) {
	id, err := s.counters.Reserve(ctx, repository.ProductCounter, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate product id: %w", err)
	}

	now := s.timestamp()
	product := &entity.Product{
		ID:          id,
		SKU:         strings.TrimSpace(req.SKU),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Price:       req.Price,
		Currency:    strings.ToUpper(req.Currency),
		Category:    req.Category,
		Department:  req.Department,
		Image:       req.Image,
		Stock:       req.Stock,
		Rating:      req.Rating,
		Brand:       req.Brand,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if product.SKU == "" {
		product.SKU = GenerateSKU(product.Brand, product.Category, product.Title, id)
	}
	if product.Currency == "" {
		product.Currency = entity.DefaultCurrency
	}

	if err := s.products.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateSKU
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	logger.Info().Int64("product_id", id).Str("sku", product.SKU).Msg("Product created")
	s.afterWrite(ctx, entity.EventProductCreated, product)
	return product, nil
}

// UpdateProduct applies the non-nil fields of req.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, req *entity.UpdateProductRequest) (*entity.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, mapProductError(err, "failed to get product")
	}

	applyProductUpdate(product, req)
	product.UpdatedAt = s.timestamp()

	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateSKU
		}
		return nil, mapProductError(err, "failed to update product")
	}

	s.afterWrite(ctx, entity.EventProductUpdated, product)
	return product, nil
}

func applyProductUpdate(p *entity.Product, req *entity.UpdateProductRequest) {
	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Currency != nil {
		p.Currency = strings.ToUpper(*req.Currency)
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Department != nil {
		p.Department = *req.Department
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Rating != nil {
		p.Rating = *req.Rating
	}
	if req.Brand != nil {
		p.Brand = *req.Brand
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
}

// UpdateStock either sets the stock or shifts it by a delta.
func (s *ProductService) UpdateStock(ctx context.Context, id int64, req *entity.StockUpdateRequest) (*entity.Product, error) {
	if req.Stock == nil && req.Delta == nil {
		return nil, ErrInvalidStockUpdate
	}

	product, err := s.products.UpdateStock(ctx, id, req.Stock, req.Delta)
	if err != nil {
		return nil, mapProductError(err, "failed to update stock")
	}

	s.publish(ctx, entity.EventProductStockChanged, product)
	return product, nil
}

// DeleteProduct deactivates the product; HardDeleteProduct removes it.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) (*entity.Product, error) {
	product, err := s.products.SetActive(ctx, id, false)
	if err != nil {
		return nil, mapProductError(err, "failed to delete product")
	}

	s.afterWrite(ctx, entity.EventProductDeleted, product)
	return product, nil
}

// RestoreProduct reactivates a soft-deleted product.
func (s *ProductService) RestoreProduct(ctx context.Context, id int64) (*entity.Product, error) {
	product, err := s.products.SetActive(ctx, id, true)
	if err != nil {
		return nil, mapProductError(err, "failed to restore product")
	}

	s.afterWrite(ctx, entity.EventProductUpdated, product)
	return product, nil
}

func (s *ProductService) HardDeleteProduct(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return mapProductError(err, "failed to delete product")
	}

	s.afterWrite(ctx, entity.EventProductDeleted, &entity.Product{ID: id})
	logger.Info().Int64("product_id", id).Msg("Product permanently deleted")
	return nil
}

func (s *ProductService) afterWrite(ctx context.Context, eventType string, product *entity.Product) {
	if err := s.cache.DeleteCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate categories cache")
	}
	s.publish(ctx, eventType, product)
}

func (s *ProductService) publish(ctx context.Context, eventType string, product *entity.Product) {
	event := entity.ProductEvent{
		EventType: eventType,
		ProductID: product.ID,
		SKU:       product.SKU,
		Title:     product.Title,
		Price:     product.Price,
		Stock:     product.Stock,
		Category:  product.Category,
		Timestamp: s.now().UTC(),
	}
	publishEvent(ctx, s.publisher, strconv.FormatInt(product.ID, 10), eventType, event)
}

func (s *ProductService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// publishEvent logs failures instead of returning them. The send is detached
// from request cancellation and bounded by publishTimeout.
func publishEvent(ctx context.Context, publisher util.MessagePublisher, key, eventType string, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("Failed to marshal event")
		return
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := publisher.PublishMessage(sendCtx, key, data); err != nil {
		logger.Warn().Err(err).Str("event_type", eventType).Str("key", key).Msg("Failed to publish event")
	}
}

func mapProductError(err error, msg string) error {
	if errors.Is(err, repository.ErrProductNotFound) {
		return ErrProductNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func checkPriceRange(minPrice, maxPrice *int64) error {
	if minPrice == nil || maxPrice == nil {
		return ErrInvalidPriceRange
	}
	if *minPrice < 0 || *minPrice > *maxPrice {
		return ErrInvalidPriceRange
	}
	return nil
}

// GenerateSKU builds BRA-CAT-TITL-<id> from brand, category and title. The id
// suffix keeps it unique.
func GenerateSKU(brand, category, title string, id int64) string {
	return sku.Build(brand, category, title, id)
}
