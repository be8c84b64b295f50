package service

import (
	"context"

	"techdeals/catalog-service/internal/app/catalog/entity"
)

type ProductServiceInterface interface {
	ListProducts(ctx context.Context, q entity.ProductQuery) ([]entity.Product, int64, error)
	ListByPriceRange(ctx context.Context, q entity.ProductQuery) ([]entity.Product, int64, error)
	SearchProducts(ctx context.Context, term string, page, limit int) ([]entity.Product, int64, error)
	LowStock(ctx context.Context, threshold, page, limit int) ([]entity.Product, int64, error)
	GetProduct(ctx context.Context, id int64) (*entity.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*entity.Product, error)
	GetStats(ctx context.Context) (*entity.ProductStats, error)
	GetCategories(ctx context.Context) ([]string, error)

	CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *entity.UpdateProductRequest) (*entity.Product, error)
	UpdateStock(ctx context.Context, id int64, req *entity.StockUpdateRequest) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id int64) (*entity.Product, error)
	RestoreProduct(ctx context.Context, id int64) (*entity.Product, error)
	HardDeleteProduct(ctx context.Context, id int64) error
}

type DealServiceInterface interface {
	ListDeals(ctx context.Context, q entity.DealQuery) ([]entity.Deal, int64, error)
	ListByPriceRange(ctx context.Context, q entity.DealQuery) ([]entity.Deal, int64, error)
	SearchDeals(ctx context.Context, term string, page, limit int) ([]entity.Deal, int64, error)
	ListByProduct(ctx context.Context, productID int64) ([]entity.Deal, error)
	TopRated(ctx context.Context, limit int) ([]entity.Deal, error)
	Recent(ctx context.Context, limit int) ([]entity.Deal, error)
	GetDeal(ctx context.Context, dealID int64) (*entity.Deal, error)
	GetStats(ctx context.Context) (*entity.DealStats, error)

	CreateDeal(ctx context.Context, req *entity.CreateDealRequest) (*entity.Deal, error)
	SeedDeals(ctx context.Context, reqs []entity.CreateDealRequest) (int, error)
	UpdateDeal(ctx context.Context, dealID int64, req *entity.UpdateDealRequest) (*entity.Deal, error)
	DeleteDeal(ctx context.Context, dealID int64) (*entity.Deal, error)
	RestoreDeal(ctx context.Context, dealID int64) (*entity.Deal, error)
	HardDeleteDeal(ctx context.Context, dealID int64) error
}
