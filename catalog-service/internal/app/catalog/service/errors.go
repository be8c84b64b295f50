package service

import "errors"

// MaxDealDiscount is the highest discount percentage a deal may carry.
const MaxDealDiscount = 50

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrDealNotFound       = errors.New("deal not found")
	ErrDuplicateSKU       = errors.New("product with this sku already exists")
	ErrInvalidDateRange   = errors.New("endDate must be after startDate")
	ErrInvalidPriceRange  = errors.New("minPrice must not exceed maxPrice")
	ErrInvalidDealPrice   = errors.New("deal price must not exceed originalPrice")
	ErrDealPriceMismatch  = errors.New("deal price does not match discount")
	ErrInvalidDiscount    = errors.New("discount must be between 1 and 50")
	ErrInvalidStockUpdate = errors.New("stock or delta is required")
	ErrEmptySeed          = errors.New("no deals to seed")
)
