package entity

import "time"

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

type CreateProductRequest struct {
	SKU         string  `json:"sku" validate:"omitempty,min=3,max=50"`
	Title       string  `json:"title" validate:"required,min=2,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Price       int64   `json:"price" validate:"required,gt=0"`
	Currency    string  `json:"currency" validate:"omitempty,len=3"`
	Category    string  `json:"category" validate:"required,max=100"`
	Department  string  `json:"department" validate:"required,max=100"`
	Image       string  `json:"image" validate:"omitempty,url"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Rating      float64 `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Brand       string  `json:"brand" validate:"max=100"`
}

// UpdateProductRequest carries only the fields to change.
type UpdateProductRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=2,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Price       *int64   `json:"price" validate:"omitempty,gt=0"`
	Currency    *string  `json:"currency" validate:"omitempty,len=3"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
	Department  *string  `json:"department" validate:"omitempty,max=100"`
	Image       *string  `json:"image" validate:"omitempty,url"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	Rating      *float64 `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Brand       *string  `json:"brand" validate:"omitempty,max=100"`
	IsActive    *bool    `json:"isActive"`
}

// StockUpdateRequest sets the stock to Stock, or moves it by Delta.
type StockUpdateRequest struct {
	Stock *int `json:"stock" validate:"omitempty,gte=0"`
	Delta *int `json:"delta"`
}

type CreateDealRequest struct {
	ProductID        int64     `json:"productId" validate:"required,gt=0"`
	VariantSKU       string    `json:"variantSku" validate:"max=50"`
	Department       string    `json:"department" validate:"required,max=100"`
	Thumbnail        string    `json:"thumbnail" validate:"omitempty,url"`
	Image            string    `json:"image" validate:"omitempty,url"`
	Title            string    `json:"title" validate:"required,min=2,max=200"`
	Description      string    `json:"description" validate:"max=2000"`
	ShortDescription string    `json:"shortDescription" validate:"max=300"`
	Price            int64     `json:"price" validate:"gte=0"`
	OriginalPrice    int64     `json:"originalPrice" validate:"required,gt=0"`
	Currency         string    `json:"currency" validate:"omitempty,len=3"`
	Rating           float64   `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Discount         int       `json:"discount" validate:"omitempty,gt=0,lte=50"`
	StartDate        time.Time `json:"startDate" validate:"required"`
	EndDate          time.Time `json:"endDate" validate:"required"`
}

type UpdateDealRequest struct {
	Department       *string    `json:"department" validate:"omitempty,max=100"`
	Thumbnail        *string    `json:"thumbnail" validate:"omitempty,url"`
	Image            *string    `json:"image" validate:"omitempty,url"`
	Title            *string    `json:"title" validate:"omitempty,min=2,max=200"`
	Description      *string    `json:"description" validate:"omitempty,max=2000"`
	ShortDescription *string    `json:"shortDescription" validate:"omitempty,max=300"`
	Price            *int64     `json:"price" validate:"omitempty,gte=0"`
	OriginalPrice    *int64     `json:"originalPrice" validate:"omitempty,gt=0"`
	Rating           *float64   `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Discount         *int       `json:"discount" validate:"omitempty,gt=0,lte=50"`
	IsActive         *bool      `json:"isActive"`
	StartDate        *time.Time `json:"startDate"`
	EndDate          *time.Time `json:"endDate"`
}

// ProductQuery holds the GET /products filters after parsing.
type ProductQuery struct {
	Page            int
	Limit           int
	Sort            string
	Department      string
	Category        string
	Brand           string
	MinPrice        *int64
	MaxPrice        *int64
	InStock         bool
	IncludeInactive bool
}

// Deal activity windows accepted by the active filter.
const (
	DealWindowCurrent  = "current"
	DealWindowUpcoming = "upcoming"
	DealWindowExpired  = "expired"
)

type DealQuery struct {
	Page            int
	Limit           int
	Department      string
	Active          string
	MinDiscount     int
	MinPrice        *int64
	MaxPrice        *int64
	IncludeInactive bool
}

// Skip is the number of documents before the requested page.
func Skip(page, limit int) int64 {
	if page < 1 {
		page = 1
	}
	return int64((page - 1) * limit)
}

type ListResponse struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
	Data    interface{} `json:"data"`
}

type CollectionResponse struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Data    interface{} `json:"data"`
}

type DataResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SeedResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Inserted int    `json:"inserted"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
