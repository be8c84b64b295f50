package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ProductsCollection = "products"
	DealsCollection    = "deals"
	CountersCollection = "counters"

	DefaultCurrency = "DZD"
)

// Product is one catalog item; the seeder writes the same document shape.
type Product struct {
	ID          int64     `json:"id" bson:"_id"`
	SKU         string    `json:"sku" bson:"sku"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Price       int64     `json:"price" bson:"price"`
	Currency    string    `json:"currency" bson:"currency"`
	Category    string    `json:"category" bson:"category"`
	Department  string    `json:"department" bson:"department"`
	Image       string    `json:"image" bson:"image"`
	Stock       int       `json:"stock" bson:"stock"`
	Rating      float64   `json:"rating" bson:"rating"`
	Brand       string    `json:"brand" bson:"brand"`
	IsActive    bool      `json:"isActive" bson:"isActive"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

type Deal struct {
	ID               primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	DealID           int64              `json:"dealId" bson:"dealId"`
	ProductID        int64              `json:"productId" bson:"productId"`
	VariantSKU       string             `json:"variantSku" bson:"variantSku"`
	Department       string             `json:"department" bson:"department"`
	Thumbnail        string             `json:"thumbnail" bson:"thumbnail"`
	Image            string             `json:"image" bson:"image"`
	Title            string             `json:"title" bson:"title"`
	Description      string             `json:"description" bson:"description"`
	ShortDescription string             `json:"shortDescription" bson:"shortDescription"`
	Price            int64              `json:"price" bson:"price"`
	OriginalPrice    int64              `json:"originalPrice" bson:"originalPrice"`
	Currency         string             `json:"currency" bson:"currency"`
	Rating           float64            `json:"rating" bson:"rating"`
	Discount         int                `json:"discount" bson:"discount"`
	IsActive         bool               `json:"isActive" bson:"isActive"`
	StartDate        time.Time          `json:"startDate" bson:"startDate"`
	EndDate          time.Time          `json:"endDate" bson:"endDate"`
	LastUpdated      time.Time          `json:"lastUpdated" bson:"lastUpdated"`
}

// Savings is the absolute price difference the deal offers.
func (d *Deal) Savings() int64 {
	return d.OriginalPrice - d.Price
}

// ProductStats is the aggregate returned by GET /products/stats.
type ProductStats struct {
	TotalProducts  int64            `json:"totalProducts"`
	ActiveProducts int64            `json:"activeProducts"`
	TotalStock     int64            `json:"totalStock"`
	AveragePrice   float64          `json:"averagePrice"`
	AverageRating  float64          `json:"averageRating"`
	MinPrice       int64            `json:"minPrice"`
	MaxPrice       int64            `json:"maxPrice"`
	ByDepartment   []DepartmentStat `json:"byDepartment"`
}

type DepartmentStat struct {
	Department   string  `json:"department" bson:"_id"`
	Count        int64   `json:"count" bson:"count"`
	AveragePrice float64 `json:"averagePrice" bson:"avgPrice"`
	TotalStock   int64   `json:"totalStock,omitempty" bson:"totalStock"`
}

// DealStats is the aggregate returned by GET /deals/stats.
type DealStats struct {
	TotalDeals      int64                `json:"totalDeals"`
	ActiveDeals     int64                `json:"activeDeals"`
	CurrentDeals    int64                `json:"currentDeals"`
	UpcomingDeals   int64                `json:"upcomingDeals"`
	ExpiredDeals    int64                `json:"expiredDeals"`
	AverageDiscount float64              `json:"averageDiscount"`
	ByDepartment    []DealDepartmentStat `json:"byDepartment"`
}

type DealDepartmentStat struct {
	Department      string  `json:"department" bson:"_id"`
	Count           int64   `json:"count" bson:"count"`
	AverageDiscount float64 `json:"averageDiscount" bson:"avgDiscount"`
	AverageSavings  float64 `json:"averageSavings" bson:"avgSavings"`
}

// Event types published to the catalog topic.
const (
	EventProductCreated      = "PRODUCT_CREATED"
	EventProductUpdated      = "PRODUCT_UPDATED"
	EventProductDeleted      = "PRODUCT_DELETED"
	EventProductStockChanged = "PRODUCT_STOCK_CHANGED"
	EventDealCreated         = "DEAL_CREATED"
	EventDealUpdated         = "DEAL_UPDATED"
	EventDealDeleted         = "DEAL_DELETED"
)

// ProductEvent is the message body for product changes.
type ProductEvent struct {
	EventType string    `json:"event_type"`
	ProductID int64     `json:"product_id"`
	SKU       string    `json:"sku"`
	Title     string    `json:"title"`
	Price     int64     `json:"price"`
	Stock     int       `json:"stock"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}

type DealEvent struct {
	EventType string    `json:"event_type"`
	DealID    int64     `json:"deal_id"`
	ProductID int64     `json:"product_id"`
	Price     int64     `json:"price"`
	Discount  int       `json:"discount"`
	Timestamp time.Time `json:"timestamp"`
}
