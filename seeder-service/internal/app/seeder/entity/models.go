package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ProductsCollection = "products"
	DealsCollection    = "deals"
	CountersCollection = "counters"

	// TargetCurrency is the currency every imported price is converted to.
	TargetCurrency = "DZD"
)

// Product is one catalog item as stored in the products collection.
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

// Deal is a time-boxed promotion that snapshots one product.
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

// CategorySource describes one CSV input file and how its rows are tagged.
type CategorySource struct {
	Key        string
	Category   string
	Department string
	RowCap     int // valid products kept from the file
}

// FileName is the CSV file name inside the data directory.
func (s CategorySource) FileName() string {
	return s.Key + ".csv"
}

// CategorySources lists the inputs in import order.
var CategorySources = []CategorySource{
	{Key: "laptops", Category: "Laptops", Department: "Computers", RowCap: 80},
	{Key: "mobiles", Category: "Smartphones", Department: "Mobile Devices", RowCap: 150},
	{Key: "cameras", Category: "Cameras", Department: "Photography", RowCap: 80},
	{Key: "headphones_and_speakers", Category: "Headphones & Speakers", Department: "Audio", RowCap: 80},
	{Key: "gaming_consoles", Category: "Gaming Consoles", Department: "Gaming", RowCap: 80},
	{Key: "tablets", Category: "Tablets", Department: "Mobile Devices", RowCap: 80},
	{Key: "televisions", Category: "Smart TVs", Department: "Displays", RowCap: 80},
	{Key: "wearables", Category: "Smart Watches", Department: "Wearables", RowCap: 80},
}

// Category names used by the deal heuristics.
const (
	CategoryLaptops     = "Laptops"
	CategorySmartphones = "Smartphones"
	CategoryCameras     = "Cameras"
	CategoryAudio       = "Headphones & Speakers"
	CategoryGaming      = "Gaming Consoles"
	CategoryTablets     = "Tablets"
	CategorySmartTVs    = "Smart TVs"
	CategoryWatches     = "Smart Watches"
)

// ExchangeRate is a cached conversion rate relative to the API base currency.
type ExchangeRate struct {
	Currency  string    `json:"currency"`
	Rate      float64   `json:"rate"`
	Base      string    `json:"base"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExchangeRatesResponse is the payload of the rates API.
type ExchangeRatesResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

const RedisKeyPrefixRate = "rates:"

func GetRedisKeyForRate(currency string) string {
	return RedisKeyPrefixRate + currency
}
