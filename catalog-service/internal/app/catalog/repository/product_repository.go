package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"techdeals/catalog-service/internal/app/catalog/entity"
	"techdeals/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var productSorts = map[string]bson.D{
	"price":   {{Key: "price", Value: 1}},
	"-price":  {{Key: "price", Value: -1}},
	"rating":  {{Key: "rating", Value: 1}},
	"-rating": {{Key: "rating", Value: -1}},
	"title":   {{Key: "title", Value: 1}},
	"-title":  {{Key: "title", Value: -1}},
	"newest":  {{Key: "createdAt", Value: -1}},
}

type productRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &productRepository{
		collection: db.Collection(entity.ProductsCollection),
	}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, entity.ProductsCollection)
	defer timer.ObserveDuration()

	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateKey
		}
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.findOne(ctx, bson.M{"sku": sku})
}

func (r *productRepository) findOne(ctx context.Context, filter bson.M) (*entity.Product, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, entity.ProductsCollection)
	defer timer.ObserveDuration()

	var product entity.Product
	if err := r.collection.FindOne(ctx, filter).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpFind)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, q entity.ProductQuery) ([]entity.Product, int64, error) {
	filter := bson.M{}
	if !q.IncludeInactive {
		filter["isActive"] = true
	}
	if q.Department != "" {
		filter["department"] = exactMatch(q.Department)
	}
	if q.Category != "" {
		filter["category"] = exactMatch(q.Category)
	}
	if q.Brand != "" {
		filter["brand"] = exactMatch(q.Brand)
	}
	if q.InStock {
		filter["stock"] = bson.M{"$gt": 0}
	}
	priceRange(filter, q.MinPrice, q.MaxPrice)

	sortBy, ok := productSorts[q.Sort]
	if !ok {
		sortBy = bson.D{{Key: "_id", Value: 1}}
	}

	opts := options.Find().
		SetSort(sortBy).
		SetSkip(entity.Skip(q.Page, q.Limit)).
		SetLimit(int64(q.Limit))

	return findPage[entity.Product](ctx, r.collection, filter, opts)
}

func (r *productRepository) Search(ctx context.Context, term string, page, limit int) ([]entity.Product, int64, error) {
	filter := bson.M{
		"$text":    bson.M{"$search": term},
		"isActive": true,
	}
	opts := options.Find().
		SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}}).
		SetSkip(entity.Skip(page, limit)).
		SetLimit(int64(limit))

	return findPage[entity.Product](ctx, r.collection, filter, opts)
}

func (r *productRepository) LowStock(ctx context.Context, threshold, page, limit int) ([]entity.Product, int64, error) {
	filter := bson.M{
		"stock":    bson.M{"$lt": threshold},
		"isActive": true,
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "stock", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(entity.Skip(page, limit)).
		SetLimit(int64(limit))

	return findPage[entity.Product](ctx, r.collection, filter, opts)
}

type productTotals struct {
	Total      int64   `bson:"total"`
	Active     int64   `bson:"active"`
	TotalStock int64   `bson:"totalStock"`
	AvgPrice   float64 `bson:"avgPrice"`
	AvgRating  float64 `bson:"avgRating"`
	MinPrice   int64   `bson:"minPrice"`
	MaxPrice   int64   `bson:"maxPrice"`
}

func (r *productRepository) Stats(ctx context.Context) (*entity.ProductStats, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpAggregate, entity.ProductsCollection)
	defer timer.ObserveDuration()

	totalsPipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "active", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{"$isActive", 1, 0}}}}}},
			{Key: "totalStock", Value: bson.D{{Key: "$sum", Value: "$stock"}}},
			{Key: "avgPrice", Value: bson.D{{Key: "$avg", Value: "$price"}}},
			{Key: "avgRating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "minPrice", Value: bson.D{{Key: "$min", Value: "$price"}}},
			{Key: "maxPrice", Value: bson.D{{Key: "$max", Value: "$price"}}},
		}}},
	}

	var totals []productTotals
	if err := r.aggregate(ctx, totalsPipeline, &totals); err != nil {
		return nil, err
	}

	departmentPipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isActive": true}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$department"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avgPrice", Value: bson.D{{Key: "$avg", Value: "$price"}}},
			{Key: "totalStock", Value: bson.D{{Key: "$sum", Value: "$stock"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	var departments []entity.DepartmentStat
	if err := r.aggregate(ctx, departmentPipeline, &departments); err != nil {
		return nil, err
	}

	stats := &entity.ProductStats{ByDepartment: departments}
	if len(totals) > 0 {
		t := totals[0]
		stats.TotalProducts = t.Total
		stats.ActiveProducts = t.Active
		stats.TotalStock = t.TotalStock
		stats.AveragePrice = roundTo2(t.AvgPrice)
		stats.AverageRating = roundTo2(t.AvgRating)
		stats.MinPrice = t.MinPrice
		stats.MaxPrice = t.MaxPrice
	}
	if stats.ByDepartment == nil {
		stats.ByDepartment = []entity.DepartmentStat{}
	}
	return stats, nil
}

func (r *productRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpAggregate)
		return fmt.Errorf("failed to aggregate products: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode product aggregate: %w", err)
	}
	return nil
}

func (r *productRepository) Categories(ctx context.Context) ([]string, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, entity.ProductsCollection)
	defer timer.ObserveDuration()

	values, err := r.collection.Distinct(ctx, "category", bson.M{"isActive": true})
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpFind)
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			categories = append(categories, s)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, entity.ProductsCollection)
	defer timer.ObserveDuration()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateKey
		}
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) UpdateStock(ctx context.Context, id int64, stock, delta *int) (*entity.Product, error) {
	if stock == nil && delta == nil {
		return nil, errors.New("stock or delta is required")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)

	var update interface{}
	if stock != nil {
		update = bson.M{"$set": bson.M{"stock": max(*stock, 0), "updatedAt": now}}
	} else {
		update = mongo.Pipeline{
			{{Key: "$set", Value: bson.D{
				{Key: "stock", Value: bson.D{{Key: "$max", Value: bson.A{
					0,
					bson.D{{Key: "$add", Value: bson.A{"$stock", *delta}}},
				}}}},
				{Key: "updatedAt", Value: now},
			}}},
		}
	}

	return r.findOneAndUpdate(ctx, id, update)
}

func (r *productRepository) SetActive(ctx context.Context, id int64, active bool) (*entity.Product, error) {
	update := bson.M{"$set": bson.M{
		"isActive":  active,
		"updatedAt": time.Now().UTC().Truncate(time.Millisecond),
	}}
	return r.findOneAndUpdate(ctx, id, update)
}

func (r *productRepository) findOneAndUpdate(ctx context.Context, id int64, update interface{}) (*entity.Product, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, entity.ProductsCollection)
	defer timer.ObserveDuration()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product entity.Product
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, entity.ProductsCollection)
	defer timer.ObserveDuration()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpDelete)
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

// findPage counts the filter and then fetches one page of it.
func findPage[T any](ctx context.Context, collection *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]T, int64, error) {
	name := collection.Name()

	countTimer := metrics.NewDbTimer(serviceName, metrics.DbOpCount, name)
	total, err := collection.CountDocuments(ctx, filter)
	countTimer.ObserveDuration()
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpCount)
		return nil, 0, fmt.Errorf("failed to count %s: %w", name, err)
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, name)
	defer timer.ObserveDuration()

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpFind)
		return nil, 0, fmt.Errorf("failed to find %s: %w", name, err)
	}
	defer cursor.Close(ctx)

	items := make([]T, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return items, total, nil
}

func roundTo2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
