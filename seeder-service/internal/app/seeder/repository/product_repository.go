package repository

import (
	"context"
	"fmt"

	"techdeals/pkg/metrics"
	"techdeals/seeder-service/internal/app/seeder/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type productRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &productRepository{
		collection: db.Collection(entity.ProductsCollection),
	}
}

func (r *productRepository) InsertMany(ctx context.Context, products []entity.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, entity.ProductsCollection)
	defer timer.ObserveDuration()

	docs := make([]interface{}, len(products))
	for i := range products {
		docs[i] = products[i]
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return insertedFromError(len(products), false, err), fmt.Errorf("failed to insert products: %w", err)
	}

	return len(products), nil
}

func (r *productRepository) FindEligible(ctx context.Context, criteria EligibilityCriteria) ([]entity.Product, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, entity.ProductsCollection)
	defer timer.ObserveDuration()

	filter := bson.M{
		"isActive": true,
		"stock":    bson.M{"$gte": criteria.MinStock},
		"rating":   bson.M{"$gte": criteria.MinRating},
		"price":    bson.M{"$gte": criteria.MinPrice},
		"image":    bson.M{"$exists": true, "$nin": bson.A{"", nil}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpFind)
		return nil, fmt.Errorf("failed to find eligible products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpCount, entity.ProductsCollection)
	defer timer.ObserveDuration()

	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpCount)
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

func (r *productRepository) CountByCategory(ctx context.Context) ([]entity.CategoryCount, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpAggregate, entity.ProductsCollection)
	defer timer.ObserveDuration()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpAggregate)
		return nil, fmt.Errorf("failed to aggregate categories: %w", err)
	}
	defer cursor.Close(ctx)

	var counts []entity.CategoryCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode category counts: %w", err)
	}

	return counts, nil
}

func (r *productRepository) DeleteAll(ctx context.Context) (int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, entity.ProductsCollection)
	defer timer.ObserveDuration()

	result, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpDelete)
		return 0, fmt.Errorf("failed to delete products: %w", err)
	}
	return result.DeletedCount, nil
}
