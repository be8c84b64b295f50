package repository

import (
	"context"
	"fmt"
	"time"

	"techdeals/pkg/metrics"
	"techdeals/seeder-service/internal/app/seeder/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type dealRepository struct {
	collection *mongo.Collection
}

func NewDealRepository(db *mongo.Database) DealRepository {
	return &dealRepository{
		collection: db.Collection(entity.DealsCollection),
	}
}

func (r *dealRepository) InsertMany(ctx context.Context, deals []entity.Deal) (int, error) {
	if len(deals) == 0 {
		return 0, nil
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, entity.DealsCollection)
	defer timer.ObserveDuration()

	docs := make([]interface{}, len(deals))
	for i := range deals {
		docs[i] = deals[i]
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return insertedFromError(len(deals), true, err), fmt.Errorf("failed to insert deals: %w", err)
	}

	return len(deals), nil
}

func (r *dealRepository) DeleteAll(ctx context.Context) (int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, entity.DealsCollection)
	defer timer.ObserveDuration()

	result, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpDelete)
		return 0, fmt.Errorf("failed to delete deals: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *dealRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{})
}

// CountCurrent counts deals whose window contains now.
func (r *dealRepository) CountCurrent(ctx context.Context, now time.Time) (int64, error) {
	return r.count(ctx, bson.M{
		"isActive":  true,
		"startDate": bson.M{"$lte": now},
		"endDate":   bson.M{"$gte": now},
	})
}

func (r *dealRepository) CountUpcoming(ctx context.Context, now time.Time) (int64, error) {
	return r.count(ctx, bson.M{
		"isActive":  true,
		"startDate": bson.M{"$gt": now},
	})
}

func (r *dealRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpCount, entity.DealsCollection)
	defer timer.ObserveDuration()

	n, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpCount)
		return 0, fmt.Errorf("failed to count deals: %w", err)
	}
	return n, nil
}

func (r *dealRepository) StatsByDepartment(ctx context.Context) ([]entity.DepartmentStat, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpAggregate, entity.DealsCollection)
	defer timer.ObserveDuration()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$department"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avgDiscount", Value: bson.D{{Key: "$avg", Value: "$discount"}}},
			{Key: "avgSavings", Value: bson.D{{Key: "$avg", Value: bson.D{
				{Key: "$subtract", Value: bson.A{"$originalPrice", "$price"}},
			}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpAggregate)
		return nil, fmt.Errorf("failed to aggregate deal stats: %w", err)
	}
	defer cursor.Close(ctx)

	var stats []entity.DepartmentStat
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode deal stats: %w", err)
	}

	return stats, nil
}
