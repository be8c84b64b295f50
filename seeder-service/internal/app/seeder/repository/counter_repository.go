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

// Counter names in the counters collection.
const (
	ProductCounter = "products"
	DealCounter    = "deals"
)

type counterDocument struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

type counterRepository struct {
	collection *mongo.Collection
}

func NewCounterRepository(db *mongo.Database) CounterRepository {
	return &counterRepository{
		collection: db.Collection(entity.CountersCollection),
	}
}

func (r *counterRepository) Reserve(ctx context.Context, name string, n int) (int64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("invalid id range size %d", n)
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, entity.CountersCollection)
	defer timer.ObserveDuration()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc counterDocument
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(n)}},
		opts,
	).Decode(&doc)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return 0, fmt.Errorf("failed to reserve %s ids: %w", name, err)
	}

	return doc.Seq - int64(n) + 1, nil
}

func (r *counterRepository) Reset(ctx context.Context) (int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, entity.CountersCollection)
	defer timer.ObserveDuration()

	result, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpDelete)
		return 0, fmt.Errorf("failed to reset counters: %w", err)
	}
	return result.DeletedCount, nil
}
