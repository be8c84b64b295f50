package repository

import (
	"context"
	"fmt"

	"techdeals/catalog-service/internal/app/catalog/entity"
	"techdeals/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
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
