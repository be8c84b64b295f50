package repository

import (
	"context"
	"errors"
	"fmt"

	"techdeals/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type indexManager struct {
	db *mongo.Database
}

func NewIndexManager(db *mongo.Database) IndexManager {
	return &indexManager{db: db}
}

// DropIndexes removes every index except _id. A collection that does not
// exist yet is not an error.
func (m *indexManager) DropIndexes(ctx context.Context, collection string) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpIndex, collection)
	defer timer.ObserveDuration()

	if _, err := m.db.Collection(collection).Indexes().DropAll(ctx); err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && (cmdErr.Code == 26 || cmdErr.Name == "NamespaceNotFound") {
			return nil
		}
		metrics.RecordDbError(serviceName, metrics.DbOpIndex)
		return fmt.Errorf("failed to drop indexes on %s: %w", collection, err)
	}
	return nil
}

func (m *indexManager) CreateIndexes(ctx context.Context, collection string, models []mongo.IndexModel) ([]string, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpIndex, collection)
	defer timer.ObserveDuration()

	names, err := m.db.Collection(collection).Indexes().CreateMany(ctx, models)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpIndex)
		return nil, fmt.Errorf("failed to create indexes on %s: %w", collection, err)
	}
	return names, nil
}

// ProductIndexes are the indexes the catalog API relies on.
func ProductIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetName("sku_unique").SetUnique(true)},
		{Keys: bson.D{{Key: "department", Value: 1}}, Options: options.Index().SetName("department_idx")},
		{Keys: bson.D{{Key: "category", Value: 1}}, Options: options.Index().SetName("category_idx")},
		{Keys: bson.D{{Key: "brand", Value: 1}}, Options: options.Index().SetName("brand_idx")},
		{Keys: bson.D{{Key: "price", Value: 1}}, Options: options.Index().SetName("price_idx")},
		{Keys: bson.D{{Key: "isActive", Value: 1}}, Options: options.Index().SetName("active_idx")},
		{
			Keys:    bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("search_text_idx"),
		},
	}
}

func DealIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "productId", Value: 1}}, Options: options.Index().SetName("productId_idx")},
		{Keys: bson.D{{Key: "department", Value: 1}}, Options: options.Index().SetName("deal_department_idx")},
		{Keys: bson.D{{Key: "isActive", Value: 1}}, Options: options.Index().SetName("deal_active_idx")},
		{
			Keys:    bson.D{{Key: "startDate", Value: 1}, {Key: "endDate", Value: 1}},
			Options: options.Index().SetName("deal_dates_idx"),
		},
	}
}
