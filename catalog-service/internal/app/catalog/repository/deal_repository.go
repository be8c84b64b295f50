package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"techdeals/catalog-service/internal/app/catalog/entity"
	"techdeals/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type dealRepository struct {
	collection *mongo.Collection
}

func NewDealRepository(db *mongo.Database) DealRepository {
	return &dealRepository{
		collection: db.Collection(entity.DealsCollection),
	}
}

func (r *dealRepository) Create(ctx context.Context, deal *entity.Deal) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, entity.DealsCollection)
	defer timer.ObserveDuration()

	if _, err := r.collection.InsertOne(ctx, deal); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateKey
		}
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create deal: %w", err)
	}
	return nil
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

	if _, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return insertedFromError(len(deals), err), fmt.Errorf("failed to insert deals: %w", err)
	}
	return len(deals), nil
}

func (r *dealRepository) GetByDealID(ctx context.Context, dealID int64) (*entity.Deal, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, entity.DealsCollection)
	defer timer.ObserveDuration()

	var deal entity.Deal
	if err := r.collection.FindOne(ctx, bson.M{"dealId": dealID}).Decode(&deal); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrDealNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpFind)
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	return &deal, nil
}

func (r *dealRepository) List(ctx context.Context, q entity.DealQuery, now time.Time) ([]entity.Deal, int64, error) {
	filter := bson.M{}
	if !q.IncludeInactive {
		filter["isActive"] = true
	}
	if q.Department != "" {
		filter["department"] = exactMatch(q.Department)
	}
	if q.MinDiscount > 0 {
		filter["discount"] = bson.M{"$gte": q.MinDiscount}
	}
	priceRange(filter, q.MinPrice, q.MaxPrice)

	switch q.Active {
	case entity.DealWindowCurrent:
		filter["startDate"] = bson.M{"$lte": now}
		filter["endDate"] = bson.M{"$gte": now}
	case entity.DealWindowUpcoming:
		filter["startDate"] = bson.M{"$gt": now}
	case entity.DealWindowExpired:
		filter["endDate"] = bson.M{"$lt": now}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "dealId", Value: 1}}).
		SetSkip(entity.Skip(q.Page, q.Limit)).
		SetLimit(int64(q.Limit))

	return findPage[entity.Deal](ctx, r.collection, filter, opts)
}

func (r *dealRepository) Search(ctx context.Context, term string, page, limit int) ([]entity.Deal, int64, error) {
	pattern := containsMatch(term)
	filter := bson.M{
		"isActive": true,
		"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "dealId", Value: 1}}).
		SetSkip(entity.Skip(page, limit)).
		SetLimit(int64(limit))

	return findPage[entity.Deal](ctx, r.collection, filter, opts)
}

func (r *dealRepository) ListByProduct(ctx context.Context, productID int64) ([]entity.Deal, error) {
	return r.find(ctx, bson.M{"productId": productID, "isActive": true},
		options.Find().SetSort(bson.D{{Key: "startDate", Value: -1}}))
}

func (r *dealRepository) TopRated(ctx context.Context, limit int) ([]entity.Deal, error) {
	return r.find(ctx, bson.M{"isActive": true},
		options.Find().
			SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "discount", Value: -1}}).
			SetLimit(int64(limit)))
}

func (r *dealRepository) Recent(ctx context.Context, limit int) ([]entity.Deal, error) {
	return r.find(ctx, bson.M{"isActive": true},
		options.Find().
			SetSort(bson.D{{Key: "lastUpdated", Value: -1}}).
			SetLimit(int64(limit)))
}

func (r *dealRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]entity.Deal, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, entity.DealsCollection)
	defer timer.ObserveDuration()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpFind)
		return nil, fmt.Errorf("failed to find deals: %w", err)
	}
	defer cursor.Close(ctx)

	deals := make([]entity.Deal, 0)
	if err := cursor.All(ctx, &deals); err != nil {
		return nil, fmt.Errorf("failed to decode deals: %w", err)
	}
	return deals, nil
}

type dealTotals struct {
	Total       int64   `bson:"total"`
	Active      int64   `bson:"active"`
	Current     int64   `bson:"current"`
	Upcoming    int64   `bson:"upcoming"`
	Expired     int64   `bson:"expired"`
	AvgDiscount float64 `bson:"avgDiscount"`
}

func (r *dealRepository) Stats(ctx context.Context, now time.Time) (*entity.DealStats, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpAggregate, entity.DealsCollection)
	defer timer.ObserveDuration()

	countIf := func(cond bson.D) bson.D {
		return bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{cond, 1, 0}}}}}
	}

	totalsPipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "active", Value: countIf(bson.D{{Key: "$eq", Value: bson.A{"$isActive", true}}})},
			{Key: "current", Value: countIf(bson.D{{Key: "$and", Value: bson.A{
				bson.D{{Key: "$lte", Value: bson.A{"$startDate", now}}},
				bson.D{{Key: "$gte", Value: bson.A{"$endDate", now}}},
			}}})},
			{Key: "upcoming", Value: countIf(bson.D{{Key: "$gt", Value: bson.A{"$startDate", now}}})},
			{Key: "expired", Value: countIf(bson.D{{Key: "$lt", Value: bson.A{"$endDate", now}}})},
			{Key: "avgDiscount", Value: bson.D{{Key: "$avg", Value: "$discount"}}},
		}}},
	}

	var totals []dealTotals
	if err := r.aggregate(ctx, totalsPipeline, &totals); err != nil {
		return nil, err
	}

	departmentPipeline := mongo.Pipeline{
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

	var departments []entity.DealDepartmentStat
	if err := r.aggregate(ctx, departmentPipeline, &departments); err != nil {
		return nil, err
	}

	stats := &entity.DealStats{ByDepartment: departments}
	if len(totals) > 0 {
		t := totals[0]
		stats.TotalDeals = t.Total
		stats.ActiveDeals = t.Active
		stats.CurrentDeals = t.Current
		stats.UpcomingDeals = t.Upcoming
		stats.ExpiredDeals = t.Expired
		stats.AverageDiscount = roundTo2(t.AvgDiscount)
	}
	for i := range stats.ByDepartment {
		stats.ByDepartment[i].AverageDiscount = roundTo2(stats.ByDepartment[i].AverageDiscount)
		stats.ByDepartment[i].AverageSavings = roundTo2(stats.ByDepartment[i].AverageSavings)
	}
	if stats.ByDepartment == nil {
		stats.ByDepartment = []entity.DealDepartmentStat{}
	}
	return stats, nil
}

func (r *dealRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpAggregate)
		return fmt.Errorf("failed to aggregate deals: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode deal aggregate: %w", err)
	}
	return nil
}

func (r *dealRepository) Update(ctx context.Context, deal *entity.Deal) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, entity.DealsCollection)
	defer timer.ObserveDuration()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"dealId": deal.DealID}, deal)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return fmt.Errorf("failed to update deal: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrDealNotFound
	}
	return nil
}

func (r *dealRepository) SetActive(ctx context.Context, dealID int64, active bool) (*entity.Deal, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, entity.DealsCollection)
	defer timer.ObserveDuration()

	update := bson.M{"$set": bson.M{
		"isActive":    active,
		"lastUpdated": time.Now().UTC().Truncate(time.Millisecond),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var deal entity.Deal
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"dealId": dealID}, update, opts).Decode(&deal); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrDealNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return nil, fmt.Errorf("failed to update deal: %w", err)
	}
	return &deal, nil
}

func (r *dealRepository) Delete(ctx context.Context, dealID int64) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, entity.DealsCollection)
	defer timer.ObserveDuration()

	result, err := r.collection.DeleteOne(ctx, bson.M{"dealId": dealID})
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpDelete)
		return fmt.Errorf("failed to delete deal: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrDealNotFound
	}
	return nil
}
