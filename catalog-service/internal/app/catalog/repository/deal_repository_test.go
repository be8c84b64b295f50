package repository

import (
	"context"
	"testing"
	"time"

	"techdeals/catalog-service/internal/app/catalog/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const dealsNS = "ecommerce.deals"

func dealDoc(dealID int64, title string, discount int32) bson.D {
	return bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "dealId", Value: dealID},
		{Key: "productId", Value: int64(100 + dealID)},
		{Key: "title", Value: title},
		{Key: "department", Value: "Audio"},
		{Key: "price", Value: int64(850)},
		{Key: "originalPrice", Value: int64(1000)},
		{Key: "discount", Value: discount},
		{Key: "rating", Value: 4.6},
		{Key: "isActive", Value: true},
	}
}

func nextCommand(mt *mtest.T, name string) bson.Raw {
	for ev := mt.GetStartedEvent(); ev != nil; ev = mt.GetStartedEvent() {
		if ev.CommandName == name {
			return ev.Command
		}
	}
	return nil
}

func TestDealRepository_InsertMany(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("all inserted", func(mt *mtest.T) {
		repo := NewDealRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		n, err := repo.InsertMany(context.Background(), make([]entity.Deal, 4))

		require.NoError(mt, err)
		assert.Equal(mt, 4, n)
	})

	mt.Run("partial failure", func(mt *mtest.T) {
		repo := NewDealRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(
			mtest.WriteError{Index: 0, Code: 121, Message: "Document failed validation"},
		))

		n, err := repo.InsertMany(context.Background(), make([]entity.Deal, 4))

		assert.Error(mt, err)
		assert.Equal(mt, 3, n)
	})

	mt.Run("empty", func(mt *mtest.T) {
		repo := NewDealRepository(mt.DB)

		n, err := repo.InsertMany(context.Background(), nil)

		require.NoError(mt, err)
		assert.Zero(mt, n)
	})
}

func TestDealRepository_GetByDealID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := NewDealRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, dealsNS, mtest.FirstBatch, dealDoc(12, "Audio: JBL Flip 6 - 15% OFF", 15)))

		deal, err := repo.GetByDealID(context.Background(), 12)

		require.NoError(mt, err)
		assert.Equal(mt, int64(12), deal.DealID)
		assert.Equal(mt, int64(150), deal.Savings())
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewDealRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, dealsNS, mtest.FirstBatch))

		_, err := repo.GetByDealID(context.Background(), 12)

		assert.ErrorIs(mt, err, ErrDealNotFound)
	})
}

func TestDealRepository_List(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("current window and min discount", func(mt *mtest.T) {
		// Arrange
		repo := NewDealRepository(mt.DB)
		mt.AddMockResponses(
			countResponse(dealsNS, 1),
			mtest.CreateCursorResponse(0, dealsNS, mtest.FirstBatch, dealDoc(1, "Gaming: PS5 - 25% OFF", 25)),
		)

		// Act
		deals, total, err := repo.List(context.Background(), entity.DealQuery{
			Page:        1,
			Limit:       10,
			Active:      entity.DealWindowCurrent,
			MinDiscount: 20,
		}, now)

		// Assert
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), total)
		require.Len(mt, deals, 1)

		cmd := nextCommand(mt, "find")
		require.NotNil(mt, cmd)
		filter := cmd.Lookup("filter").Document()
		assert.Equal(mt, int64(20), filter.Lookup("discount", "$gte").AsInt64())
		assert.True(mt, now.Equal(filter.Lookup("startDate", "$lte").Time()))
		assert.True(mt, now.Equal(filter.Lookup("endDate", "$gte").Time()))
	})

	mt.Run("expired window", func(mt *mtest.T) {
		repo := NewDealRepository(mt.DB)
		mt.AddMockResponses(
			countResponse(dealsNS, 0),
			mtest.CreateCursorResponse(0, dealsNS, mtest.FirstBatch),
		)

		_, _, err := repo.List(context.Background(), entity.DealQuery{Page: 1, Limit: 10, Active: entity.DealWindowExpired, IncludeInactive: true}, now)

		require.NoError(mt, err)
		filter := nextCommand(mt, "find").Lookup("filter").Document()
		_, hasActive := filter.Lookup("isActive").BooleanOK()
		assert.False(mt, hasActive)
		assert.True(mt, now.Equal(filter.Lookup("endDate", "$lt").Time()))
	})
}

func TestDealRepository_Search_EscapesTerm(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("regex metacharacters are literal", func(mt *mtest.T) {
		repo := NewDealRepository(mt.DB)
		mt.AddMockResponses(
			countResponse(dealsNS, 0),
			mtest.CreateCursorResponse(0, dealsNS, mtest.FirstBatch),
		)

		_, _, err := repo.Search(context.Background(), "4K (OLED)+", 1, 20)

		require.NoError(mt, err)
		filter := nextCommand(mt, "find").Lookup("filter").Document()
		or := filter.Lookup("$or").Array()
		pattern, opts := or.Index(0).Value().Document().Lookup("title").Regex()
		assert.Equal(mt, `4K \(OLED\)\+`, pattern)
		assert.Equal(mt, "i", opts)
	})
}

func TestDealRepository_Stats(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("totals", func(mt *mtest.T) {
		repo := NewDealRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, dealsNS, mtest.FirstBatch, bson.D{
				{Key: "total", Value: int32(10)},
				{Key: "active", Value: int32(9)},
				{Key: "current", Value: int32(6)},
				{Key: "upcoming", Value: int32(3)},
				{Key: "expired", Value: int32(1)},
				{Key: "avgDiscount", Value: 23.456},
			}),
			mtest.CreateCursorResponse(0, dealsNS, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "Audio"}, {Key: "count", Value: int32(10)}, {Key: "avgDiscount", Value: 23.456}, {Key: "avgSavings", Value: 1234.567}},
			),
		)

		stats, err := repo.Stats(context.Background(), time.Now())

		require.NoError(mt, err)
		assert.Equal(mt, int64(10), stats.TotalDeals)
		assert.Equal(mt, int64(6), stats.CurrentDeals)
		assert.Equal(mt, int64(1), stats.ExpiredDeals)
		assert.Equal(mt, 23.46, stats.AverageDiscount)
		assert.Equal(mt, 1234.57, stats.ByDepartment[0].AverageSavings)
	})
}

func TestDealRepository_SetActiveAndDelete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("restore", func(mt *mtest.T) {
		repo := NewDealRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: dealDoc(3, "x", 10)}))

		deal, err := repo.SetActive(context.Background(), 3, true)

		require.NoError(mt, err)
		assert.True(mt, deal.IsActive)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		repo := NewDealRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		assert.ErrorIs(mt, repo.Delete(context.Background(), 3), ErrDealNotFound)
	})
}

func TestCounterRepository_Reserve(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns first id of the range", func(mt *mtest.T) {
		repo := NewCounterRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: ProductCounter},
			{Key: "seq", Value: int64(105)},
		}}))

		first, err := repo.Reserve(context.Background(), ProductCounter, 5)

		require.NoError(mt, err)
		assert.Equal(mt, int64(101), first)
	})

	mt.Run("rejects empty range", func(mt *mtest.T) {
		_, err := NewCounterRepository(mt.DB).Reserve(context.Background(), DealCounter, 0)

		assert.Error(mt, err)
	})
}
