package repository

import (
	"context"
	"testing"

	"techdeals/seeder-service/internal/app/seeder/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func sampleProducts(n int) []entity.Product {
	products := make([]entity.Product, n)
	for i := range products {
		products[i] = entity.Product{
			ID:       int64(i + 1),
			SKU:      "SAM-SMA-GALA-00" + string(rune('0'+i)),
			Title:    "Galaxy",
			Price:    32000,
			Currency: entity.TargetCurrency,
			Category: entity.CategorySmartphones,
			IsActive: true,
		}
	}
	return products
}

func TestProductRepository_InsertMany(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("all inserted", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		n, err := repo.InsertMany(context.Background(), sampleProducts(3))

		require.NoError(mt, err)
		assert.Equal(mt, 3, n)
	})

	mt.Run("duplicate sku keeps the rest", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   1,
			Code:    11000,
			Message: "E11000 duplicate key error collection: test.products index: sku_unique",
		}))

		n, err := repo.InsertMany(context.Background(), sampleProducts(3))

		assert.Error(mt, err)
		assert.Equal(mt, 2, n)
	})

	mt.Run("empty batch skips the store", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)

		n, err := repo.InsertMany(context.Background(), nil)

		assert.NoError(mt, err)
		assert.Zero(mt, n)
	})
}

func TestProductRepository_FindEligible(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes products", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		ns := mt.DB.Name() + "." + entity.ProductsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: int64(1)},
				{Key: "sku", Value: "DEL-LAP-INSP-042"},
				{Key: "category", Value: entity.CategoryLaptops},
				{Key: "price", Value: int64(120000)},
				{Key: "stock", Value: 250},
				{Key: "rating", Value: 4.4},
				{Key: "image", Value: "https://img/1.jpg"},
				{Key: "isActive", Value: true},
			},
			bson.D{
				{Key: "_id", Value: int64(2)},
				{Key: "sku", Value: "APP-SMA-IPHO-007"},
				{Key: "category", Value: entity.CategorySmartphones},
				{Key: "price", Value: int64(90000)},
				{Key: "stock", Value: 40},
				{Key: "rating", Value: 4.1},
				{Key: "image", Value: "https://img/2.jpg"},
				{Key: "isActive", Value: true},
			},
		))

		products, err := repo.FindEligible(context.Background(), EligibilityCriteria{MinStock: 30, MinRating: 3.5, MinPrice: 1000})

		require.NoError(mt, err)
		require.Len(mt, products, 2)
		assert.Equal(mt, int64(1), products[0].ID)
		assert.Equal(mt, entity.CategorySmartphones, products[1].Category)
		assert.Equal(mt, 40, products[1].Stock)
	})

	mt.Run("query error", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad query"}))

		products, err := repo.FindEligible(context.Background(), EligibilityCriteria{})

		assert.Error(mt, err)
		assert.Nil(mt, products)
	})
}

func TestProductRepository_CountByCategory(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("groups", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		ns := mt.DB.Name() + "." + entity.ProductsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "Smartphones"}, {Key: "count", Value: int64(150)}},
			bson.D{{Key: "_id", Value: "Laptops"}, {Key: "count", Value: int64(80)}},
		))

		counts, err := repo.CountByCategory(context.Background())

		require.NoError(mt, err)
		assert.Equal(mt, []entity.CategoryCount{
			{Category: "Smartphones", Count: 150},
			{Category: "Laptops", Count: 80},
		}, counts)
	})
}

func TestProductRepository_DeleteAll(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("reports deleted count", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(12)}))

		n, err := repo.DeleteAll(context.Background())

		require.NoError(mt, err)
		assert.Equal(mt, int64(12), n)
	})
}

func TestInsertedFromError(t *testing.T) {
	assert.Zero(t, insertedFromError(10, false, assert.AnError))
}
