package repository

import (
	"context"
	"testing"

	"techdeals/catalog-service/internal/app/catalog/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const productsNS = "ecommerce.products"

func productDoc(id int64, title string, stock int) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "sku", Value: "SAM-SMA-GALA-001"},
		{Key: "title", Value: title},
		{Key: "price", Value: int64(79998)},
		{Key: "currency", Value: "DZD"},
		{Key: "category", Value: "Smartphones"},
		{Key: "department", Value: "Mobile Devices"},
		{Key: "stock", Value: int32(stock)},
		{Key: "rating", Value: 4.5},
		{Key: "isActive", Value: true},
	}
}

func countResponse(ns string, n int32) bson.D {
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func TestProductRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		// Arrange
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		// Act
		err := repo.Create(context.Background(), &entity.Product{ID: 1, SKU: "A-B-C-001", Title: "Galaxy"})

		// Assert
		assert.NoError(mt, err)
	})

	mt.Run("duplicate sku", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: ecommerce.products index: sku_unique",
		}))

		err := repo.Create(context.Background(), &entity.Product{ID: 1, SKU: "A-B-C-001"})

		assert.ErrorIs(mt, err, ErrDuplicateKey)
	})
}

func TestProductRepository_GetByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch, productDoc(7, "Galaxy S21", 40)))

		product, err := repo.GetByID(context.Background(), 7)

		require.NoError(mt, err)
		assert.Equal(mt, int64(7), product.ID)
		assert.Equal(mt, "Galaxy S21", product.Title)
		assert.Equal(mt, 40, product.Stock)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch))

		product, err := repo.GetBySKU(context.Background(), "NOPE")

		assert.Nil(mt, product)
		assert.ErrorIs(mt, err, ErrProductNotFound)
	})
}

func TestProductRepository_List(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("page with total", func(mt *mtest.T) {
		// Arrange
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(
			countResponse(productsNS, 42),
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch,
				productDoc(21, "Galaxy S21", 40),
				productDoc(22, "Pixel 7", 12),
			),
		)
		minPrice := int64(1000)

		// Act
		products, total, err := repo.List(context.Background(), entity.ProductQuery{
			Page:       2,
			Limit:      20,
			Sort:       "-price",
			Department: "mobile devices",
			MinPrice:   &minPrice,
			InStock:    true,
		})

		// Assert
		require.NoError(mt, err)
		assert.Equal(mt, int64(42), total)
		require.Len(mt, products, 2)
		assert.Equal(mt, "Pixel 7", products[1].Title)

		find := mt.GetStartedEvent()
		for find != nil && find.CommandName != "find" {
			find = mt.GetStartedEvent()
		}
		require.NotNil(mt, find)
		assert.Equal(mt, int64(20), find.Command.Lookup("skip").AsInt64())
		filter := find.Command.Lookup("filter").Document()
		assert.True(mt, filter.Lookup("isActive").Boolean())
		pattern, options := filter.Lookup("department").Regex()
		assert.Equal(mt, "^mobile devices$", pattern)
		assert.Equal(mt, "i", options)
	})

	mt.Run("empty result is an empty slice", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch),
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch),
		)

		products, total, err := repo.List(context.Background(), entity.ProductQuery{Page: 1, Limit: 20})

		require.NoError(mt, err)
		assert.Zero(mt, total)
		assert.NotNil(mt, products)
		assert.Empty(mt, products)
	})

	mt.Run("count error", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad"}))

		_, _, err := repo.List(context.Background(), entity.ProductQuery{Page: 1, Limit: 20})

		assert.ErrorContains(mt, err, "failed to count products")
	})
}

func TestProductRepository_Search(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("text search", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(
			countResponse(productsNS, 1),
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch, productDoc(3, "Galaxy Tab", 10)),
		)

		products, total, err := repo.Search(context.Background(), "galaxy", 1, 20)

		require.NoError(mt, err)
		assert.Equal(mt, int64(1), total)
		assert.Equal(mt, "Galaxy Tab", products[0].Title)
	})
}

func TestProductRepository_Stats(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("totals and departments", func(mt *mtest.T) {
		// Arrange
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: nil},
				{Key: "total", Value: int32(3)},
				{Key: "active", Value: int32(2)},
				{Key: "totalStock", Value: int32(120)},
				{Key: "avgPrice", Value: 50000.3333},
				{Key: "avgRating", Value: 4.26666},
				{Key: "minPrice", Value: int64(1600)},
				{Key: "maxPrice", Value: int64(158400)},
			}),
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "Computers"}, {Key: "count", Value: int32(2)}, {Key: "avgPrice", Value: 75000.0}, {Key: "totalStock", Value: int32(80)}},
			),
		)

		// Act
		stats, err := repo.Stats(context.Background())

		// Assert
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), stats.TotalProducts)
		assert.Equal(mt, int64(2), stats.ActiveProducts)
		assert.Equal(mt, int64(120), stats.TotalStock)
		assert.Equal(mt, 50000.33, stats.AveragePrice)
		assert.Equal(mt, 4.27, stats.AverageRating)
		assert.Equal(mt, int64(158400), stats.MaxPrice)
		require.Len(mt, stats.ByDepartment, 1)
		assert.Equal(mt, "Computers", stats.ByDepartment[0].Department)
	})

	mt.Run("empty collection", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch),
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch),
		)

		stats, err := repo.Stats(context.Background())

		require.NoError(mt, err)
		assert.Zero(mt, stats.TotalProducts)
		assert.NotNil(mt, stats.ByDepartment)
	})
}

func TestProductRepository_Categories(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("sorted distinct values", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "values", Value: bson.A{"Tablets", "Laptops", "", "Cameras"}},
		))

		categories, err := repo.Categories(context.Background())

		require.NoError(mt, err)
		assert.Equal(mt, []string{"Cameras", "Laptops", "Tablets"}, categories)
	})
}

func TestProductRepository_UpdateStock(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("delta returns the updated product", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: productDoc(5, "Nord", 0)}))
		delta := -10

		product, err := repo.UpdateStock(context.Background(), 5, nil, &delta)

		require.NoError(mt, err)
		assert.Equal(mt, 0, product.Stock)
	})

	mt.Run("missing product", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))
		stock := 3

		product, err := repo.UpdateStock(context.Background(), 404, &stock, nil)

		assert.Nil(mt, product)
		assert.ErrorIs(mt, err, ErrProductNotFound)
	})

	mt.Run("nothing to change", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)

		_, err := repo.UpdateStock(context.Background(), 5, nil, nil)

		assert.Error(mt, err)
	})
}

func TestProductRepository_UpdateAndDelete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("update matched", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		assert.NoError(mt, repo.Update(context.Background(), &entity.Product{ID: 1}))
	})

	mt.Run("update missing", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		assert.ErrorIs(mt, repo.Update(context.Background(), &entity.Product{ID: 1}), ErrProductNotFound)
	})

	mt.Run("hard delete", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		assert.NoError(mt, repo.Delete(context.Background(), 1))
	})

	mt.Run("hard delete missing", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		assert.ErrorIs(mt, repo.Delete(context.Background(), 1), ErrProductNotFound)
	})
}

func TestRoundTo2(t *testing.T) {
	assert.Equal(t, 4.27, roundTo2(4.2666))
	assert.Equal(t, 12.5, roundTo2(12.5))
	assert.Equal(t, 0.0, roundTo2(0))
}
