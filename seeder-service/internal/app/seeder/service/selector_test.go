package service

import (
	"fmt"
	"testing"

	"techdeals/seeder-service/internal/app/seeder/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productsIn(category string, n int, startID int64) []entity.Product {
	out := make([]entity.Product, n)
	for i := range out {
		out[i] = entity.Product{ID: startID + int64(i), Category: category, SKU: fmt.Sprintf("%s-%d", category, i)}
	}
	return out
}

func countByCategory(products []entity.Product) map[string]int {
	counts := make(map[string]int)
	for _, p := range products {
		counts[p.Category]++
	}
	return counts
}

func TestSelectProducts_Proportional(t *testing.T) {
	// Arrange
	pool := append(productsIn(entity.CategoryLaptops, 70, 1), productsIn(entity.CategoryCameras, 30, 100)...)

	// Act
	selected := SelectProducts(NewRand(1), pool, 100)

	// Assert
	counts := countByCategory(selected)
	assert.Equal(t, 70, counts[entity.CategoryLaptops])
	assert.Equal(t, 30, counts[entity.CategoryCameras])
}

func TestSelectProducts_SmallCategoryGetsMinimum(t *testing.T) {
	// Arrange
	pool := append(productsIn(entity.CategoryLaptops, 200, 1), productsIn(entity.CategoryGaming, 5, 500)...)

	// Act
	selected := SelectProducts(NewRand(2), pool, 20)

	// Assert
	counts := countByCategory(selected)
	require.Len(t, selected, 20)
	// Gaming Consoles sorts before Laptops, so its forced picks survive the cut.
	assert.Equal(t, 3, counts[entity.CategoryGaming])
	assert.Equal(t, 17, counts[entity.CategoryLaptops])
}

func TestSelectProducts_CategoryWithFewerThanMinimum(t *testing.T) {
	pool := append(productsIn(entity.CategoryLaptops, 300, 1), productsIn(entity.CategoryTablets, 2, 900)...)

	selected := SelectProducts(NewRand(3), pool, 10)

	counts := countByCategory(selected)
	assert.Equal(t, 9, counts[entity.CategoryLaptops])
	assert.Equal(t, 1, counts[entity.CategoryTablets])

	selected = SelectProducts(NewRand(3), pool, 50)
	counts = countByCategory(selected)
	assert.Equal(t, 49, counts[entity.CategoryLaptops])
	assert.Equal(t, 1, counts[entity.CategoryTablets])
}

func TestSelectProducts_NoDuplicates(t *testing.T) {
	pool := append(productsIn(entity.CategoryLaptops, 40, 1), productsIn(entity.CategorySmartphones, 60, 100)...)

	selected := SelectProducts(NewRand(4), pool, 0)

	seen := make(map[int64]bool)
	for _, p := range selected {
		assert.False(t, seen[p.ID], "product %d picked twice", p.ID)
		seen[p.ID] = true
	}
	// default target 150 exceeds the pool, so every product is used
	assert.Len(t, selected, 100)
}

func TestSelectProducts_Empty(t *testing.T) {
	assert.Empty(t, SelectProducts(NewRand(5), nil, 150))
}
