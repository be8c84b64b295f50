package service

import (
	"math/rand/v2"
	"sort"

	"techdeals/seeder-service/internal/app/seeder/entity"
)

const (
	DefaultDealTarget   = 150
	minDealsPerCategory = 3
)

// SelectProducts spreads target picks across categories in proportion to how
// many eligible products each one has. Categories too small to earn a share
// still get up to three picks, so the result may be cut back to target.
func SelectProducts(rng *rand.Rand, products []entity.Product, target int) []entity.Product {
	if target <= 0 {
		target = DefaultDealTarget
	}
	if len(products) == 0 {
		return nil
	}

	groups := make(map[string][]entity.Product)
	for _, p := range products {
		groups[p.Category] = append(groups[p.Category], p)
	}

	categories := make([]string, 0, len(groups))
	for c := range groups {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	total := len(products)
	selected := make([]entity.Product, 0, target)
	for _, category := range categories {
		group := groups[category]
		n := len(group)

		alloc := target * n / total
		if alloc == 0 {
			alloc = min(minDealsPerCategory, n)
		}

		rng.Shuffle(n, func(i, j int) { group[i], group[j] = group[j], group[i] })
		selected = append(selected, group[:min(alloc, n)]...)
	}

	if len(selected) > target {
		selected = selected[:target]
	}
	return selected
}
