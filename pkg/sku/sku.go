// Package sku formats product stock keeping units shared by the seeder and
// the catalog API.
package sku

import (
	"fmt"
	"strings"
)

const unknownBrand = "UNK"

// Build returns BRA-CAT-MODL-NNN: the first three letters of brand and
// category, the first four ASCII alphanumerics of model, and n padded to at
// least three digits. An empty brand becomes UNK.
func Build(brand, category, model string, n int64) string {
	if brand == "" {
		brand = unknownBrand
	}

	var code strings.Builder
	for _, r := range model {
		if r < 128 && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			code.WriteRune(r)
		}
	}

	return fmt.Sprintf("%s-%s-%s-%03d",
		truncateUpper(brand, 3),
		truncateUpper(category, 3),
		truncateUpper(code.String(), 4),
		n,
	)
}

func truncateUpper(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return strings.ToUpper(string(runes))
}
