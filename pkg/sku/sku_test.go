package sku

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name                   string
		brand, category, model string
		n                      int64
		want                   string
	}{
		{"pads suffix", "Samsung", "Smartphones", "Galaxy S21", 7, "SAM-SMA-GALA-007"},
		{"empty brand", "", "Laptops", "X1", 42, "UNK-LAP-X1-042"},
		{"drops punctuation", "LG", "Smart TVs", "OLED-55 C2", 3, "LG-SMA-OLED-003"},
		{"wide suffix", "Apple", "Audio", "AirPods", 1500, "APP-AUD-AIRP-1500"},
		{"non ascii brand", "écoute", "Cameras", "", 0, "ÉCO-CAM--000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Build(tt.brand, tt.category, tt.model, tt.n))
		})
	}
}

func TestTruncateUpper(t *testing.T) {
	assert.Equal(t, "GO", truncateUpper("go", 3))
	assert.Equal(t, "ÉCO", truncateUpper("écoute", 3))
	assert.Equal(t, "", truncateUpper("", 4))
}
