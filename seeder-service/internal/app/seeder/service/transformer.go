package service

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"

	"techdeals/pkg/sku"
	"techdeals/seeder-service/internal/app/seeder/entity"

	"github.com/shopspring/decimal"
)

// CSV column names of the source datasets.
const (
	ColProductName = "Product Name"
	ColModel       = "Model"
	ColBrand       = "Brand"
	ColPrice       = "Price in India"
	ColPicture     = "Picture URL"
	ColOtherInfo   = "other_info"
	ColRAM         = "RAM"
	ColProcessor   = "Processor"
	ColOS          = "Operating system"
)

var (
	leadingNumber  = regexp.MustCompile(`^-?\d+(\.\d+)?`)
	leadingInteger = regexp.MustCompile(`^-?\d+`)
	priceNoise     = strings.NewReplacer("₹", "", ",", "", " ", "", " ", "")
)

// Row is one CSV record keyed by header name.
type Row map[string]string

// Get returns the first non-empty value among the given column names.
func (r Row) Get(columns ...string) string {
	for _, c := range columns {
		if v := strings.TrimSpace(r[c]); v != "" {
			return v
		}
	}
	return ""
}

// ConvertPrice turns a source price such as "₹1,299.50" into whole units of
// the target currency. Anything unparsable converts to 0.
func ConvertPrice(raw string, rate decimal.Decimal) int64 {
	cleaned := priceNoise.Replace(strings.TrimSpace(raw))
	num := leadingNumber.FindString(cleaned)
	if num == "" {
		return 0
	}

	amount, err := decimal.NewFromString(num)
	if err != nil {
		return 0
	}

	return amount.Mul(rate).Round(0).IntPart()
}

// CalculateRating is the star-weighted mean of the five buckets rounded to one
// decimal. Products without any votes get a random rating in [4.0, 4.8].
func CalculateRating(rng *rand.Rand, buckets [5]string) float64 {
	var total, weighted int64
	for i, raw := range buckets {
		n := parseStarCount(raw)
		total += n
		weighted += n * int64(i+1)
	}

	if total == 0 {
		return roundTo1(4.0 + rng.Float64()*0.8)
	}

	return roundTo1(float64(weighted) / float64(total))
}

func parseStarCount(raw string) int64 {
	digits := leadingInteger.FindString(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""))
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

// CleanImageURL keeps the first URL of a quoted, comma separated list and
// makes sure it carries an https scheme.
func CleanImageURL(raw string) string {
	url := strings.NewReplacer(`"`, "", "'", "").Replace(raw)
	if i := strings.Index(url, ","); i >= 0 {
		url = url[:i]
	}
	url = strings.TrimSpace(url)

	switch {
	case url == "":
		return ""
	case strings.HasPrefix(url, "http"):
		return url
	case strings.HasPrefix(url, "//"):
		return "https:" + url
	default:
		return "https://" + url
	}
}

// GenerateStock: 15% of products are low on stock (20-30), the rest hold 200-500.
func GenerateStock(rng *rand.Rand) int {
	if rng.Float64() < 0.15 {
		return 20 + rng.IntN(11)
	}
	return 200 + rng.IntN(301)
}

// GenerateSKU builds BRA-CAT-MODL-NNN. The numeric suffix is random, so two
// products with the same prefix may collide.
func GenerateSKU(rng *rand.Rand, brand, model, category string) string {
	return sku.Build(brand, category, model, int64(rng.IntN(1000)))
}

// ExtractDescription summarises key specs for phones and laptops. Specs are
// only read when other_info parses as a JSON object; laptops may then fill
// missing keys from the flat columns. Anything else gets the generic sentence.
func ExtractDescription(row Row, category string) string {
	var specs []string
	info, infoOK := parseOtherInfo(row.Get(ColOtherInfo))

	switch category {
	case entity.CategorySmartphones:
		if infoOK {
			specs = appendSpec(specs, info[ColRAM], "%s RAM")
			specs = appendSpec(specs, info["Internal storage"], "%s Storage")
			specs = appendSpec(specs, info["Rear camera"], "%s Camera")
		}
	case entity.CategoryLaptops:
		if infoOK {
			specs = appendSpec(specs, laptopField(info, row, ColRAM), "%s RAM")
			specs = appendSpec(specs, laptopField(info, row, ColProcessor), "%s Processor")
			specs = appendSpec(specs, laptopField(info, row, ColOS), "%s")
		}
	}

	if len(specs) > 0 {
		return strings.Join(specs, ", ")
	}

	brand := row.Get(ColBrand)
	if brand == "" {
		brand = "Premium"
	}
	name := row.Get(ColProductName, ColModel)
	if name == "" {
		name = "Tech Product"
	}

	return fmt.Sprintf("%s %s - High-quality %s with advanced features and reliable performance.",
		brand, name, strings.ToLower(category))
}

// parseOtherInfo reports false when the field is empty or not a JSON object.
func parseOtherInfo(raw string) (map[string]string, bool) {
	if raw == "" {
		return nil, false
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, false
	}

	info := make(map[string]string, len(decoded))
	for k, v := range decoded {
		switch val := v.(type) {
		case string:
			info[k] = strings.TrimSpace(val)
		case float64:
			if val != 0 {
				info[k] = strconv.FormatFloat(val, 'f', -1, 64)
			}
		case bool:
			if val {
				info[k] = "true"
			}
		}
	}
	return info, true
}

func laptopField(info map[string]string, row Row, key string) string {
	if v := info[key]; v != "" {
		return v
	}
	return row.Get(key)
}

func appendSpec(specs []string, value, format string) []string {
	if value == "" {
		return specs
	}
	return append(specs, fmt.Sprintf(format, value))
}

// ProductTransformer turns CSV rows into products for one run.
type ProductTransformer struct {
	rng  *rand.Rand
	rate decimal.Decimal
	now  func() time.Time
}

func NewProductTransformer(rng *rand.Rand, rate decimal.Decimal, now func() time.Time) *ProductTransformer {
	if now == nil {
		now = time.Now
	}
	return &ProductTransformer{rng: rng, rate: rate, now: now}
}

// Build converts a row. The returned reason is non-empty when the row must be
// dropped; the product then has no meaning.
func (t *ProductTransformer) Build(row Row, source entity.CategorySource) (entity.Product, entity.SkipReason) {
	name := row.Get(ColProductName)
	model := row.Get(ColModel)
	if name == "" && model == "" {
		return entity.Product{}, entity.SkipMissingName
	}

	price := ConvertPrice(row[ColPrice], t.rate)
	if price <= 0 {
		return entity.Product{}, entity.SkipInvalidPrice
	}

	rawBrand := row.Get(ColBrand)
	brand := rawBrand
	if brand == "" {
		brand = "Generic"
	}

	title := name
	if title == "" {
		title = model
	}

	now := t.now().UTC().Truncate(time.Millisecond)

	return entity.Product{
		SKU:         GenerateSKU(t.rng, rawBrand, model, source.Category),
		Title:       title,
		Description: ExtractDescription(row, source.Category),
		Price:       price,
		Currency:    entity.TargetCurrency,
		Category:    source.Category,
		Department:  source.Department,
		Image:       CleanImageURL(row[ColPicture]),
		Stock:       GenerateStock(t.rng),
		Rating:      CalculateRating(t.rng, starBuckets(row)),
		Brand:       brand,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, ""
}

// RerollSKU draws a new suffix for an existing SKU prefix.
func (t *ProductTransformer) RerollSKU(code string) string {
	if i := strings.LastIndex(code, "-"); i >= 0 {
		return fmt.Sprintf("%s-%03d", code[:i], t.rng.IntN(1000))
	}
	return code
}

func starBuckets(row Row) [5]string {
	var buckets [5]string
	for i := range buckets {
		n := strconv.Itoa(i + 1)
		buckets[i] = row.Get(n+" Stars", n+" stars")
	}
	return buckets
}
