package service

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"techdeals/seeder-service/internal/app/seeder/entity"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	maxDiscount      = 50
	shortTitleLimit  = 40
	shortTitleKeep   = 37
	thumbnailCDNHost = "gadgets360cdn.com"
)

type discountRange struct {
	min, max int
}

var (
	categoryDiscounts = map[string]discountRange{
		entity.CategorySmartphones: {10, 25},
		entity.CategoryLaptops:     {15, 30},
		entity.CategoryGaming:      {5, 15},
		entity.CategoryCameras:     {20, 40},
		entity.CategorySmartTVs:    {25, 45},
		entity.CategoryTablets:     {15, 35},
		entity.CategoryWatches:     {20, 40},
		entity.CategoryAudio:       {30, 50},
	}
	defaultDiscount = discountRange{15, 30}

	genericDealPhrases = []string{
		"Flash Sale",
		"Limited Time Offer",
		"Special Deal",
		"Hot Deal",
		"Best Price",
		"Mega Sale",
		"Weekend Special",
		"Tech Deal",
		"Super Saver",
		"Exclusive Offer",
	}

	categoryDealPhrases = map[string][]string{
		entity.CategorySmartphones: {"Phone Deal", "Mobile Offer", "Smartphone Sale"},
		entity.CategoryLaptops:     {"Laptop Deal", "Computer Sale", "Notebook Offer"},
		entity.CategoryGaming:      {"Gaming Deal", "Console Sale", "Gamer Special"},
		entity.CategoryCameras:     {"Camera Deal", "Photo Gear Sale", "Photographer Special"},
		entity.CategorySmartTVs:    {"TV Deal", "Entertainment Sale", "Smart TV Offer"},
		entity.CategoryTablets:     {"Tablet Deal", "Mobile Computing Sale"},
		entity.CategoryWatches:     {"Wearable Deal", "Smartwatch Sale", "Fitness Tech"},
		entity.CategoryAudio:       {"Audio Deal", "Sound Sale", "Music Gear"},
	}

	amountPrinter = message.NewPrinter(language.English)
)

// GenerateDiscount picks a whole percentage from the category range. Pricier
// products get a wider range, never beyond 50%.
func GenerateDiscount(rng *rand.Rand, category string, price int64) int {
	r, ok := categoryDiscounts[category]
	if !ok {
		r = defaultDiscount
	}

	switch {
	case price > 100000:
		r.max += 10
	case price > 50000:
		r.max += 5
	}
	r.max = min(r.max, maxDiscount)

	return r.min + rng.IntN(r.max-r.min+1)
}

// DealPrice applies the discount and rounds half away from zero.
func DealPrice(originalPrice int64, discount int) int64 {
	return decimal.NewFromInt(originalPrice).
		Mul(decimal.NewFromInt(int64(100 - discount))).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// DealArchetype is the position of a deal window relative to now.
type DealArchetype string

const (
	ArchetypeCurrent      DealArchetype = "current"
	ArchetypeStartingSoon DealArchetype = "starting_soon"
	ArchetypeEndingSoon   DealArchetype = "ending_soon"
	ArchetypeFuture       DealArchetype = "future"
)

var dealArchetypes = []DealArchetype{ArchetypeCurrent, ArchetypeStartingSoon, ArchetypeEndingSoon, ArchetypeFuture}

// GenerateDealDates picks an archetype uniformly and draws its window.
func GenerateDealDates(rng *rand.Rand, now time.Time) (time.Time, time.Time) {
	return dealWindow(rng, now, dealArchetypes[rng.IntN(len(dealArchetypes))])
}

func dealWindow(rng *rand.Rand, now time.Time, archetype DealArchetype) (start, end time.Time) {
	switch archetype {
	case ArchetypeCurrent:
		start = now.Add(-days(rng.Float64()*10 + 1))
		end = now.Add(days(rng.Float64()*15 + 5))
	case ArchetypeStartingSoon:
		start = now.Add(days(rng.Float64()*2 + 1))
		end = start.Add(days(rng.Float64()*7 + 7))
	case ArchetypeEndingSoon:
		start = now.Add(-days(rng.Float64()*10 + 5))
		end = now.Add(days(rng.Float64()*2 + 1))
	default:
		start = now.Add(days(rng.Float64()*7 + 3))
		end = start.Add(days(rng.Float64()*14 + 7))
	}
	return start.Truncate(time.Millisecond), end.Truncate(time.Millisecond)
}

func days(n float64) time.Duration {
	return time.Duration(n * float64(24*time.Hour))
}

// Thumbnail derives the small variant of a CDN image. Other URLs are kept.
func Thumbnail(image string) string {
	if !strings.Contains(image, thumbnailCDNHost) {
		return image
	}
	thumb := strings.Replace(image, "large", "small", 1)
	return strings.Replace(thumb, "?downsize=*:180", "?downsize=*:120", 1)
}

func DealTitle(rng *rand.Rand, productTitle string, discount int, category string) string {
	phrases := append(append([]string(nil), genericDealPhrases...), categoryDealPhrases[category]...)
	phrase := phrases[rng.IntN(len(phrases))]

	short := productTitle
	if runes := []rune(productTitle); len(runes) > shortTitleLimit {
		short = string(runes[:shortTitleKeep]) + "..."
	}

	return fmt.Sprintf("%s: %s - %d%% OFF", phrase, short, discount)
}

func DealDescription(rng *rand.Rand, p entity.Product, discount int, savings int64) string {
	cat := strings.ToLower(p.Category)
	amount := amountPrinter.Sprintf("%d", savings)

	switch rng.IntN(5) {
	case 0:
		return fmt.Sprintf("Get this amazing %s at an unbeatable price! Save %s DZD with our exclusive %d%% discount.", cat, amount, discount)
	case 1:
		return fmt.Sprintf("Limited time offer on this premium %s %s. Don't miss out on %d%% savings!", p.Brand, cat, discount)
	case 2:
		return fmt.Sprintf("Special deal alert! This top-rated %s is now available with a massive %d%% discount. Save %s DZD today!", cat, discount, amount)
	case 3:
		return fmt.Sprintf("Exclusive offer: %s quality at an incredible price. Get %d%% off this popular %s.", p.Brand, discount, cat)
	default:
		return fmt.Sprintf("Hot deal! Premium %s with excellent ratings now available with %d%% off. Limited stock available!", cat, discount)
	}
}

func ShortDescription(rng *rand.Rand, p entity.Product, discount int) string {
	cat := strings.ToLower(p.Category)

	switch rng.IntN(5) {
	case 0:
		return fmt.Sprintf("%d%% off %s %s", discount, p.Brand, cat)
	case 1:
		return fmt.Sprintf("Save big on this %s", cat)
	case 2:
		return fmt.Sprintf("Limited time %d%% discount", discount)
	case 3:
		return fmt.Sprintf("Premium %s deal", cat)
	default:
		return fmt.Sprintf("Exclusive %d%% off offer", discount)
	}
}

// DealBuilder snapshots products into deals. DealID is left for the caller.
type DealBuilder struct {
	rng *rand.Rand
	now func() time.Time
}

func NewDealBuilder(rng *rand.Rand, now func() time.Time) *DealBuilder {
	if now == nil {
		now = time.Now
	}
	return &DealBuilder{rng: rng, now: now}
}

func (b *DealBuilder) Build(p entity.Product) entity.Deal {
	now := b.now().UTC()
	discount := GenerateDiscount(b.rng, p.Category, p.Price)
	price := DealPrice(p.Price, discount)
	start, end := GenerateDealDates(b.rng, now)

	return entity.Deal{
		ProductID:        p.ID,
		VariantSKU:       p.SKU,
		Department:       p.Department,
		Thumbnail:        Thumbnail(p.Image),
		Image:            p.Image,
		Title:            DealTitle(b.rng, p.Title, discount, p.Category),
		Description:      DealDescription(b.rng, p, discount, p.Price-price),
		ShortDescription: ShortDescription(b.rng, p, discount),
		Price:            price,
		OriginalPrice:    p.Price,
		Currency:         p.Currency,
		Rating:           p.Rating,
		Discount:         discount,
		IsActive:         true,
		StartDate:        start,
		EndDate:          end,
		LastUpdated:      now.Truncate(time.Millisecond),
	}
}
