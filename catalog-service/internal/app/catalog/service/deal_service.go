package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"techdeals/catalog-service/internal/app/catalog/entity"
	"techdeals/catalog-service/internal/app/catalog/repository"
	"techdeals/catalog-service/internal/app/catalog/util"
	"techdeals/pkg/logger"

	"github.com/shopspring/decimal"
)

// DealService owns deal pricing and lifecycle. Writes publish a deal event.
type DealService struct {
	deals     repository.DealRepository
	counters  repository.CounterRepository
	publisher util.MessagePublisher
	now       func() time.Time
}

// NewDealService wires the deal repository, id counters and event publisher.
func NewDealService(
	deals repository.DealRepository,
	counters repository.CounterRepository,
	publisher util.MessagePublisher,
) *DealService {
	return &DealService{
		deals:     deals,
		counters:  counters,
		publisher: publisher,
		now:       time.Now,
	}
}

// ListDeals returns one page of deals matching q and the total match count.
// Status filters are evaluated against the current time.
func (s *DealService) ListDeals(ctx context.Context, q entity.DealQuery) ([]entity.Deal, int64, error) {
	deals, total, err := s.deals.List(ctx, q, s.now().UTC())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list deals: %w", err)
	}
	return deals, total, nil
}

// ListByPriceRange is ListDeals with the price bounds checked first.
func (s *DealService) ListByPriceRange(ctx context.Context, q entity.DealQuery) ([]entity.Deal, int64, error) {
	if err := checkPriceRange(q.MinPrice, q.MaxPrice); err != nil {
		return nil, 0, err
	}
	return s.ListDeals(ctx, q)
}

// SearchDeals matches term against active deal titles and descriptions.
func (s *DealService) SearchDeals(ctx context.Context, term string, page, limit int) ([]entity.Deal, int64, error) {
	deals, total, err := s.deals.Search(ctx, term, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search deals: %w", err)
	}
	return deals, total, nil
}

// ListByProduct returns the active deals of a product, latest start first.
func (s *DealService) ListByProduct(ctx context.Context, productID int64) ([]entity.Deal, error) {
	deals, err := s.deals.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals for product: %w", err)
	}
	return deals, nil
}

// TopRated returns up to limit active deals by rating, then discount.
func (s *DealService) TopRated(ctx context.Context, limit int) ([]entity.Deal, error) {
	deals, err := s.deals.TopRated(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top rated deals: %w", err)
	}
	return deals, nil
}

// Recent returns up to limit active deals, most recently updated first.
func (s *DealService) Recent(ctx context.Context, limit int) ([]entity.Deal, error) {
	deals, err := s.deals.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent deals: %w", err)
	}
	return deals, nil
}

// GetDeal returns ErrDealNotFound when no deal has the id.
func (s *DealService) GetDeal(ctx context.Context, dealID int64) (*entity.Deal, error) {
	deal, err := s.deals.GetByDealID(ctx, dealID)
	if err != nil {
		return nil, mapDealError(err, "failed to get deal")
	}
	return deal, nil
}

// GetStats counts deals by status as of now.
func (s *DealService) GetStats(ctx context.Context) (*entity.DealStats, error) {
	stats, err := s.deals.Stats(ctx, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get deal stats: %w", err)
	}
	return stats, nil
}

// CreateDeal validates pricing and dates, then reserves the next deal id.
func (s *DealService) CreateDeal(ctx context.Context, req *entity.CreateDealRequest) (*entity.Deal, error) {
	deal, err := s.buildDeal(req)
	if err != nil {
		return nil, err
	}

	dealID, err := s.counters.Reserve(ctx, repository.DealCounter, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate deal id: %w", err)
	}
	deal.DealID = dealID

	if err := s.deals.Create(ctx, &deal); err != nil {
		return nil, fmt.Errorf("failed to create deal: %w", err)
	}

	logger.Info().Int64("deal_id", dealID).Int64("product_id", deal.ProductID).Msg("Deal created")
	s.publish(ctx, entity.EventDealCreated, &deal)
	return &deal, nil
}

// SeedDeals validates every request first, so one bad item rejects the whole
// batch before any id is reserved.
func (s *DealService) SeedDeals(ctx context.Context, reqs []entity.CreateDealRequest) (int, error) {
	if len(reqs) == 0 {
		return 0, ErrEmptySeed
	}

	deals := make([]entity.Deal, len(reqs))
	for i := range reqs {
		deal, err := s.buildDeal(&reqs[i])
		if err != nil {
			return 0, fmt.Errorf("deal %d: %w", i, err)
		}
		deals[i] = deal
	}

	first, err := s.counters.Reserve(ctx, repository.DealCounter, len(deals))
	if err != nil {
		return 0, fmt.Errorf("failed to allocate deal ids: %w", err)
	}
	for i := range deals {
		deals[i].DealID = first + int64(i)
	}

	inserted, err := s.deals.InsertMany(ctx, deals)
	if err != nil {
		logger.Error().Err(err).Int("inserted", inserted).Int("requested", len(deals)).Msg("Deal seed partially failed")
		return inserted, fmt.Errorf("failed to seed deals: %w", err)
	}

	logger.Info().Int("inserted", inserted).Msg("Deals seeded")
	return inserted, nil
}

func (s *DealService) buildDeal(req *entity.CreateDealRequest) (entity.Deal, error) {
	if !req.EndDate.After(req.StartDate) {
		return entity.Deal{}, ErrInvalidDateRange
	}

	price, discount, err := resolvePricing(req.OriginalPrice, req.Price, req.Discount)
	if err != nil {
		return entity.Deal{}, err
	}

	currency := req.Currency
	if currency == "" {
		currency = entity.DefaultCurrency
	}
	thumbnail := req.Thumbnail
	if thumbnail == "" {
		thumbnail = req.Image
	}

	return entity.Deal{
		ProductID:        req.ProductID,
		VariantSKU:       req.VariantSKU,
		Department:       req.Department,
		Thumbnail:        thumbnail,
		Image:            req.Image,
		Title:            req.Title,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Price:            price,
		OriginalPrice:    req.OriginalPrice,
		Currency:         currency,
		Rating:           req.Rating,
		Discount:         discount,
		IsActive:         true,
		StartDate:        req.StartDate.UTC().Truncate(time.Millisecond),
		EndDate:          req.EndDate.UTC().Truncate(time.Millisecond),
		LastUpdated:      s.timestamp(),
	}, nil
}

// UpdateDeal applies the non-nil fields of req and re-checks dates and pricing.
func (s *DealService) UpdateDeal(ctx context.Context, dealID int64, req *entity.UpdateDealRequest) (*entity.Deal, error) {
	deal, err := s.deals.GetByDealID(ctx, dealID)
	if err != nil {
		return nil, mapDealError(err, "failed to get deal")
	}

	if err := applyDealUpdate(deal, req); err != nil {
		return nil, err
	}
	deal.LastUpdated = s.timestamp()

	if err := s.deals.Update(ctx, deal); err != nil {
		return nil, mapDealError(err, "failed to update deal")
	}

	s.publish(ctx, entity.EventDealUpdated, deal)
	return deal, nil
}

func applyDealUpdate(d *entity.Deal, req *entity.UpdateDealRequest) error {
	if req.Department != nil {
		d.Department = *req.Department
	}
	if req.Thumbnail != nil {
		d.Thumbnail = *req.Thumbnail
	}
	if req.Image != nil {
		d.Image = *req.Image
	}
	if req.Title != nil {
		d.Title = *req.Title
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.ShortDescription != nil {
		d.ShortDescription = *req.ShortDescription
	}
	if req.Rating != nil {
		d.Rating = *req.Rating
	}
	if req.IsActive != nil {
		d.IsActive = *req.IsActive
	}
	if req.StartDate != nil {
		d.StartDate = req.StartDate.UTC().Truncate(time.Millisecond)
	}
	if req.EndDate != nil {
		d.EndDate = req.EndDate.UTC().Truncate(time.Millisecond)
	}
	if !d.EndDate.After(d.StartDate) {
		return ErrInvalidDateRange
	}

	if req.OriginalPrice == nil && req.Price == nil && req.Discount == nil {
		return nil
	}
	if req.OriginalPrice != nil {
		d.OriginalPrice = *req.OriginalPrice
	}

	// An explicit price wins; otherwise the price follows the discount.
	var price int64
	discount := d.Discount
	if req.Price != nil {
		price = *req.Price
		discount = 0
	}
	if req.Discount != nil {
		discount = *req.Discount
	}

	resolvedPrice, resolvedDiscount, err := resolvePricing(d.OriginalPrice, price, discount)
	if err != nil {
		return err
	}
	d.Price = resolvedPrice
	d.Discount = resolvedDiscount
	return nil
}

// resolvePricing fills in whichever of price and discount is missing and
// enforces the deal invariants: 0 < discount <= MaxDealDiscount and
// price == DealPrice(originalPrice, discount). A price given alone is
// snapped to the canonical price of its whole-percent discount.
func resolvePricing(originalPrice, price int64, discount int) (int64, int, error) {
	switch {
	case price > originalPrice:
		return 0, 0, ErrInvalidDealPrice
	case price > 0 && discount > 0:
		if want := DealPrice(originalPrice, discount); price != want {
			return 0, 0, fmt.Errorf("%w: %d%% of %d is %d, got %d", ErrDealPriceMismatch, discount, originalPrice, want, price)
		}
	case price > 0:
		discount = DiscountPercent(originalPrice, price)
	}

	if discount <= 0 || discount > MaxDealDiscount {
		return 0, 0, fmt.Errorf("%w: got %d", ErrInvalidDiscount, discount)
	}
	return DealPrice(originalPrice, discount), discount, nil
}

// DealPrice applies the discount and rounds half away from zero.
func DealPrice(originalPrice int64, discount int) int64 {
	return decimal.NewFromInt(originalPrice).
		Mul(decimal.NewFromInt(int64(100 - discount))).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// DiscountPercent is the whole-percent reduction from originalPrice to price.
func DiscountPercent(originalPrice, price int64) int {
	if originalPrice <= 0 {
		return 0
	}
	return int(decimal.NewFromInt(originalPrice - price).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(originalPrice)).
		Round(0).
		IntPart())
}

// DeleteDeal deactivates the deal; HardDeleteDeal removes it.
func (s *DealService) DeleteDeal(ctx context.Context, dealID int64) (*entity.Deal, error) {
	deal, err := s.deals.SetActive(ctx, dealID, false)
	if err != nil {
		return nil, mapDealError(err, "failed to delete deal")
	}

	s.publish(ctx, entity.EventDealDeleted, deal)
	return deal, nil
}

// RestoreDeal reactivates a soft-deleted deal.
func (s *DealService) RestoreDeal(ctx context.Context, dealID int64) (*entity.Deal, error) {
	deal, err := s.deals.SetActive(ctx, dealID, true)
	if err != nil {
		return nil, mapDealError(err, "failed to restore deal")
	}

	s.publish(ctx, entity.EventDealUpdated, deal)
	return deal, nil
}

func (s *DealService) HardDeleteDeal(ctx context.Context, dealID int64) error {
	if err := s.deals.Delete(ctx, dealID); err != nil {
		return mapDealError(err, "failed to delete deal")
	}

	s.publish(ctx, entity.EventDealDeleted, &entity.Deal{DealID: dealID})
	logger.Info().Int64("deal_id", dealID).Msg("Deal permanently deleted")
	return nil
}

func (s *DealService) publish(ctx context.Context, eventType string, deal *entity.Deal) {
	event := entity.DealEvent{
		EventType: eventType,
		DealID:    deal.DealID,
		ProductID: deal.ProductID,
		Price:     deal.Price,
		Discount:  deal.Discount,
		Timestamp: s.now().UTC(),
	}
	publishEvent(ctx, s.publisher, strconv.FormatInt(deal.DealID, 10), eventType, event)
}

func (s *DealService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func mapDealError(err error, msg string) error {
	if errors.Is(err, repository.ErrDealNotFound) {
		return ErrDealNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
