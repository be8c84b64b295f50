package handler

import (
	"fmt"
	"net/http"
	"strings"

	"techdeals/catalog-service/internal/app/catalog/entity"
	"techdeals/catalog-service/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const defaultHighlightLimit = 10

type DealHandler struct {
	deals     service.DealServiceInterface
	validator *validator.Validate
}

func NewDealHandler(deals service.DealServiceInterface) *DealHandler {
	return &DealHandler{
		deals:     deals,
		validator: validator.New(),
	}
}

// ListDeals handles GET /deals.
func (h *DealHandler) ListDeals(c *gin.Context) {
	q, ok := dealQuery(c)
	if !ok {
		return
	}
	h.list(c, q)
}

func (h *DealHandler) ListByDepartment(c *gin.Context) {
	q, ok := dealQuery(c)
	if !ok {
		return
	}
	q.Department = c.Param("department")
	h.list(c, q)
}

func (h *DealHandler) ListByPriceRange(c *gin.Context) {
	minPrice, maxPrice, ok := priceBounds(c)
	if !ok {
		abortWithError(c, http.StatusBadRequest, "minPrice and maxPrice must be numbers")
		return
	}

	q, ok := dealQuery(c)
	if !ok {
		return
	}
	q.MinPrice, q.MaxPrice = minPrice, maxPrice

	deals, total, err := h.deals.ListByPriceRange(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, deals, total, q.Page, q.Limit)
}

func (h *DealHandler) list(c *gin.Context, q entity.DealQuery) {
	deals, total, err := h.deals.ListDeals(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, deals, total, q.Page, q.Limit)
}

func (h *DealHandler) SearchDeals(c *gin.Context) {
	term := strings.TrimSpace(c.Param("term"))
	if term == "" {
		abortWithError(c, http.StatusBadRequest, "Search term is required")
		return
	}

	page, limit := pagination(c)
	deals, total, err := h.deals.SearchDeals(c.Request.Context(), term, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, deals, total, page, limit)
}

func (h *DealHandler) ListByProduct(c *gin.Context) {
	productID, ok := pathInt64(c, "productId")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	deals, err := h.deals.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCollection(c, deals)
}

func (h *DealHandler) TopRated(c *gin.Context) {
	deals, err := h.deals.TopRated(c.Request.Context(), highlightLimit(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCollection(c, deals)
}

// Recent lists deals by lastUpdated, newest first.
func (h *DealHandler) Recent(c *gin.Context) {
	deals, err := h.deals.Recent(c.Request.Context(), highlightLimit(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCollection(c, deals)
}

func (h *DealHandler) GetStats(c *gin.Context) {
	stats, err := h.deals.GetStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, stats)
}

func (h *DealHandler) GetDeal(c *gin.Context) {
	dealID, ok := pathInt64(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid deal ID")
		return
	}

	deal, err := h.deals.GetDeal(c.Request.Context(), dealID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, deal)
}

func (h *DealHandler) CreateDeal(c *gin.Context) {
	var req entity.CreateDealRequest
	if !bindAndValidate(c, h.validator, &req) {
		return
	}

	deal, err := h.deals.CreateDeal(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, deal)
}

// SeedDeals handles POST /deals/seed with a JSON array body.
func (h *DealHandler) SeedDeals(c *gin.Context) {
	var reqs []entity.CreateDealRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		abortWithError(c, http.StatusBadRequest, "Request body must be an array of deals")
		return
	}

	for i := range reqs {
		if err := h.validator.Struct(&reqs[i]); err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("deal %d: %s", i, formatValidationError(err)))
			return
		}
	}

	inserted, err := h.deals.SeedDeals(c.Request.Context(), reqs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entity.SeedResponse{
		Success:  true,
		Message:  fmt.Sprintf("%d deals seeded successfully", inserted),
		Inserted: inserted,
	})
}

func (h *DealHandler) UpdateDeal(c *gin.Context) {
	dealID, ok := pathInt64(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid deal ID")
		return
	}

	var req entity.UpdateDealRequest
	if !bindAndValidate(c, h.validator, &req) {
		return
	}

	deal, err := h.deals.UpdateDeal(c.Request.Context(), dealID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, deal)
}

// DeleteDeal is a soft delete.
func (h *DealHandler) DeleteDeal(c *gin.Context) {
	dealID, ok := pathInt64(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid deal ID")
		return
	}

	deal, err := h.deals.DeleteDeal(c.Request.Context(), dealID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, deal)
}

func (h *DealHandler) RestoreDeal(c *gin.Context) {
	dealID, ok := pathInt64(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid deal ID")
		return
	}

	deal, err := h.deals.RestoreDeal(c.Request.Context(), dealID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, deal)
}

func (h *DealHandler) HardDeleteDeal(c *gin.Context) {
	dealID, ok := pathInt64(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid deal ID")
		return
	}

	if err := h.deals.HardDeleteDeal(c.Request.Context(), dealID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.MessageResponse{Success: true, Message: "Deal permanently deleted"})
}

func highlightLimit(c *gin.Context) int {
	limit := queryInt(c, "limit", defaultHighlightLimit)
	if limit < 1 {
		return defaultHighlightLimit
	}
	if limit > entity.MaxLimit {
		return entity.MaxLimit
	}
	return limit
}

func dealQuery(c *gin.Context) (entity.DealQuery, bool) {
	page, limit := pagination(c)
	q := entity.DealQuery{
		Page:            page,
		Limit:           limit,
		Department:      c.Query("department"),
		Active:          c.Query("active"),
		MinDiscount:     queryInt(c, "minDiscount", 0),
		IncludeInactive: queryBool(c, "includeInactive"),
	}

	switch q.Active {
	case "", entity.DealWindowCurrent, entity.DealWindowUpcoming, entity.DealWindowExpired:
	default:
		abortWithError(c, http.StatusBadRequest, "active must be one of current, upcoming, expired")
		return q, false
	}
	return q, true
}
