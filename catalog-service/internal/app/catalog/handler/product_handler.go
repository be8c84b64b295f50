package handler

import (
	"errors"
	"net/http"
	"strings"

	"techdeals/catalog-service/internal/app/catalog/entity"
	"techdeals/catalog-service/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const defaultLowStockThreshold = 50

type ProductHandler struct {
	products  service.ProductServiceInterface
	validator *validator.Validate
}

func NewProductHandler(products service.ProductServiceInterface) *ProductHandler {
	return &ProductHandler{
		products:  products,
		validator: validator.New(),
	}
}

// ListProducts handles GET /products.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	q, ok := productQuery(c)
	if !ok {
		return
	}
	h.list(c, q)
}

func (h *ProductHandler) ListByDepartment(c *gin.Context) {
	q, ok := productQuery(c)
	if !ok {
		return
	}
	q.Department = c.Param("department")
	h.list(c, q)
}

func (h *ProductHandler) ListByCategory(c *gin.Context) {
	q, ok := productQuery(c)
	if !ok {
		return
	}
	q.Category = c.Param("category")
	h.list(c, q)
}

func (h *ProductHandler) ListByBrand(c *gin.Context) {
	q, ok := productQuery(c)
	if !ok {
		return
	}
	q.Brand = c.Param("brand")
	h.list(c, q)
}

// ListByPriceRange handles GET /products/price/:minPrice/:maxPrice.
func (h *ProductHandler) ListByPriceRange(c *gin.Context) {
	minPrice, maxPrice, ok := priceBounds(c)
	if !ok {
		abortWithError(c, http.StatusBadRequest, "minPrice and maxPrice must be numbers")
		return
	}

	q, ok := productQuery(c)
	if !ok {
		return
	}
	q.MinPrice, q.MaxPrice = minPrice, maxPrice

	products, total, err := h.products.ListByPriceRange(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, products, total, q.Page, q.Limit)
}

func (h *ProductHandler) list(c *gin.Context, q entity.ProductQuery) {
	products, total, err := h.products.ListProducts(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, products, total, q.Page, q.Limit)
}

func (h *ProductHandler) SearchProducts(c *gin.Context) {
	term := strings.TrimSpace(c.Param("term"))
	if term == "" {
		abortWithError(c, http.StatusBadRequest, "Search term is required")
		return
	}

	page, limit := pagination(c)
	products, total, err := h.products.SearchProducts(c.Request.Context(), term, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, products, total, page, limit)
}

// LowStock handles GET /products/inventory/low-stock.
func (h *ProductHandler) LowStock(c *gin.Context) {
	threshold := queryInt(c, "threshold", defaultLowStockThreshold)
	if threshold < 0 {
		abortWithError(c, http.StatusBadRequest, "threshold must not be negative")
		return
	}

	page, limit := pagination(c)
	products, total, err := h.products.LowStock(c.Request.Context(), threshold, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, products, total, page, limit)
}

func (h *ProductHandler) GetStats(c *gin.Context) {
	stats, err := h.products.GetStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, stats)
}

// GetCategories handles GET /categories.
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.products.GetCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCollection(c, categories)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, product)
}

func (h *ProductHandler) GetProductBySKU(c *gin.Context) {
	product, err := h.products.GetProductBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req entity.CreateProductRequest
	if !h.bind(c, &req) {
		return
	}

	product, err := h.products.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req entity.UpdateProductRequest
	if !h.bind(c, &req) {
		return
	}

	product, err := h.products.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, product)
}

// UpdateStock handles PATCH /products/:id/stock.
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req entity.StockUpdateRequest
	if !h.bind(c, &req) {
		return
	}

	product, err := h.products.UpdateStock(c.Request.Context(), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, product)
}

// DeleteProduct is a soft delete.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.products.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, product)
}

func (h *ProductHandler) RestoreProduct(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.products.RestoreProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, product)
}

func (h *ProductHandler) HardDeleteProduct(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := h.products.HardDeleteProduct(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.MessageResponse{Success: true, Message: "Product permanently deleted"})
}

func (h *ProductHandler) bind(c *gin.Context, req interface{}) bool {
	return bindAndValidate(c, h.validator, req)
}

// bindAndValidate decodes the JSON body into req and runs the validate tags.
func bindAndValidate(c *gin.Context, v *validator.Validate, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		abortWithError(c, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := v.Struct(req); err != nil {
		abortWithError(c, http.StatusBadRequest, formatValidationError(err))
		return false
	}
	return true
}

func productQuery(c *gin.Context) (entity.ProductQuery, bool) {
	page, limit := pagination(c)
	q := entity.ProductQuery{
		Page:            page,
		Limit:           limit,
		Sort:            c.Query("sort"),
		Department:      c.Query("department"),
		Category:        c.Query("category"),
		Brand:           c.Query("brand"),
		InStock:         queryBool(c, "inStock"),
		IncludeInactive: queryBool(c, "includeInactive"),
	}

	var err error
	if q.MinPrice, err = optionalInt64(c.Query("minPrice")); err != nil {
		abortWithError(c, http.StatusBadRequest, "minPrice must be a number")
		return q, false
	}
	if q.MaxPrice, err = optionalInt64(c.Query("maxPrice")); err != nil {
		abortWithError(c, http.StatusBadRequest, "maxPrice must be a number")
		return q, false
	}
	return q, true
}
