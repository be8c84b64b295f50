package handler

import (
	"errors"
	"net/http"
	"strconv"

	"techdeals/catalog-service/internal/app/catalog/entity"
	"techdeals/catalog-service/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, entity.ErrorResponse{Success: false, Error: message})
}

func respondList[T any](c *gin.Context, items []T, total int64, page, limit int) {
	c.JSON(http.StatusOK, entity.ListResponse{
		Success: true,
		Count:   len(items),
		Total:   total,
		Page:    page,
		Limit:   limit,
		Data:    items,
	})
}

func respondCollection[T any](c *gin.Context, items []T) {
	c.JSON(http.StatusOK, entity.CollectionResponse{
		Success: true,
		Count:   len(items),
		Data:    items,
	})
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, entity.DataResponse{Success: true, Data: data})
}

// respondServiceError maps known service errors to a status. Anything else is
// handed to the Errors middleware as a 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		abortWithError(c, http.StatusNotFound, "Product not found")
	case errors.Is(err, service.ErrDealNotFound):
		abortWithError(c, http.StatusNotFound, "Deal not found")
	case errors.Is(err, service.ErrDuplicateSKU):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrInvalidPriceRange),
		errors.Is(err, service.ErrInvalidDealPrice),
		errors.Is(err, service.ErrDealPriceMismatch),
		errors.Is(err, service.ErrInvalidDiscount),
		errors.Is(err, service.ErrInvalidStockUpdate),
		errors.Is(err, service.ErrEmptySeed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		_ = c.Error(err)
		c.Abort()
	}
}

// pagination reads page and limit. Bad values fall back to the defaults and
// limit is capped at entity.MaxLimit.
func pagination(c *gin.Context) (int, int) {
	page := queryInt(c, "page", entity.DefaultPage)
	if page < 1 {
		page = entity.DefaultPage
	}

	limit := queryInt(c, "limit", entity.DefaultLimit)
	if limit < 1 {
		limit = entity.DefaultLimit
	}
	if limit > entity.MaxLimit {
		limit = entity.MaxLimit
	}
	return page, limit
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}

// optionalInt64 returns nil when the value is empty.
func optionalInt64(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func pathInt64(c *gin.Context, key string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// priceBounds parses the :minPrice and :maxPrice path segments.
func priceBounds(c *gin.Context) (*int64, *int64, bool) {
	minPrice, err := strconv.ParseInt(c.Param("minPrice"), 10, 64)
	if err != nil {
		return nil, nil, false
	}
	maxPrice, err := strconv.ParseInt(c.Param("maxPrice"), 10, 64)
	if err != nil {
		return nil, nil, false
	}
	return &minPrice, &maxPrice, true
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return validationErrors[0].Field() + " validation failed"
	}
	return "Validation failed"
}
