package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/setorin/setorin-backend/internal/domain"
	"github.com/setorin/setorin-backend/internal/middleware"
	"github.com/setorin/setorin-backend/internal/service"
)

// CategoryHandler handles category catalog HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        int32  `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
}

// GetCategories godoc
// @Summary List transaction categories
// @Description Get the category catalog, active only by default
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param includeInactive query bool false "Include inactive categories"
// @Success 200 {array} CategoryResponse
// @Router /cash/categories [get]
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	if middleware.GetStoreID(c) == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	includeInactive := c.QueryParam("includeInactive") == "true"

	categories, err := h.categoryService.ListCategories(c.Request().Context(), includeInactive)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list categories")
		return NewInternalError(c, "Failed to list categories")
	}

	resp := make([]CategoryResponse, len(categories))
	for i, cat := range categories {
		resp[i] = toCategoryResponse(cat)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetCategory godoc
// @Summary Get a transaction category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {object} CategoryResponse
// @Failure 404 {object} ProblemDetails
// @Router /cash/categories/{id} [get]
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	if middleware.GetStoreID(c) == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	category, err := h.categoryService.GetCategory(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return NewNotFoundError(c, "Category not found")
		}
		log.Error().Err(err).Int32("category_id", id).Msg("Failed to get category")
		return NewInternalError(c, "Failed to get category")
	}

	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

func toCategoryResponse(c *domain.CashCategory) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Type:      string(c.Type),
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}
