// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"game-search-service/internal/domain"
	"game-search-service/internal/transport/httpserver/dto"
	"game-search-service/internal/validator"
)

// Searcher runs game searches.
// Implementations: internal/app/service/search_service.go
type Searcher interface {
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResult, error)
}

// SearchHandler handles search-related HTTP requests.
type SearchHandler struct {
	searcher  Searcher
	validator *validator.Validator
	logger    *zap.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(s Searcher, v *validator.Validator, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		searcher:  s,
		validator: v,
		logger:    logger,
	}
}

// Search handles GET /api/v1/games/search
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	result, err := h.searcher.Search(c.UserContext(), req.Query, req.ToOptions())
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_QUERY",
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: "search aborted",
			Code:  "ABORTED",
		})
	case err != nil:
		h.logger.Error("search failed", zap.String("query", req.Query), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "search failed",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.JSON(dto.FromSearchResult(result))
}
