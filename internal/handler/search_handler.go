package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/icp-finder/internal/dto"
	"github.com/octobees/icp-finder/internal/finder"
	middlewarepkg "github.com/octobees/icp-finder/internal/middleware"
)

// SearchRunner executes one prompt end to end.
type SearchRunner interface {
	Run(ctx context.Context, prompt string) (finder.Result, error)
}

// SearchHandler serves the one-shot search endpoint.
type SearchHandler struct {
	runner SearchRunner
	logger *zap.Logger
}

// NewSearchHandler wires the handler.
func NewSearchHandler(runner SearchRunner, logger *zap.Logger) *SearchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchHandler{runner: runner, logger: logger}
}

// Search handles POST /search.
func (h *SearchHandler) Search(c echo.Context) error {
	var req dto.SearchRequest
	if err := c.Bind(&req); err != nil {
		return Detail(c, http.StatusBadRequest, "invalid payload")
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return Detail(c, http.StatusBadRequest, "query is required")
	}

	res, err := h.runner.Run(c.Request().Context(), req.Query)
	if err != nil {
		h.logger.Error("search failed",
			zap.String("request_id", middlewarepkg.RequestIDFromContext(c)),
			zap.Error(err),
		)
		return Detail(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, dto.NewSearchResponse(res))
}
