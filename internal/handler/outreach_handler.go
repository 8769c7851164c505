package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/icp-finder/internal/dto"
	"github.com/octobees/icp-finder/internal/outreach"
)

// OutreachDrafter prepares email guesses and a message for a lead.
type OutreachDrafter interface {
	Draft(ctx context.Context, req outreach.DraftRequest) (outreach.Draft, error)
}

// OutreachHandler exposes cold-outreach drafting.
type OutreachHandler struct {
	drafter OutreachDrafter
}

// NewOutreachHandler wires the handler.
func NewOutreachHandler(drafter OutreachDrafter) *OutreachHandler {
	return &OutreachHandler{drafter: drafter}
}

// Draft handles POST /outreach/draft.
func (h *OutreachHandler) Draft(c echo.Context) error {
	var req dto.OutreachDraftRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	draft, err := h.drafter.Draft(c.Request().Context(), outreach.DraftRequest{
		Name:       req.Name,
		Title:      req.Title,
		Company:    req.Company,
		Domain:     req.Domain,
		Role:       req.Role,
		Region:     req.Region,
		Snippet:    req.Snippet,
		ProfileURL: req.ProfileURL,
		Pitch:      req.Pitch,
	})
	if err != nil {
		if errors.Is(err, outreach.ErrNameRequired) || errors.Is(err, outreach.ErrCompanyRequired) || errors.Is(err, outreach.ErrInvalidDomain) {
			return Error(c, http.StatusBadRequest, err.Error())
		}
		return Error(c, http.StatusInternalServerError, "failed to draft outreach")
	}

	return Success(c, http.StatusOK, "", draft)
}
