package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/icp-finder/internal/auth"
	"github.com/octobees/icp-finder/internal/dto"
	middlewarepkg "github.com/octobees/icp-finder/internal/middleware"
	"github.com/octobees/icp-finder/internal/service"
)

// SessionHandler exposes conversational search sessions.
type SessionHandler struct {
	service *service.SessionService
	tokens  *auth.JWTManager
	logger  *zap.Logger
}

// NewSessionHandler wires the handler.
func NewSessionHandler(svc *service.SessionService, tokens *auth.JWTManager, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{service: svc, tokens: tokens, logger: logger}
}

// Create handles POST /sessions.
func (h *SessionHandler) Create(c echo.Context) error {
	session, err := h.service.Create(c.Request().Context())
	if err != nil {
		h.logError(c, "create session", err)
		return Error(c, http.StatusInternalServerError, "failed to create session")
	}

	token, err := h.tokens.GenerateSessionToken(session.ID.String())
	if err != nil {
		h.logError(c, "issue session token", err)
		return Error(c, http.StatusInternalServerError, "failed to issue session token")
	}

	return Success(c, http.StatusCreated, "session created", dto.CreateSessionResponse{
		SessionID:   session.ID.String(),
		AccessToken: token,
		ExpiresAt:   time.Now().Add(h.tokens.TTL()).UTC(),
	})
}

// Get handles GET /sessions/:id.
func (h *SessionHandler) Get(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid session id")
	}

	ctx := c.Request().Context()
	session, err := h.service.Get(ctx, id)
	if err != nil {
		return h.sessionError(c, "load session", err)
	}
	results, err := h.service.Results(ctx, id)
	if err != nil {
		return h.sessionError(c, "load session results", err)
	}

	return Success(c, http.StatusOK, "", dto.NewSessionResponse(session, results))
}

// Search handles POST /sessions/:id/search.
func (h *SessionHandler) Search(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid session id")
	}

	var req dto.SessionSearchRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		return Error(c, http.StatusBadRequest, service.ErrEmptyPrompt.Error())
	}

	turn, err := h.service.Search(c.Request().Context(), id, req.Prompt)
	if err != nil {
		return h.sessionError(c, "session search", err)
	}

	return Success(c, http.StatusOK, "", dto.SessionSearchResponse{
		SearchResponse: dto.NewSearchResponse(turn.Result),
		Summary:        turn.Summary,
		Added:          turn.Added,
		Total:          turn.Total,
	})
}

// Export handles GET /sessions/:id/export and returns the accumulated results as CSV.
func (h *SessionHandler) Export(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid session id")
	}

	var buf bytes.Buffer
	if err := h.service.Export(c.Request().Context(), id, &buf); err != nil {
		return h.sessionError(c, "export session", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="icp_results.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Clear handles DELETE /sessions/:id/results.
func (h *SessionHandler) Clear(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid session id")
	}

	if err := h.service.Clear(c.Request().Context(), id); err != nil {
		return h.sessionError(c, "clear session", err)
	}
	return Success(c, http.StatusOK, "session results cleared", nil)
}

// sessionID prefers the id authorized by the session token guard and falls
// back to the route parameter.
func sessionID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(sessionIDString(c))
}

func (h *SessionHandler) sessionError(c echo.Context, action string, err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return Error(c, http.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrEmptyPrompt):
		return Error(c, http.StatusBadRequest, err.Error())
	}
	h.logError(c, action, err)
	return Error(c, http.StatusInternalServerError, "failed to "+action)
}

func sessionIDString(c echo.Context) string {
	if id, ok := c.Get(middlewarepkg.ContextKeySessionID).(string); ok && id != "" {
		return id
	}
	return c.Param("id")
}

func (h *SessionHandler) logError(c echo.Context, action string, err error) {
	h.logger.Error(action,
		zap.String("request_id", middlewarepkg.RequestIDFromContext(c)),
		zap.String("session_id", sessionIDString(c)),
		zap.Error(err),
	)
}
