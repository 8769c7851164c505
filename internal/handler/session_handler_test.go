package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/icp-finder/internal/auth"
	"github.com/octobees/icp-finder/internal/entity"
	"github.com/octobees/icp-finder/internal/finder"
	middlewarepkg "github.com/octobees/icp-finder/internal/middleware"
	"github.com/octobees/icp-finder/internal/repository"
	"github.com/octobees/icp-finder/internal/service"
)

type sessionFinderStub struct {
	result finder.Result
}

func (s *sessionFinderStub) RunSession(_ context.Context, prompt string, acc *finder.Accumulator) (finder.Result, int, error) {
	res := s.result
	res.Intent.RawPrompt = prompt
	return res, acc.Add(res.All()...), nil
}

func newSessionHandler(t *testing.T) (*SessionHandler, *auth.JWTManager) {
	t.Helper()
	stub := &sessionFinderStub{result: finder.Result{
		People: []entity.SearchResult{{
			Title: "Jane Doe - Founder - Acme | LinkedIn",
			URL:   "https://www.linkedin.com/in/janedoe",
		}},
		Intent: entity.ParsedIntent{ICP: "founder", Industry: "technology", Region: "United States", SearchType: entity.SearchTypePeople},
	}}
	svc := service.NewSessionService(repository.NewMemorySessionsRepository(), stub, 0)
	tokens := auth.NewJWTManager("secret", time.Hour)
	return NewSessionHandler(svc, tokens, nil), tokens
}

func sessionContext(e *echo.Echo, method, path, id, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func createSession(t *testing.T, handler *SessionHandler) string {
	t.Helper()
	c, rec := postJSON(echo.New(), "/sessions", "")
	if err := handler.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var payload struct {
		Data struct {
			SessionID   string `json:"session_id"`
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Data.SessionID == "" || payload.Data.AccessToken == "" {
		t.Fatalf("expected session id and token, got %s", rec.Body.String())
	}
	return payload.Data.SessionID
}

func TestSessionHandler_CreateIssuesToken(t *testing.T) {
	handler, tokens := newSessionHandler(t)
	c, rec := postJSON(echo.New(), "/sessions", "")
	if err := handler.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}

	var payload struct {
		Data struct {
			SessionID   string `json:"session_id"`
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	claims, err := tokens.ParseToken(payload.Data.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != payload.Data.SessionID {
		t.Fatalf("expected token bound to session, got %q", claims.Subject)
	}
}

func TestSessionHandler_SearchAccumulatesAndExports(t *testing.T) {
	handler, _ := newSessionHandler(t)
	id := createSession(t, handler)
	e := echo.New()

	for i, expectAdded := range []int{1, 0} {
		c, rec := sessionContext(e, http.MethodPost, "/sessions/"+id+"/search", id, `{"prompt":"founders in the US"}`)
		if err := handler.Search(c); err != nil {
			t.Fatalf("search %d: %v", i, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var payload struct {
			Data struct {
				Added   int    `json:"added"`
				Total   int    `json:"total"`
				Summary string `json:"summary"`
			} `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if payload.Data.Added != expectAdded || payload.Data.Total != 1 {
			t.Fatalf("turn %d: unexpected counts %+v", i, payload.Data)
		}
		if payload.Data.Summary == "" {
			t.Fatalf("expected rendered summary")
		}
	}

	c, rec := sessionContext(e, http.MethodGet, "/sessions/"+id+"/export", id, "")
	if err := handler.Export(c); err != nil {
		t.Fatalf("export: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/csv") {
		t.Fatalf("expected csv content type, got %q", rec.Header().Get(echo.HeaderContentType))
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 || lines[0] != "title,url,snippet,company" {
		t.Fatalf("unexpected csv: %q", rec.Body.String())
	}

	c, rec = sessionContext(e, http.MethodDelete, "/sessions/"+id+"/results", id, "")
	if err := handler.Clear(c); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, rec = sessionContext(e, http.MethodGet, "/sessions/"+id, id, "")
	if err := handler.Get(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	var session struct {
		Data struct {
			Turns   []entity.Turn         `json:"turns"`
			Results []entity.SearchResult `json:"results"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(session.Data.Turns) != 2 || len(session.Data.Results) != 0 {
		t.Fatalf("expected two turns and cleared results, got %+v", session.Data)
	}
}

func TestSessionHandler_Errors(t *testing.T) {
	handler, _ := newSessionHandler(t)
	e := echo.New()

	c, rec := sessionContext(e, http.MethodGet, "/sessions/nope", "nope", "")
	if err := handler.Get(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}

	missing := uuid.NewString()
	c, rec = sessionContext(e, http.MethodGet, "/sessions/"+missing, missing, "")
	if err := handler.Get(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", rec.Code)
	}

	id := createSession(t, handler)
	c, rec = sessionContext(e, http.MethodPost, "/sessions/"+id+"/search", id, `{"prompt":""}`)
	if err := handler.Search(c); err != nil {
		t.Fatalf("search: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty prompt, got %d", rec.Code)
	}
}

func TestSessionHandler_UsesAuthorizedSessionID(t *testing.T) {
	handler, _ := newSessionHandler(t)
	id := createSession(t, handler)

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+id, nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set(middlewarepkg.ContextKeySessionID, id)

	if err := handler.Get(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from the authorized session id, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), id) {
		t.Fatalf("expected session %s in body, got %s", id, rec.Body.String())
	}
}
