package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/icp-finder/internal/entity"
	"github.com/octobees/icp-finder/internal/finder"
)

type runnerStub struct {
	result finder.Result
	err    error
	prompt string
}

func (r *runnerStub) Run(_ context.Context, prompt string) (finder.Result, error) {
	r.prompt = prompt
	return r.result, r.err
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSearchHandler_Validation(t *testing.T) {
	handler := NewSearchHandler(&runnerStub{}, nil)
	e := echo.New()

	for name, body := range map[string]string{
		"empty query":  `{"query":"   "}`,
		"missing body": `{}`,
		"malformed":    `{"query":`,
	} {
		t.Run(name, func(t *testing.T) {
			c, rec := postJSON(e, "/search", body)
			if err := handler.Search(c); err != nil {
				t.Fatalf("expected handler to write response, got %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			var payload map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if payload["detail"] == "" {
				t.Fatalf("expected detail message, got %s", rec.Body.String())
			}
		})
	}
}

func TestSearchHandler_Success(t *testing.T) {
	runner := &runnerStub{result: finder.Result{
		Agencies: []entity.SearchResult{{
			Title:   "Acme Growth | LinkedIn",
			URL:     "https://www.linkedin.com/company/acme-growth",
			Company: "Acme Growth",
		}},
		Intent: entity.ParsedIntent{
			ICP:        "founder",
			Industry:   "marketing",
			Region:     "United Kingdom",
			SearchType: entity.SearchTypeAgencies,
			RawPrompt:  "marketing agencies in London",
		},
	}}
	handler := NewSearchHandler(runner, nil)
	c, rec := postJSON(echo.New(), "/search", `{"query":"  marketing agencies in London "}`)

	if err := handler.Search(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if runner.prompt != "marketing agencies in London" {
		t.Fatalf("expected trimmed prompt, got %q", runner.prompt)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"agencies", "people", "company_people", "parsed_intent"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("expected key %q in %s", key, rec.Body.String())
		}
	}
	if string(payload["people"]) != "[]" || string(payload["company_people"]) != "[]" {
		t.Fatalf("expected empty lists as arrays, got %s", rec.Body.String())
	}

	var intent entity.ParsedIntent
	if err := json.Unmarshal(payload["parsed_intent"], &intent); err != nil {
		t.Fatalf("decode intent: %v", err)
	}
	if intent.Region != "United Kingdom" || intent.SearchType != entity.SearchTypeAgencies {
		t.Fatalf("unexpected intent: %+v", intent)
	}
}

func TestSearchHandler_InternalError(t *testing.T) {
	handler := NewSearchHandler(&runnerStub{err: errors.Join(finder.ErrInternal, errors.New("boom"))}, nil)
	c, rec := postJSON(echo.New(), "/search", `{"query":"founders"}`)

	if err := handler.Search(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"detail"`) {
		t.Fatalf("expected detail body, got %s", rec.Body.String())
	}
}
