package dto

import (
	"time"

	"github.com/octobees/icp-finder/internal/entity"
)

// CreateSessionResponse returns the new session and the token that grants access to it.
type CreateSessionResponse struct {
	SessionID   string    `json:"session_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// SessionSearchRequest is one conversational turn.
type SessionSearchRequest struct {
	Prompt string `json:"prompt"`
}

// SessionSearchResponse carries the turn's results and the rendered summary.
type SessionSearchResponse struct {
	SearchResponse
	Summary string `json:"summary"`
	Added   int    `json:"added"`
	Total   int    `json:"total"`
}

// SessionResponse describes a session and its accumulated results.
type SessionResponse struct {
	SessionID string                `json:"session_id"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	Turns     []entity.Turn         `json:"turns"`
	Results   []entity.SearchResult `json:"results"`
}

// NewSessionResponse builds the view of a session.
func NewSessionResponse(session *entity.Session, results []entity.SearchResult) SessionResponse {
	turns := session.Turns
	if turns == nil {
		turns = []entity.Turn{}
	}
	return SessionResponse{
		SessionID: session.ID.String(),
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		Turns:     turns,
		Results:   nonNil(results),
	}
}
