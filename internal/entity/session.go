package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session groups conversational turns whose results accumulate for export.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Turn records one prompt submitted to a session.
type Turn struct {
	Prompt     string     `json:"prompt"`
	SearchType SearchType `json:"search_type"`
	Found      int        `json:"found"`
	Added      int        `json:"added"`
	CreatedAt  time.Time  `json:"created_at"`
}
