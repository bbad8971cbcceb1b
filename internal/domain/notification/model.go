package notification

import (
	"context"
	"time"
)

const (
	KindMatchResult = "match_result"
	EntityTypeMatch = "match"
)

// Event is a user-facing notification handed to a delivery sink.
type Event struct {
	ID              string    `json:"id"`
	RecipientUserID string    `json:"recipientUserId"`
	Kind            string    `json:"kind"`
	Title           string    `json:"title"`
	Body            string    `json:"body"`
	EntityType      string    `json:"entityType"`
	EntityID        string    `json:"entityId"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Sink delivers a single event to an outside system.
type Sink interface {
	Send(ctx context.Context, ev Event) error
}
