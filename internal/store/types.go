package store

import "msgr/internal/model"

// Analytics event lifecycle.
const (
	EventQueued = "queued"
	EventSent   = "sent"
	EventFailed = "failed"
)

// AnalyticsEvent is one queued usage event awaiting delivery.
type AnalyticsEvent struct {
	ID           int64
	EventID      string
	Name         string
	Properties   string // JSON object
	Status       string // queued, sent, failed
	ErrorMessage string
	CreatedAt    int64
}

// SearchResult holds a message with a search snippet.
type SearchResult struct {
	Message model.Message
	Snippet string
}
