package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"msgr/internal/store"
)

// Sink delivers batches of queued events out of the store. An error
// fails the whole batch.
type Sink interface {
	Deliver(ctx context.Context, events []store.AnalyticsEvent) error
}

// FileSink appends delivered events as JSON lines in the profile's
// analytics spool.
type FileSink struct {
	path string
}

// NewFileSink creates a sink writing to dir/events.jsonl.
func NewFileSink(dir string) *FileSink {
	return &FileSink{path: filepath.Join(dir, "events.jsonl")}
}

type sinkRecord struct {
	EventID    string          `json:"event_id"`
	Name       string          `json:"name"`
	Properties json.RawMessage `json:"properties"`
	QueuedAt   int64           `json:"queued_at"`
}

// Deliver appends the batch to the spool file.
func (s *FileSink) Deliver(_ context.Context, events []store.AnalyticsEvent) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create spool dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open spool: %w", err)
	}
	enc := json.NewEncoder(f)
	for _, e := range events {
		rec := sinkRecord{
			EventID:    e.EventID,
			Name:       e.Name,
			Properties: json.RawMessage(e.Properties),
			QueuedAt:   e.CreatedAt,
		}
		if err := enc.Encode(rec); err != nil {
			_ = f.Close()
			return fmt.Errorf("append event %s: %w", e.EventID, err)
		}
	}
	return f.Close()
}
