package store

import (
	"fmt"
	"time"
)

// QueueEvent adds a usage event to the delivery queue.
func (db *DB) QueueEvent(eventID, name, propertiesJSON string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO analytics_events (event_id, name, properties, status, created_at, updated_at)
		VALUES (?, ?, ?, 'queued', ?, ?)`,
		eventID, name, propertiesJSON, now, now)
	return err
}

// PendingEvents returns queued events oldest-first, at most limit.
func (db *DB) PendingEvents(limit int) ([]AnalyticsEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(`
		SELECT id, event_id, name, properties, status, error_message, created_at
		FROM analytics_events WHERE status = 'queued'
		ORDER BY created_at ASC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []AnalyticsEvent
	for rows.Next() {
		var e AnalyticsEvent
		if err := rows.Scan(&e.ID, &e.EventID, &e.Name, &e.Properties, &e.Status, &e.ErrorMessage, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// MarkEventsSent flips a delivered batch to 'sent' in one transaction.
func (db *DB) MarkEventsSent(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	for _, id := range ids {
		if _, err := tx.Exec(`UPDATE analytics_events SET status = 'sent', updated_at = ? WHERE id = ?`, now, id); err != nil {
			return fmt.Errorf("mark event %d sent: %w", id, err)
		}
	}
	return tx.Commit()
}

// MarkEventFailed records a delivery failure for one event.
func (db *DB) MarkEventFailed(id int64, errMsg string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`UPDATE analytics_events SET status = 'failed', error_message = ?, updated_at = ? WHERE id = ?`, errMsg, now, id)
	return err
}

// EventCounts returns how many events sit in each status.
func (db *DB) EventCounts() (map[string]int64, error) {
	rows, err := db.Query(`SELECT status, COUNT(*) FROM analytics_events GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
