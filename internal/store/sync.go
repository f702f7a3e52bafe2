package store

import (
	"fmt"
	"time"
)

// SyncConversations rebuilds thread state from the message table after
// a bulk import. In one transaction it:
// 1. Creates conversation rows for any thread id seen in messages
// 2. Links message addresses as recipients of their threads
// 3. Refreshes last_message_at, the preview and the unread flag
// Returns the number of threads refreshed. Safe to run repeatedly.
func (db *DB) SyncConversations() (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()

	// Ensure a conversation row exists for every thread id.
	if _, err := tx.Exec(`
		INSERT INTO conversations (id, updated_at)
		SELECT DISTINCT m.conversation_id, ?
		FROM messages m
		WHERE NOT EXISTS (SELECT 1 FROM conversations c WHERE c.id = m.conversation_id)
	`, now); err != nil {
		return 0, fmt.Errorf("ensure conversations: %w", err)
	}

	// Link every distinct message address as a thread recipient. Rows
	// without an address never become recipients here; only an explicit
	// AddRecipient can create the address-less member case.
	if _, err := tx.Exec(`
		INSERT OR IGNORE INTO recipients (conversation_id, address)
		SELECT DISTINCT conversation_id, address
		FROM messages
		WHERE address != ''
	`); err != nil {
		return 0, fmt.Errorf("link recipients: %w", err)
	}

	// Refresh the denormalized thread columns.
	result, err := tx.Exec(`
		UPDATE conversations SET
			last_message_at = (
				SELECT MAX(date) FROM messages m WHERE m.conversation_id = conversations.id
			),
			last_message_preview = (
				SELECT COALESCE(
					NULLIF(substr(m.body, 1, 120), ''),
					CASE m.kind WHEN 'mms' THEN '[attachment]' ELSE '' END
				)
				FROM messages m
				WHERE m.conversation_id = conversations.id
				ORDER BY m.date DESC, m.id DESC LIMIT 1
			),
			unread = EXISTS (
				SELECT 1 FROM messages m
				WHERE m.conversation_id = conversations.id AND m.box = 'inbox' AND m.read = 0
			),
			updated_at = ?
		WHERE EXISTS (SELECT 1 FROM messages m WHERE m.conversation_id = conversations.id)
	`, now)
	if err != nil {
		return 0, fmt.Errorf("refresh conversations: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	return result.RowsAffected()
}
