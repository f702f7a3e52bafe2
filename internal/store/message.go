package store

import (
	"time"

	"msgr/internal/model"
)

// UpsertMessage inserts a message, or refreshes its mutable columns
// when the same (conversation, address, date, body) row already exists.
// Restoring an archive twice therefore cannot duplicate history. The
// stored row id is returned so parts can attach to it.
func (db *DB) UpsertMessage(m *model.Message) (int64, error) {
	_, err := db.Exec(`
		INSERT INTO messages (conversation_id, kind, address, body, box, date, date_sent, read, seen, locked, sub_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(conversation_id, address, date, body) DO UPDATE SET
			box = excluded.box,
			read = excluded.read,
			seen = excluded.seen,
			locked = excluded.locked`,
		m.ConversationID, m.Kind, m.Address, m.Body, m.Box, m.Date, m.DateSent, m.Read, m.Seen, m.Locked, m.SubID)
	if err != nil {
		return 0, err
	}

	var id int64
	err = db.QueryRow(`
		SELECT id FROM messages
		WHERE conversation_id = ? AND address = ? AND date = ? AND body = ?`,
		m.ConversationID, m.Address, m.Date, m.Body).Scan(&id)
	return id, err
}

// Messages pages a conversation's history newest-first using keyset
// pagination on date.
func (db *DB) Messages(conversationID, beforeDate int64, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if beforeDate <= 0 {
		beforeDate = time.Now().UnixMilli() + 1
	}
	rows, err := db.Query(`
		SELECT `+messageColumns+`
		FROM messages
		WHERE conversation_id = ? AND date < ?
		ORDER BY date DESC, id DESC
		LIMIT ?`, conversationID, beforeDate, limit)
	if err != nil {
		return nil, err
	}
	return MapAll[model.Message](rows, MessageMapper{})
}

// AllMessages returns the entire archive oldest-first, for export.
func (db *DB) AllMessages() ([]model.Message, error) {
	rows, err := db.Query(`
		SELECT ` + messageColumns + `
		FROM messages
		ORDER BY date ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	return MapAll[model.Message](rows, MessageMapper{})
}

// MessageCount returns the total number of messages.
func (db *DB) MessageCount() (int64, error) {
	var count int64
	err := db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}
