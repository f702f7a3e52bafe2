package store

import (
	"database/sql"

	"msgr/internal/model"
)

// AddRecipient links an address to a conversation. An empty address is
// stored as NULL, the provider's missing-address case. Re-adding an
// existing address is a no-op.
func (db *DB) AddRecipient(conversationID int64, address string) error {
	var addr any
	if address != "" {
		addr = address
	}
	_, err := db.Exec(`
		INSERT OR IGNORE INTO recipients (conversation_id, address)
		VALUES (?, ?)`, conversationID, addr)
	return err
}

// RecipientsByConversation returns a thread's members in insertion
// order, with contact names resolved by address.
func (db *DB) RecipientsByConversation(conversationID int64) ([]model.Recipient, error) {
	rows, err := db.Query(`
		SELECT `+recipientColumns+recipientJoin+`
		WHERE r.conversation_id = ?
		ORDER BY r.id ASC`, conversationID)
	if err != nil {
		return nil, err
	}
	return MapAll[model.Recipient](rows, RecipientMapper{})
}

// recipientsGrouped loads every recipient keyed by conversation, so
// list views avoid one query per thread.
func (db *DB) recipientsGrouped() (map[int64][]model.Recipient, error) {
	rows, err := db.Query(`
		SELECT r.conversation_id, ` + recipientColumns + recipientJoin + `
		ORDER BY r.conversation_id ASC, r.id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	grouped := make(map[int64][]model.Recipient)
	for rows.Next() {
		var convID int64
		var r model.Recipient
		var addr sql.NullString
		if err := rows.Scan(&convID, &r.ID, &addr, &r.ContactName, &r.LastSeen); err != nil {
			return nil, err
		}
		r.Address = addr.String
		grouped[convID] = append(grouped[convID], r)
	}
	return grouped, rows.Err()
}
