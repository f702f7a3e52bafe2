package store

import (
	"database/sql"
	"fmt"
	"time"

	"msgr/internal/model"
)

// UpsertConversation inserts or updates a conversation row. Recipients
// are managed separately through AddRecipient and SyncConversations.
func (db *DB) UpsertConversation(c *model.Conversation) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO conversations (id, name, archived, pinned, draft, last_message_at, last_message_preview, unread, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			archived = excluded.archived,
			pinned = excluded.pinned,
			draft = excluded.draft,
			last_message_at = excluded.last_message_at,
			last_message_preview = excluded.last_message_preview,
			unread = excluded.unread,
			updated_at = excluded.updated_at`,
		c.ID, c.Name, c.Archived, c.Pinned, c.Draft, c.LastMessageAt, c.LastMessagePreview, c.Unread, now)
	return err
}

// Conversations returns all threads with recipients attached, pinned
// first, then by last activity descending.
func (db *DB) Conversations() ([]model.Conversation, error) {
	rows, err := db.Query(`
		SELECT ` + conversationColumns + `
		FROM conversations
		ORDER BY pinned DESC, last_message_at DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	convs, err := MapAll[model.Conversation](rows, ConversationMapper{})
	if err != nil {
		return nil, err
	}
	if len(convs) == 0 {
		return convs, nil
	}

	byConv, err := db.recipientsGrouped()
	if err != nil {
		return nil, err
	}
	for i := range convs {
		convs[i].Recipients = byConv[convs[i].ID]
	}
	return convs, nil
}

// ConversationByID returns a single thread with recipients, or nil when
// the id is unknown.
func (db *DB) ConversationByID(id int64) (*model.Conversation, error) {
	row := db.QueryRow(`SELECT `+conversationColumns+` FROM conversations WHERE id = ?`, id)
	c, err := ConversationMapper{}.MapRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rcpts, err := db.RecipientsByConversation(id)
	if err != nil {
		return nil, err
	}
	c.Recipients = rcpts
	return &c, nil
}

// EnsureConversationForAddress returns the direct thread whose sole
// recipient has the given address, creating thread and recipient when
// none exists. Restores use it to re-thread archived messages the way
// the telephony provider assigns thread ids. An empty address matches
// threads whose recipient has no address.
func (db *DB) EnsureConversationForAddress(address string) (int64, error) {
	var (
		id  int64
		err error
	)
	if address == "" {
		err = db.QueryRow(`
			SELECT r.conversation_id FROM recipients r
			WHERE r.address IS NULL
			  AND (SELECT COUNT(*) FROM recipients r2 WHERE r2.conversation_id = r.conversation_id) = 1
			ORDER BY r.conversation_id ASC LIMIT 1`).Scan(&id)
	} else {
		err = db.QueryRow(`
			SELECT r.conversation_id FROM recipients r
			WHERE r.address = ?
			  AND (SELECT COUNT(*) FROM recipients r2 WHERE r2.conversation_id = r.conversation_id) = 1
			ORDER BY r.conversation_id ASC LIMIT 1`, address).Scan(&id)
	}
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	now := time.Now().UnixMilli()
	res, err := db.Exec(`
		INSERT INTO conversations (name, last_message_at, last_message_preview, unread, updated_at)
		VALUES ('', 0, '', 0, ?)`, now)
	if err != nil {
		return 0, fmt.Errorf("create conversation: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := db.AddRecipient(id, address); err != nil {
		return 0, fmt.Errorf("attach recipient: %w", err)
	}
	return id, nil
}

// SetConversationName assigns or clears the user label for a thread.
func (db *DB) SetConversationName(id int64, name string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`UPDATE conversations SET name = ?, updated_at = ? WHERE id = ?`, name, now, id)
	return err
}

// SetConversationArchived moves a thread in or out of the archive.
func (db *DB) SetConversationArchived(id int64, archived bool) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`UPDATE conversations SET archived = ?, updated_at = ? WHERE id = ?`, archived, now, id)
	return err
}

// SetConversationPinned toggles the pin flag for a thread.
func (db *DB) SetConversationPinned(id int64, pinned bool) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`UPDATE conversations SET pinned = ?, updated_at = ? WHERE id = ?`, pinned, now, id)
	return err
}

// SetConversationDraft stores or clears the unsent draft for a thread.
func (db *DB) SetConversationDraft(id int64, draft string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`UPDATE conversations SET draft = ?, updated_at = ? WHERE id = ?`, draft, now, id)
	return err
}

// MarkConversationRead clears the unread flag and marks every inbox
// message in the thread read and seen.
func (db *DB) MarkConversationRead(id int64) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	if _, err := tx.Exec(`UPDATE messages SET read = 1, seen = 1 WHERE conversation_id = ? AND read = 0`, id); err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}
	if _, err := tx.Exec(`UPDATE conversations SET unread = 0, updated_at = ? WHERE id = ?`, now, id); err != nil {
		return fmt.Errorf("clear unread flag: %w", err)
	}
	return tx.Commit()
}

// ConversationCount returns the total number of threads.
func (db *DB) ConversationCount() (int64, error) {
	var count int64
	err := db.QueryRow(`SELECT COUNT(*) FROM conversations`).Scan(&count)
	return count, err
}
