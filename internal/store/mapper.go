package store

import (
	"database/sql"

	"msgr/internal/model"
)

// RowScanner is the minimal cursor surface shared by *sql.Row and
// *sql.Rows. Mappers read exactly one row through it.
type RowScanner interface {
	Scan(dest ...any) error
}

// Mapper converts one store row into a domain value. Each mapper is
// paired with the column list its companion queries select; the two
// must move together.
type Mapper[T any] interface {
	MapRow(row RowScanner) (T, error)
}

// MapAll drains rows through m. Bulk mapping is repeated single-row
// mapping, nothing more. The cursor is closed before returning.
func MapAll[T any](rows *sql.Rows, m Mapper[T]) ([]T, error) {
	defer func() { _ = rows.Close() }()
	var out []T
	for rows.Next() {
		v, err := m.MapRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Column lists for the entity queries. Keep in sync with the mappers
// below.
const (
	conversationColumns = `id, name, archived, pinned, draft, last_message_at, last_message_preview, unread`
	recipientColumns    = `r.id, r.address, COALESCE(NULLIF(ct.name, ''), '') AS contact_name, r.last_seen`
	contactColumns      = `lookup_key, name, starred, last_update`
	messageColumns      = `id, conversation_id, kind, address, body, box, date, date_sent, read, seen, locked, sub_id`
	partColumns         = `id, message_id, content_type, name, text, data`
)

// recipientJoin resolves contact names for recipient rows by address.
const recipientJoin = `
	FROM recipients r
	LEFT JOIN contact_numbers cn ON cn.address = r.address
	LEFT JOIN contacts ct ON ct.lookup_key = cn.lookup_key`

// ConversationMapper maps conversationColumns rows. Recipients are
// loaded separately.
type ConversationMapper struct{}

func (ConversationMapper) MapRow(row RowScanner) (model.Conversation, error) {
	var c model.Conversation
	err := row.Scan(&c.ID, &c.Name, &c.Archived, &c.Pinned, &c.Draft,
		&c.LastMessageAt, &c.LastMessagePreview, &c.Unread)
	return c, err
}

// RecipientMapper maps recipientColumns rows. A NULL address column
// becomes the empty string, the model's absent-address sentinel.
type RecipientMapper struct{}

func (RecipientMapper) MapRow(row RowScanner) (model.Recipient, error) {
	var r model.Recipient
	var addr sql.NullString
	if err := row.Scan(&r.ID, &addr, &r.ContactName, &r.LastSeen); err != nil {
		return model.Recipient{}, err
	}
	r.Address = addr.String
	return r, nil
}

// ContactMapper maps contactColumns rows. Numbers are loaded
// separately.
type ContactMapper struct{}

func (ContactMapper) MapRow(row RowScanner) (model.Contact, error) {
	var c model.Contact
	err := row.Scan(&c.LookupKey, &c.Name, &c.Starred, &c.LastUpdate)
	return c, err
}

// MessageMapper maps messageColumns rows.
type MessageMapper struct{}

func (MessageMapper) MapRow(row RowScanner) (model.Message, error) {
	var m model.Message
	err := row.Scan(&m.ID, &m.ConversationID, &m.Kind, &m.Address, &m.Body,
		&m.Box, &m.Date, &m.DateSent, &m.Read, &m.Seen, &m.Locked, &m.SubID)
	return m, err
}

// PartMapper maps partColumns rows. A NULL data column becomes a nil
// slice.
type PartMapper struct{}

func (PartMapper) MapRow(row RowScanner) (model.MmsPart, error) {
	var p model.MmsPart
	err := row.Scan(&p.ID, &p.MessageID, &p.ContentType, &p.Name, &p.Text, &p.Data)
	return p, err
}
