package store

import (
	"github.com/gabriel-vasile/mimetype"
	"msgr/internal/model"
)

// InsertPart attaches an MMS part to a message. When the part carries
// data but no declared content type, the type is sniffed from the
// bytes.
func (db *DB) InsertPart(p *model.MmsPart) (int64, error) {
	contentType := p.ContentType
	if contentType == "" {
		if len(p.Data) > 0 {
			contentType = mimetype.Detect(p.Data).String()
		} else {
			contentType = "application/octet-stream"
		}
	}
	res, err := db.Exec(`
		INSERT INTO parts (message_id, content_type, name, text, data)
		VALUES (?, ?, ?, ?, ?)`,
		p.MessageID, contentType, p.Name, p.Text, p.Data)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// PartsByMessage returns a message's parts in insertion order.
func (db *DB) PartsByMessage(messageID int64) ([]model.MmsPart, error) {
	rows, err := db.Query(`
		SELECT `+partColumns+`
		FROM parts
		WHERE message_id = ?
		ORDER BY id ASC`, messageID)
	if err != nil {
		return nil, err
	}
	return MapAll[model.MmsPart](rows, PartMapper{})
}

// ClearParts removes a message's parts, used before re-importing them.
func (db *DB) ClearParts(messageID int64) error {
	_, err := db.Exec(`DELETE FROM parts WHERE message_id = ?`, messageID)
	return err
}

// PartCount returns the total number of stored parts.
func (db *DB) PartCount() (int64, error) {
	var count int64
	err := db.QueryRow(`SELECT COUNT(*) FROM parts`).Scan(&count)
	return count, err
}
