package store

// SearchMessages performs a full-text search on message bodies. A
// conversationID of 0 searches the whole archive.
func (db *DB) SearchMessages(query string, conversationID int64, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 50
	}

	q := `
		SELECT m.id, m.conversation_id, m.kind, m.address, m.body, m.box,
		       m.date, m.date_sent, m.read, m.seen, m.locked, m.sub_id,
		       snippet(messages_fts, 0, '<<', '>>', '...', 32)
		FROM messages_fts f
		JOIN messages m ON m.id = f.rowid
		WHERE messages_fts MATCH ?`

	args := []any{query}
	if conversationID != 0 {
		q += " AND m.conversation_id = ?"
		args = append(args, conversationID)
	}
	q += " ORDER BY rank LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(
			&r.Message.ID, &r.Message.ConversationID, &r.Message.Kind,
			&r.Message.Address, &r.Message.Body, &r.Message.Box,
			&r.Message.Date, &r.Message.DateSent, &r.Message.Read,
			&r.Message.Seen, &r.Message.Locked, &r.Message.SubID,
			&r.Snippet,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
