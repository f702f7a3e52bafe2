package store

import (
	"database/sql"
	"fmt"
	"time"

	"msgr/internal/model"
)

// UpsertContact inserts or updates a contact and replaces its numbers.
func (db *DB) UpsertContact(c *model.Contact) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	if _, err := tx.Exec(`
		INSERT INTO contacts (lookup_key, name, starred, last_update)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(lookup_key) DO UPDATE SET
			name = CASE WHEN excluded.name != '' THEN excluded.name ELSE contacts.name END,
			starred = excluded.starred,
			last_update = excluded.last_update`,
		c.LookupKey, c.Name, c.Starred, now); err != nil {
		return fmt.Errorf("upsert contact %q: %w", c.LookupKey, err)
	}

	if _, err := tx.Exec(`DELETE FROM contact_numbers WHERE lookup_key = ?`, c.LookupKey); err != nil {
		return fmt.Errorf("clear numbers: %w", err)
	}
	for _, n := range c.Numbers {
		if _, err := tx.Exec(`
			INSERT INTO contact_numbers (lookup_key, address, type)
			VALUES (?, ?, ?)`, c.LookupKey, n.Address, n.Type); err != nil {
			return fmt.Errorf("insert number %q: %w", n.Address, err)
		}
	}
	return tx.Commit()
}

// Contacts returns the whole address book with numbers attached,
// starred first, then by name.
func (db *DB) Contacts() ([]model.Contact, error) {
	rows, err := db.Query(`
		SELECT ` + contactColumns + `
		FROM contacts
		ORDER BY starred DESC, name ASC, lookup_key ASC`)
	if err != nil {
		return nil, err
	}
	contacts, err := MapAll[model.Contact](rows, ContactMapper{})
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return contacts, nil
	}

	numbers, err := db.numbersGrouped()
	if err != nil {
		return nil, err
	}
	for i := range contacts {
		contacts[i].Numbers = numbers[contacts[i].LookupKey]
	}
	return contacts, nil
}

// ContactByAddress resolves the contact owning a phone number, or nil
// when the address is unknown.
func (db *DB) ContactByAddress(address string) (*model.Contact, error) {
	row := db.QueryRow(`
		SELECT ct.lookup_key, ct.name, ct.starred, ct.last_update
		FROM contacts ct
		JOIN contact_numbers cn ON cn.lookup_key = ct.lookup_key
		WHERE cn.address = ?`, address)
	c, err := ContactMapper{}.MapRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT id, address, type FROM contact_numbers
		WHERE lookup_key = ? ORDER BY id ASC`, c.LookupKey)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var n model.ContactNumber
		if err := rows.Scan(&n.ID, &n.Address, &n.Type); err != nil {
			return nil, err
		}
		c.Numbers = append(c.Numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (db *DB) numbersGrouped() (map[string][]model.ContactNumber, error) {
	rows, err := db.Query(`
		SELECT lookup_key, id, address, type FROM contact_numbers
		ORDER BY lookup_key ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	grouped := make(map[string][]model.ContactNumber)
	for rows.Next() {
		var key string
		var n model.ContactNumber
		if err := rows.Scan(&key, &n.ID, &n.Address, &n.Type); err != nil {
			return nil, err
		}
		grouped[key] = append(grouped[key], n)
	}
	return grouped, rows.Err()
}

// ContactCount returns the total number of contacts.
func (db *DB) ContactCount() (int64, error) {
	var count int64
	err := db.QueryRow(`SELECT COUNT(*) FROM contacts`).Scan(&count)
	return count, err
}
