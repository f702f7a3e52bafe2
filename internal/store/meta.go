package store

import (
	"database/sql"
	"time"
)

// Checkpoint and user-property keys stored in meta.
const (
	MetaLastBackupAt   = "backup.last_run"
	MetaLastBackupPath = "backup.last_path"
	MetaUserPropPrefix = "user."
)

// SetMeta stores a key/value checkpoint.
func (db *DB) SetMeta(key, value string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO meta (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now)
	return err
}

// Meta retrieves a checkpoint value, empty string when unset.
func (db *DB) Meta(key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}
