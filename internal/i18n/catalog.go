// Package i18n resolves user-facing message templates by key, with
// per-profile overrides layered over built-in defaults.
package i18n

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Key identifies a template in the catalog.
type Key string

// Templates for long-running archive work.
const (
	BackupProgressParsing  Key = "backup_progress_parsing"
	BackupProgressRunning  Key = "backup_progress_running"
	BackupProgressSaving   Key = "backup_progress_saving"
	BackupProgressSyncing  Key = "backup_progress_syncing"
	BackupProgressFinished Key = "backup_progress_finished"
)

var defaults = map[Key]string{
	BackupProgressParsing:  "Parsing archive",
	BackupProgressRunning:  "Processing message %d of %d",
	BackupProgressSaving:   "Saving archive",
	BackupProgressSyncing:  "Syncing messages",
	BackupProgressFinished: "Finished",
}

// Catalog maps keys to templates. The zero value is not usable; build
// one with NewCatalog or Load.
type Catalog struct {
	overrides map[string]string
}

// NewCatalog returns a catalog serving only the built-in defaults.
func NewCatalog() *Catalog {
	return &Catalog{overrides: map[string]string{}}
}

// Load reads override templates from a TOML file of key = "template"
// pairs. A missing file is not an error, the defaults simply apply.
func Load(path string) (*Catalog, error) {
	c := NewCatalog()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c, nil
	}
	if _, err := toml.DecodeFile(path, &c.overrides); err != nil {
		return nil, fmt.Errorf("load string overrides: %w", err)
	}
	return c, nil
}

// Get returns the template for key, or the empty string when the key
// is unknown.
func (c *Catalog) Get(k Key) string {
	if s, ok := c.overrides[string(k)]; ok {
		return s
	}
	return defaults[k]
}

// Getf resolves the template and interpolates args into it.
func (c *Catalog) Getf(k Key, args ...any) string {
	tmpl := c.Get(k)
	if tmpl == "" {
		return ""
	}
	return fmt.Sprintf(tmpl, args...)
}
