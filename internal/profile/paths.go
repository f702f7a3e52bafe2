// Package profile manages per-profile directories under ~/.msgr. A
// profile is one mirrored phone archive: its database, backups, logs
// and analytics spool.
package profile

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.msgr.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".msgr")
}

// Dir returns the profile-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "profiles", name)
}

// LockPath returns the lock file path for a profile.
func LockPath(name string) string {
	return filepath.Join(Dir(name), "LOCK")
}

// DBPath returns the message store path.
func DBPath(name string) string {
	return filepath.Join(Dir(name), "msgr.db")
}

// BackupDir returns where archives are written.
func BackupDir(name string) string {
	return filepath.Join(Dir(name), "backups")
}

// AnalyticsDir returns the analytics spool directory.
func AnalyticsDir(name string) string {
	return filepath.Join(Dir(name), "analytics")
}

// LogDir returns the log directory for a profile.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the app log file path.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "msgr.log")
}

// StringsPath returns the per-profile string catalog overrides.
func StringsPath(name string) string {
	return filepath.Join(Dir(name), "strings.toml")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the profile directory tree with proper permissions.
func EnsureDir(name string) error {
	dirs := []string{
		Dir(name),
		LogDir(name),
		BackupDir(name),
		AnalyticsDir(name),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
