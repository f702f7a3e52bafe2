package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := Default()
	cfg.DefaultProfile = "personal"
	cfg.Backup.Auto = true
	cfg.Backup.Schedule = "30 2 * * *"
	cfg.Permissions.Contacts = false
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultProfile != "personal" {
		t.Errorf("DefaultProfile = %q, want %q", loaded.DefaultProfile, "personal")
	}
	if !loaded.Backup.Auto || loaded.Backup.Schedule != "30 2 * * *" {
		t.Errorf("Backup = %+v, want auto with custom schedule", loaded.Backup)
	}
	if loaded.Permissions.Contacts {
		t.Error("Permissions.Contacts = true, want false")
	}
}

func TestLoadAppliesDefaultsForMissingKeys(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")
	if err := os.WriteFile(path, []byte("default_profile = \"main\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Backup.Keep != 10 {
		t.Errorf("Backup.Keep = %d, want default 10", loaded.Backup.Keep)
	}
	if !loaded.Permissions.ReadSMS {
		t.Error("Permissions.ReadSMS should default to true")
	}
	if loaded.Permissions.SendSMS {
		t.Error("Permissions.SendSMS should default to false")
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}
