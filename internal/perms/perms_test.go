package perms

import (
	"os"
	"path/filepath"
	"testing"
)

func TestQueriesReflectGrants(t *testing.T) {
	m := NewManager(Grants{
		ReadSMS:  true,
		Contacts: true,
	}, t.TempDir())

	if m.IsDefaultSMS() {
		t.Error("IsDefaultSMS() = true without grant")
	}
	if !m.HasReadSMS() {
		t.Error("HasReadSMS() = false with grant")
	}
	if m.HasSendSMS() {
		t.Error("HasSendSMS() = true without grant")
	}
	if !m.HasContacts() {
		t.Error("HasContacts() = false with grant")
	}
	if m.HasPhone() || m.HasCalling() {
		t.Error("phone grants reported without being declared")
	}
}

func TestHasStorageProbesDirectory(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(Grants{Storage: true}, dir)
	if !m.HasStorage() {
		t.Error("HasStorage() = false for writable dir")
	}
	// The probe file must not linger.
	if _, err := os.Stat(filepath.Join(dir, ".probe")); !os.IsNotExist(err) {
		t.Error("probe file left behind")
	}
}

func TestHasStorageDeniedWithoutGrant(t *testing.T) {
	m := NewManager(Grants{}, t.TempDir())
	if m.HasStorage() {
		t.Error("HasStorage() = true without grant")
	}
}

func TestHasStorageUnwritableDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := filepath.Join(t.TempDir(), "ro")
	if err := os.MkdirAll(dir, 0500); err != nil {
		t.Fatal(err)
	}
	m := NewManager(Grants{Storage: true}, dir)
	if m.HasStorage() {
		t.Error("HasStorage() = true for read-only dir")
	}
}

func TestQueriesAreStateless(t *testing.T) {
	// Two managers over the same grants agree; nothing is cached or
	// mutated by querying.
	g := Grants{ReadSMS: true, Storage: true}
	dir := t.TempDir()
	a := NewManager(g, dir)
	b := NewManager(g, dir)
	for i := 0; i < 3; i++ {
		if a.HasReadSMS() != b.HasReadSMS() || a.HasStorage() != b.HasStorage() {
			t.Fatal("repeated queries disagree")
		}
	}
}
