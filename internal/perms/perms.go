// Package perms answers host capability queries: which of the phone's
// permission grants this archive mirror is allowed to act on. Queries
// are stateless; every call reflects the current grants.
package perms

import (
	"os"
	"path/filepath"
)

// Manager reports capability grants. All queries are boolean and free
// of side effects.
type Manager interface {
	// IsDefaultSMS reports whether this app is the default SMS handler.
	IsDefaultSMS() bool
	// HasReadSMS reports whether message history may be read.
	HasReadSMS() bool
	// HasSendSMS reports whether messages may be sent.
	HasSendSMS() bool
	// HasContacts reports whether the address book may be read.
	HasContacts() bool
	// HasPhone reports whether phone state may be read.
	HasPhone() bool
	// HasCalling reports whether calls may be placed.
	HasCalling() bool
	// HasStorage reports whether external storage may be written.
	HasStorage() bool
}

// Grants is the declared permission set, normally the [permissions]
// config section.
type Grants struct {
	DefaultSMS bool
	ReadSMS    bool
	SendSMS    bool
	Contacts   bool
	Phone      bool
	Calling    bool
	Storage    bool
}

// HostManager resolves queries from declared grants. The storage grant
// is additionally probed against the profile data directory, since a
// declared grant is worthless on a read-only disk.
type HostManager struct {
	grants  Grants
	dataDir string
}

// NewManager creates a host permission manager for a profile directory.
func NewManager(grants Grants, dataDir string) *HostManager {
	return &HostManager{grants: grants, dataDir: dataDir}
}

func (m *HostManager) IsDefaultSMS() bool { return m.grants.DefaultSMS }
func (m *HostManager) HasReadSMS() bool   { return m.grants.ReadSMS }
func (m *HostManager) HasSendSMS() bool   { return m.grants.SendSMS }
func (m *HostManager) HasContacts() bool  { return m.grants.Contacts }
func (m *HostManager) HasPhone() bool     { return m.grants.Phone }
func (m *HostManager) HasCalling() bool   { return m.grants.Calling }

// HasStorage probes for an actually writable data directory.
func (m *HostManager) HasStorage() bool {
	if !m.grants.Storage {
		return false
	}
	if err := os.MkdirAll(m.dataDir, 0700); err != nil {
		return false
	}
	probe := filepath.Join(m.dataDir, ".probe")
	if err := os.WriteFile(probe, nil, 0600); err != nil {
		return false
	}
	_ = os.Remove(probe)
	return true
}
