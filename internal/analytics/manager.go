// Package analytics records usage events. Recording is fire-and-forget:
// events land in a local queue and a background dispatcher delivers
// them to a sink. Delivery guarantees, batching and retry policy are
// the sink's business, never the caller's.
package analytics

import (
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"msgr/internal/store"
)

// Property is one event attribute.
type Property struct {
	Key   string
	Value any
}

// P builds a Property inline: Track("screen_view", P("screen", "inbox")).
func P(key string, value any) Property {
	return Property{Key: key, Value: value}
}

// Manager records usage events and user properties. Implementations
// never block the caller and never surface delivery errors.
type Manager interface {
	Track(event string, properties ...Property)
	SetUserProperty(key, value string)
}

// StoreManager queues events into the profile store. A disabled
// manager drops everything silently.
type StoreManager struct {
	db      *store.DB
	logger  *zap.Logger
	enabled bool
}

// NewManager creates a store-backed analytics manager.
func NewManager(db *store.DB, enabled bool, logger *zap.Logger) *StoreManager {
	return &StoreManager{db: db, enabled: enabled, logger: logger}
}

// Track queues one named event with its properties. Failures are
// logged and swallowed.
func (m *StoreManager) Track(event string, properties ...Property) {
	if !m.enabled {
		return
	}
	props := make(map[string]any, len(properties))
	for _, p := range properties {
		props[p.Key] = p.Value
	}
	data, err := json.Marshal(props)
	if err != nil {
		m.logger.Error("encode analytics properties", zap.Error(err), zap.String("event", event))
		return
	}
	if err := m.db.QueueEvent(uuid.NewString(), event, string(data)); err != nil {
		m.logger.Error("queue analytics event", zap.Error(err), zap.String("event", event))
	}
}

// SetUserProperty stores a persistent attribute of this profile's user.
func (m *StoreManager) SetUserProperty(key, value string) {
	if !m.enabled {
		return
	}
	if err := m.db.SetMeta(store.MetaUserPropPrefix+key, value); err != nil {
		m.logger.Error("set user property", zap.Error(err), zap.String("key", key))
	}
}

// Nop discards everything. Used by tools that must not record.
type Nop struct{}

func (Nop) Track(string, ...Property) {}

func (Nop) SetUserProperty(string, string) {}
