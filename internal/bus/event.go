package bus

import "time"

// Event is a domain event published on the bus.
type Event struct {
	Kind    string
	At      time.Time
	Payload any
}

// Event kinds. Subscribers match on prefix, so "backup." selects the
// whole backup family and "" selects everything.
const (
	KindBackupStatus    = "backup.status_changed"
	KindBackupProgress  = "backup.progress"
	KindBackupCompleted = "backup.completed"
	KindBackupFailed    = "backup.failed"
	KindStoreSynced     = "store.synced"
	KindAboutSelect     = "nav.about.select"
)
