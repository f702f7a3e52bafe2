// Package backup exports the message archive to portable JSON files
// and restores them, reporting progress over the event bus.
package backup

import "msgr/internal/i18n"

// Progress describes the phase of a running archive job. The set is
// closed; renderers switch on the concrete type.
type Progress interface {
	progress()
}

// Idle means no job is running.
type Idle struct{}

// Parsing means an archive file is being read and decoded.
type Parsing struct{}

// Running carries per-message progress, Count out of Max.
type Running struct {
	Count int
	Max   int
}

// Saving means the archive is being written to disk.
type Saving struct{}

// Syncing means conversation rows are being rebuilt from the restored
// messages.
type Syncing struct{}

// Finished means the job completed.
type Finished struct{}

func (Idle) progress() {}

func (Parsing) progress() {}

func (Running) progress() {}

func (Saving) progress() {}

func (Syncing) progress() {}

func (Finished) progress() {}

// Label resolves the user-facing line for a progress value. Running
// interpolates its counters into the template. Idle and anything
// unrecognized carry no label; the second return reports presence.
func Label(p Progress, cat *i18n.Catalog) (string, bool) {
	switch v := p.(type) {
	case Parsing:
		return cat.Get(i18n.BackupProgressParsing), true
	case Running:
		return cat.Getf(i18n.BackupProgressRunning, v.Count, v.Max), true
	case Saving:
		return cat.Get(i18n.BackupProgressSaving), true
	case Syncing:
		return cat.Get(i18n.BackupProgressSyncing), true
	case Finished:
		return cat.Get(i18n.BackupProgressFinished), true
	default:
		return "", false
	}
}
