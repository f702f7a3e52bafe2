package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"msgr/internal/bus"
	"msgr/internal/model"
	"msgr/internal/store"
)

// Engine exports the store to archive files and restores them. Jobs
// are serialized by the state machine: starting one transitions to a
// working state, which only succeeds from Idle or Failed.
type Engine struct {
	db      *store.DB
	bus     *bus.Bus
	machine *Machine
	logger  *zap.Logger
	dir     string // backups directory for this profile
	keep    int    // archives retained, 0 = unlimited
}

// Summary reports what a finished job touched.
type Summary struct {
	Messages int
	Parts    int
	Path     string
}

// Info describes one archive file on disk.
type Info struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// NewEngine creates an engine writing archives into dir, keeping at
// most keep files.
func NewEngine(db *store.DB, b *bus.Bus, m *Machine, dir string, keep int, logger *zap.Logger) *Engine {
	return &Engine{
		db:      db,
		bus:     b,
		machine: m,
		logger:  logger,
		dir:     dir,
		keep:    keep,
	}
}

// State returns the current job state.
func (e *Engine) State() State {
	return e.machine.Current()
}

// Backup exports every message to a new archive file and returns its
// summary. Fails immediately when another job is running.
func (e *Engine) Backup(ctx context.Context) (*Summary, error) {
	if err := e.machine.Transition(StateBackingUp); err != nil {
		return nil, err
	}
	sum, err := e.runBackup(ctx)
	if err != nil {
		e.fail(err)
		return nil, err
	}
	e.progress(Finished{})
	e.bus.Publish(bus.KindBackupCompleted, *sum)
	_ = e.machine.Transition(StateIdle)
	return sum, nil
}

func (e *Engine) runBackup(ctx context.Context) (*Summary, error) {
	msgs, err := e.db.AllMessages()
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	archive := Archive{Messages: make([]Record, 0, len(msgs))}
	parts := 0
	for i, m := range msgs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if m.Kind == model.KindMMS {
			ps, err := e.db.PartsByMessage(m.ID)
			if err != nil {
				return nil, fmt.Errorf("load parts for message %d: %w", m.ID, err)
			}
			m.Parts = ps
			parts += len(ps)
		}
		archive.Messages = append(archive.Messages, ToRecord(m))
		e.progress(Running{Count: i + 1, Max: len(msgs)})
	}

	e.progress(Saving{})
	path := filepath.Join(e.dir, fmt.Sprintf("backup-%s.json", time.Now().Format("20060102-150405")))
	if err := WriteArchive(path, &archive); err != nil {
		return nil, err
	}

	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := e.db.SetMeta(store.MetaLastBackupAt, now); err != nil {
		return nil, fmt.Errorf("record backup checkpoint: %w", err)
	}
	if err := e.db.SetMeta(store.MetaLastBackupPath, path); err != nil {
		return nil, fmt.Errorf("record backup path: %w", err)
	}

	e.prune()

	e.logger.Info("archive written",
		zap.String("path", path),
		zap.Int("messages", len(msgs)),
		zap.Int("parts", parts))
	return &Summary{Messages: len(msgs), Parts: parts, Path: path}, nil
}

// Restore loads the archive at path into the store, re-threading
// messages by address, then rebuilds conversation rows. Restoring the
// same archive twice does not duplicate history.
func (e *Engine) Restore(ctx context.Context, path string) (*Summary, error) {
	if err := e.machine.Transition(StateRestoring); err != nil {
		return nil, err
	}
	sum, err := e.runRestore(ctx, path)
	if err != nil {
		e.fail(err)
		return nil, err
	}
	e.progress(Finished{})
	e.bus.Publish(bus.KindBackupCompleted, *sum)
	_ = e.machine.Transition(StateIdle)
	return sum, nil
}

func (e *Engine) runRestore(ctx context.Context, path string) (*Summary, error) {
	e.progress(Parsing{})
	archive, err := ReadArchive(path)
	if err != nil {
		return nil, err
	}

	threads := make(map[string]int64)
	parts := 0
	for i, rec := range archive.Messages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		convID, ok := threads[rec.Address]
		if !ok {
			convID, err = e.db.EnsureConversationForAddress(rec.Address)
			if err != nil {
				return nil, fmt.Errorf("thread for %q: %w", rec.Address, err)
			}
			threads[rec.Address] = convID
		}

		msg := rec.ToMessage(convID)
		id, err := e.db.UpsertMessage(&msg)
		if err != nil {
			return nil, fmt.Errorf("restore message: %w", err)
		}
		if len(rec.Parts) > 0 {
			if err := e.db.ClearParts(id); err != nil {
				return nil, fmt.Errorf("clear parts: %w", err)
			}
			for _, pr := range rec.Parts {
				part := pr.ToPart(id)
				if _, err := e.db.InsertPart(&part); err != nil {
					return nil, fmt.Errorf("restore part: %w", err)
				}
				parts++
			}
		}
		e.progress(Running{Count: i + 1, Max: len(archive.Messages)})
	}

	e.progress(Syncing{})
	synced, err := e.db.SyncConversations()
	if err != nil {
		return nil, fmt.Errorf("sync conversations: %w", err)
	}
	e.bus.Publish(bus.KindStoreSynced, synced)

	e.logger.Info("archive restored",
		zap.String("path", path),
		zap.Int("messages", len(archive.Messages)),
		zap.Int("parts", parts))
	return &Summary{Messages: len(archive.Messages), Parts: parts, Path: path}, nil
}

// List returns the archives in the backups directory newest-first.
func (e *Engine) List() ([]Info, error) {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var infos []Info
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".json") {
			continue
		}
		fi, err := ent.Info()
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Path:    filepath.Join(e.dir, ent.Name()),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ModTime.After(infos[j].ModTime) })
	return infos, nil
}

// prune removes archives beyond the retention count, oldest first.
// Failures are logged, not fatal: the new archive is already safe.
func (e *Engine) prune() {
	if e.keep <= 0 {
		return
	}
	infos, err := e.List()
	if err != nil {
		e.logger.Warn("prune: list archives", zap.Error(err))
		return
	}
	if len(infos) <= e.keep {
		return
	}
	for _, old := range infos[e.keep:] {
		if err := os.Remove(old.Path); err != nil {
			e.logger.Warn("prune archive", zap.String("path", old.Path), zap.Error(err))
		}
	}
}

func (e *Engine) progress(p Progress) {
	e.bus.Publish(bus.KindBackupProgress, p)
}

func (e *Engine) fail(err error) {
	e.logger.Error("archive job failed", zap.Error(err))
	if terr := e.machine.Transition(StateFailed); terr != nil {
		e.logger.Error("record failed state", zap.Error(terr))
	}
	e.bus.Publish(bus.KindBackupFailed, err.Error())
}
