package backup

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"msgr/internal/config"
)

// Scheduler runs automatic backups on the configured cron expression.
type Scheduler struct {
	cron   *cron.Cron
	engine *Engine
	logger *zap.Logger
	cfg    config.Backup
}

// NewScheduler creates a scheduler for the engine. Nothing runs until
// Start, and nothing ever runs unless auto backups are enabled.
func NewScheduler(engine *Engine, cfg config.Backup, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		engine: engine,
		logger: logger,
		cfg:    cfg,
	}
}

// Start registers the backup job and starts the cron loop. A disabled
// scheduler starts successfully and does nothing.
func (s *Scheduler) Start() error {
	if !s.cfg.Auto {
		return nil
	}
	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.run); err != nil {
		return fmt.Errorf("schedule %q: %w", s.cfg.Schedule, err)
	}
	s.cron.Start()
	s.logger.Info("automatic backups enabled", zap.String("schedule", s.cfg.Schedule))
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	sum, err := s.engine.Backup(context.Background())
	if err != nil {
		// Includes the busy case: the state machine refuses a second
		// job, so an overlapping tick is skipped rather than queued.
		s.logger.Warn("scheduled backup skipped", zap.Error(err))
		return
	}
	s.logger.Info("scheduled backup finished",
		zap.String("path", sum.Path),
		zap.Int("messages", sum.Messages))
}
