package analytics

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"msgr/internal/store"
)

// Dispatcher drains the event queue into a sink on a ticker.
type Dispatcher struct {
	db     *store.DB
	sink   Sink
	logger *zap.Logger
	cancel context.CancelFunc
	batch  int
	every  time.Duration
}

// NewDispatcher creates a dispatcher. It does nothing until Start.
func NewDispatcher(db *store.DB, sink Sink, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		db:     db,
		sink:   sink,
		logger: logger,
		batch:  64,
		every:  3 * time.Second,
	}
}

// Start begins polling the queue for pending events.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	go d.loop(ctx)
}

// Stop stops the dispatch loop.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
}

func (d *Dispatcher) loop(ctx context.Context) {
	ticker := time.NewTicker(d.every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n, err := d.Flush(ctx); err != nil {
				d.logger.Error("analytics flush failed", zap.Error(err))
			} else if n > 0 {
				d.logger.Info("analytics batch delivered", zap.Int("events", n))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Flush delivers one batch of queued events and returns how many were
// sent. A sink failure marks the whole batch failed with the error
// recorded per event.
func (d *Dispatcher) Flush(ctx context.Context) (int, error) {
	pending, err := d.db.PendingEvents(d.batch)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	if err := d.sink.Deliver(ctx, pending); err != nil {
		for _, e := range pending {
			_ = d.db.MarkEventFailed(e.ID, err.Error())
		}
		return 0, err
	}

	ids := lo.Map(pending, func(e store.AnalyticsEvent, _ int) int64 { return e.ID })
	if err := d.db.MarkEventsSent(ids); err != nil {
		return 0, err
	}
	return len(pending), nil
}
