// internal/app/system/workers/historyprune.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/sofischeduler/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Pruner deletes upload records created before a cutoff.
type Pruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// HistoryPrune is a background worker that removes upload history older
// than the retention period.
type HistoryPrune struct {
	store     Pruner
	log       *zap.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewHistoryPrune creates the worker. It runs once at Start and then every
// interval, deleting records older than retention.
func NewHistoryPrune(store Pruner, logger *zap.Logger, interval, retention time.Duration) *HistoryPrune {
	return &HistoryPrune{
		store:     store,
		log:       logger,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the background prune loop.
func (w *HistoryPrune) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("upload history prune worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("retention", w.retention))
}

// Stop signals the worker to stop and waits for it to finish. Safe to call
// more than once.
func (w *HistoryPrune) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("upload history prune worker stopped")
	})
}

func (w *HistoryPrune) run() {
	defer w.wg.Done()

	w.prune()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.prune()
		}
	}
}

func (w *HistoryPrune) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
	defer cancel()

	cutoff := w.now().Add(-w.retention).UTC()
	count, err := w.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		w.log.Error("failed to prune upload history", zap.Error(err))
		return
	}

	if count > 0 {
		w.log.Info("pruned upload history",
			zap.Int64("count", count),
			zap.Time("cutoff", cutoff))
	}
}
