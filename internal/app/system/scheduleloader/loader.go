// Package scheduleloader is the one place the web views load the schedule
// list from. Concurrent requests share a single backend call and, when a TTL
// is configured, recent results are served from memory.
package scheduleloader

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleview"
	"github.com/dalemusser/sofischeduler/internal/app/system/timeouts"
	"github.com/dalemusser/sofischeduler/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Load sources reported to the Recorder.
const (
	SourceBackend = "backend"
	SourceShared  = "shared"
	SourceCache   = "cache"
)

const flightKey = "schedules"

// Fetcher is the backend call the loader wraps.
type Fetcher interface {
	GetSchedules(ctx context.Context) ([]models.ScheduleRun, error)
}

// Recorder counts loads by source.
type Recorder interface {
	ObserveLoad(source string)
}

// Options configures a Loader.
type Options struct {
	// TTL keeps a successful result for this long. Zero disables caching.
	TTL     time.Duration
	Logger  *zap.Logger
	Metrics Recorder
	// Now is the clock. Nil means time.Now.
	Now func() time.Time
}

// Loader deduplicates and optionally caches schedule list fetches.
type Loader struct {
	fetch   Fetcher
	ttl     time.Duration
	log     *zap.Logger
	metrics Recorder
	now     func() time.Time

	group singleflight.Group

	mu       sync.Mutex
	cached   []models.ScheduleRun
	cachedAt time.Time
	// gen is bumped by Invalidate so a fetch that started earlier does not
	// repopulate the cache with stale data.
	gen uint64
}

// New returns a Loader over f.
func New(f Fetcher, opts Options) *Loader {
	l := &Loader{
		fetch:   f,
		ttl:     opts.TTL,
		log:     opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Now,
	}
	if l.log == nil {
		l.log = zap.NewNop()
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// Runs returns every run the backend reports. Callers that arrive while a
// fetch is in flight wait for that fetch instead of starting another. The
// fetch itself is not tied to any one caller: if ctx ends first, Runs
// returns ctx.Err() and the fetch carries on for the others.
func (l *Loader) Runs(ctx context.Context) ([]models.ScheduleRun, error) {
	if runs, ok := l.fromCache(); ok {
		l.observe(SourceCache)
		return runs, nil
	}

	ch := l.group.DoChan(flightKey, func() (any, error) {
		l.mu.Lock()
		gen := l.gen
		l.mu.Unlock()

		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Fetch())
		defer cancel()

		runs, err := l.fetch.GetSchedules(fctx)
		if err != nil {
			return nil, err
		}
		l.store(gen, runs)
		return runs, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			l.observe(SourceShared)
		} else {
			l.observe(SourceBackend)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]models.ScheduleRun), nil
	}
}

// Latest returns the run the views treat as current. ok is false when the
// backend has no runs.
func (l *Loader) Latest(ctx context.Context) (run models.ScheduleRun, ok bool, err error) {
	runs, err := l.Runs(ctx)
	if err != nil {
		return models.ScheduleRun{}, false, err
	}
	run, ok = scheduleview.SelectLatest(runs)
	return run, ok, nil
}

// Invalidate drops any cached result and makes in-flight fetches skip the
// cache. Call after the backend data has changed.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.cached = nil
	l.cachedAt = time.Time{}
	l.gen++
	l.mu.Unlock()
	l.group.Forget(flightKey)
	l.log.Debug("schedule cache invalidated")
}

func (l *Loader) fromCache() ([]models.ScheduleRun, bool) {
	if l.ttl <= 0 {
		return nil, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cached == nil || l.now().Sub(l.cachedAt) >= l.ttl {
		return nil, false
	}
	return l.cached, true
}

func (l *Loader) store(gen uint64, runs []models.ScheduleRun) {
	if l.ttl <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return
	}
	if runs == nil {
		runs = []models.ScheduleRun{}
	}
	l.cached = runs
	l.cachedAt = l.now()
}

func (l *Loader) observe(source string) {
	if l.metrics != nil {
		l.metrics.ObserveLoad(source)
	}
}
