package scheduleloader_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleloader"
	"github.com/dalemusser/sofischeduler/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	calls   atomic.Int32
	gate    chan struct{} // when non-nil each call waits for a value
	started chan struct{} // when non-nil each call sends once it begins
	runs    []models.ScheduleRun
	err     error
}

func (f *fakeFetcher) GetSchedules(ctx context.Context) ([]models.ScheduleRun, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.runs, f.err
}

type countingRecorder struct {
	mu   sync.Mutex
	seen map[string]int
}

func (c *countingRecorder) ObserveLoad(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen == nil {
		c.seen = map[string]int{}
	}
	c.seen[source]++
}

func (c *countingRecorder) get(source string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen[source]
}

func threeRuns() []models.ScheduleRun {
	return []models.ScheduleRun{{ID: "a"}, {ID: "b"}, {ID: "c"}}
}

func TestRuns_ConcurrentCallersShareOneFetch(t *testing.T) {
	f := &fakeFetcher{gate: make(chan struct{}), started: make(chan struct{}, 1), runs: threeRuns()}
	rec := &countingRecorder{}
	l := scheduleloader.New(f, scheduleloader.Options{Metrics: rec})

	const callers = 8
	var wg sync.WaitGroup
	results := make([][]models.ScheduleRun, callers)
	errs := make([]error, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = l.Runs(context.Background())
	}()
	<-f.started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = l.Runs(context.Background())
		}(i)
	}
	// give the followers time to join the in-flight call
	time.Sleep(100 * time.Millisecond)
	close(f.gate)
	wg.Wait()

	assert.Equal(t, int32(1), f.calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Len(t, results[i], 3)
	}
	assert.Equal(t, 1, rec.get(scheduleloader.SourceBackend))
	assert.Equal(t, callers-1, rec.get(scheduleloader.SourceShared))
}

func TestRuns_CallerCancelDoesNotAffectOthers(t *testing.T) {
	f := &fakeFetcher{gate: make(chan struct{}), started: make(chan struct{}, 1), runs: threeRuns()}
	l := scheduleloader.New(f, scheduleloader.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancelled := make(chan error, 1)
	go func() {
		_, err := l.Runs(ctx)
		cancelled <- err
	}()
	<-f.started

	survivor := make(chan []models.ScheduleRun, 1)
	go func() {
		runs, err := l.Runs(context.Background())
		assert.NoError(t, err)
		survivor <- runs
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case err := <-cancelled:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(f.gate)
	select {
	case runs := <-survivor:
		assert.Len(t, runs, 3)
	case <-time.After(2 * time.Second):
		t.Fatal("surviving caller did not return")
	}
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestRuns_NoCacheByDefault(t *testing.T) {
	f := &fakeFetcher{runs: threeRuns()}
	l := scheduleloader.New(f, scheduleloader.Options{})

	for i := 0; i < 3; i++ {
		_, err := l.Runs(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), f.calls.Load())
}

func TestRuns_TTLCache(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	f := &fakeFetcher{runs: threeRuns()}
	rec := &countingRecorder{}
	l := scheduleloader.New(f, scheduleloader.Options{TTL: time.Minute, Now: clock, Metrics: rec})

	_, err := l.Runs(context.Background())
	require.NoError(t, err)
	now = now.Add(30 * time.Second)
	_, err = l.Runs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, 1, rec.get(scheduleloader.SourceCache))

	now = now.Add(31 * time.Second)
	_, err = l.Runs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestInvalidate(t *testing.T) {
	f := &fakeFetcher{runs: threeRuns()}
	l := scheduleloader.New(f, scheduleloader.Options{TTL: time.Hour})

	_, err := l.Runs(context.Background())
	require.NoError(t, err)
	l.Invalidate()
	_, err = l.Runs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestRuns_ErrorsAreNotCached(t *testing.T) {
	f := &fakeFetcher{err: errors.New("db down")}
	l := scheduleloader.New(f, scheduleloader.Options{TTL: time.Hour})

	_, err := l.Runs(context.Background())
	require.EqualError(t, err, "db down")

	f.err = nil
	f.runs = threeRuns()
	runs, err := l.Runs(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 3)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestLatest(t *testing.T) {
	l := scheduleloader.New(&fakeFetcher{runs: threeRuns()}, scheduleloader.Options{})
	run, ok, err := l.Latest(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "c", run.ID)

	l = scheduleloader.New(&fakeFetcher{}, scheduleloader.Options{})
	_, ok, err = l.Latest(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
