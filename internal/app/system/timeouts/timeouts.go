// Package timeouts provides centralized timeout values for outbound calls.
//
// The scheduling backend sits behind a tunnel and can be slow, so every call
// made on behalf of a request is bounded by one of these values:
//   - Ping: health checks (Mongo ping)
//   - Short: single-document reads and writes (upload history)
//   - Fetch: reading schedule runs from the backend
//   - Upload: sending files to the backend, which runs schedule generation
//     before it answers
//
// Values can be overridden at startup with Configure. Zero values are ignored.
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultFetch  = 20 * time.Second
	DefaultUpload = 3 * time.Minute
)

var mu sync.RWMutex

var (
	ping   = DefaultPing
	short  = DefaultShort
	fetch  = DefaultFetch
	upload = DefaultUpload
)

// Ping returns the timeout for connectivity checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for single-document database operations.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Fetch returns the timeout for reading schedules from the backend.
func Fetch() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return fetch
}

// Upload returns the timeout for the upload-and-generate call.
func Upload() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return upload
}

// Config holds timeout configuration values.
// Zero values are ignored (current values are kept).
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Fetch  time.Duration
	Upload time.Duration
}

// Configure sets custom timeout values. Call during startup before handlers
// are built.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Fetch > 0 {
		fetch = cfg.Fetch
	}
	if cfg.Upload > 0 {
		upload = cfg.Upload
	}
}

// Reset restores all timeouts to their default values. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	fetch = DefaultFetch
	upload = DefaultUpload
}

// Current returns the current timeout configuration, for startup logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Short: short, Fetch: fetch, Upload: upload}
}

// WithTimeout creates a context with timeout and returns a cancel function that
// logs a warning if the context ended because the deadline passed.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "schedule upload")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
