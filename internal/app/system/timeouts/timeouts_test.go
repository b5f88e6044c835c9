package timeouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/sofischeduler/internal/app/system/timeouts"
	"go.uber.org/zap"
)

func TestDefaults(t *testing.T) {
	timeouts.Reset()
	defer timeouts.Reset()

	if got := timeouts.Fetch(); got != timeouts.DefaultFetch {
		t.Errorf("Fetch: got %v, want %v", got, timeouts.DefaultFetch)
	}
	if got := timeouts.Upload(); got != timeouts.DefaultUpload {
		t.Errorf("Upload: got %v, want %v", got, timeouts.DefaultUpload)
	}
}

func TestConfigure_IgnoresZero(t *testing.T) {
	timeouts.Reset()
	defer timeouts.Reset()

	timeouts.Configure(timeouts.Config{Fetch: 7 * time.Second})

	cur := timeouts.Current()
	if cur.Fetch != 7*time.Second {
		t.Errorf("Fetch: got %v, want 7s", cur.Fetch)
	}
	if cur.Upload != timeouts.DefaultUpload {
		t.Errorf("Upload changed unexpectedly: %v", cur.Upload)
	}
	if cur.Ping != timeouts.DefaultPing {
		t.Errorf("Ping changed unexpectedly: %v", cur.Ping)
	}
}

func TestWithTimeout_Expires(t *testing.T) {
	ctx, cancel := timeouts.WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test")
	defer cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context did not expire")
	}
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("err: got %v, want DeadlineExceeded", ctx.Err())
	}
}
