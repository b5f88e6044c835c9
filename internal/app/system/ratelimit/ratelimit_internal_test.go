package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, limit int, d time.Duration) (*Limiter, *time.Time) {
	t.Helper()
	l := New(limit, d)
	t.Cleanup(l.Stop)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAllow_WindowLimit(t *testing.T) {
	l, now := newTestLimiter(t, 2, time.Minute)

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two requests should be allowed")
	}
	if l.Allow("a") {
		t.Error("third request should be limited")
	}
	if !l.Allow("b") {
		t.Error("other keys are counted separately")
	}
	if got := l.RetryAfter("a"); got != time.Minute {
		t.Errorf("RetryAfter = %v, want 1m", got)
	}

	*now = now.Add(time.Minute + time.Second)
	if !l.Allow("a") {
		t.Error("request after the window should be allowed")
	}
	if got := l.Remaining("a"); got != 1 {
		t.Errorf("Remaining = %d, want 1", got)
	}
}

func TestReset(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Hour)
	l.Allow("a")
	if l.Allow("a") {
		t.Fatal("expected limit")
	}
	l.Reset("a")
	if !l.Allow("a") {
		t.Error("expected allow after reset")
	}
}

func TestSweepRemovesExpired(t *testing.T) {
	l, now := newTestLimiter(t, 1, time.Minute)
	l.Allow("a")
	*now = now.Add(2 * time.Minute)
	l.sweep()
	if len(l.windows) != 0 {
		t.Errorf("windows = %d, want 0", len(l.windows))
	}
}

func TestNew_DisabledIsNil(t *testing.T) {
	var l *Limiter = New(0, time.Minute)
	if l != nil {
		t.Fatal("expected nil limiter")
	}
	if !l.Allow("x") || l.RetryAfter("x") != 0 {
		t.Error("nil limiter must allow everything")
	}
	l.Reset("x")
	l.Stop()
}

func TestStopTwice(t *testing.T) {
	l := New(1, time.Minute)
	l.Stop()
	l.Stop()
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"remote addr", "10.0.0.1:5000", "", "", "10.0.0.1"},
		{"remote without port", "10.0.0.1", "", "", "10.0.0.1"},
		{"forwarded for", "10.0.0.1:5000", "203.0.113.7, 10.0.0.2", "", "203.0.113.7"},
		{"real ip", "10.0.0.1:5000", "", " 198.51.100.4 ", "198.51.100.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/upload", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
