package dashboard_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/sofischeduler/internal/app/features/dashboard"
	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleview"
	"github.com/dalemusser/sofischeduler/internal/domain/models"
	"github.com/dalemusser/sofischeduler/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type stubLoader struct {
	run   models.ScheduleRun
	ok    bool
	err   error
	calls int
}

func (s *stubLoader) Latest(ctx context.Context) (models.ScheduleRun, bool, error) {
	s.calls++
	return s.run, s.ok, s.err
}

type stubAPI struct {
	gotID string
	run   models.ScheduleRun
	err   error
}

func (s *stubAPI) GetScheduleByID(ctx context.Context, id string) (models.ScheduleRun, error) {
	s.gotID = id
	return s.run, s.err
}

func newTestHandler(l *stubLoader, api *stubAPI) *dashboard.Handler {
	logger := zap.NewNop()
	return dashboard.NewHandler(l, api, scheduleview.NewFormatter(nil), logger)
}

func TestServeDashboard_UsesLoader(t *testing.T) {
	l := &stubLoader{run: models.ScheduleRun{ID: "r1"}, ok: true}
	r := dashboard.Routes(newTestHandler(l, &stubAPI{}))

	rec := testutil.ServeIgnoringPanics(r, httptest.NewRequest(http.MethodGet, "/?view=table", nil))
	if l.calls != 1 {
		t.Errorf("loader calls = %d, want 1", l.calls)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestServeDashboard_BackendErrorIs502(t *testing.T) {
	l := &stubLoader{err: errors.New("failed to fetch schedules: db down")}
	r := dashboard.Routes(newTestHandler(l, &stubAPI{}))

	rec := testutil.ServeIgnoringPanics(r, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestServeDashboard_CancelledRequestWritesNothing(t *testing.T) {
	l := &stubLoader{err: context.Canceled}
	r := dashboard.Routes(newTestHandler(l, &stubAPI{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := testutil.ServeIgnoringPanics(r, req)
	if rec.Body.Len() != 0 {
		t.Errorf("expected no body, got %q", rec.Body.String())
	}
}

func TestServeRun_PassesID(t *testing.T) {
	api := &stubAPI{run: models.ScheduleRun{ID: "abc"}}
	r := chi.NewRouter()
	r.Mount("/dashboard", dashboard.Routes(newTestHandler(&stubLoader{}, api)))

	testutil.ServeIgnoringPanics(r, httptest.NewRequest(http.MethodGet, "/dashboard/abc", nil))
	if api.gotID != "abc" {
		t.Errorf("id = %q, want abc", api.gotID)
	}
}

func TestServeRun_NotFoundIs502(t *testing.T) {
	api := &stubAPI{err: errors.New("failed to fetch schedule with ID zz: not found")}
	r := chi.NewRouter()
	r.Mount("/dashboard", dashboard.Routes(newTestHandler(&stubLoader{}, api)))

	rec := testutil.ServeIgnoringPanics(r, httptest.NewRequest(http.MethodGet, "/dashboard/zz", nil))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestServeRun_DirectCall(t *testing.T) {
	api := &stubAPI{run: models.ScheduleRun{ID: "direct"}}
	h := newTestHandler(&stubLoader{}, api)

	req := testutil.WithChiURLParam(httptest.NewRequest(http.MethodGet, "/dashboard/direct", nil), "id", "direct")
	testutil.ServeIgnoringPanics(http.HandlerFunc(h.ServeRun), req)
	if api.gotID != "direct" {
		t.Errorf("id = %q, want direct", api.gotID)
	}
}
