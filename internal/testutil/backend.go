package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleapi"
	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleloader"
	"go.uber.org/zap"
)

// OneRunJSON is a schedule list with a single run holding one defense,
// titled "X", and a workload of D1:1, D2:1.
const OneRunJSON = `[{"id":"r1","schedule":{
	"schedule":[{"date":"2025-03-01","field":"AI","thesisTitle":"X","studentId":"S1","room":"R1",
		"panelAssignment":{"pembimbing1Id":"D1","penguji1Id":"D2"}}],
	"analysis":{"workload":{"D1":1,"D2":1}},
	"total_schedule":1,"total_dosen":2,"avg_dosen":0.5,"unique_fields":1}}]`

// Backend is a fake scheduling backend with a client and loader pointed at it.
type Backend struct {
	Server *httptest.Server
	API    *scheduleapi.Client
	Loader *scheduleloader.Loader
}

// NewBackend starts a fake backend that answers every request with status
// and body. JSON content type is set for 2xx responses; anything else is
// sent as plain text.
func NewBackend(t *testing.T, status int, body string) *Backend {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status >= 200 && status < 300 {
			w.Header().Set("Content-Type", "application/json")
		} else {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	api := scheduleapi.New(scheduleapi.Config{BaseURL: srv.URL, Logger: zap.NewNop()})
	return &Backend{
		Server: srv,
		API:    api,
		Loader: scheduleloader.New(api, scheduleloader.Options{}),
	}
}
