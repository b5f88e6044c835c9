package upload_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/sofischeduler/internal/app/features/upload"
	"github.com/dalemusser/sofischeduler/internal/app/system/flash"
	"github.com/dalemusser/sofischeduler/internal/app/system/ratelimit"
	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleapi"
	"github.com/dalemusser/sofischeduler/internal/domain/models"
	"github.com/dalemusser/sofischeduler/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubUploader struct {
	calls int
	got   map[string]string
	run   models.ScheduleRun
	err   error
}

func (s *stubUploader) UploadFiles(ctx context.Context, faculty, schedule scheduleapi.File) (models.ScheduleRun, error) {
	s.calls++
	s.got = map[string]string{}
	for _, f := range []scheduleapi.File{faculty, schedule} {
		b, _ := io.ReadAll(f.Body)
		s.got[f.Name] = string(b)
	}
	return s.run, s.err
}

type stubHistory struct {
	created []models.UploadRecord
	recent  []models.UploadRecord
}

func (s *stubHistory) CreateFrom(ctx context.Context, r *http.Request, rec models.UploadRecord) (models.UploadRecord, error) {
	s.created = append(s.created, rec)
	return rec, nil
}

func (s *stubHistory) ListRecent(ctx context.Context, limit int) ([]models.UploadRecord, error) {
	return s.recent, nil
}

type stubInvalidator struct{ n int }

func (s *stubInvalidator) Invalidate() { s.n++ }

func multipartRequest(t *testing.T, files map[string][2]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, f := range files {
		fw, err := mw.CreateFormFile(field, f[0])
		require.NoError(t, err)
		_, err = io.WriteString(fw, f[1])
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func bothFiles() map[string][2]string {
	return map[string][2]string{
		"dosen_file":  {"dosen.xlsx", "dosen-bytes"},
		"jadwal_file": {"jadwal.xlsx", "jadwal-bytes"},
	}
}

func newFlash(t *testing.T) *flash.Manager {
	t.Helper()
	fm, err := flash.NewManager("test-session-key-must-be-32-chars-long", "test", "", false, zap.NewNop())
	require.NoError(t, err)
	return fm
}

func TestHandleUpload_Success(t *testing.T) {
	api := &stubUploader{run: models.ScheduleRun{ID: "r9", Schedule: models.ScheduleData{TotalSchedule: 12}}}
	hist := &stubHistory{}
	inv := &stubInvalidator{}
	h := upload.NewHandler(api, hist, inv, newFlash(t), 0, zap.NewNop())

	rec := testutil.ServeIgnoringPanics(upload.Routes(h), multipartRequest(t, bothFiles()))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	assert.NotEmpty(t, rec.Result().Cookies(), "flash cookie expected")
	assert.Equal(t, 1, inv.n)

	assert.Equal(t, map[string]string{"dosen.xlsx": "dosen-bytes", "jadwal.xlsx": "jadwal-bytes"}, api.got)

	require.Len(t, hist.created, 1)
	r := hist.created[0]
	assert.True(t, r.Success)
	assert.Equal(t, "r9", r.RunID)
	assert.Equal(t, 12, r.TotalSchedule)
	assert.Equal(t, "dosen.xlsx", r.DosenFile)
	assert.Equal(t, int64(len("jadwal-bytes")), r.JadwalSize)
}

func TestHandleUpload_MissingFile(t *testing.T) {
	api := &stubUploader{}
	hist := &stubHistory{}
	h := upload.NewHandler(api, hist, &stubInvalidator{}, nil, 0, zap.NewNop())

	files := bothFiles()
	delete(files, "jadwal_file")
	rec := testutil.ServeIgnoringPanics(upload.Routes(h), multipartRequest(t, files))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, api.calls)
	assert.Empty(t, hist.created)
}

func TestHandleUpload_NotMultipart(t *testing.T) {
	api := &stubUploader{}
	h := upload.NewHandler(api, nil, nil, nil, 0, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := testutil.ServeIgnoringPanics(upload.Routes(h), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, api.calls)
}

func TestHandleUpload_TooLarge(t *testing.T) {
	api := &stubUploader{}
	h := upload.NewHandler(api, nil, nil, nil, 64, zap.NewNop())

	files := bothFiles()
	files["dosen_file"] = [2]string{"big.xlsx", strings.Repeat("x", 4096)}
	rec := testutil.ServeIgnoringPanics(upload.Routes(h), multipartRequest(t, files))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, api.calls)
}

func TestHandleUpload_BackendError(t *testing.T) {
	api := &stubUploader{err: &scheduleapi.Error{Op: scheduleapi.OpUpload, Kind: scheduleapi.KindApplication, Status: 400, Body: "kolom tidak lengkap"}}
	hist := &stubHistory{}
	inv := &stubInvalidator{}
	h := upload.NewHandler(api, hist, inv, nil, 0, zap.NewNop())

	rec := testutil.ServeIgnoringPanics(upload.Routes(h), multipartRequest(t, bothFiles()))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Zero(t, inv.n, "loader must not be invalidated on failure")
	require.Len(t, hist.created, 1)
	assert.False(t, hist.created[0].Success)
	assert.Equal(t, "application", hist.created[0].ErrorKind)
	assert.Equal(t, "failed to upload files: kolom tidak lengkap", hist.created[0].Error)
}

func TestHandleUpload_NetworkErrorRecorded(t *testing.T) {
	api := &stubUploader{err: &scheduleapi.Error{Op: scheduleapi.OpUpload, Kind: scheduleapi.KindNetwork, Err: errors.New("dial tcp: refused")}}
	hist := &stubHistory{}
	h := upload.NewHandler(api, hist, nil, nil, 0, zap.NewNop())

	testutil.ServeIgnoringPanics(upload.Routes(h), multipartRequest(t, bothFiles()))

	require.Len(t, hist.created, 1)
	assert.Equal(t, "network", hist.created[0].ErrorKind)
	assert.Contains(t, hist.created[0].Error, "unable to reach the server")
}

func TestServeForm(t *testing.T) {
	h := upload.NewHandler(&stubUploader{}, &stubHistory{}, nil, nil, 0, zap.NewNop())
	rec := testutil.ServeIgnoringPanics(upload.Routes(h), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleUpload_RateLimited(t *testing.T) {
	api := &stubUploader{}
	hist := &stubHistory{}
	h := upload.NewHandler(api, hist, &stubInvalidator{}, nil, 0, zap.NewNop())
	h.Limiter = ratelimit.New(1, time.Hour)
	t.Cleanup(h.Limiter.Stop)

	first := testutil.ServeIgnoringPanics(upload.Routes(h), multipartRequest(t, bothFiles()))
	assert.Equal(t, http.StatusSeeOther, first.Code)

	second := testutil.ServeIgnoringPanics(upload.Routes(h), multipartRequest(t, bothFiles()))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Equal(t, 1, api.calls, "limited request must not reach the backend")
	assert.Len(t, hist.created, 1)
}
