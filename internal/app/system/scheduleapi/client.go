// Package scheduleapi is the HTTP client for the schedule-generation backend.
//
// The backend exposes three calls:
//
//	POST {base}/api/v1/schedule          multipart dosen_file + jadwal_file
//	GET  {base}/api/v1/schedules         list of generation runs
//	GET  {base}/api/v1/schedules/{id}    one generation run
//
// Failures come back as *Error, classified as network, application (non-2xx)
// or format (2xx that is not JSON).
package scheduleapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/sofischeduler/internal/app/system/htmlsanitize"
	"github.com/dalemusser/sofischeduler/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "https://c323-180-244-133-234.ngrok-free.app"

const (
	// The tunnel in front of the backend serves an interstitial page to
	// browser-like clients unless this header is present.
	skipWarningHeader = "ngrok-skip-browser-warning"
	skipWarningValue  = "69420"

	maxBodyBytes    = 32 << 20
	maxServerText   = 300
	dosenFileField  = "dosen_file"
	jadwalFileField = "jadwal_file"
)

// Recorder receives one observation per backend call.
type Recorder interface {
	ObserveRequest(op, outcome string, d time.Duration)
}

// Config configures a Client.
type Config struct {
	BaseURL    string       // blank means DefaultBaseURL
	HTTPClient *http.Client // nil means a client without a global timeout; callers bound calls with ctx
	Logger     *zap.Logger  // nil means zap.NewNop()
	Metrics    Recorder     // optional
}

// Client talks to the scheduling backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
	metrics Recorder
}

// File is one part of an upload.
type File struct {
	Name string
	Body io.Reader
}

// New builds a Client from cfg.
func New(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{baseURL: base, http: hc, log: log, metrics: cfg.Metrics}
}

// BaseURL returns the backend base URL the client sends requests to.
func (c *Client) BaseURL() string { return c.baseURL }

/*─────────────────────────────────────────────────────────────────────────────*
| Operations                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// UploadFiles sends the faculty list and the schedule list to the backend,
// which generates a new schedule run and returns it.
func (c *Client) UploadFiles(ctx context.Context, faculty, schedule File) (run models.ScheduleRun, err error) {
	defer c.track(OpUpload, "", time.Now(), &err)

	if faculty.Body == nil {
		return run, fmt.Errorf("scheduleapi: %s is required", dosenFileField)
	}
	if schedule.Body == nil {
		return run, fmt.Errorf("scheduleapi: %s is required", jadwalFileField)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	parts := []struct {
		field string
		file  File
	}{
		{dosenFileField, faculty},
		{jadwalFileField, schedule},
	}
	for _, p := range parts {
		name := p.file.Name
		if name == "" {
			name = p.field
		}
		fw, err := mw.CreateFormFile(p.field, name)
		if err != nil {
			return run, fmt.Errorf("scheduleapi: create %s part: %w", p.field, err)
		}
		if _, err := io.Copy(fw, p.file.Body); err != nil {
			return run, fmt.Errorf("scheduleapi: read %s: %w", p.field, err)
		}
	}
	if err := mw.Close(); err != nil {
		return run, fmt.Errorf("scheduleapi: close multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/schedule", &buf)
	if err != nil {
		return run, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, body, err := c.send(req, OpUpload, "")
	if err != nil {
		return run, err
	}
	if !success(resp.StatusCode) {
		return run, applicationError(OpUpload, "", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &run); err != nil {
		return run, &Error{Op: OpUpload, Kind: KindFormat, Status: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), Err: err}
	}
	return run, nil
}

// GetSchedules lists every generation run the backend knows about, oldest
// first. The body is read in full before anything else so that a non-2xx
// status can report the server text, and the declared content type is
// checked before decoding so an HTML page served with 200 is not parsed.
func (c *Client) GetSchedules(ctx context.Context) (runs []models.ScheduleRun, err error) {
	defer c.track(OpList, "", time.Now(), &err)

	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/schedules", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(skipWarningHeader, skipWarningValue)

	resp, body, err := c.send(req, OpList, "")
	if err != nil {
		return nil, err
	}
	if !success(resp.StatusCode) {
		return nil, applicationError(OpList, "", resp.StatusCode, body)
	}

	ct := resp.Header.Get("Content-Type")
	if !isJSON(ct) {
		return nil, &Error{
			Op:          OpList,
			Kind:        KindFormat,
			Status:      resp.StatusCode,
			ContentType: ct,
			Body:        htmlsanitize.SingleLine(string(body), maxServerText),
		}
	}

	if err := json.Unmarshal(body, &runs); err != nil {
		return nil, &Error{Op: OpList, Kind: KindFormat, Status: resp.StatusCode, ContentType: ct, Err: err}
	}
	return runs, nil
}

// GetScheduleByID fetches one generation run.
func (c *Client) GetScheduleByID(ctx context.Context, id string) (run models.ScheduleRun, err error) {
	defer c.track(OpGet, id, time.Now(), &err)

	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/schedules/"+url.PathEscape(id), nil)
	if err != nil {
		return run, err
	}
	req.Header.Set(skipWarningHeader, skipWarningValue)

	resp, body, err := c.send(req, OpGet, id)
	if err != nil {
		return run, err
	}
	if !success(resp.StatusCode) {
		return run, applicationError(OpGet, id, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &run); err != nil {
		return run, &Error{Op: OpGet, Kind: KindFormat, Status: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), ID: id, Err: err}
	}
	return run, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Plumbing                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("scheduleapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// send performs the request and reads the whole body. Any failure before the
// body is fully read is a network error.
func (c *Client) send(req *http.Request, op Op, id string) (*http.Response, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, &Error{Op: op, Kind: KindNetwork, ID: id, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, &Error{Op: op, Kind: KindNetwork, Status: resp.StatusCode, ID: id, Err: err}
	}
	return resp, body, nil
}

func (c *Client) track(op Op, id string, start time.Time, errp *error) {
	elapsed := time.Since(start)
	outcome := "ok"
	var apiErr *Error
	switch {
	case *errp == nil:
	case errors.As(*errp, &apiErr):
		outcome = apiErr.Kind.String()
	default:
		outcome = "invalid_request"
	}
	if c.metrics != nil {
		c.metrics.ObserveRequest(string(op), outcome, elapsed)
	}

	fields := []zap.Field{
		zap.String("op", string(op)),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", elapsed),
	}
	if id != "" {
		fields = append(fields, zap.String("schedule_id", id))
	}
	if *errp != nil {
		c.log.Error("backend call failed", append(fields, zap.Error(*errp))...)
		return
	}
	c.log.Debug("backend call", fields...)
}

func applicationError(op Op, id string, status int, body []byte) *Error {
	return &Error{
		Op:     op,
		Kind:   KindApplication,
		Status: status,
		ID:     id,
		Body:   htmlsanitize.SingleLine(string(body), maxServerText),
	}
}

func success(status int) bool { return status >= 200 && status < 300 }

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}
