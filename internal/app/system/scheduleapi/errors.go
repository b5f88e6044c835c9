// internal/app/system/scheduleapi/errors.go
package scheduleapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Op names the backend operation that failed. OpUpload failures are upload
// errors; OpList and OpGet failures are fetch errors.
type Op string

const (
	OpUpload Op = "upload"
	OpList   Op = "list"
	OpGet    Op = "get"
)

// Kind classifies a failure.
type Kind int

const (
	// KindNetwork: the backend could not be reached, or the connection broke
	// before a full response arrived.
	KindNetwork Kind = iota + 1
	// KindApplication: the backend answered with a non-2xx status.
	KindApplication
	// KindFormat: the backend answered 2xx but the body is not JSON (for
	// example a tunnel's HTML interstitial served with status 200).
	KindFormat
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindApplication:
		return "application"
	case KindFormat:
		return "format"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is.
var (
	ErrNetwork     = errors.New("scheduleapi: network error")
	ErrApplication = errors.New("scheduleapi: application error")
	ErrFormat      = errors.New("scheduleapi: format error")
)

// Error is returned by every Client method for backend failures.
type Error struct {
	Op          Op
	Kind        Kind
	Status      int    // HTTP status, 0 for network errors
	ContentType string // declared content type, set for format errors
	Body        string // server text reduced to one line
	ID          string // schedule id for OpGet
	Err         error  // underlying transport or decode error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNetwork:
		if errors.Is(e.Err, context.DeadlineExceeded) {
			return "network error: the server did not respond in time"
		}
		return "network error: unable to reach the server, please check your connection"
	case KindApplication:
		return e.failurePrefix() + ": " + e.serverText()
	case KindFormat:
		if e.Err != nil {
			return e.failurePrefix() + ": invalid JSON response: " + e.Err.Error()
		}
		if e.ContentType == "" {
			return "server returned non-JSON response"
		}
		return fmt.Sprintf("server returned non-JSON response (content type %q)", e.ContentType)
	default:
		return e.failurePrefix()
	}
}

func (e *Error) failurePrefix() string {
	switch e.Op {
	case OpUpload:
		return "failed to upload files"
	case OpGet:
		return fmt.Sprintf("failed to fetch schedule with ID %s", e.ID)
	default:
		return "failed to fetch schedules"
	}
}

func (e *Error) serverText() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the Kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrApplication:
		return e.Kind == KindApplication
	case ErrFormat:
		return e.Kind == KindFormat
	}
	return false
}

// IsUploadError reports whether err came from UploadFiles.
func IsUploadError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Op == OpUpload
}

// IsFetchError reports whether err came from GetSchedules or GetScheduleByID.
func IsFetchError(err error) bool {
	var e *Error
	return errors.As(err, &e) && (e.Op == OpList || e.Op == OpGet)
}

// KindOf returns the Kind of a backend error, or 0 if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
