// internal/app/features/upload/handler.go
package upload

import (
	"context"
	"net/http"

	"github.com/dalemusser/sofischeduler/internal/app/system/flash"
	"github.com/dalemusser/sofischeduler/internal/app/system/ratelimit"
	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleapi"
	"github.com/dalemusser/sofischeduler/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultMaxBytes bounds the whole multipart request.
const DefaultMaxBytes int64 = 10 << 20

// Uploader sends the two files to the scheduling backend.
type Uploader interface {
	UploadFiles(ctx context.Context, faculty, schedule scheduleapi.File) (models.ScheduleRun, error)
}

// History records upload attempts. Optional.
type History interface {
	CreateFrom(ctx context.Context, r *http.Request, rec models.UploadRecord) (models.UploadRecord, error)
	ListRecent(ctx context.Context, limit int) ([]models.UploadRecord, error)
}

// Invalidator is told when the backend's schedule list has changed.
type Invalidator interface {
	Invalidate()
}

// Handler provides HTTP handlers for the schedule upload form.
type Handler struct {
	API      Uploader
	History  History
	Loader   Invalidator
	Flash    *flash.Manager
	MaxBytes int64
	Limiter  *ratelimit.Limiter // nil means unlimited
	Log      *zap.Logger
}

// NewHandler wires the upload handler. history may be nil when no database
// is configured; maxBytes <= 0 means DefaultMaxBytes.
func NewHandler(api Uploader, history History, loader Invalidator, fm *flash.Manager, maxBytes int64, logger *zap.Logger) *Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Handler{
		API:      api,
		History:  history,
		Loader:   loader,
		Flash:    fm,
		MaxBytes: maxBytes,
		Log:      logger,
	}
}
