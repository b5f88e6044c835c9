// internal/app/features/upload/upload.go
package upload

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/sofischeduler/internal/app/system/flash"
	"github.com/dalemusser/sofischeduler/internal/app/system/ratelimit"
	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleapi"
	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleview"
	"github.com/dalemusser/sofischeduler/internal/app/system/timeouts"
	"github.com/dalemusser/sofischeduler/internal/app/system/viewdata"
	"github.com/dalemusser/sofischeduler/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ServeForm handles GET /upload.
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, "")
}

// HandleUpload handles POST /upload: it forwards both files to the backend,
// records the attempt and on success redirects to the dashboard.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if ip := ratelimit.ClientIP(r); !h.Limiter.Allow(ip) {
		retry := int(h.Limiter.RetryAfter(ip).Round(time.Second) / time.Second)
		w.Header().Set("Retry-After", strconv.Itoa(max(retry, 1)))
		h.Log.Warn("upload: rate limited", zap.String("ip", ip))
		h.renderForm(w, r, http.StatusTooManyRequests, "Too many uploads. Please wait a few minutes before trying again.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		msg := "Invalid upload. Please choose both files and try again."
		if errors.As(err, &tooLarge) {
			msg = fmt.Sprintf("Files are too large. Maximum total size is %s MB.", megabytes(h.MaxBytes))
		}
		h.Log.Warn("upload: parse form failed", zap.Error(err))
		h.renderForm(w, r, http.StatusBadRequest, msg)
		return
	}
	defer r.MultipartForm.RemoveAll()

	dosen, dosenHdr, err := r.FormFile(dosenField)
	if err != nil {
		h.renderForm(w, r, http.StatusBadRequest, "Both files are required: the dosen file is missing.")
		return
	}
	defer dosen.Close()
	jadwal, jadwalHdr, err := r.FormFile(jadwalField)
	if err != nil {
		h.renderForm(w, r, http.StatusBadRequest, "Both files are required: the jadwal file is missing.")
		return
	}
	defer jadwal.Close()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "schedule upload")
	defer cancel()

	run, upErr := h.API.UploadFiles(ctx,
		scheduleapi.File{Name: dosenHdr.Filename, Body: dosen},
		scheduleapi.File{Name: jadwalHdr.Filename, Body: jadwal},
	)
	h.record(r, dosenHdr, jadwalHdr, run, upErr)

	if upErr != nil {
		h.Log.Warn("upload: backend rejected files",
			zap.String("dosen_file", dosenHdr.Filename),
			zap.String("jadwal_file", jadwalHdr.Filename),
			zap.Error(upErr))
		h.renderForm(w, r, http.StatusBadGateway, upErr.Error())
		return
	}

	if h.Loader != nil {
		h.Loader.Invalidate()
	}
	msg := fmt.Sprintf("Schedule generated: %d defenses scheduled.", run.Schedule.TotalSchedule)
	if err := h.Flash.Add(w, r, flash.KindSuccess, msg); err != nil {
		h.Log.Warn("upload: flash failed", zap.Error(err))
	}
	h.Log.Info("upload: schedule generated",
		zap.String("run_id", run.ID),
		zap.Int("total_schedule", run.Schedule.TotalSchedule))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// record stores the attempt. It runs even when the upload context has
// expired, with its own short deadline.
func (h *Handler) record(r *http.Request, dosen, jadwal *multipart.FileHeader, run models.ScheduleRun, upErr error) {
	if h.History == nil {
		return
	}
	rec := models.UploadRecord{
		DosenFile:  dosen.Filename,
		DosenSize:  dosen.Size,
		JadwalFile: jadwal.Filename,
		JadwalSize: jadwal.Size,
		Success:    upErr == nil,
	}
	if upErr != nil {
		rec.ErrorKind = scheduleapi.KindOf(upErr).String()
		rec.Error = upErr.Error()
	} else {
		rec.RunID = run.ID
		rec.TotalSchedule = run.Schedule.TotalSchedule
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeouts.Short())
	defer cancel()
	if _, err := h.History.CreateFrom(ctx, r, rec); err != nil {
		h.Log.Warn("upload: record history failed", zap.Error(err))
	}
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	data := UploadData{
		BaseVM:         viewdata.NewBaseVM(w, r, "Upload", "/"),
		DosenField:     dosenField,
		JadwalField:    jadwalField,
		MaxMB:          megabytes(h.MaxBytes),
		Error:          errMsg,
		HistoryEnabled: h.History != nil,
	}
	if h.History != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		recs, err := h.History.ListRecent(ctx, recentLimit)
		cancel()
		if err != nil {
			h.Log.Warn("upload: list history failed", zap.Error(err))
		} else {
			data.Recent = recentRows(recs, displayLocation())
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "upload", data)
}

func displayLocation() *time.Location {
	return scheduleview.Default().Location()
}
