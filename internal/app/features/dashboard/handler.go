// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleview"
	"github.com/dalemusser/sofischeduler/internal/app/system/viewdata"
	"github.com/dalemusser/sofischeduler/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LatestLoader yields the run the dashboard shows by default.
type LatestLoader interface {
	Latest(ctx context.Context) (models.ScheduleRun, bool, error)
}

// RunGetter fetches one run by id.
type RunGetter interface {
	GetScheduleByID(ctx context.Context, id string) (models.ScheduleRun, error)
}

type Handler struct {
	Loader LatestLoader
	API    RunGetter
	Format scheduleview.Formatter
	Log    *zap.Logger
}

func NewHandler(loader LatestLoader, api RunGetter, format scheduleview.Formatter, logger *zap.Logger) *Handler {
	return &Handler{
		Loader: loader,
		API:    api,
		Format: format,
		Log:    logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard – latest run                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	mode := parseMode(r.URL.Query().Get("view"))
	run, ok, err := h.Loader.Latest(r.Context())
	h.render(w, r, "/dashboard", mode, run, ok, err)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard/{id} – one run                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	mode := parseMode(r.URL.Query().Get("view"))
	run, err := h.API.GetScheduleByID(r.Context(), id)
	h.render(w, r, "/dashboard/"+id, mode, run, err == nil, err)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, path string, mode viewMode, run models.ScheduleRun, ok bool, err error) {
	if err != nil && errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		h.Log.Debug("dashboard request cancelled", zap.String("path", path))
		return
	}

	data := dashboardData{
		BaseVM:  viewdata.NewBaseVM(w, r, "Dashboard", "/"),
		Content: buildContent(h.Format, mode, path, run, ok, err),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		h.Log.Warn("dashboard: backend call failed", zap.String("path", path), zap.Error(err))
		w.WriteHeader(http.StatusBadGateway)
	}
	templates.Render(w, r, "dashboard", data)
}
