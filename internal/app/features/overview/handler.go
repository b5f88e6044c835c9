// internal/app/features/overview/handler.go
package overview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/sofischeduler/internal/app/system/viewdata"
	"github.com/dalemusser/sofischeduler/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// LatestLoader yields the run the overview summarises.
type LatestLoader interface {
	Latest(ctx context.Context) (models.ScheduleRun, bool, error)
}

type Handler struct {
	Loader LatestLoader
	Log    *zap.Logger
}

func NewHandler(loader LatestLoader, logger *zap.Logger) *Handler {
	return &Handler{
		Loader: loader,
		Log:    logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /overview – summary cards + chart                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeOverview loads the latest run once; the cards and the embedded chart
// are both built from it.
func (h *Handler) ServeOverview(w http.ResponseWriter, r *http.Request) {
	run, ok, err := h.Loader.Latest(r.Context())
	if h.cancelled(r, err) {
		return
	}

	data := overviewData{
		BaseVM:  viewdata.NewBaseVM(w, r, "Overview", "/"),
		Content: buildContent(run, ok, err),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		h.Log.Warn("overview: load schedules failed", zap.Error(err))
		w.WriteHeader(http.StatusBadGateway)
	}
	templates.Render(w, r, "overview", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /overview/chart – chart fragment                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeChart(w http.ResponseWriter, r *http.Request) {
	run, ok, err := h.Loader.Latest(r.Context())
	if h.cancelled(r, err) {
		return
	}

	data := buildChart(run, ok, err)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		h.Log.Warn("overview chart: load schedules failed", zap.Error(err))
		w.WriteHeader(http.StatusBadGateway)
	}
	templates.RenderSnippet(w, "overview_chart", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /overview/chart.json – chart series                                     |
*─────────────────────────────────────────────────────────────────────────────*/

type chartJSON struct {
	Title  string   `json:"title"`
	Label  string   `json:"label"`
	Color  string   `json:"color"`
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
	Error  string   `json:"error,omitempty"`
}

func (h *Handler) ServeChartJSON(w http.ResponseWriter, r *http.Request) {
	run, ok, err := h.Loader.Latest(r.Context())
	if h.cancelled(r, err) {
		return
	}

	c := buildChart(run, ok, err)
	resp := chartJSON{
		Title:  c.Chart.Title,
		Label:  c.Chart.Label,
		Color:  c.Chart.Color,
		Labels: []string{},
		Values: []int{},
		Error:  c.Error,
	}
	for _, b := range c.Chart.Bars {
		resp.Labels = append(resp.Labels, b.Label)
		resp.Values = append(resp.Values, b.Value)
	}

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		h.Log.Warn("overview chart json: load schedules failed", zap.Error(err))
		w.WriteHeader(http.StatusBadGateway)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.Log.Warn("overview chart json: encode failed", zap.Error(err))
	}
}

// cancelled reports whether err only means the client went away.
func (h *Handler) cancelled(r *http.Request, err error) bool {
	if err != nil && errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		h.Log.Debug("overview request cancelled", zap.String("path", r.URL.Path))
		return true
	}
	return false
}
