// internal/app/features/overview/routes.go
package overview

import "github.com/go-chi/chi/v5"

// Routes mounts under "/overview".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeOverview)
	r.Get("/chart", h.ServeChart)
	r.Get("/chart.json", h.ServeChartJSON)
	return r
}
