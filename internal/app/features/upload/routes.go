// internal/app/features/upload/routes.go
package upload

import "github.com/go-chi/chi/v5"

// Routes mounts under "/upload".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeForm)
	r.Post("/", h.HandleUpload)
	return r
}
