package home

import (
	"net/http"

	"github.com/dalemusser/sofischeduler/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	BackendURL string
	Log        *zap.Logger
}

func NewHandler(backendURL string, logger *zap.Logger) *Handler {
	return &Handler{
		BackendURL: backendURL,
		Log:        logger,
	}
}

type homeData struct {
	viewdata.BaseVM
	BackendURL string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	data := homeData{
		BaseVM:     viewdata.NewBaseVM(w, r, "Welcome", "/"),
		BackendURL: h.BackendURL,
	}

	templates.Render(w, r, "home", data)
}
