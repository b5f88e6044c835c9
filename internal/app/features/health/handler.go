package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/sofischeduler/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client     Pinger
	BackendURL string
	Log        *zap.Logger
}

// NewHandler constructs a health Handler. client is nil when the app runs
// without a database.
func NewHandler(client Pinger, backendURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Client:     client,
		BackendURL: backendURL,
		Log:        logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status     string `json:"status"`
	Database   string `json:"database"`
	BackendURL string `json:"backend_url"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "backend_url":"https://…" }
//
// Without a database configured, database is "disabled". On DB failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…"}
//
// The scheduling backend is not probed; a health check must not depend on a
// third-party tunnel.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:     "ok",
		Database:   "disabled",
		BackendURL: h.BackendURL,
	}

	if h.Client != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
		defer cancel()

		resp.Database = "connected"
		if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
			h.Log.Error("health-check: mongo ping failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			resp.Status = "error"
			resp.Database = "disconnected"
			resp.Message = "Database unavailable"
			resp.Error = err.Error()
		}
	}

	_ = json.NewEncoder(w).Encode(resp)
}
