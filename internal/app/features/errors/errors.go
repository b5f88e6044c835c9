// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/sofischeduler/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// pageData is the view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Status  int
	Heading string
	Message string
}

// ErrorLogger logs a failure and shows the user a friendly page for it.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

// LogServerError logs msg and err and renders a 500 page showing userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.Log.Error(msg, zap.Error(err), zap.String("path", r.URL.Path))
	Render(w, r, http.StatusInternalServerError, "Something went wrong", userMsg, backURL)
}

// LogBadRequest logs msg at warn level and renders a 400 page showing userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.Log.Warn(msg, zap.Error(err), zap.String("path", r.URL.Path))
	Render(w, r, http.StatusBadRequest, "Bad request", userMsg, backURL)
}

// LogBackendError logs a failed call to the scheduling backend and renders a
// 502 page carrying the error text.
func (e *ErrorLogger) LogBackendError(w http.ResponseWriter, r *http.Request, msg string, err error, backURL string) {
	e.Log.Error(msg, zap.Error(err), zap.String("path", r.URL.Path))
	Render(w, r, http.StatusBadGateway, "Backend unavailable", err.Error(), backURL)
}

// NotFound is the router's 404 handler.
func NotFound(w http.ResponseWriter, r *http.Request) {
	Render(w, r, http.StatusNotFound, "Page not found", "The page you asked for does not exist.", "/")
}

// Render writes status and the error page. An empty backURL resolves from
// the request with "/" as fallback.
func Render(w http.ResponseWriter, r *http.Request, status int, heading, msg, backURL string) {
	base := viewdata.NewBaseVM(w, r, heading, "/")
	if backURL != "" {
		base.BackURL = backURL
	}
	data := pageData{
		BaseVM:  base,
		Status:  status,
		Heading: heading,
		Message: msg,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", data)
}
