// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"

	dashboardfeature "github.com/dalemusser/sofischeduler/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/sofischeduler/internal/app/features/errors"
	healthfeature "github.com/dalemusser/sofischeduler/internal/app/features/health"
	homefeature "github.com/dalemusser/sofischeduler/internal/app/features/home"
	overviewfeature "github.com/dalemusser/sofischeduler/internal/app/features/overview"
	uploadfeature "github.com/dalemusser/sofischeduler/internal/app/features/upload"
	"github.com/dalemusser/sofischeduler/internal/app/system/flash"
	"github.com/dalemusser/sofischeduler/internal/app/system/metrics"
	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleview"
	"github.com/dalemusser/sofischeduler/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. It boots the template engine, sets up
// the flash session store and CSRF protection, and mounts the feature
// routers: home, dashboard, overview, upload, health and metrics.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	flashMgr, err := flash.NewManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("flash session store init failed", zap.Error(err))
		return nil, err
	}
	viewdata.Init(appCfg.SiteName, flashMgr)

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	protect := csrf.Protect(csrfKey(appCfg.SessionKey),
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("sofi-csrf"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailure)),
	)

	format := scheduleview.Default()

	r := chi.NewRouter()
	r.NotFound(errorsfeature.NotFound)

	// Health check endpoint for load balancers and orchestrators.
	// A nil client reports the database as disabled.
	var pinger healthfeature.Pinger
	if deps.MongoClient != nil {
		pinger = deps.MongoClient
	}
	healthHandler := healthfeature.NewHandler(pinger, deps.API.BaseURL(), logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", metrics.Handler(deps.Registry))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	homeHandler := homefeature.NewHandler(deps.API.BaseURL(), logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	dashboardHandler := dashboardfeature.NewHandler(deps.Loader, deps.API, format, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))

	overviewHandler := overviewfeature.NewHandler(deps.Loader, logger)
	r.Mount("/overview", overviewfeature.Routes(overviewHandler))

	var history uploadfeature.History
	if deps.Uploads != nil {
		history = deps.Uploads
	}
	uploadHandler := uploadfeature.NewHandler(deps.API, history, deps.Loader, flashMgr, appCfg.UploadMaxBytes, logger)
	uploadHandler.Limiter = deps.UploadLimiter
	r.Group(func(pr chi.Router) {
		if !secure {
			pr.Use(plaintextCSRF)
		}
		pr.Use(protect)
		pr.Mount("/upload", uploadfeature.Routes(uploadHandler))
	})

	logger.Info("routes mounted",
		zap.Bool("secure_cookies", secure),
		zap.Bool("upload_history", history != nil))

	return r, nil
}

// csrfKey derives the 32-byte CSRF key from the session key. A blank
// session key yields a random key for this process.
func csrfKey(sessionKey string) []byte {
	if sessionKey == "" {
		return securecookie.GenerateRandomKey(32)
	}
	sum := sha256.Sum256([]byte("csrf:" + sessionKey))
	return sum[:]
}

// plaintextCSRF marks requests as plain HTTP so the CSRF middleware skips
// its TLS-only Referer check in development.
func plaintextCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func csrfFailure(w http.ResponseWriter, r *http.Request) {
	errorsfeature.Render(w, r, http.StatusForbidden, "Request rejected",
		"Your form session expired. Reload the page and try again.", "/upload")
}
