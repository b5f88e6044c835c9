// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, body limits); AppConfig holds
// what is specific to the schedule dashboard.
type AppConfig struct {
	// Scheduling backend
	APIURL           string        // Base URL of the scheduling backend
	ScheduleCacheTTL time.Duration // How long a fetched schedule list is reused (0 disables)
	UploadMaxBytes   int64         // Request body limit for POST /upload
	UploadRateLimit  int           // Uploads allowed per client IP per window (0 disables)
	UploadRateWindow time.Duration // Window for UploadRateLimit

	// Presentation
	SiteName        string // Shown in the page header and titles
	DisplayTimezone string // IANA zone used to format dates (e.g., Asia/Jakarta)

	// Upload history (optional; empty MongoURI runs without it)
	MongoURI      string
	MongoDatabase string

	HistoryRetention     time.Duration // Delete upload records older than this (0 keeps them)
	HistoryPruneInterval time.Duration // How often the retention worker runs

	// Session cookie used for flash messages and CSRF
	SessionKey    string // Secret key for signing cookies (must be strong in production)
	SessionName   string // Cookie name (default: sofi-session)
	SessionDomain string // Cookie domain (blank means current host)
}

// HistoryEnabled reports whether an upload history database is configured.
func (c AppConfig) HistoryEnabled() bool {
	return c.MongoURI != ""
}
