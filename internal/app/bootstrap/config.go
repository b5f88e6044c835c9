// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/sofischeduler/internal/app/features/upload"
	"github.com/dalemusser/sofischeduler/internal/app/system/flash"
	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleapi"
	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleview"
	"github.com/dalemusser/sofischeduler/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the dashboard.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: api_url, display_timezone, etc.
//   - Environment variables: SOFI_API_URL, SOFI_DISPLAY_TIMEZONE, etc.
//   - Command-line flags: --api_url, --display_timezone, etc.
var appConfigKeys = []config.AppKey{
	{Name: "api_url", Default: scheduleapi.DefaultBaseURL, Desc: "Base URL of the scheduling backend"},
	{Name: "display_timezone", Default: scheduleview.DefaultTimezone, Desc: "IANA time zone used to display dates"},
	{Name: "schedule_cache_ttl", Default: "0s", Desc: "Reuse a fetched schedule list for this long (0s disables caching)"},
	{Name: "upload_max_bytes", Default: int(upload.DefaultMaxBytes), Desc: "Maximum request body size for uploads, in bytes"},
	{Name: "upload_rate_limit", Default: 5, Desc: "Uploads allowed per client IP per upload_rate_window (0 disables)"},
	{Name: "upload_rate_window", Default: "10m", Desc: "Window for upload_rate_limit"},
	{Name: "site_name", Default: models.DefaultSiteName, Desc: "Site name shown in page headers"},

	// Upload history
	{Name: "mongo_uri", Default: "", Desc: "MongoDB connection URI for upload history (blank disables history)"},
	{Name: "mongo_database", Default: "sofi_scheduler", Desc: "MongoDB database name"},
	{Name: "history_retention", Default: "0s", Desc: "Delete upload records older than this (0s keeps them forever)"},
	{Name: "history_prune_interval", Default: "1h", Desc: "How often old upload records are deleted"},

	// Session cookie (flash messages, CSRF)
	{Name: "session_key", Default: "", Desc: "Cookie signing key (blank generates one per process)"},
	{Name: "session_name", Default: flash.DefaultSessionName, Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// SOFI_* environment variables and flags with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SOFI", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		APIURL:           strings.TrimSpace(appValues.String("api_url")),
		ScheduleCacheTTL: appValues.Duration("schedule_cache_ttl", 0),
		UploadMaxBytes:   int64(appValues.Int("upload_max_bytes")),
		UploadRateLimit:  appValues.Int("upload_rate_limit"),
		UploadRateWindow: appValues.Duration("upload_rate_window", 10*time.Minute),

		SiteName:        appValues.String("site_name"),
		DisplayTimezone: appValues.String("display_timezone"),

		MongoURI:      strings.TrimSpace(appValues.String("mongo_uri")),
		MongoDatabase: appValues.String("mongo_database"),

		HistoryRetention:     appValues.Duration("history_retention", 0),
		HistoryPruneInterval: appValues.Duration("history_prune_interval", time.Hour),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The backend URL, display time zone and (when set) the MongoDB URI are
// checked here so that a typo aborts startup instead of failing per request.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := validateAPIURL(appCfg.APIURL); err != nil {
		logger.Error("invalid api_url", zap.String("api_url", appCfg.APIURL), zap.Error(err))
		return fmt.Errorf("invalid api_url: %w", err)
	}

	if _, err := time.LoadLocation(appCfg.DisplayTimezone); err != nil {
		logger.Error("invalid display_timezone", zap.String("display_timezone", appCfg.DisplayTimezone), zap.Error(err))
		return fmt.Errorf("invalid display_timezone: %w", err)
	}

	if appCfg.ScheduleCacheTTL < 0 {
		return fmt.Errorf("schedule_cache_ttl must not be negative (got %s)", appCfg.ScheduleCacheTTL)
	}
	if appCfg.UploadMaxBytes <= 0 {
		return fmt.Errorf("upload_max_bytes must be positive (got %d)", appCfg.UploadMaxBytes)
	}

	if appCfg.UploadRateLimit < 0 {
		return fmt.Errorf("upload_rate_limit must not be negative (got %d)", appCfg.UploadRateLimit)
	}
	if appCfg.UploadRateLimit > 0 && appCfg.UploadRateWindow <= 0 {
		return fmt.Errorf("upload_rate_window must be positive when upload_rate_limit is set")
	}

	if appCfg.HistoryEnabled() {
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if appCfg.MongoDatabase == "" {
			return fmt.Errorf("mongo_database is required when mongo_uri is set")
		}
		if appCfg.HistoryRetention < 0 {
			return fmt.Errorf("history_retention must not be negative (got %s)", appCfg.HistoryRetention)
		}
		if appCfg.HistoryRetention > 0 && appCfg.HistoryPruneInterval <= 0 {
			return fmt.Errorf("history_prune_interval must be positive when history_retention is set")
		}
	}

	return nil
}

func validateAPIURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
