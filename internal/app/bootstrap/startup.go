// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/sofischeduler/internal/app/resources"
	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleview"
	"github.com/dalemusser/sofischeduler/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	loc, err := time.LoadLocation(appCfg.DisplayTimezone)
	if err != nil {
		return fmt.Errorf("load display timezone: %w", err)
	}
	scheduleview.SetDefault(scheduleview.NewFormatter(loc))

	t := timeouts.Current()
	logger.Info("timeouts configured",
		zap.Duration("ping", t.Ping),
		zap.Duration("short", t.Short),
		zap.Duration("fetch", t.Fetch),
		zap.Duration("upload", t.Upload))

	resources.LoadSharedTemplates()

	if deps.HistoryPrune != nil {
		deps.HistoryPrune.Start()
	}

	logger.Info("sofi scheduler ready",
		zap.String("api_url", deps.API.BaseURL()),
		zap.String("display_timezone", loc.String()),
		zap.Duration("schedule_cache_ttl", appCfg.ScheduleCacheTTL),
		zap.Bool("upload_history", deps.Uploads != nil))
	return nil
}
