// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	uploadstore "github.com/dalemusser/sofischeduler/internal/app/store/uploads"
	"github.com/dalemusser/sofischeduler/internal/app/system/indexes"
	"github.com/dalemusser/sofischeduler/internal/app/system/metrics"
	"github.com/dalemusser/sofischeduler/internal/app/system/ratelimit"
	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleapi"
	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleloader"
	"github.com/dalemusser/sofischeduler/internal/app/system/timeouts"
	"github.com/dalemusser/sofischeduler/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB builds the back-end dependencies: the scheduling backend client,
// the shared schedule loader, metrics, and (when mongo_uri is set) the
// upload history database.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.NewBackend(reg)
	if err != nil {
		return DBDeps{}, fmt.Errorf("register metrics: %w", err)
	}

	api := scheduleapi.New(scheduleapi.Config{
		BaseURL: appCfg.APIURL,
		Logger:  logger.Named("scheduleapi"),
		Metrics: m,
	})
	loader := scheduleloader.New(api, scheduleloader.Options{
		TTL:     appCfg.ScheduleCacheTTL,
		Logger:  logger.Named("scheduleloader"),
		Metrics: m,
	})

	deps := DBDeps{
		API:           api,
		Loader:        loader,
		Metrics:       m,
		Registry:      reg,
		UploadLimiter: ratelimit.New(appCfg.UploadRateLimit, appCfg.UploadRateWindow),
	}

	if !appCfg.HistoryEnabled() {
		logger.Info("mongo_uri not set; upload history disabled")
		return deps, nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(appCfg.MongoURI))
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(appCfg.MongoDatabase)
	deps.MongoClient = client
	deps.MongoDatabase = db
	deps.Uploads = uploadstore.New(db)
	if appCfg.HistoryRetention > 0 {
		deps.HistoryPrune = workers.NewHistoryPrune(deps.Uploads, logger, appCfg.HistoryPruneInterval, appCfg.HistoryRetention)
	}

	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	return deps, nil
}

// EnsureSchema creates the upload history indexes. It does nothing when
// history is disabled.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return nil
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	return nil
}
