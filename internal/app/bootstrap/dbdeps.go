// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	uploadstore "github.com/dalemusser/sofischeduler/internal/app/store/uploads"
	"github.com/dalemusser/sofischeduler/internal/app/system/metrics"
	"github.com/dalemusser/sofischeduler/internal/app/system/ratelimit"
	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleapi"
	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleloader"
	"github.com/dalemusser/sofischeduler/internal/app/system/workers"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and back-end dependencies for the app.
// The Mongo fields and Uploads are nil when upload history is disabled.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Uploads       *uploadstore.Store
	HistoryPrune  *workers.HistoryPrune // nil unless history_retention is set

	API      *scheduleapi.Client
	Loader   *scheduleloader.Loader
	Metrics  *metrics.Backend
	Registry *prometheus.Registry

	UploadLimiter *ratelimit.Limiter // nil when upload_rate_limit is 0
}
