package bootstrap

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/sofischeduler/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validConfig() AppConfig {
	return AppConfig{
		APIURL:          "https://example.ngrok-free.app",
		DisplayTimezone: "Asia/Jakarta",
		UploadMaxBytes:  10 << 20,
		SiteName:        "Sofi Scheduler",
		MongoDatabase:   "sofi_scheduler",
	}
}

func TestValidateConfig_Accepts(t *testing.T) {
	if err := ValidateConfig(nil, validConfig(), testLogger()); err != nil {
		t.Fatalf("ValidateConfig: %v", err)
	}
}

func TestValidateConfig_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		want   string
	}{
		{"empty api url", func(c *AppConfig) { c.APIURL = "" }, "api_url"},
		{"relative api url", func(c *AppConfig) { c.APIURL = "/api" }, "api_url"},
		{"ftp api url", func(c *AppConfig) { c.APIURL = "ftp://host" }, "api_url"},
		{"unknown timezone", func(c *AppConfig) { c.DisplayTimezone = "Mars/Olympus" }, "display_timezone"},
		{"negative ttl", func(c *AppConfig) { c.ScheduleCacheTTL = -time.Second }, "schedule_cache_ttl"},
		{"negative rate limit", func(c *AppConfig) { c.UploadRateLimit = -1 }, "upload_rate_limit"},
		{"rate limit without window", func(c *AppConfig) {
			c.UploadRateLimit = 5
			c.UploadRateWindow = 0
		}, "upload_rate_window"},
		{"zero upload limit", func(c *AppConfig) { c.UploadMaxBytes = 0 }, "upload_max_bytes"},
		{"negative retention", func(c *AppConfig) {
			c.MongoURI = "mongodb://localhost:27017"
			c.HistoryRetention = -time.Hour
		}, "history_retention"},
		{"retention without interval", func(c *AppConfig) {
			c.MongoURI = "mongodb://localhost:27017"
			c.HistoryRetention = time.Hour
			c.HistoryPruneInterval = 0
		}, "history_prune_interval"},
		{"mongo without database", func(c *AppConfig) {
			c.MongoURI = "mongodb://localhost:27017"
			c.MongoDatabase = ""
		}, "mongo_database"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(nil, cfg, testLogger())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestConnectDB_BuildsUploadLimiter(t *testing.T) {
	cfg := validConfig()
	cfg.UploadRateLimit = 2
	cfg.UploadRateWindow = time.Minute
	deps, err := ConnectDB(context.Background(), nil, cfg, testLogger())
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	if deps.UploadLimiter == nil {
		t.Fatal("expected upload limiter")
	}
	if err := Shutdown(context.Background(), nil, cfg, deps, testLogger()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
	// Stop is idempotent.
	deps.UploadLimiter.Stop()
}

func TestConnectDB_WithoutMongo(t *testing.T) {
	deps, err := ConnectDB(context.Background(), nil, validConfig(), testLogger())
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	if deps.MongoClient != nil || deps.MongoDatabase != nil || deps.Uploads != nil {
		t.Error("expected history dependencies to be nil")
	}
	if deps.API == nil || deps.Loader == nil || deps.Metrics == nil || deps.Registry == nil {
		t.Fatal("expected backend dependencies to be built")
	}
	if got := deps.API.BaseURL(); got != "https://example.ngrok-free.app" {
		t.Errorf("BaseURL = %q", got)
	}
	if deps.UploadLimiter != nil {
		t.Error("expected no upload limiter when upload_rate_limit is 0")
	}

	// Schema setup and shutdown are no-ops without a database.
	if err := EnsureSchema(context.Background(), nil, validConfig(), deps, testLogger()); err != nil {
		t.Errorf("EnsureSchema: %v", err)
	}
	if err := Shutdown(context.Background(), nil, validConfig(), deps, testLogger()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestEnsureSchema_CreatesUploadIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	if err := EnsureSchema(ctx, nil, validConfig(), deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	// Running twice is a no-op.
	if err := EnsureSchema(ctx, nil, validConfig(), deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema second run failed: %v", err)
	}

	cur, err := db.Collection("uploads").Indexes().List(ctx)
	if err != nil {
		t.Fatalf("list indexes: %v", err)
	}
	var idx []bson.M
	if err := cur.All(ctx, &idx); err != nil {
		t.Fatalf("decode indexes: %v", err)
	}
	names := map[string]bool{}
	for _, ix := range idx {
		if n, ok := ix["name"].(string); ok {
			names[n] = true
		}
	}
	for _, want := range []string{"idx_uploads_created", "idx_uploads_success_created"} {
		if !names[want] {
			t.Errorf("missing index %q (have %v)", want, names)
		}
	}
}

func TestCSRFKey(t *testing.T) {
	a := csrfKey("a-session-key")
	if len(a) != 32 {
		t.Fatalf("key length = %d, want 32", len(a))
	}
	if string(a) != string(csrfKey("a-session-key")) {
		t.Error("expected derived key to be stable")
	}
	if string(a) == string(csrfKey("another-key")) {
		t.Error("expected different session keys to derive different keys")
	}
	if got := csrfKey(""); len(got) != 32 {
		t.Errorf("random key length = %d, want 32", len(got))
	}
}

func TestHistoryEnabled(t *testing.T) {
	cfg := validConfig()
	if cfg.HistoryEnabled() {
		t.Error("expected history disabled without mongo_uri")
	}
	cfg.MongoURI = "mongodb://localhost:27017"
	if !cfg.HistoryEnabled() {
		t.Error("expected history enabled with mongo_uri")
	}
}
