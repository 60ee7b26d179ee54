package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neobeach/core/internal/config"
	"github.com/neobeach/core/internal/services"
	"github.com/neobeach/core/internal/shared/testutil"
)

type note struct{}

func (note) TableName() string { return "notes" }
func (note) Schema() string {
	return `CREATE TABLE IF NOT EXISTS notes (id INTEGER PRIMARY KEY, body TEXT NOT NULL)`
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	return cfg
}

func TestNewApplication_WithDatabase(t *testing.T) {
	cfg := testConfig()
	cfg.Database.DSN = ":memory:"
	logger, logs := testutil.NewTestLogger(t)

	a, err := NewApplication(context.Background(), cfg, WithLogger(logger), WithModels(note{}))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	require.NotNil(t, a.DB)
	names, err := a.DB.Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"notes"}, names)
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "application starting")

	rec := httptest.NewRecorder()
	a.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var report services.ReadinessReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Contains(t, report.Checks, "database")
}

func TestNewApplication_MetricsEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.Metrics = true

	a, err := NewApplication(context.Background(), cfg, WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	rec := httptest.NewRecorder()
	a.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, cfg.Telemetry.MetricsPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewApplication_ModelsWithoutDatabase(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)

	a, err := NewApplication(context.Background(), testConfig(), WithLogger(logger), WithModels(note{}))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	assert.Nil(t, a.DB)
	testutil.AssertLogContains(t, logs, slog.LevelWarn, "models registered but no database configured")
}

func TestNewApplication_BadDatabase(t *testing.T) {
	cfg := testConfig()
	cfg.Database.DSN = "file:/nonexistent/dir/app.db?mode=ro"

	_, err := NewApplication(context.Background(), cfg, WithLogger(slog.New(slog.DiscardHandler)))
	assert.Error(t, err)
}

func TestApplication_CloseTwice(t *testing.T) {
	a, err := NewApplication(context.Background(), testConfig(), WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)

	assert.NoError(t, a.Close())
	assert.NoError(t, a.Close())
}
