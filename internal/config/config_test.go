package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MC_API_KEY_ID", "key-id")
	t.Setenv("MC_API_KEY_SECRET", "key-secret")
	t.Setenv("DATAHUB_GMS_URL", "http://datahub-gms:8080")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.MonteCarlo.BatchSize)
	assert.Equal(t, 3, cfg.MonteCarlo.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.MonteCarlo.PageTimeout)
	assert.Equal(t, "https://api.getmontecarlo.com/graphql", cfg.MonteCarlo.APIURL)
	assert.Equal(t, "https://getmontecarlo.com/monitors", cfg.MonteCarlo.MonitorsBaseURL)
	assert.Equal(t, "PROD", cfg.Catalog.Env)
	assert.Equal(t, []string{SinkCatalog}, cfg.Catalog.Sinks)
	assert.Equal(t, time.Duration(0), cfg.Sync.Interval)
	assert.True(t, cfg.Sync.EmitAssertion)
	assert.Equal(t, int64(10000), cfg.Sync.AssertionThreshold)
	assert.Equal(t, "Finance.public.securities", cfg.Sync.AssertionDataset)
	assert.Equal(t, 1, cfg.Sync.IncidentPriority)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MC_BATCH_SIZE", "100")
	t.Setenv("MC_PAGE_TIMEOUT", "5s")
	t.Setenv("SINKS", "Catalog, postgres ,nats")
	t.Setenv("SYNC_INTERVAL", "1h")
	t.Setenv("EMIT_INCIDENT", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.MonteCarlo.BatchSize)
	assert.Equal(t, 5*time.Second, cfg.MonteCarlo.PageTimeout)
	assert.Equal(t, []string{SinkCatalog, SinkPostgres, SinkNATS}, cfg.Catalog.Sinks)
	assert.Equal(t, time.Hour, cfg.Sync.Interval)
	assert.False(t, cfg.Sync.EmitIncident)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.HasSink(SinkNATS))
}

func TestLoad_MissingAPIKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MC_API_KEY_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MC_API_KEY_SECRET")
}

func TestLoad_GMSURLOnlyRequiredForCatalogSink(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATAHUB_GMS_URL", "")
	t.Setenv("SINKS", "postgres")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.HasSink(SinkCatalog))
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{name: "batch-size-not-int", key: "MC_BATCH_SIZE", val: "many", want: "MC_BATCH_SIZE"},
		{name: "batch-size-zero", key: "MC_BATCH_SIZE", val: "0", want: "MC_BATCH_SIZE"},
		{name: "page-timeout-too-short", key: "MC_PAGE_TIMEOUT", val: "10ms", want: "MC_PAGE_TIMEOUT"},
		{name: "bad-duration", key: "SYNC_INTERVAL", val: "soon", want: "SYNC_INTERVAL"},
		{name: "unknown-sink", key: "SINKS", val: "kafka", want: "unsupported sink"},
		{name: "bad-bool", key: "EMIT_ASSERTION", val: "maybe", want: "EMIT_ASSERTION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
