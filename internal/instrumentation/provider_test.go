package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		ServiceName: "smartlabel-test",
		Enabled:     false,
	})
	require.NoError(t, err)

	assert.False(t, provider.Enabled())
	require.NotNil(t, provider.Metrics())

	// The no-op recorder must be safe to use.
	provider.Metrics().RecordMailboxOperation(context.Background(), "list", StatusSuccess, time.Millisecond)
	provider.Metrics().RecordMessageProcessed(context.Background(), "Orders")
	provider.Metrics().RecordMessageError(context.Background())

	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_StdoutExporter(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, Config{
		ServiceName:     "smartlabel-test",
		ServiceVersion:  "test",
		Enabled:         true,
		MetricsExporter: ExporterStdout,
		Interval:        time.Hour,
	})
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(ctx) }()

	assert.True(t, provider.Enabled())
	require.NotNil(t, provider.Metrics())

	provider.Metrics().RecordMailboxOperation(ctx, "list", StatusSuccess, 10*time.Millisecond)
	provider.Metrics().RecordGenerationRequest(ctx, "classify", StatusSuccess, 100*time.Millisecond)
	provider.Metrics().RecordMessageLabeled(ctx, "Orders")
	provider.Metrics().RecordMessageArchived(ctx)
}

func TestNewProvider_NoneExporter(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		ServiceName:     "smartlabel-test",
		Enabled:         true,
		MetricsExporter: ExporterNone,
	})
	require.NoError(t, err)
	assert.False(t, provider.Enabled())
}

func TestNewProvider_InvalidExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		ServiceName:     "smartlabel-test",
		Enabled:         true,
		MetricsExporter: "prometheus",
	})
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		exporter string
		valid    bool
	}{
		{ExporterStdout, true},
		{ExporterNone, true},
		{"", true},
		{"otlp", false},
	}

	for _, tc := range tests {
		cfg := Config{MetricsExporter: tc.exporter}
		err := cfg.Validate()
		if tc.valid {
			assert.NoError(t, err, tc.exporter)
		} else {
			assert.Error(t, err, tc.exporter)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("SMARTLABEL_METRICS", "")
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("METRICS_EXPORTER", "")

	cfg := DefaultConfig()
	assert.Equal(t, "smartlabel", cfg.ServiceName)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, ExporterStdout, cfg.MetricsExporter)
	assert.Equal(t, DefaultMetricInterval, cfg.Interval)
}

func TestDefaultConfig_EnabledFromEnv(t *testing.T) {
	t.Setenv("SMARTLABEL_METRICS", "true")
	assert.True(t, DefaultConfig().Enabled)
}
