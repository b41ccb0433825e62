package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		config          *Config
		expectNoOpMeter bool
		expectHandler   bool
		errorContains   string
	}{
		{
			name:            "nil config yields no-op telemetry",
			expectNoOpMeter: true,
		},
		{
			name:            "disabled config yields no-op telemetry",
			config:          &Config{Enabled: false},
			expectNoOpMeter: true,
		},
		{
			name: "invalid config is rejected",
			config: &Config{
				Enabled: true,
				Tracing: &TracingConfig{Enabled: true, Sampling: -1},
			},
			errorContains: "invalid telemetry configuration",
		},
		{
			name: "prometheus metrics expose a scrape handler",
			config: &Config{
				Enabled: true,
				Metrics: &MetricsConfig{Enabled: true, Exporter: ExporterPrometheus},
			},
			expectHandler: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			tel, err := New(ctx, WithTelemetryConfig(tt.config))
			if tt.errorContains != "" {
				require.ErrorContains(t, err, tt.errorContains)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = tel.Shutdown(ctx) })

			_, noopTracer := tel.TracerProvider().(tracenoop.TracerProvider)
			assert.True(t, noopTracer)

			if tt.expectNoOpMeter {
				_, ok := tel.MeterProvider().(noop.MeterProvider)
				assert.True(t, ok)
			} else {
				_, ok := tel.MeterProvider().(*sdkmetric.MeterProvider)
				assert.True(t, ok)
			}

			handler := tel.MetricsHandler()
			if !tt.expectHandler {
				assert.Nil(t, handler)
				return
			}
			require.NotNil(t, handler)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestTelemetry_ShutdownTwice(t *testing.T) {
	t.Parallel()

	tel, err := New(context.Background())
	require.NoError(t, err)
	assert.NoError(t, tel.Shutdown(context.Background()))
	assert.NoError(t, tel.Shutdown(context.Background()))
}
