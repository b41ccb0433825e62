package telemetry

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestNewMeterProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		opts        func() []MeterProviderOption
		expectNoOp  bool
		expectError string
	}{
		{
			name:       "no config yields no-op provider",
			opts:       func() []MeterProviderOption { return nil },
			expectNoOp: true,
		},
		{
			name: "disabled metrics yield no-op provider",
			opts: func() []MeterProviderOption {
				return []MeterProviderOption{WithMetricsConfig(&MetricsConfig{Enabled: false})}
			},
			expectNoOp: true,
		},
		{
			name: "otlp exporter yields SDK provider",
			opts: func() []MeterProviderOption {
				return []MeterProviderOption{
					WithMetricsConfig(&MetricsConfig{Enabled: true}),
					WithMeterInsecure(true),
				}
			},
		},
		{
			name: "prometheus exporter yields SDK provider",
			opts: func() []MeterProviderOption {
				return []MeterProviderOption{
					WithMetricsConfig(&MetricsConfig{Enabled: true, Exporter: ExporterPrometheus}),
					WithPrometheusRegisterer(prometheus.NewRegistry()),
				}
			},
		},
		{
			name: "prometheus exporter without registerer fails",
			opts: func() []MeterProviderOption {
				return []MeterProviderOption{
					WithMetricsConfig(&MetricsConfig{Enabled: true, Exporter: ExporterPrometheus}),
				}
			},
			expectError: "no registerer configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			mp, err := NewMeterProvider(ctx, tt.opts()...)
			if tt.expectError != "" {
				require.ErrorContains(t, err, tt.expectError)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, mp)

			if tt.expectNoOp {
				_, ok := mp.(noop.MeterProvider)
				assert.True(t, ok, "expected no-op meter provider")
				return
			}

			sdkMP, ok := mp.(*sdkmetric.MeterProvider)
			require.True(t, ok, "expected SDK meter provider")
			_ = sdkMP.Shutdown(ctx)
		})
	}
}
