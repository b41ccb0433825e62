package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Resource attribute keys describing a running scene server
const (
	// ResourceLoaderType is the configured scene loader back end
	ResourceLoaderType = attribute.Key("thv.scene.loader.type")
	// ResourcePeerCount is the number of peers hosted by the process
	ResourcePeerCount = attribute.Key("thv.scene.peer.count")
)

// newResource describes the process for both traces and metrics. The
// instance id is shared by the two providers so their data can be joined.
func newResource(
	ctx context.Context, serviceName, serviceVersion, instanceID string, attrs []attribute.KeyValue,
) (*resource.Resource, error) {
	all := []attribute.KeyValue{
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
	}
	if instanceID != "" {
		all = append(all, semconv.ServiceInstanceID(instanceID))
	}
	all = append(all, attrs...)

	res, err := resource.New(ctx,
		resource.WithAttributes(all...),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
