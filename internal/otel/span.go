// Package otel provides OpenTelemetry tracing helpers for the scene server.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/toolhive-scene-server/internal/scene"
)

// Attribute keys shared by scene transition spans.
const (
	AttrPeer          = attribute.Key("scene.peer")
	AttrPreviousScene = attribute.Key("scene.previous")
	AttrTargetScene   = attribute.Key("scene.target")
	AttrObjectCount   = attribute.Key("scene.object_count")
	AttrOutcome       = attribute.Key("scene.transition.outcome")
)

// SceneAttr returns an attribute holding a scene's build index, -1 for none.
func SceneAttr(key attribute.Key, ref scene.Ref) attribute.KeyValue {
	return key.Int(ref.Index())
}

// StartSpan starts a new span if the tracer is non-nil, otherwise returns the
// span already carried by ctx (a no-op span when there is none).
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records err on span and marks the span failed. The status
// description stays generic; details live in the recorded event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
