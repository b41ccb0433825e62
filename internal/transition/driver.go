package transition

import (
	"context"
	"slices"
	"time"

	"go.opentelemetry.io/otel/trace"

	thvotel "github.com/stacklok/toolhive-scene-server/internal/otel"
	"github.com/stacklok/toolhive-scene-server/internal/registry"
	"github.com/stacklok/toolhive-scene-server/internal/scene"
	"github.com/stacklok/toolhive-scene-server/internal/telemetry"
)

// driver supervises one transition. It is created with the guard already
// held by its manager and releases it exactly once in cleanup.
type driver struct {
	m        *Manager
	previous scene.Ref
	target   scene.Ref
	started  time.Time

	task Task
	span trace.Span

	reported bool
	objects  []scene.Object

	// stopped is set once driving has ended for any reason
	stopped  bool
	released bool
}

func newDriver(m *Manager, previous, target scene.Ref) *driver {
	return &driver{
		m:        m,
		previous: previous,
		target:   target,
	}
}

// start emits the start notification and runs the task up to its first
// suspension point.
func (d *driver) start(ctx context.Context) {
	if !d.m.guard.Holds(d.m) {
		panic("transition driver started without holding the scene loading guard")
	}

	d.started = time.Now()
	_, d.span = thvotel.StartSpan(ctx, d.m.tracer, "scene.transition",
		trace.WithAttributes(
			thvotel.AttrPeer.String(d.m.name),
			thvotel.SceneAttr(thvotel.AttrPreviousScene, d.previous),
			thvotel.SceneAttr(thvotel.AttrTargetScene, d.target),
		),
	)

	d.m.log().Info("Scene transition starting",
		"previous_scene", d.previous.String(),
		"target_scene", d.target.String())

	d.m.runtime.InvokeSceneLoadStart(ctx)
	d.step(ctx)
}

// step resumes the task once and finishes the transition when the task is
// done or failed.
func (d *driver) step(ctx context.Context) {
	if d.stopped {
		return
	}

	result, err := d.resume(trace.ContextWithSpan(ctx, d.span))
	if err == nil && result == StepSuspend {
		return
	}
	d.finish(ctx, err)
}

func (d *driver) resume(ctx context.Context) (result Step, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = StepDone, panicError(r)
		}
	}()

	if d.task == nil {
		d.task = d.m.switcher.SwitchScene(d.previous, d.target, d.onFinished)
		if d.task == nil {
			return StepDone, ErrNoTask
		}
	}
	return d.task.Step(ctx)
}

// onFinished is the FinishFunc handed to the task.
func (d *driver) onFinished(objects []scene.Object) {
	if d.stopped {
		d.m.log().Warn("Scene switch task reported objects after its transition ended",
			"target_scene", d.target.String())
		return
	}
	if d.reported {
		panic(ErrFinishedTwice)
	}
	d.reported = true
	d.objects = slices.Clone(objects)
}

// cleanup releases the guard and clears the running marker. It runs once,
// whichever way driving stopped.
func (d *driver) cleanup() {
	d.stopped = true
	if d.released {
		return
	}
	d.released = true
	if d.m.running == d {
		d.m.running = nil
	}
	d.m.guard.Release(d.m)
}

func (d *driver) finish(ctx context.Context, taskErr error) {
	d.cleanup()
	defer d.span.End()

	duration := time.Since(d.started)

	switch {
	case taskErr != nil:
		e := taskError(taskErr)
		thvotel.RecordError(d.span, e)
		d.m.log().Error("Scene transition failed",
			"previous_scene", d.previous.String(),
			"target_scene", d.target.String(),
			"reason", e.Reason,
			"duration", duration,
			"error", e.Err)
		d.m.recordFailure(ctx, e, duration, telemetry.OutcomeFailed)

	case !d.reported:
		e := &Error{
			Err:     ErrCallbackNotInvoked,
			Message: ErrCallbackNotInvoked.Error(),
			Reason:  ReasonCallbackMissing,
		}
		thvotel.RecordError(d.span, e)
		d.m.log().Error("Scene switch task completed without invoking its finish callback",
			"previous_scene", d.previous.String(),
			"target_scene", d.target.String(),
			"duration", duration)
		d.m.recordFailure(ctx, e, duration, telemetry.OutcomeContractViolation)

	default:
		d.publish(ctx, duration)
	}
}

func (d *driver) publish(ctx context.Context, duration time.Duration) {
	snapshot, err := registry.Build(scene.Records(d.objects))
	if err != nil {
		// Duplicate GUIDs mean the scene content is corrupt.
		panic(err)
	}

	d.m.registry.Publish(snapshot)
	d.m.runtime.RegisterUniqueObjects(ctx, d.objects)
	d.m.recordSuccess(ctx, snapshot.Len(), duration)
	d.span.SetAttributes(thvotel.AttrObjectCount.Int(snapshot.Len()))

	d.m.log().Info("Scene transition completed",
		"previous_scene", d.previous.String(),
		"target_scene", d.target.String(),
		"object_count", snapshot.Len(),
		"duration", duration)

	d.m.runtime.InvokeSceneLoadDone(ctx)
}

// abandon tears the transition down before completion.
func (d *driver) abandon(ctx context.Context) {
	if d.stopped {
		return
	}
	if a, ok := d.task.(Abandoner); ok {
		a.Abandon()
	}
	d.cleanup()
	defer d.span.End()

	duration := time.Since(d.started)
	e := &Error{Err: ErrAbandoned, Message: ErrAbandoned.Error(), Reason: ReasonAbandoned}
	thvotel.RecordError(d.span, e)
	d.m.log().Warn("Scene transition abandoned",
		"previous_scene", d.previous.String(),
		"target_scene", d.target.String(),
		"duration", duration)
	d.m.recordFailure(ctx, e, duration, telemetry.OutcomeAbandoned)
}
