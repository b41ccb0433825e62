package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/stacklok/toolhive-scene-server/internal/scene"
	"github.com/stacklok/toolhive-scene-server/internal/transition"
)

// Manager is the scene manager a Runner drives.
type Manager interface {
	Initialize(rt transition.Runtime)
	Shutdown(ctx context.Context, rt transition.Runtime)
	Tick(ctx context.Context)
}

// Runner is one simulation peer. All methods except SetScene and Do must be
// called on the tick timeline.
type Runner struct {
	name  string
	hooks Hooks

	desired scene.Ref
	manager Manager
	objects map[uuid.UUID]scene.Object
	frame   uint64

	mu      sync.Mutex
	pending []func()
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithHooks adds event hooks to the runner
func WithHooks(hooks ...Hook) RunnerOption {
	return func(r *Runner) {
		r.hooks = append(r.hooks, hooks...)
	}
}

// WithDesiredScene sets the desired scene before the first tick
func WithDesiredScene(ref scene.Ref) RunnerOption {
	return func(r *Runner) {
		r.desired = ref
	}
}

// NewRunner creates a runner for the named peer.
func NewRunner(name string, opts ...RunnerOption) *Runner {
	r := &Runner{
		name:    name,
		desired: scene.None,
		objects: make(map[uuid.UUID]scene.Object),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the peer name
func (r *Runner) Name() string {
	return r.name
}

// Frame returns the number of ticks run so far
func (r *Runner) Frame() uint64 {
	return r.frame
}

// Attach initializes m against this runner. Only one manager can be attached.
func (r *Runner) Attach(m Manager) {
	if r.manager != nil {
		panic(fmt.Sprintf("runner %s already has a scene manager attached", r.name))
	}
	m.Initialize(r)
	r.manager = m
}

// Detach shuts the attached manager down. It is a no-op without one.
func (r *Runner) Detach(ctx context.Context) {
	if r.manager == nil {
		return
	}
	r.manager.Shutdown(ctx, r)
	r.manager = nil
}

// SetScene requests a scene change. Safe for concurrent use; the change is
// applied at the start of the next tick.
func (r *Runner) SetScene(ref scene.Ref) {
	r.enqueue(func() {
		if r.desired != ref {
			slog.Debug("Desired scene changed", "peer", r.name,
				"from", r.desired.String(), "to", ref.String())
		}
		r.desired = ref
	})
}

// Do runs fn on the tick timeline and waits for it to finish or for ctx to
// be done.
func (r *Runner) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	r.enqueue(func() {
		defer close(done)
		fn()
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("runner %s: %w", r.name, ctx.Err())
	}
}

func (r *Runner) enqueue(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, fn)
}

// Tick applies queued commands, then ticks the attached manager.
func (r *Runner) Tick(ctx context.Context) {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	for _, fn := range pending {
		fn()
	}

	r.frame++
	if r.manager != nil {
		r.manager.Tick(ctx)
	}
}

// CurrentScene returns the desired scene
func (r *Runner) CurrentScene() scene.Ref {
	return r.desired
}

// InvokeSceneLoadStart drops the objects of the outgoing scene and notifies
// hooks.
func (r *Runner) InvokeSceneLoadStart(ctx context.Context) {
	clear(r.objects)
	r.notify(ctx, Event{Kind: EventSceneLoadStart, Peer: r.name, Scene: r.desired})
}

// InvokeSceneLoadDone notifies hooks that the new scene's objects resolve.
func (r *Runner) InvokeSceneLoadDone(ctx context.Context) {
	r.notify(ctx, Event{
		Kind:        EventSceneLoadDone,
		Peer:        r.name,
		Scene:       r.desired,
		ObjectCount: len(r.objects),
	})
}

// RegisterUniqueObjects records the objects of a newly loaded scene.
func (r *Runner) RegisterUniqueObjects(_ context.Context, objects []scene.Object) {
	for _, obj := range objects {
		if obj == nil {
			continue
		}
		r.objects[obj.GUID()] = obj
	}
}

// Object looks up an object registered by the last scene load.
func (r *Runner) Object(id uuid.UUID) (scene.Object, bool) {
	obj, ok := r.objects[id]
	return obj, ok
}

// ObjectCount returns the number of registered objects
func (r *Runner) ObjectCount() int {
	return len(r.objects)
}

func (r *Runner) notify(ctx context.Context, event Event) {
	if err := r.hooks.Notify(ctx, event); err != nil {
		slog.Warn("Scene event hook failed",
			"peer", r.name,
			"event", string(event.Kind),
			"error", err)
	}
}
