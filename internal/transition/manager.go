package transition

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/toolhive-scene-server/internal/guard"
	"github.com/stacklok/toolhive-scene-server/internal/registry"
	"github.com/stacklok/toolhive-scene-server/internal/scene"
	"github.com/stacklok/toolhive-scene-server/internal/status"
	"github.com/stacklok/toolhive-scene-server/internal/telemetry"
)

// sceneLoading is shared by every Manager in the process.
var sceneLoading = guard.New[Manager]("scene-loading")

// Manager drives scene transitions for one attached Runtime.
type Manager struct {
	name     string
	switcher Switcher
	guard    *guard.Guard[Manager]
	registry *registry.Registry
	metrics  *telemetry.TransitionMetrics
	tracer   trace.Tracer
	logger   *slog.Logger

	initialScene scene.Ref

	runtime       Runtime
	activeScene   scene.Ref
	previousScene scene.Ref
	outdated      bool
	running       *driver

	destroyed atomic.Bool

	attempt     uint64
	phase       status.TransitionPhase
	message     string
	reason      string
	lastAttempt *time.Time
	lastSuccess *time.Time
	lastElapsed time.Duration
}

// Option configures a Manager
type Option func(*Manager)

// WithInitialScene sets the scene considered loaded when the manager is
// initialized. Defaults to scene.None, which makes the first tick load the
// runtime's desired scene.
func WithInitialScene(ref scene.Ref) Option {
	return func(m *Manager) {
		m.initialScene = ref
	}
}

// WithGuard replaces the process-wide scene loading guard. Managers only
// exclude each other when they share a guard.
func WithGuard(g *guard.Guard[Manager]) Option {
	return func(m *Manager) {
		m.guard = g
	}
}

// WithMetrics sets the transition metrics
func WithMetrics(metrics *telemetry.TransitionMetrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// WithTracer sets the tracer used for transition spans
func WithTracer(tracer trace.Tracer) Option {
	return func(m *Manager) {
		m.tracer = tracer
	}
}

// WithLogger sets the logger. Defaults to slog.Default() at call time.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// New creates a detached manager named after the peer it will serve.
func New(name string, switcher Switcher, opts ...Option) *Manager {
	m := &Manager{
		name:     name,
		switcher: switcher,
		guard:    sceneLoading,
		registry: registry.New(),
		phase:    status.PhaseIdle,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.activeScene = m.initialScene
	return m
}

// Name returns the peer name of the manager
func (m *Manager) Name() string {
	return m.name
}

// Alive reports whether the manager has not been destroyed. It is the
// liveness probe consulted by the scene loading guard.
func (m *Manager) Alive() bool {
	return !m.destroyed.Load()
}

// Initialize attaches the manager to rt and resets its transition state.
func (m *Manager) Initialize(rt Runtime) {
	if rt == nil {
		panic("transition manager initialized with a nil runtime")
	}
	if m.runtime != nil {
		panic("transition manager " + m.name + " is already attached to a runtime")
	}
	if m.destroyed.Load() {
		panic("transition manager " + m.name + " has been destroyed")
	}

	m.runtime = rt
	m.activeScene = m.initialScene
	m.previousScene = scene.None
	m.outdated = false
	m.running = nil
	m.phase = status.PhaseIdle
	m.message = ""
	m.reason = ""

	m.log().Debug("Scene manager initialized", "active_scene", m.activeScene.String())
}

// Shutdown detaches the manager from rt. An in-flight transition is
// abandoned and the object registry is cleared.
func (m *Manager) Shutdown(ctx context.Context, rt Runtime) {
	if m.runtime == nil || m.runtime != rt {
		panic("transition manager " + m.name + " shut down by a runtime it is not attached to")
	}

	if m.running != nil {
		m.running.abandon(ctx)
	}
	m.registry.Clear()
	m.outdated = false
	m.runtime = nil

	m.log().Debug("Scene manager shut down")
}

// Destroy shuts the manager down if attached and marks it dead so a guard
// it may still hold is treated as stale.
func (m *Manager) Destroy(ctx context.Context) {
	if m.runtime != nil {
		m.Shutdown(ctx, m.runtime)
	}
	m.destroyed.Store(true)
}

// Tick resumes the in-flight transition, then checks whether a new one is
// owed. It is a no-op while detached.
func (m *Manager) Tick(ctx context.Context) {
	if m.runtime == nil || m.destroyed.Load() {
		return
	}

	if m.running != nil {
		m.running.step(ctx)
	}

	m.poll(ctx)
}

func (m *Manager) poll(ctx context.Context) {
	desired := m.runtime.CurrentScene()
	if desired != m.activeScene {
		m.outdated = true
	}

	if !m.outdated || m.running != nil {
		return
	}

	if !m.guard.TryAcquire(m) {
		m.log().Debug("Another scene manager is transitioning, waiting",
			"target_scene", desired.String())
		return
	}

	previous := m.activeScene
	m.previousScene = previous
	m.activeScene = desired
	m.outdated = false

	m.launch(ctx, previous, desired)
}

func (m *Manager) launch(ctx context.Context, previous, target scene.Ref) {
	now := time.Now()
	m.attempt++
	m.lastAttempt = &now
	m.phase = status.PhaseTransitioning
	m.message = "Transition in progress"
	m.reason = ""

	d := newDriver(m, previous, target)
	m.running = d
	d.start(ctx)
}

// IsReady reports whether the manager has reconciled the runtime's desired
// scene and no transition is pending or running.
func (m *Manager) IsReady() bool {
	if m.runtime == nil {
		return false
	}
	return m.running == nil && !m.outdated && m.runtime.CurrentScene() == m.activeScene
}

// Resolve looks up a scene-bound object of the last successful transition.
func (m *Manager) Resolve(id uuid.UUID) (scene.Object, bool) {
	return m.registry.Resolve(id)
}

// ActiveScene returns the scene the manager last launched a transition to.
func (m *Manager) ActiveScene() scene.Ref {
	return m.activeScene
}

// Status returns a snapshot of the manager's transition state.
func (m *Manager) Status() status.TransitionStatus {
	return status.TransitionStatus{
		Peer:                m.name,
		Phase:               m.phase,
		Message:             m.message,
		Reason:              m.reason,
		ActiveScene:         m.activeScene,
		PreviousScene:       m.previousScene,
		Ready:               m.IsReady(),
		Outdated:            m.outdated,
		Attempt:             m.attempt,
		LastAttempt:         m.lastAttempt,
		LastSuccess:         m.lastSuccess,
		LastDurationSeconds: m.lastElapsed.Seconds(),
		ObjectCount:         m.registry.Len(),
	}
}

func (m *Manager) recordSuccess(ctx context.Context, objectCount int, elapsed time.Duration) {
	now := time.Now()
	m.phase = status.PhaseComplete
	m.message = "Transition completed successfully"
	m.reason = ""
	m.lastSuccess = &now
	m.lastElapsed = elapsed

	m.metrics.RecordTransition(ctx, m.name, elapsed, telemetry.OutcomeSuccess)
	m.metrics.RecordObjectsTotal(ctx, m.name, int64(objectCount))
}

func (m *Manager) recordFailure(ctx context.Context, e *Error, elapsed time.Duration, outcome string) {
	m.phase = status.PhaseFailed
	m.message = e.Message
	m.reason = e.Reason
	m.lastElapsed = elapsed

	m.metrics.RecordTransition(ctx, m.name, elapsed, outcome)
}

func (m *Manager) log() *slog.Logger {
	logger := m.logger
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("peer", m.name)
}
