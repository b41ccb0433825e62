package simulation

import (
	"context"
	"errors"
	"time"

	"github.com/stacklok/toolhive-scene-server/internal/scene"
)

// EventKind identifies a runtime notification
type EventKind string

const (
	// EventSceneLoadStart is emitted when a transition starts
	EventSceneLoadStart EventKind = "scene-load-start"
	// EventSceneLoadDone is emitted after a transition published its objects
	EventSceneLoadDone EventKind = "scene-load-done"
)

// Event is a scene load notification for one peer.
type Event struct {
	Kind        EventKind
	Peer        string
	Scene       scene.Ref
	ObjectCount int
	OccurredAt  time.Time
}

// Hook receives runtime events. Hooks run on the tick timeline and must not
// block.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy Hook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans out events to zero or more hooks.
type Hooks []Hook

// Notify forwards the event to all hooks, returning a joined error if any fail.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
