// Package guard provides a process-wide single-flight token that admits at
// most one live holder at a time.
//
// The token keeps only a weak reference to its holder. A holder that has been
// garbage collected, or that reports itself dead through Liveness, cannot
// block other contenders: the next TryAcquire clears the stale token and
// proceeds.
package guard

import (
	"fmt"
	"log/slog"
	"sync"
	"weak"
)

// Liveness is implemented by holders that can be torn down while still
// reachable. A holder reporting Alive() == false is treated as gone.
type Liveness interface {
	Alive() bool
}

// Guard is a single-flight token over holders of type T.
type Guard[T any] struct {
	name string

	mu     sync.Mutex
	held   bool
	holder weak.Pointer[T]
}

// New creates a free guard. The name is used in log messages only.
func New[T any](name string) *Guard[T] {
	return &Guard[T]{name: name}
}

// TryAcquire takes the token for self if no other live holder has it.
// A stale holder is cleared with a warning. Acquiring while self already
// holds the token is a logic error and panics.
func (g *Guard[T]) TryAcquire(self *T) bool {
	if self == nil {
		panic(fmt.Sprintf("guard %s: nil holder", g.name))
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held {
		current := g.holder.Value()
		if current == self {
			panic(fmt.Sprintf("guard %s: holder attempted to acquire twice", g.name))
		}
		if isAlive(current) {
			return false
		}
		slog.Warn("Clearing stale single-flight holder", "guard", g.name)
		g.reset()
	}

	g.held = true
	g.holder = weak.Make(self)
	return true
}

// Release returns the token. Only the current holder may release it.
func (g *Guard[T]) Release(self *T) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.held || g.holder != weak.Make(self) {
		panic(fmt.Sprintf("guard %s: released by a caller that does not hold it", g.name))
	}
	g.reset()
}

// Holds reports whether self currently holds the token.
func (g *Guard[T]) Holds(self *T) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held && self != nil && g.holder == weak.Make(self)
}

func (g *Guard[T]) reset() {
	g.held = false
	g.holder = weak.Pointer[T]{}
}

func isAlive[T any](v *T) bool {
	if v == nil {
		return false
	}
	if l, ok := any(v).(Liveness); ok {
		return l.Alive()
	}
	return true
}
