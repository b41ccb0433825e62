package transition

import (
	"context"
	"iter"

	"github.com/stacklok/toolhive-scene-server/internal/scene"
)

// Step is the outcome of resuming a task.
type Step int

const (
	// StepSuspend means the task reached a suspension point and wants to be
	// resumed on a later tick.
	StepSuspend Step = iota
	// StepDone means the task has completed.
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepSuspend:
		return "suspend"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

// Task is a cooperatively suspending unit of work performing one scene switch.
type Task interface {
	// Step resumes the task until its next suspension point or completion.
	// A non-nil error ends the task.
	Step(ctx context.Context) (Step, error)
}

// Abandoner is implemented by tasks that hold resources which must be
// released when their transition is torn down before completion.
type Abandoner interface {
	Abandon()
}

// FinishFunc receives the complete set of scene-bound objects of the loaded
// scene. A task must call it at most once, before it reports StepDone.
type FinishFunc func(objects []scene.Object)

// Switcher produces the task that switches from previous to target.
type Switcher interface {
	SwitchScene(previous, target scene.Ref, onFinished FinishFunc) Task
}

// SwitcherFunc adapts a function to Switcher.
type SwitcherFunc func(previous, target scene.Ref, onFinished FinishFunc) Task

// SwitchScene calls fn.
func (fn SwitcherFunc) SwitchScene(previous, target scene.Ref, onFinished FinishFunc) Task {
	return fn(previous, target, onFinished)
}

// TaskFunc adapts a step function to Task.
type TaskFunc func(ctx context.Context) (Step, error)

// Step calls fn.
func (fn TaskFunc) Step(ctx context.Context) (Step, error) {
	return fn(ctx)
}

// Sequential turns straight-line code into a Task. Every call to suspend is a
// suspension point; the body continues on the next Step. The body runs on the
// goroutine calling Step and receives the context passed to the first Step.
// A panic in the body surfaces from Step.
func Sequential(body func(ctx context.Context, suspend func()) error) Task {
	return &sequentialTask{body: body}
}

type sequentialTask struct {
	body func(ctx context.Context, suspend func()) error
	next func() (struct{}, bool)
	stop func()
	err  error
	done bool
}

// abandonSignal unwinds a body whose task was abandoned while suspended.
type abandonSignal struct{}

func (t *sequentialTask) Step(ctx context.Context) (Step, error) {
	if t.done {
		return StepDone, t.err
	}

	if t.next == nil {
		t.next, t.stop = iter.Pull(t.run(ctx))
	}

	if _, suspended := t.next(); suspended {
		return StepSuspend, nil
	}

	t.done = true
	t.stop()
	return StepDone, t.err
}

func (t *sequentialTask) run(ctx context.Context) iter.Seq[struct{}] {
	return func(yield func(struct{}) bool) {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(abandonSignal); ok {
					return
				}
				panic(r)
			}
		}()
		t.err = t.body(ctx, func() {
			if !yield(struct{}{}) {
				panic(abandonSignal{})
			}
		})
	}
}

// Abandon stops a suspended body. Deferred calls in the body run.
func (t *sequentialTask) Abandon() {
	if t.done {
		return
	}
	t.done = true
	if t.stop != nil {
		t.stop()
	}
}
