package transition

import (
	"errors"
	"fmt"
)

// Failure reasons attached to *Error
const (
	// ReasonTaskFailed means the task returned an error from Step
	ReasonTaskFailed = "task-failed"

	// ReasonTaskPanicked means the task panicked while being stepped
	ReasonTaskPanicked = "task-panicked"

	// ReasonCallbackMissing means the task completed without reporting objects
	ReasonCallbackMissing = "finish-callback-not-invoked"

	// ReasonAbandoned means the transition was torn down before completion
	ReasonAbandoned = "transition-abandoned"
)

var (
	// ErrCallbackNotInvoked is reported when a task completes without
	// calling its FinishFunc
	ErrCallbackNotInvoked = errors.New("scene switch task completed without reporting its objects")

	// ErrFinishedTwice is raised inside the task when its FinishFunc is
	// called a second time
	ErrFinishedTwice = errors.New("scene switch task reported its objects more than once")

	// ErrAbandoned is reported when a manager is shut down mid-transition
	ErrAbandoned = errors.New("scene transition abandoned before completion")

	// ErrNoTask is reported when a switcher returns a nil task
	ErrNoTask = errors.New("scene switcher returned no task")
)

// Error is a failed transition with the reason it failed
type Error struct {
	Err     error
	Message string
	Reason  string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func taskError(err error) *Error {
	var te *Error
	if errors.As(err, &te) {
		return te
	}
	return &Error{
		Err:     err,
		Message: fmt.Sprintf("Scene switch task failed: %v", err),
		Reason:  ReasonTaskFailed,
	}
}

func panicError(recovered any) *Error {
	err, ok := recovered.(error)
	if !ok {
		err = fmt.Errorf("%v", recovered)
	}
	return &Error{
		Err:     err,
		Message: fmt.Sprintf("Scene switch task panicked: %v", err),
		Reason:  ReasonTaskPanicked,
	}
}
