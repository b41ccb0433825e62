// Package status provides transition status reporting for scene managers.
package status

import (
	"time"

	"github.com/stacklok/toolhive-scene-server/internal/scene"
)

// TransitionPhase represents the current phase of a scene manager
type TransitionPhase string

const (
	// PhaseIdle means no transition has been attempted yet
	PhaseIdle TransitionPhase = "Idle"

	// PhaseTransitioning means a transition is currently in progress
	PhaseTransitioning TransitionPhase = "Transitioning"

	// PhaseComplete means the last transition completed successfully
	PhaseComplete TransitionPhase = "Complete"

	// PhaseFailed means the last transition failed
	PhaseFailed TransitionPhase = "Failed"
)

// TransitionStatus is a point-in-time view of a scene manager
type TransitionStatus struct {
	// Peer is the name of the runtime the manager is attached to
	Peer string `json:"peer"`

	// Phase represents the current transition phase
	Phase TransitionPhase `json:"phase"`

	// Message provides additional information about the phase
	Message string `json:"message,omitempty"`

	// Reason is the machine readable failure reason of the last attempt
	Reason string `json:"reason,omitempty"`

	// ActiveScene is the scene the manager last reconciled to
	ActiveScene scene.Ref `json:"activeScene"`

	// PreviousScene is the scene that was active before ActiveScene
	PreviousScene scene.Ref `json:"previousScene"`

	// Ready mirrors the manager's readiness check
	Ready bool `json:"ready"`

	// Outdated is set while a transition is owed but not launched
	Outdated bool `json:"outdated"`

	// Attempt counts launched transitions; it increments on every launch so
	// reloads of the same scene are distinguishable
	Attempt uint64 `json:"attempt"`

	// LastAttempt is the timestamp of the last transition launch
	LastAttempt *time.Time `json:"lastAttempt,omitempty"`

	// LastSuccess is the timestamp of the last successful transition
	LastSuccess *time.Time `json:"lastSuccess,omitempty"`

	// LastDurationSeconds is how long the last finished transition took
	LastDurationSeconds float64 `json:"lastDurationSeconds,omitempty"`

	// ObjectCount is the number of objects in the published registry
	ObjectCount int `json:"objectCount"`
}

// IsTerminal reports whether the phase describes a finished attempt
func (p TransitionPhase) IsTerminal() bool {
	return p == PhaseComplete || p == PhaseFailed
}
