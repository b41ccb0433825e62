package status

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/toolhive-scene-server/internal/scene"
)

func TestTransitionPhase_IsTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		phase    TransitionPhase
		expected bool
	}{
		{PhaseIdle, false},
		{PhaseTransitioning, false},
		{PhaseComplete, true},
		{PhaseFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.phase.IsTerminal())
		})
	}
}

func TestTransitionStatus_JSON(t *testing.T) {
	t.Parallel()

	st := TransitionStatus{
		Peer:          "host",
		Phase:         PhaseComplete,
		ActiveScene:   scene.FromIndex(3),
		PreviousScene: scene.None,
		Ready:         true,
		Attempt:       2,
		ObjectCount:   5,
	}

	data, err := json.Marshal(st)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "3", decoded["activeScene"])
	assert.Equal(t, "none", decoded["previousScene"])
	assert.Equal(t, "Complete", decoded["phase"])
	assert.NotContains(t, decoded, "lastAttempt")
}
