package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginAssignsSessionID(t *testing.T) {
	r := NewRegistry()

	session, err := r.Begin("42", TabRecording, false, "demo run")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(session.ID, "recording_42_"))
	assert.Equal(t, StateAcquiring, session.State)
	assert.Equal(t, "demo run", session.Description)
}

func TestBeginRejectsSecondActiveSessionPerTarget(t *testing.T) {
	r := NewRegistry()

	first, err := r.Begin("42", TabRecording, false, "")
	require.NoError(t, err)

	_, err = r.Begin("42", TabRecording, true, "")
	assert.ErrorIs(t, err, ErrAlreadyActive)

	// A different target is unaffected.
	_, err = r.Begin("43", TabRecording, false, "")
	assert.NoError(t, err)

	// Once the first session terminates, the target slot frees up.
	require.NoError(t, r.Transition(first.ID, StateRecording))
	require.NoError(t, r.Transition(first.ID, StateStopping))
	require.NoError(t, r.Transition(first.ID, StateUploading))
	require.NoError(t, r.Transition(first.ID, StateCompleted))

	_, err = r.Begin("42", TabRecording, false, "")
	assert.NoError(t, err)
}

func TestTransitionRejectsIllegalMoves(t *testing.T) {
	r := NewRegistry()
	session, err := r.Begin("42", TabRecording, false, "")
	require.NoError(t, err)

	// Acquiring -> Paused is not a legal move.
	err = r.Transition(session.ID, StatePaused)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	// The failed transition left the state untouched.
	got, err := r.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, StateAcquiring, got.State)
}

func TestFailReachableFromAnyNonTerminalState(t *testing.T) {
	r := NewRegistry()

	for _, state := range []State{StateAcquiring, StateRecording, StatePaused, StateStopping} {
		session, err := r.Begin("42", TabRecording, false, "")
		require.NoError(t, err)

		switch state {
		case StateRecording:
			require.NoError(t, r.Transition(session.ID, StateRecording))
		case StatePaused:
			require.NoError(t, r.Transition(session.ID, StateRecording))
			require.NoError(t, r.Transition(session.ID, StatePaused))
		case StateStopping:
			require.NoError(t, r.Transition(session.ID, StateRecording))
			require.NoError(t, r.Transition(session.ID, StateStopping))
		}

		r.Fail(session.ID)
		_, err = r.Get(session.ID)
		assert.ErrorIs(t, err, ErrSessionNotFound, "failed session should be purged from %s", state)
	}
}

func TestAppendChunkOnlyWhileRecording(t *testing.T) {
	r := NewRegistry()
	session, err := r.Begin("42", TabRecording, false, "")
	require.NoError(t, err)

	assert.False(t, r.AppendChunk(session.ID, []byte("early")))

	require.NoError(t, r.Transition(session.ID, StateRecording))
	assert.True(t, r.AppendChunk(session.ID, []byte("one")))
	assert.False(t, r.AppendChunk(session.ID, nil))

	require.NoError(t, r.Transition(session.ID, StatePaused))
	assert.False(t, r.AppendChunk(session.ID, []byte("while paused")))

	require.NoError(t, r.Transition(session.ID, StateRecording))
	assert.True(t, r.AppendChunk(session.ID, []byte("two")))
}

func TestEndConcatenatesChunksInOrder(t *testing.T) {
	r := NewRegistry()
	session, err := r.Begin("42", TabRecording, false, "")
	require.NoError(t, err)
	require.NoError(t, r.Transition(session.ID, StateRecording))

	r.AppendChunk(session.ID, []byte("abc"))
	r.AppendChunk(session.ID, []byte("def"))

	// End is only legal from Stopping.
	_, err = r.End(session.ID)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	require.NoError(t, r.Transition(session.ID, StateStopping))
	artifact, err := r.End(session.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdef"), artifact)

	// The target slot is released even before the session completes.
	_, ok := r.ActiveSession("42")
	assert.False(t, ok)
}

func TestActiveSessionIgnoresTerminalSessions(t *testing.T) {
	r := NewRegistry()
	session, err := r.Begin("42", TabRecording, false, "")
	require.NoError(t, err)

	got, ok := r.ActiveSession("42")
	require.True(t, ok)
	assert.Equal(t, session.ID, got.ID)

	r.Fail(session.ID)
	_, ok = r.ActiveSession("42")
	assert.False(t, ok)
}
