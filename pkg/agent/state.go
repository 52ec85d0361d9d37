package agent

import "errors"

// Kind distinguishes what a session captures.
type Kind string

const (
	TabRecording     Kind = "tab"
	DesktopRecording Kind = "desktop"
)

// State is the recording session lifecycle state.
type State string

const (
	StateIdle      State = "IDLE"
	StateAcquiring State = "ACQUIRING"
	StateRecording State = "RECORDING"
	StatePaused    State = "PAUSED"
	StateStopping  State = "STOPPING"
	StateUploading State = "UPLOADING"
	StateCompleted State = "COMPLETED"
	StateFailed    State = "FAILED"
)

// legalMoves encodes Idle -> Acquiring -> Recording <-> Paused -> Stopping ->
// {Uploading -> Completed | Failed}. Failed is reachable from any non-terminal
// state, handled in CanTransition.
var legalMoves = map[State][]State{
	StateIdle:      {StateAcquiring},
	StateAcquiring: {StateRecording},
	StateRecording: {StatePaused, StateStopping},
	StatePaused:    {StateRecording, StateStopping},
	StateStopping:  {StateUploading},
	StateUploading: {StateCompleted},
}

func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CanTransition reports whether moving to next is legal.
func (s State) CanTransition(next State) bool {
	if s.Terminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	for _, allowed := range legalMoves[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

var (
	// ErrAlreadyActive: a non-terminal session already exists for the target.
	// Surfaced to the caller to resolve (stop-existing vs reject-new); never
	// queued.
	ErrAlreadyActive = errors.New("agent: a recording is already active for this target")

	// ErrIllegalTransition: ordering error in the session state machine.
	// Handled as a warn-and-skip, never a crash.
	ErrIllegalTransition = errors.New("agent: illegal session state transition")

	ErrSessionNotFound = errors.New("agent: session not found")

	// ErrNotConnected: the identity gate failed; the collector is absent or
	// is not the expected server.
	ErrNotConnected = errors.New("agent: not connected to a valid capture collector server")

	ErrNoActiveRecording = errors.New("agent: no active recording found for this target")

	// ErrUploadFailed: artifact or telemetry push failed. Never escalates to
	// a session failure.
	ErrUploadFailed = errors.New("agent: upload to collector failed")
)
