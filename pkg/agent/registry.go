package agent

import (
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Session is one recording lifecycle for a target. Fields are mutated only
// through the registry so transitions keep their arrival order.
type Session struct {
	ID                string
	TargetID          string
	Kind              Kind
	State             State
	IncludeMicrophone bool
	Description       string
	StartedAt         time.Time
	StoppedAt         time.Time
	Chunks            [][]byte
}

// Duration is the wall-clock recording time, valid once the session reached
// Stopping.
func (s *Session) Duration() time.Duration {
	if s.StoppedAt.IsZero() {
		return 0
	}
	return s.StoppedAt.Sub(s.StartedAt)
}

// Registry owns every session and enforces the at-most-one-active-session-
// per-target invariant. Storage is an injected-lifecycle cache rather than an
// ambient global, so tests get isolated instances.
type Registry struct {
	mu       sync.Mutex
	sessions *cache.Cache
	byTarget map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		// Completed sessions are purged eagerly; the expiration is a safety
		// net for sessions orphaned by a crashed caller.
		sessions: cache.New(1*time.Hour, 10*time.Minute),
		byTarget: make(map[string]string),
	}
}

// Begin creates a session for the target in Acquiring state. Fails with
// ErrAlreadyActive while a non-terminal session exists for the same target;
// conflicts are rejected, not queued.
func (r *Registry) Begin(targetID string, kind Kind, includeMicrophone bool, description string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existingID, ok := r.byTarget[targetID]; ok {
		if existing, found := r.sessions.Get(existingID); found && !existing.(*Session).State.Terminal() {
			return nil, ErrAlreadyActive
		}
		delete(r.byTarget, targetID)
	}

	now := time.Now()
	session := &Session{
		ID:                fmt.Sprintf("recording_%s_%d", targetID, now.UnixMilli()),
		TargetID:          targetID,
		Kind:              kind,
		State:             StateAcquiring,
		IncludeMicrophone: includeMicrophone,
		Description:       description,
		StartedAt:         now,
	}

	r.sessions.Set(session.ID, session, cache.NoExpiration)
	r.byTarget[targetID] = session.ID
	return session, nil
}

// Get returns a snapshot of the session.
func (r *Registry) Get(sessionID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(sessionID)
}

func (r *Registry) getLocked(sessionID string) (*Session, error) {
	raw, found := r.sessions.Get(sessionID)
	if !found {
		return nil, ErrSessionNotFound
	}
	return raw.(*Session), nil
}

// ActiveSession returns the non-terminal session for a target, if any.
func (r *Registry) ActiveSession(targetID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byTarget[targetID]
	if !ok {
		return nil, false
	}
	session, err := r.getLocked(id)
	if err != nil || session.State.Terminal() {
		return nil, false
	}
	return session, true
}

// Transition moves the session to newState, validating the move. Transitions
// apply strictly in the order calls arrive; an illegal move is rejected with
// ErrIllegalTransition and leaves the session untouched.
func (r *Registry) Transition(sessionID string, newState State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.getLocked(sessionID)
	if err != nil {
		return err
	}
	if !session.State.CanTransition(newState) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, session.State, newState)
	}

	session.State = newState
	switch newState {
	case StateStopping:
		session.StoppedAt = time.Now()
	case StateCompleted, StateFailed:
		r.clearLocked(session)
	}
	return nil
}

// Fail force-fails the session from whatever state it is in. Terminal
// sessions are left alone.
func (r *Registry) Fail(sessionID string) {
	_ = r.Transition(sessionID, StateFailed)
}

// AppendChunk records a data fragment. Chunks are only produced while
// Recording; anything arriving in another state is dropped (a flush racing a
// pause is not an error).
func (r *Registry) AppendChunk(sessionID string, chunk []byte) bool {
	if len(chunk) == 0 {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.getLocked(sessionID)
	if err != nil || session.State != StateRecording {
		return false
	}
	session.Chunks = append(session.Chunks, chunk)
	return true
}

// End assembles the chunks into a single artifact. Only legal from Stopping.
// The target slot is released here regardless of how the upload later goes.
func (r *Registry) End(sessionID string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.getLocked(sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != StateStopping {
		return nil, fmt.Errorf("%w: end from %s", ErrIllegalTransition, session.State)
	}

	var size int
	for _, chunk := range session.Chunks {
		size += len(chunk)
	}
	artifact := make([]byte, 0, size)
	for _, chunk := range session.Chunks {
		artifact = append(artifact, chunk...)
	}

	delete(r.byTarget, session.TargetID)
	return artifact, nil
}

func (r *Registry) clearLocked(session *Session) {
	if r.byTarget[session.TargetID] == session.ID {
		delete(r.byTarget, session.TargetID)
	}
	r.sessions.Delete(session.ID)
}
