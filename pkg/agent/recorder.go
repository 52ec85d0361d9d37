package agent

import (
	"sync"
	"time"

	"browser-connector-be/pkg/capture"
)

// DefaultFlushInterval governs chunk granularity and the upper bound on data
// loss if the process dies mid-recording.
const DefaultFlushInterval = 1000 * time.Millisecond

// Recorder drives the encoder for one session: periodic buffer flushes while
// recording, idempotent pause/resume, microphone-aware mute, and a stop that
// always converges on the registry's Stopping state whether it was requested
// or forced by the stream ending externally.
type Recorder struct {
	registry *Registry
	session  string
	stream   *capture.Stream
	encoder  capture.Encoder

	mu      sync.Mutex
	started bool
	done    chan struct{}
	stop    sync.Once

	// onExternalStop fires only when the stop originated inside the recorder
	// (stream revoked, encoder error), so the owner can run the same finish
	// path an explicit stop uses.
	onExternalStop func()
}

func NewRecorder(registry *Registry, sessionID string, stream *capture.Stream, encoder capture.Encoder) *Recorder {
	r := &Recorder{
		registry: registry,
		session:  sessionID,
		stream:   stream,
		encoder:  encoder,
		done:     make(chan struct{}),
	}

	// A track ending under our feet (user revokes capture from the browser
	// UI) must not leave the session dangling.
	for _, track := range stream.VideoTracks() {
		track.HandleEnded(func() {
			r.stopInternal(true)
		})
	}
	return r
}

// OnExternalStop registers the callback invoked when the recorder stops
// itself.
func (r *Recorder) OnExternalStop(fn func()) {
	r.mu.Lock()
	r.onExternalStop = fn
	r.mu.Unlock()
}

// Start transitions the session to Recording and begins flushing the encoder
// on the given interval. The interval is fixed for the session's lifetime.
func (r *Recorder) Start(flushInterval time.Duration) error {
	if flushInterval <= 0 {
		flushInterval = DefaultFlushInterval
	}

	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return nil
	}
	r.started = true
	r.mu.Unlock()

	if err := r.registry.Transition(r.session, StateRecording); err != nil {
		return err
	}

	go r.flushLoop(flushInterval)
	return nil
}

func (r *Recorder) flushLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.flush()
		case <-r.done:
			return
		}
	}
}

// flush drains the encoder and hands the fragment to the registry. The
// registry drops fragments outside Recording, which keeps the paused state
// chunk-free without a race against the ticker.
func (r *Recorder) flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushLocked()
}

func (r *Recorder) flushLocked() {
	chunk, err := r.encoder.ReadChunk()
	if err != nil || len(chunk) == 0 {
		return
	}
	r.registry.AppendChunk(r.session, chunk)
}

// Pause suspends encoding. Legal only from Recording; anything else is a
// no-op so double-clicks on a control bar stay harmless.
func (r *Recorder) Pause() {
	session, err := r.registry.Get(r.session)
	if err != nil || session.State != StateRecording {
		return
	}
	// Capture what was encoded before the pause takes effect.
	r.flush()
	_ = r.registry.Transition(r.session, StatePaused)
}

// Resume is the mirror of Pause: a no-op unless currently Paused.
func (r *Recorder) Resume() {
	session, err := r.registry.Get(r.session)
	if err != nil || session.State != StatePaused {
		return
	}
	_ = r.registry.Transition(r.session, StateRecording)
}

// Mute toggles audio in place. When a microphone was acquired separately the
// toggle targets only the microphone track, leaving the primary capture
// audio alone; otherwise it applies to every audio track.
func (r *Recorder) Mute(muted bool) {
	if mic := r.stream.MicTrack(); mic != nil {
		mic.SetEnabled(!muted)
		return
	}
	for _, track := range r.stream.AudioTracks() {
		track.SetEnabled(!muted)
	}
}

// Stop flushes pending data, releases the media tracks and moves the session
// to Stopping. Safe to call more than once.
func (r *Recorder) Stop() {
	r.stopInternal(false)
}

func (r *Recorder) stopInternal(external bool) {
	r.stop.Do(func() {
		close(r.done)

		r.mu.Lock()
		r.flushLocked()
		_ = r.encoder.Close()
		// Closing may finalize a last fragment.
		r.flushLocked()
		callback := r.onExternalStop
		r.mu.Unlock()

		r.stream.StopAll()
		_ = r.registry.Transition(r.session, StateStopping)

		if external && callback != nil {
			callback()
		}
	})
}
