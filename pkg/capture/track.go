package capture

import "sync"

type TrackKind string

const (
	KindVideo TrackKind = "video"
	KindAudio TrackKind = "audio"
)

// SourceKind identifies where a track was acquired from.
type SourceKind string

const (
	SourceTab        SourceKind = "tab"
	SourceDesktop    SourceKind = "desktop"
	SourceMicrophone SourceKind = "microphone"
	SourceMixed      SourceKind = "mixed"
)

// AudioSource yields interleaved 16-bit PCM samples. Implementations are
// provided by the host platform adapter (or by fakes in tests); the mixer
// consumes two of these and exposes the sum as a new source.
type AudioSource interface {
	// ReadPCM fills buf and returns the number of samples written.
	// io.EOF signals the source has ended.
	ReadPCM(buf []int16) (int, error)
}

// Track is a single live media track handed out by an acquirer.
type Track struct {
	ID     string
	Kind   TrackKind
	Source SourceKind

	// PCM is set for audio tracks only.
	PCM AudioSource

	mu      sync.Mutex
	enabled bool
	stopped bool
	onEnded []func()
}

func NewTrack(id string, kind TrackKind, source SourceKind, pcm AudioSource) *Track {
	return &Track{ID: id, Kind: kind, Source: source, PCM: pcm, enabled: true}
}

// SetEnabled toggles whether the track contributes media. Disabling an audio
// track mutes it without releasing it.
func (t *Track) SetEnabled(enabled bool) {
	t.mu.Lock()
	t.enabled = enabled
	t.mu.Unlock()
}

func (t *Track) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// Stop releases the track. Ended handlers do NOT fire: this is the local
// release path, mirroring how a deliberate stop differs from external
// revocation.
func (t *Track) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *Track) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// HandleEnded registers a callback fired when the track ends outside our
// control (e.g., the user revokes capture from the browser UI).
func (t *Track) HandleEnded(fn func()) {
	t.mu.Lock()
	t.onEnded = append(t.onEnded, fn)
	t.mu.Unlock()
}

// EndExternally marks the track stopped and fires ended handlers. Platform
// adapters call this when the underlying native track ends.
func (t *Track) EndExternally() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	handlers := make([]func(), len(t.onEnded))
	copy(handlers, t.onEnded)
	t.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}
