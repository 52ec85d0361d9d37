package capture

import "sync"

// Stream is an ordered set of live tracks produced by one acquisition.
type Stream struct {
	mu     sync.Mutex
	tracks []*Track

	// mic is set when a microphone track was acquired separately from the
	// primary capture. Mute operations target this track (or its mixer
	// input) instead of the capture audio.
	mic *Track
}

func NewStream(tracks ...*Track) *Stream {
	return &Stream{tracks: tracks}
}

func (s *Stream) Tracks() []*Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

func (s *Stream) VideoTracks() []*Track {
	return s.tracksOfKind(KindVideo)
}

func (s *Stream) AudioTracks() []*Track {
	return s.tracksOfKind(KindAudio)
}

func (s *Stream) tracksOfKind(kind TrackKind) []*Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Track
	for _, t := range s.tracks {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

// AddTrack appends a track, e.g. a standalone microphone track for desktop
// recordings.
func (s *Stream) AddTrack(t *Track) {
	s.mu.Lock()
	s.tracks = append(s.tracks, t)
	s.mu.Unlock()
}

// ReplaceAudioTrack swaps out every audio track for the given one, stopping
// the originals is the caller's choice (the mixer keeps reading them). Video
// tracks are untouched.
func (s *Stream) ReplaceAudioTrack(t *Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tracks[:0]
	for _, existing := range s.tracks {
		if existing.Kind != KindAudio {
			kept = append(kept, existing)
		}
	}
	s.tracks = append(kept, t)
}

// SetMicTrack records which track carries the separately acquired microphone.
func (s *Stream) SetMicTrack(t *Track) {
	s.mu.Lock()
	s.mic = t
	s.mu.Unlock()
}

func (s *Stream) MicTrack() *Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mic
}

// StopAll releases every track in the stream, mic included.
func (s *Stream) StopAll() {
	s.mu.Lock()
	tracks := make([]*Track, len(s.tracks))
	copy(tracks, s.tracks)
	mic := s.mic
	s.mu.Unlock()

	for _, t := range tracks {
		t.Stop()
	}
	if mic != nil {
		mic.Stop()
	}
}
