package capture

import (
	"errors"
	"io"

	"github.com/google/uuid"
)

// mixedSource sums two PCM inputs into one. An input whose track is disabled
// contributes silence, which is what lets mute target the microphone without
// touching the tab audio inside the same mixed track. A source that ends
// early also degrades to silence; the mix ends when both inputs have ended.
type mixedSource struct {
	a, b *Track
	aEOF bool
	bEOF bool
	bufA []int16
	bufB []int16
}

func (m *mixedSource) ReadPCM(buf []int16) (int, error) {
	if m.aEOF && m.bEOF {
		return 0, io.EOF
	}

	if cap(m.bufA) < len(buf) {
		m.bufA = make([]int16, len(buf))
		m.bufB = make([]int16, len(buf))
	}
	bufA := m.bufA[:len(buf)]
	bufB := m.bufB[:len(buf)]

	nA := m.readInput(m.a, &m.aEOF, bufA)
	nB := m.readInput(m.b, &m.bEOF, bufB)

	n := nA
	if nB > n {
		n = nB
	}
	if n == 0 {
		if m.aEOF && m.bEOF {
			return 0, io.EOF
		}
		return 0, nil
	}

	for i := 0; i < n; i++ {
		var sample int32
		if i < nA {
			sample += int32(bufA[i])
		}
		if i < nB {
			sample += int32(bufB[i])
		}
		buf[i] = clampSample(sample)
	}
	return n, nil
}

func (m *mixedSource) readInput(t *Track, eof *bool, buf []int16) int {
	if *eof || t.PCM == nil {
		*eof = true
		return 0
	}
	n, err := t.PCM.ReadPCM(buf)
	if err != nil {
		*eof = true
	}
	if !t.Enabled() {
		// Muted input still advances but contributes silence.
		for i := 0; i < n; i++ {
			buf[i] = 0
		}
	}
	return n
}

func clampSample(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// MixAudio combines two audio tracks into a single mixed track: both inputs
// summed sample-by-sample with clamping. Used for tab recordings where the
// microphone has to share the one audio slot with the tab's own audio.
func MixAudio(a, b *Track) (*Track, error) {
	if a == nil || b == nil {
		return nil, errors.New("capture: mixer requires two audio tracks")
	}
	if a.Kind != KindAudio || b.Kind != KindAudio {
		return nil, errors.New("capture: mixer inputs must be audio tracks")
	}

	src := &mixedSource{a: a, b: b}
	return NewTrack("mixed_"+uuid.NewString(), KindAudio, SourceMixed, src), nil
}
