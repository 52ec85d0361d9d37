package capture

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pcmSource replays a fixed sample buffer and then reports EOF.
type pcmSource struct {
	samples []int16
	pos     int
}

func (s *pcmSource) ReadPCM(buf []int16) (int, error) {
	if s.pos >= len(s.samples) {
		return 0, io.EOF
	}
	n := copy(buf, s.samples[s.pos:])
	s.pos += n
	return n, nil
}

func audioTrack(id string, samples []int16) *Track {
	return NewTrack(id, KindAudio, SourceTab, &pcmSource{samples: samples})
}

func TestMixAudioSumsSamples(t *testing.T) {
	a := audioTrack("a", []int16{100, 200, 300})
	b := audioTrack("b", []int16{1, 2, 3})

	mixed, err := MixAudio(a, b)
	require.NoError(t, err)
	assert.Equal(t, KindAudio, mixed.Kind)
	assert.Equal(t, SourceMixed, mixed.Source)

	buf := make([]int16, 3)
	n, err := mixed.PCM.ReadPCM(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int16{101, 202, 303}, buf)
}

func TestMixAudioClampsOverflow(t *testing.T) {
	a := audioTrack("a", []int16{32000, -32000})
	b := audioTrack("b", []int16{32000, -32000})

	mixed, err := MixAudio(a, b)
	require.NoError(t, err)

	buf := make([]int16, 2)
	n, err := mixed.PCM.ReadPCM(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int16(32767), buf[0])
	assert.Equal(t, int16(-32768), buf[1])
}

func TestMixAudioMutedInputContributesSilence(t *testing.T) {
	a := audioTrack("tab", []int16{10, 20})
	mic := audioTrack("mic", []int16{1000, 2000})
	mic.SetEnabled(false)

	mixed, err := MixAudio(a, mic)
	require.NoError(t, err)

	buf := make([]int16, 2)
	n, err := mixed.PCM.ReadPCM(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	// The muted mic advanced but only the tab audio came through.
	assert.Equal(t, []int16{10, 20}, buf)
}

func TestMixAudioEndsWhenBothInputsEnd(t *testing.T) {
	a := audioTrack("a", []int16{1})
	b := audioTrack("b", []int16{2, 3})

	mixed, err := MixAudio(a, b)
	require.NoError(t, err)

	buf := make([]int16, 4)
	n, err := mixed.PCM.ReadPCM(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	// One input ended early and degraded to silence.
	assert.Equal(t, []int16{3, 3}, buf[:n])

	_, err = mixed.PCM.ReadPCM(buf)
	assert.Equal(t, io.EOF, err)
}

func TestMixAudioRejectsNonAudioInputs(t *testing.T) {
	video := NewTrack("v", KindVideo, SourceTab, nil)
	mic := audioTrack("mic", []int16{1})

	_, err := MixAudio(video, mic)
	assert.Error(t, err)

	_, err = MixAudio(nil, mic)
	assert.Error(t, err)
}
