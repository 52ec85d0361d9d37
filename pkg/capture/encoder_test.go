package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkBufferDrainsPushedData(t *testing.T) {
	b := NewChunkBuffer()

	chunk, err := b.ReadChunk()
	assert.NoError(t, err)
	assert.Nil(t, chunk)

	b.Push([]byte("abc"))
	b.Push([]byte("def"))

	chunk, err = b.ReadChunk()
	assert.NoError(t, err)
	assert.Equal(t, []byte("abcdef"), chunk)

	chunk, err = b.ReadChunk()
	assert.NoError(t, err)
	assert.Nil(t, chunk)
}

func TestChunkBufferCloseKeepsFinalFragmentReadable(t *testing.T) {
	b := NewChunkBuffer()
	b.Push([]byte("tail"))
	assert.NoError(t, b.Close())

	// Pushes after close are dropped.
	b.Push([]byte("late"))

	chunk, err := b.ReadChunk()
	assert.NoError(t, err)
	assert.Equal(t, []byte("tail"), chunk)

	_, err = b.ReadChunk()
	assert.ErrorIs(t, err, ErrEncoderClosed)
}
