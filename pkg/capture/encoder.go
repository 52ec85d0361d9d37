package capture

import (
	"errors"
	"sync"
)

// Encoder is the stream-to-container encoder surface. The platform adapter
// feeds encoded bytes in; the recorder drains them on its flush ticks.
type Encoder interface {
	// ReadChunk returns everything encoded since the previous call, or nil
	// when nothing accumulated. After Close it returns ErrEncoderClosed.
	ReadChunk() ([]byte, error)

	// Close finalizes the container. Pending bytes stay readable through a
	// final ReadChunk before the error state kicks in.
	Close() error
}

// EncoderFactory builds an encoder for a stream. Injected so tests and
// platform adapters can supply their own.
type EncoderFactory func(stream *Stream, mimeType string) (Encoder, error)

var ErrEncoderClosed = errors.New("capture: encoder closed")

// ChunkBuffer is the in-process Encoder implementation: the platform side
// pushes encoded segments, the recorder side drains them.
type ChunkBuffer struct {
	mu      sync.Mutex
	pending []byte
	closed  bool
	drained bool
}

func NewChunkBuffer() *ChunkBuffer {
	return &ChunkBuffer{}
}

// Push appends encoded bytes. Pushes after Close are dropped.
func (b *ChunkBuffer) Push(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.pending = append(b.pending, data...)
}

func (b *ChunkBuffer) ReadChunk() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed && b.drained {
		return nil, ErrEncoderClosed
	}
	if b.closed {
		b.drained = true
	}
	if len(b.pending) == 0 {
		return nil, nil
	}
	out := b.pending
	b.pending = nil
	return out, nil
}

func (b *ChunkBuffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
