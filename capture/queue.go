// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
)

// chunkQueue hands chunks from the audio callback to the reader. push never
// blocks: when the queue is full the chunk is dropped and counted as an
// overrun.
type chunkQueue struct {
	ch       chan []byte
	done     chan struct{}
	once     sync.Once
	overruns atomic.Uint64
}

func newChunkQueue(depth int) *chunkQueue {
	return &chunkQueue{
		ch:   make(chan []byte, max(depth, 1)),
		done: make(chan struct{}),
	}
}

// push copies p into the queue. It reports false on overrun or after close.
func (q *chunkQueue) push(p []byte) bool {
	select {
	case <-q.done:
		return false
	default:
	}

	chunk := append([]byte(nil), p...)

	select {
	case q.ch <- chunk:
		return true
	default:
		q.overruns.Add(1)
		return false
	}
}

// pop waits for the next chunk. Chunks queued before close are still
// delivered; io.EOF follows.
func (q *chunkQueue) pop(ctx context.Context) ([]byte, error) {
	select {
	case chunk := <-q.ch:
		return chunk, nil
	default:
	}

	select {
	case chunk := <-q.ch:
		return chunk, nil
	case <-q.done:
		select {
		case chunk := <-q.ch:
			return chunk, nil
		default:
			return nil, io.EOF
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *chunkQueue) close() {
	q.once.Do(func() { close(q.done) })
}
