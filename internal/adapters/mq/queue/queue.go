// Package queue hands line-aligned input chunks to the fold workers.
//
// The queue is a bounded channel; producers enqueue every chunk of a run and
// close it, consumers range over Dequeue until it drains.
package queue

import (
	"context"
	"sync"

	"github.com/okian/brc/internal/domain/partition"
	"github.com/okian/brc/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 1024
)

// Chunk is the payload flowing through the queue.
type Chunk = partition.Chunk

// Queue provides blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a chunk, waiting for room. Returns false if the queue is
	// closed or ctx is done first.
	Enqueue(ctx context.Context, c Chunk) bool

	// Dequeue returns a channel that yields chunks until the queue is
	// closed and drained, or ctx is done.
	Dequeue(ctx context.Context) <-chan Chunk

	// Len returns the current number of queued chunks.
	Len(ctx context.Context) int

	// Close stops accepting chunks. Already queued chunks are still delivered.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// ChunkQueue implements Queue using a buffered channel.
type ChunkQueue struct {
	chunks   chan Chunk
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewChunkQueue creates a queue with configuration options.
func NewChunkQueue(opts ...Option) *ChunkQueue {
	q := &ChunkQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.chunks = make(chan Chunk, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a chunk to the queue.
func (q *ChunkQueue) Enqueue(ctx context.Context, c Chunk) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.chunks <- c:
		metrics.UpdateQueueSize(len(q.chunks))
		return true
	case <-ctx.Done():
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	}
}

// Dequeue returns the receive side of the queue. Every caller shares the
// same underlying channel, so each chunk goes to exactly one consumer.
func (q *ChunkQueue) Dequeue(ctx context.Context) <-chan Chunk {
	out := make(chan Chunk)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case c, ok := <-q.chunks:
				if !ok {
					return
				}
				metrics.UpdateQueueSize(len(q.chunks))
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of queued chunks.
func (q *ChunkQueue) Len(_ context.Context) int {
	return len(q.chunks)
}

// Capacity returns the configured capacity.
func (q *ChunkQueue) Capacity() int { return q.capacity }

// Close stops accepting chunks.
func (q *ChunkQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.chunks)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *ChunkQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
