package queue

// Option applies a configuration option to the ChunkQueue.
type Option func(*ChunkQueue)

// WithCapacity sets the number of chunks the queue buffers.
func WithCapacity(capacity int) Option {
	return func(q *ChunkQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}
