package queue

// Option applies a configuration option to the GameQueue.
type Option func(*GameQueue)

// WithCapacity sets the maximum number of queued games.
func WithCapacity(capacity int) Option {
	return func(q *GameQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}
