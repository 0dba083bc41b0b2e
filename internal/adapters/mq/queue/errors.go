package queue

import "errors"

// Sentinel errors for callers that turn a refused Enqueue into an error.
var (
	ErrQueueFull   = errors.New("outbox full")
	ErrQueueClosed = errors.New("outbox closed")
)

// EnqueueError explains why q refused a job.
func EnqueueError(q Queue) error {
	if q.IsClosed() {
		return ErrQueueClosed
	}
	return ErrQueueFull
}
