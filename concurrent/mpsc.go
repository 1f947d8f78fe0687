package concurrent

import (
	"sync/atomic"

	"tyr/infra/memory"
)

type mpscNode[T any] struct {
	value T
	next  *mpscNode[T]
}

// QueueMPSC is an unbounded lock-free multi-producer single-consumer queue.
// Producers push concurrently with a single CAS; the one consumer takes the
// whole backlog in a single swap. Flush returns items in push linearization
// order, which preserves each producer's own submission order.
type QueueMPSC[T any] struct {
	head atomic.Pointer[mpscNode[T]]
	pool *memory.Pool[mpscNode[T]]
}

func NewQueueMPSC[T any]() *QueueMPSC[T] {
	return &QueueMPSC[T]{
		pool: memory.NewPool(func() *mpscNode[T] { return &mpscNode[T]{} }),
	}
}

// Push never blocks and is safe from any goroutine.
func (q *QueueMPSC[T]) Push(v T) {
	n := q.pool.Get()
	n.value = v
	for {
		old := q.head.Load()
		n.next = old
		if q.head.CompareAndSwap(old, n) {
			return
		}
	}
}

// Flush detaches the entire backlog and returns it oldest-first. It returns
// nil when the queue is empty. Only the single consumer may call it; each
// item is handed out exactly once.
func (q *QueueMPSC[T]) Flush() []T {
	n := q.head.Swap(nil)
	if n == nil {
		return nil
	}

	count := 0
	for c := n; c != nil; c = c.next {
		count++
	}

	// The chain is newest-first; fill back-to-front to recover push order.
	out := make([]T, count)
	i := count - 1
	for n != nil {
		out[i] = n.value
		i--

		next := n.next
		var zero T
		n.value = zero
		n.next = nil
		q.pool.Put(n)
		n = next
	}
	return out
}

// Empty reports whether a push has happened since the last Flush.
func (q *QueueMPSC[T]) Empty() bool {
	return q.head.Load() == nil
}
