package concurrent

import "sync/atomic"

type mpmcSlot[T any] struct {
	seq   atomic.Uint64
	value T
}

// QueueMPMC is a bounded lock-free multi-producer multi-consumer ring.
// Each slot carries a sequence number so producers and consumers claim cells
// with one CAS each and never pass a half-written value. Capacity must be a
// power of two.
type QueueMPMC[T any] struct {
	mask uint64
	buf  []mpmcSlot[T]

	enqueue atomic.Uint64
	_pad1   [56]byte
	dequeue atomic.Uint64
	_pad2   [56]byte
}

func NewQueueMPMC[T any](capacity uint64) *QueueMPMC[T] {
	if capacity == 0 || capacity&(capacity-1) != 0 {
		panic("concurrent: QueueMPMC capacity must be a power of two")
	}
	q := &QueueMPMC[T]{
		mask: capacity - 1,
		buf:  make([]mpmcSlot[T], capacity),
	}
	for i := range q.buf {
		q.buf[i].seq.Store(uint64(i))
	}
	return q
}

// Offer enqueues v, returning false when the ring is full. It never blocks.
func (q *QueueMPMC[T]) Offer(v T) bool {
	pos := q.enqueue.Load()
	for {
		slot := &q.buf[pos&q.mask]
		seq := slot.seq.Load()
		diff := int64(seq) - int64(pos)

		switch {
		case diff == 0:
			if q.enqueue.CompareAndSwap(pos, pos+1) {
				slot.value = v
				slot.seq.Store(pos + 1)
				return true
			}
			pos = q.enqueue.Load()
		case diff < 0:
			return false // full
		default:
			pos = q.enqueue.Load()
		}
	}
}

// Poll dequeues one value, reporting false when the ring is empty. It never
// blocks; callers yield on empty instead of spinning.
func (q *QueueMPMC[T]) Poll() (T, bool) {
	var zero T
	pos := q.dequeue.Load()
	for {
		slot := &q.buf[pos&q.mask]
		seq := slot.seq.Load()
		diff := int64(seq) - int64(pos+1)

		switch {
		case diff == 0:
			if q.dequeue.CompareAndSwap(pos, pos+1) {
				v := slot.value
				slot.value = zero
				slot.seq.Store(pos + q.mask + 1)
				return v, true
			}
			pos = q.dequeue.Load()
		case diff < 0:
			return zero, false // empty
		default:
			pos = q.dequeue.Load()
		}
	}
}

// Len is an estimate under concurrent use.
func (q *QueueMPMC[T]) Len() int {
	h := q.enqueue.Load()
	t := q.dequeue.Load()
	if h < t {
		return 0
	}
	return int(h - t)
}

func (q *QueueMPMC[T]) Cap() int { return len(q.buf) }
