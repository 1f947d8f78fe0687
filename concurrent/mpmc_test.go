package concurrent

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMPMCCapacityMustBePowerOfTwo(t *testing.T) {
	assert.Panics(t, func() { NewQueueMPMC[int](100) })
	assert.Panics(t, func() { NewQueueMPMC[int](0) })
	assert.NotPanics(t, func() { NewQueueMPMC[int](128) })
}

func TestMPMCOfferPoll(t *testing.T) {
	q := NewQueueMPMC[int](4)

	_, ok := q.Poll()
	assert.False(t, ok, "empty queue must report empty")

	for i := 0; i < 4; i++ {
		require.True(t, q.Offer(i))
	}
	assert.False(t, q.Offer(99), "full queue must refuse")

	for i := 0; i < 4; i++ {
		v, ok := q.Poll()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok = q.Poll()
	assert.False(t, ok)
}

func TestMPMCWrapAround(t *testing.T) {
	q := NewQueueMPMC[int](2)
	for round := 0; round < 1000; round++ {
		require.True(t, q.Offer(round))
		v, ok := q.Poll()
		require.True(t, ok)
		require.Equal(t, round, v)
	}
}

func TestMPMCNoLossNoDup(t *testing.T) {
	const producers = 4
	const consumers = 4
	const perProducer = 5000

	q := NewQueueMPMC[int](1024)

	var prodWG sync.WaitGroup
	for p := 0; p < producers; p++ {
		prodWG.Add(1)
		go func(p int) {
			defer prodWG.Done()
			for i := 0; i < perProducer; i++ {
				v := p*perProducer + i
				for !q.Offer(v) {
					runtime.Gosched()
				}
			}
		}(p)
	}

	var mu sync.Mutex
	seen := make(map[int]int, producers*perProducer)
	var consWG sync.WaitGroup
	stop := make(chan struct{})
	for c := 0; c < consumers; c++ {
		consWG.Add(1)
		go func() {
			defer consWG.Done()
			for {
				v, ok := q.Poll()
				if !ok {
					select {
					case <-stop:
						if _, ok := q.Poll(); !ok {
							return
						}
					default:
						runtime.Gosched()
					}
					continue
				}
				mu.Lock()
				seen[v]++
				mu.Unlock()
			}
		}()
	}

	prodWG.Wait()
	close(stop)
	consWG.Wait()

	// final drain by this goroutine
	for {
		v, ok := q.Poll()
		if !ok {
			break
		}
		seen[v]++
	}

	require.Len(t, seen, producers*perProducer)
	for v, n := range seen {
		require.Equal(t, 1, n, "value %d seen %d times", v, n)
	}
}

func BenchmarkMPMCOfferPoll(b *testing.B) {
	q := NewQueueMPMC[int](1 << 14)
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if q.Offer(1) {
				q.Poll()
			}
		}
	})
}
