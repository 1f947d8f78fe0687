package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tyr/concurrent"
	"tyr/domain/orderbook"
)

func newTestRegistry(t *testing.T, workers int, symbols ...string) *CentralBook {
	t.Helper()
	c := New(Config{
		Workers: workers,
		Logger:  zerolog.Nop(),
	})
	c.Register(symbols...)
	c.Start()
	t.Cleanup(func() { _ = c.Shutdown() })
	return c
}

func order(id, symbol string, side orderbook.Side, px, qty int64) orderbook.Order {
	return orderbook.Order{
		ClientID: id,
		Symbol:   symbol,
		Owner:    "CLIENT1",
		Target:   "VENUE",
		Side:     side,
		Type:     orderbook.Limit,
		Price:    px,
		Quantity: qty,
		Open:     qty,
	}
}

func drain(t *testing.T, q *concurrent.QueueMPMC[orderbook.Execution], n int) []orderbook.Execution {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	out := make([]orderbook.Execution, 0, n)
	for len(out) < n {
		if e, ok := q.Poll(); ok {
			out = append(out, e)
			continue
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d executions, got %d", n, len(out))
		}
		time.Sleep(time.Millisecond)
	}
	return out
}

func countByType(execs []orderbook.Execution, tp orderbook.ExecType) int {
	n := 0
	for _, e := range execs {
		if e.Type == tp {
			n++
		}
	}
	return n
}

func TestAddOrderUnknownSymbolRejected(t *testing.T) {
	c := newTestRegistry(t, 2, "AAA")

	ok := c.AddOrder(order("o1", "ZZZ", orderbook.Buy, 100, 10))
	assert.False(t, ok)

	execs := drain(t, c.Outgoing(), 1)
	assert.Equal(t, orderbook.ExecRejected, execs[0].Type)
	assert.Equal(t, "unknown symbol", execs[0].Reason)
	assert.False(t, c.Registered("ZZZ"), "reject must not create a book")
}

func TestAddOrderValidation(t *testing.T) {
	c := newTestRegistry(t, 1, "AAA")

	bad := order("o1", "AAA", orderbook.Buy, 100, 0)
	require.False(t, c.AddOrder(bad))
	execs := drain(t, c.Outgoing(), 1)
	assert.Equal(t, orderbook.ExecRejected, execs[0].Type)
	assert.Equal(t, "invalid quantity", execs[0].Reason)

	noID := order("", "AAA", orderbook.Buy, 100, 10)
	require.False(t, c.AddOrder(noID))
	execs = drain(t, c.Outgoing(), 1)
	assert.Equal(t, "missing client order id", execs[0].Reason)
}

func TestRoundTripFill(t *testing.T) {
	c := newTestRegistry(t, 2, "X")

	require.True(t, c.AddOrder(order("b1", "X", orderbook.Buy, 100, 10)))
	require.True(t, c.AddOrder(order("s1", "X", orderbook.Sell, 100, 10)))

	// two acks + two fills
	execs := drain(t, c.Outgoing(), 4)
	assert.Equal(t, 2, countByType(execs, orderbook.ExecNew))
	assert.Equal(t, 2, countByType(execs, orderbook.ExecFill))
	for _, e := range execs {
		if e.Type == orderbook.ExecFill {
			assert.Equal(t, int64(10), e.Order.Executed)
			assert.Equal(t, int64(0), e.Order.Open)
			assert.Equal(t, float64(100), e.Order.AvgPx())
		}
	}
}

func TestCancelRoutedAfterInsert(t *testing.T) {
	c := newTestRegistry(t, 1, "X")

	require.True(t, c.AddOrder(order("b1", "X", orderbook.Buy, 100, 10)))
	c.CancelOrder(order("c1", "X", orderbook.Buy, 100, 10), "b1")

	execs := drain(t, c.Outgoing(), 2)
	assert.Equal(t, orderbook.ExecNew, execs[0].Type)
	assert.Equal(t, orderbook.ExecCanceled, execs[1].Type)
	assert.Equal(t, "b1", execs[1].Order.ClientID)

	var resting int
	c.EachOrder(func(orderbook.Order) { resting++ })
	assert.Zero(t, resting)
}

func TestCancelUnknownOrderRejected(t *testing.T) {
	c := newTestRegistry(t, 1, "X")

	c.CancelOrder(order("c1", "X", orderbook.Buy, 100, 10), "ghost")
	execs := drain(t, c.Outgoing(), 1)
	assert.Equal(t, orderbook.ExecRejected, execs[0].Type)
	assert.Equal(t, "unknown order", execs[0].Reason)
}

func TestPerSymbolOrderPreserved(t *testing.T) {
	c := newTestRegistry(t, 4, "X")

	const n = 200
	for i := 0; i < n; i++ {
		require.True(t, c.AddOrder(order(fmt.Sprintf("o%d", i), "X", orderbook.Buy, int64(100+i), 1)))
	}

	execs := drain(t, c.Outgoing(), n)
	var prev uint64
	for _, e := range execs {
		require.Equal(t, orderbook.ExecNew, e.Type)
		require.Greater(t, e.Order.Seq, prev, "per-symbol processing must follow submission order")
		prev = e.Order.Seq
	}
}

func TestSymbolsRunInParallel(t *testing.T) {
	symbols := []string{"A", "B", "C", "D"}
	c := newTestRegistry(t, 4, symbols...)

	const per = 500
	var wg sync.WaitGroup
	// one producing goroutine per symbol stands in for the dispatcher
	// fan-in; ordering only matters within a symbol
	for _, s := range symbols {
		s := s
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				side := orderbook.Buy
				if i%2 == 1 {
					side = orderbook.Sell
				}
				for !c.AddOrder(order(fmt.Sprintf("%s-%d", s, i), s, side, 100, 1)) {
					time.Sleep(time.Microsecond)
				}
			}
		}()
	}
	wg.Wait()

	// every submitted command eventually yields at least its ack
	total := 0
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, ok := c.Outgoing().Poll(); ok {
			total++
			continue
		}
		if total >= len(symbols)*per {
			break
		}
		require.False(t, time.Now().After(deadline), "drained only %d events", total)
		time.Sleep(time.Millisecond)
	}
}

func TestStickyRoutingIsStable(t *testing.T) {
	c := New(Config{Workers: 4, Logger: zerolog.Nop()})
	symbols := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	c.Register(symbols...)
	c.Register(symbols...) // re-registration is a no-op

	for _, s := range symbols {
		assert.True(t, c.Registered(s))
	}
	// round-robin: 8 symbols over 4 workers, 2 each
	for w, assigned := range c.byWorker {
		assert.Len(t, assigned, 2, "worker %d", w)
	}
}

func TestSaturationRejects(t *testing.T) {
	c := New(Config{Workers: 1, TaskDepth: 1, Logger: zerolog.Nop()})
	c.Register("X")
	c.Start()
	defer func() { _ = c.Shutdown() }()

	// Hold the single worker hostage, then fill its depth-1 queue.
	release := make(chan struct{})
	require.True(t, c.pool.TrySubmit(0, func() { <-release }))
	require.True(t, c.pool.TrySubmit(0, func() {}))

	ok := c.AddOrder(order("o1", "X", orderbook.Buy, 100, 1))
	assert.False(t, ok)
	execs := drain(t, c.Outgoing(), 1)
	assert.Equal(t, orderbook.ExecRejected, execs[0].Type)
	assert.Equal(t, "engine saturated", execs[0].Reason)

	close(release)
}

func TestEachOrderSnapshot(t *testing.T) {
	c := newTestRegistry(t, 2, "A", "B")

	require.True(t, c.AddOrder(order("a1", "A", orderbook.Buy, 100, 5)))
	require.True(t, c.AddOrder(order("b1", "B", orderbook.Sell, 105, 7)))
	drain(t, c.Outgoing(), 2)

	var mu sync.Mutex
	seen := map[string]int64{}
	c.EachOrder(func(o orderbook.Order) {
		mu.Lock()
		seen[o.ClientID] = o.Open
		mu.Unlock()
	})

	assert.Equal(t, map[string]int64{"a1": 5, "b1": 7}, seen)
}

func BenchmarkAddOrderSingleSymbol(b *testing.B) {
	c := New(Config{Workers: 1, TaskDepth: 1 << 16, Logger: zerolog.Nop()})
	c.Register("X")
	c.Start()
	defer func() { _ = c.Shutdown() }()

	go func() {
		for {
			if _, ok := c.Outgoing().Poll(); !ok {
				time.Sleep(time.Microsecond)
			}
		}
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		side := orderbook.Buy
		if i%2 == 1 {
			side = orderbook.Sell
		}
		c.AddOrder(order(fmt.Sprintf("o%d", i), "X", side, 100, 1))
	}
}
