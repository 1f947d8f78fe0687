package engine

import (
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"tyr/concurrent"
	"tyr/domain/orderbook"
	"tyr/infra/sequence"
)

const (
	defaultWorkers       = 4
	defaultTaskDepth     = 1024
	defaultOutboundDepth = 1 << 16
)

type Config struct {
	Workers       int
	TaskDepth     int    // per-worker task queue capacity
	OutboundDepth uint64 // execution ring capacity, power of two
	Assign        Assigner
	Logger        zerolog.Logger
}

// CentralBook is the registry of all symbols. It owns the symbol->book map,
// the symbol->worker routing table, the worker pool and the shared outbound
// ring. Registration happens before traffic starts; after Start the maps are
// read-only, which is what lets routing lookups run without locks.
type CentralBook struct {
	books    map[string]*orderbook.Book
	workerOf map[string]int
	byWorker [][]string // symbols per worker, for traversal

	pool   *WorkerPool
	assign Assigner
	out    *concurrent.QueueMPMC[orderbook.Execution]
	seq    *sequence.Sequencer
	log    zerolog.Logger
}

func New(cfg Config) *CentralBook {
	if cfg.Workers < 1 {
		cfg.Workers = defaultWorkers
	}
	if cfg.TaskDepth < 1 {
		cfg.TaskDepth = defaultTaskDepth
	}
	if cfg.OutboundDepth == 0 {
		cfg.OutboundDepth = defaultOutboundDepth
	}
	if cfg.Assign == nil {
		cfg.Assign = RoundRobin()
	}
	return &CentralBook{
		books:    make(map[string]*orderbook.Book),
		workerOf: make(map[string]int),
		byWorker: make([][]string, cfg.Workers),
		pool:     NewWorkerPool(cfg.Workers, cfg.TaskDepth, cfg.Logger),
		assign:   cfg.Assign,
		out:      concurrent.NewQueueMPMC[orderbook.Execution](cfg.OutboundDepth),
		seq:      sequence.New(0),
		log:      cfg.Logger,
	}
}

// Register creates books for the given symbols and pins each to a worker.
// Must complete before Start; there is no runtime registration path.
func (c *CentralBook) Register(symbols ...string) {
	for _, s := range symbols {
		if _, ok := c.books[s]; ok {
			continue
		}
		w := c.assign(s, c.pool.Size())
		c.books[s] = orderbook.NewBook(s)
		c.workerOf[s] = w
		c.byWorker[w] = append(c.byWorker[w], s)
		c.log.Info().Str("symbol", s).Int("worker", w).Msg("symbol registered")
	}
}

func (c *CentralBook) Registered(symbol string) bool {
	_, ok := c.books[symbol]
	return ok
}

func (c *CentralBook) Start() { c.pool.Start() }

// Shutdown joins the worker pool after in-flight tasks complete.
func (c *CentralBook) Shutdown() error { return c.pool.Shutdown() }

// Outgoing exposes the shared execution ring consumed by the outgoing
// processor.
func (c *CentralBook) Outgoing() *concurrent.QueueMPMC[orderbook.Execution] {
	return c.out
}

// AddOrder validates the order and routes it to its symbol's worker. The
// return value means "accepted for processing", not "matched"; results arrive
// later on the outgoing ring. Invalid or unroutable orders yield a Rejected
// execution immediately and never touch a book.
func (c *CentralBook) AddOrder(o orderbook.Order) bool {
	if reason := validate(&o); reason != "" {
		c.RejectOrder(o, reason)
		return false
	}
	w, ok := c.workerOf[o.Symbol]
	if !ok {
		c.RejectOrder(o, "unknown symbol")
		return false
	}

	o.Seq = c.seq.Next()
	book := c.books[o.Symbol]
	accepted := c.pool.TrySubmit(w, func() {
		// o escapes into the task; the book keeps it if the order rests
		c.publish(book.Insert(&o))
	})
	if !accepted {
		c.RejectOrder(o, "engine saturated")
		return false
	}
	return true
}

// CancelOrder routes a cancel to the same worker as the symbol's order flow,
// preserving relative order with earlier commands for that symbol.
func (c *CentralBook) CancelOrder(o orderbook.Order, origClientID string) {
	w, ok := c.workerOf[o.Symbol]
	if !ok {
		c.RejectOrder(o, "unknown symbol")
		return
	}
	book := c.books[o.Symbol]
	if !c.pool.TrySubmit(w, func() {
		c.publish(book.Cancel(origClientID))
	}) {
		c.RejectOrder(o, "engine saturated")
	}
}

// RejectOrder pushes a Rejected execution directly, bypassing the workers.
func (c *CentralBook) RejectOrder(o orderbook.Order, reason string) {
	c.log.Warn().
		Str("symbol", o.Symbol).
		Str("client_id", o.ClientID).
		Str("reason", reason).
		Msg("order rejected")
	c.publish([]orderbook.Execution{{
		Type:   orderbook.ExecRejected,
		Order:  o,
		Reason: reason,
	}})
}

// EachOrder snapshots all resting orders by running the traversal on the
// owning workers themselves, so it serializes against matching per symbol.
// visit is called from worker goroutines and must be safe for concurrent use.
func (c *CentralBook) EachOrder(visit func(orderbook.Order)) {
	var wg sync.WaitGroup
	for w, symbols := range c.byWorker {
		if len(symbols) == 0 {
			continue
		}
		symbols := symbols
		wg.Add(1)
		task := func() {
			defer wg.Done()
			for _, s := range symbols {
				c.books[s].Orders(func(o *orderbook.Order) {
					visit(*o)
				})
			}
		}
		if !c.pool.TrySubmit(w, task) {
			wg.Done() // saturated or stopping worker skipped; snapshot stays partial
		}
	}
	wg.Wait()
}

// publish moves executions onto the outbound ring. The ring is sized for
// bursts; if it still fills, the owning worker yields until the processor
// catches up rather than dropping events.
func (c *CentralBook) publish(execs []orderbook.Execution) {
	for i := range execs {
		for !c.out.Offer(execs[i]) {
			runtime.Gosched()
		}
	}
}

func validate(o *orderbook.Order) string {
	switch {
	case o.ClientID == "":
		return "missing client order id"
	case o.Quantity <= 0 || o.Open != o.Quantity || o.Executed != 0:
		return "invalid quantity"
	case o.Type != orderbook.Market && o.Price <= 0:
		return "invalid price"
	default:
		return ""
	}
}
