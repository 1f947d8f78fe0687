package orderbook

// Book holds one symbol's resting interest. It is owned by the registry and
// borrowed by exactly one worker per command, never shared.
type Book struct {
	Symbol string

	bids *RBTree // matched best-first via Max
	asks *RBTree // matched best-first via Min

	resting map[string]*Order // client order id -> resting order
}

func NewBook(symbol string) *Book {
	return &Book{
		Symbol:  symbol,
		bids:    NewRBTree(),
		asks:    NewRBTree(),
		resting: make(map[string]*Order),
	}
}

// Insert runs the incoming order through matching and rests any limit
// remainder. It returns the acknowledgement plus one execution per order
// touched, in the order they were produced.
func (b *Book) Insert(o *Order) []Execution {
	execs := make([]Execution, 0, 4)
	execs = append(execs, Execution{Type: ExecNew, Order: snapshot(o)})

	execs = b.match(o, execs)

	if o.Open == 0 {
		return execs
	}
	switch o.Type {
	case Limit:
		b.rest(o)
	default:
		// Market and IOC remainders are canceled, not rested.
		execs = append(execs, Execution{Type: ExecCanceled, Order: snapshot(o)})
	}
	return execs
}

// Cancel removes the resting order with the given client order id. An unknown
// id yields a single Rejected execution and no book mutation.
func (b *Book) Cancel(origClientID string) []Execution {
	o, ok := b.resting[origClientID]
	if !ok {
		return []Execution{{
			Type: ExecRejected,
			Order: Order{
				ClientID: origClientID,
				Symbol:   b.Symbol,
			},
			Reason: "unknown order",
		}}
	}

	side := b.sideTree(o.Side)
	lvl := side.Find(o.Price)
	lvl.Unlink(o)
	if lvl.Empty() {
		side.Delete(o.Price)
	}
	delete(b.resting, origClientID)

	return []Execution{{Type: ExecCanceled, Order: snapshot(o)}}
}

// Orders visits every resting order, bids best-first then asks best-first.
func (b *Book) Orders(visit func(*Order)) {
	b.bids.Descend(func(lvl *PriceLevel) bool {
		lvl.Each(visit)
		return true
	})
	b.asks.Ascend(func(lvl *PriceLevel) bool {
		lvl.Each(visit)
		return true
	})
}

// Depth reports the number of populated price levels per side.
func (b *Book) Depth() (bids, asks int) {
	return b.bids.Size(), b.asks.Size()
}

// ---- matching ----

func (b *Book) match(o *Order, execs []Execution) []Execution {
	for o.Open > 0 {
		lvl := b.bestOpposite(o)
		if lvl == nil {
			break
		}
		if o.Type != Market && !crosses(o, lvl.Price) {
			break
		}

		head := lvl.Head()
		qty := min64(o.Open, head.Open)
		px := lvl.Price

		o.fill(px, qty)
		head.fill(px, qty)
		lvl.Reduce(qty)

		execs = append(execs, execFor(head, false), execFor(o, true))

		if head.Open == 0 {
			lvl.PopHead()
			delete(b.resting, head.ClientID)
			if lvl.Empty() {
				b.sideTree(head.Side).Delete(px)
			}
		}
	}
	return execs
}

func (b *Book) bestOpposite(o *Order) *PriceLevel {
	if o.Side == Buy {
		return b.asks.Min()
	}
	return b.bids.Max()
}

func crosses(o *Order, restingPrice int64) bool {
	if o.Side == Buy {
		return restingPrice <= o.Price
	}
	return restingPrice >= o.Price
}

func (b *Book) rest(o *Order) {
	b.sideTree(o.Side).GetOrCreate(o.Price).Enqueue(o)
	b.resting[o.ClientID] = o
}

func (b *Book) sideTree(s Side) *RBTree {
	if s == Buy {
		return b.bids
	}
	return b.asks
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
