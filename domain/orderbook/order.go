package orderbook

type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "sell"
	}
	return "buy"
}

// Opposite returns the side an order matches against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

type OrderType uint8

const (
	Limit OrderType = iota
	Market
	IOC // immediate-or-cancel: match like a limit, cancel the remainder
)

func (t OrderType) String() string {
	switch t {
	case Market:
		return "market"
	case IOC:
		return "ioc"
	default:
		return "limit"
	}
}

// Order carries the full state of one client order. Prices are integer ticks,
// quantities integer lots. The Open/Executed split is maintained exclusively
// by fill(); everywhere else an Order is read-only.
type Order struct {
	ClientID string // client-assigned order id, unique per owner
	Symbol   string
	Owner    string // submitting counterparty
	Target   string // venue identifier the reply is sent from
	Side     Side
	Type     OrderType
	Price    int64  // ticks; ignored for market orders
	Quantity int64  // original quantity
	Open     int64  // remaining
	Executed int64
	LastPx   int64  // last fill price
	LastQty  int64  // last fill quantity
	Seq      uint64 // arrival sequence stamped by the registry

	notional int64 // sum of px*qty over fills, feeds AvgPx

	next, prev *Order // FIFO links within a price level
}

// AvgPx returns the average executed price, zero when nothing has filled.
func (o *Order) AvgPx() float64 {
	if o.Executed == 0 {
		return 0
	}
	return float64(o.notional) / float64(o.Executed)
}

func (o *Order) Filled() bool { return o.Open == 0 }

// fill applies one execution. Open+Executed == Quantity before and after.
func (o *Order) fill(px, qty int64) {
	o.Open -= qty
	o.Executed += qty
	o.notional += px * qty
	o.LastPx = px
	o.LastQty = qty
}
