package protocol

// Execution status codes carried on the wire. Values are stable; do not
// renumber.
const (
	StatusNew         = 0
	StatusPartialFill = 1
	StatusFill        = 2
	StatusCanceled    = 3
	StatusRejected    = 4
)

// Side codes on the wire.
const (
	SideBuy  = 0
	SideSell = 1
)

// Order type codes on the wire.
const (
	TypeLimit  = 0
	TypeMarket = 1
	TypeIOC    = 2
)

// ExecutionReport is the outbound record for one execution event. The order
// fields are a snapshot taken at the moment of the event.
type ExecutionReport struct {
	ExecID        uint64
	ClientOrderID string
	Symbol        string
	Side          int32
	Status        int32
	Price         int64
	Quantity      int64
	Open          int64
	Executed      int64
	AvgPx         float64
	LastPx        int64
	LastQty       int64
	Owner         string
	Target        string
	Reason        string
	Seq           uint64
}

// TradePrint is the public record of one fill, published once per match from
// the taker's side.
type TradePrint struct {
	ExecID   uint64
	Symbol   string
	Price    int64
	Quantity int64
	Taker    int32 // side of the aggressor
	Seq      uint64
}

type PlaceOrderRequest struct {
	ClientOrderID string
	Symbol        string
	Side          int32
	Type          int32
	Price         int64
	Quantity      int64
	Owner         string
	Target        string
}

type PlaceOrderResponse struct {
	Accepted bool
	Reason   string
}

type CancelOrderRequest struct {
	ClientOrderID string
	OrigClientID  string
	Symbol        string
	Owner         string
	Target        string
}

type CancelOrderResponse struct {
	Accepted bool
	Reason   string
}

type SnapshotRequest struct {
	Symbol string // empty means all registered symbols
}

// OrderEntry is one resting order in a snapshot.
type OrderEntry struct {
	ClientOrderID string
	Symbol        string
	Side          int32
	Price         int64
	Open          int64
	Executed      int64
	Owner         string
}

type SnapshotResponse struct {
	Orders []OrderEntry
}
