package orderbook

type ExecType uint8

const (
	ExecNew ExecType = iota
	ExecPartialFill
	ExecFill
	ExecCanceled
	ExecRejected
)

func (t ExecType) String() string {
	switch t {
	case ExecNew:
		return "new"
	case ExecPartialFill:
		return "partial_fill"
	case ExecFill:
		return "fill"
	case ExecCanceled:
		return "canceled"
	case ExecRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Execution is a point-in-time fact about one order. The embedded Order is a
// value snapshot taken when the event was produced; it is never mutated
// afterwards.
type Execution struct {
	Type   ExecType
	Order  Order
	Taker  bool   // set on fill events for the aggressing order
	Reason string // populated on rejects
}

func execFor(o *Order, taker bool) Execution {
	t := ExecPartialFill
	if o.Open == 0 {
		t = ExecFill
	}
	return Execution{Type: t, Order: snapshot(o), Taker: taker}
}

// snapshot copies an order without its intrusive links.
func snapshot(o *Order) Order {
	c := *o
	c.next, c.prev = nil, nil
	return c
}

type CommandType uint8

const (
	CmdNew CommandType = iota
	CmdCancel
)

// Command is one inbound instruction from the session layer. Consumed exactly
// once by the incoming dispatcher.
type Command struct {
	Type         CommandType
	Order        Order
	OrigClientID string // cancel target, CmdCancel only
}
