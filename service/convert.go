package service

import (
	"tyr/domain/orderbook"
	"tyr/protocol"
)

func wireSide(s orderbook.Side) int32 {
	if s == orderbook.Sell {
		return protocol.SideSell
	}
	return protocol.SideBuy
}

func wireStatus(t orderbook.ExecType) int32 {
	switch t {
	case orderbook.ExecPartialFill:
		return protocol.StatusPartialFill
	case orderbook.ExecFill:
		return protocol.StatusFill
	case orderbook.ExecCanceled:
		return protocol.StatusCanceled
	case orderbook.ExecRejected:
		return protocol.StatusRejected
	default:
		return protocol.StatusNew
	}
}

// reportFor snapshots one execution event into its wire form. execID is
// assigned by the caller so report numbering stays gapless per processor.
func reportFor(execID uint64, e orderbook.Execution) *protocol.ExecutionReport {
	o := e.Order
	return &protocol.ExecutionReport{
		ExecID:        execID,
		ClientOrderID: o.ClientID,
		Symbol:        o.Symbol,
		Side:          wireSide(o.Side),
		Status:        wireStatus(e.Type),
		Price:         o.Price,
		Quantity:      o.Quantity,
		Open:          o.Open,
		Executed:      o.Executed,
		AvgPx:         o.AvgPx(),
		LastPx:        o.LastPx,
		LastQty:       o.LastQty,
		Owner:         o.Owner,
		Target:        o.Target,
		Reason:        e.Reason,
		Seq:           o.Seq,
	}
}

func printFor(execID uint64, e orderbook.Execution) *protocol.TradePrint {
	o := e.Order
	return &protocol.TradePrint{
		ExecID:   execID,
		Symbol:   o.Symbol,
		Price:    o.LastPx,
		Quantity: o.LastQty,
		Taker:    wireSide(o.Side),
		Seq:      o.Seq,
	}
}
