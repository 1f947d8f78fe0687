package service

import "tyr/protocol"

// Gateway delivers execution reports to the counterparty session identified
// by the report's Owner/Target pair. Implementations own session lookup,
// retries and wire transport.
type Gateway interface {
	Send(report *protocol.ExecutionReport) error
}

// TradeFeed publishes public trade prints. One print per match, taken from
// the aggressor's fill.
type TradeFeed interface {
	Publish(print *protocol.TradePrint) error
}
