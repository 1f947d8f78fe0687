// Package orderbook implements one symbol's resting order state and its
// price-time priority matching. A Book is single-writer: exactly one worker
// mutates it at a time, so there is no locking anywhere in this package.
//
// Bids and asks are kept in red-black trees of price levels; each level is an
// intrusive FIFO of orders. Every mutation returns the executions it produced
// as plain values, leaving delivery to the caller.
package orderbook
