// Package feed publishes public trade prints. Unlike execution reports,
// prints are fire-and-forget market data; a lost print is acceptable and
// there is no outbox behind this path.
package feed

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"tyr/protocol"
)

type TradeFeed struct {
	writer  *kafka.Writer
	timeout time.Duration
}

func New(brokers []string, topic string) *TradeFeed {
	return &TradeFeed{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireOne,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
		timeout: 5 * time.Second,
	}
}

// Publish emits one print keyed by symbol, so per-symbol print order is
// preserved through partitioning.
func (f *TradeFeed) Publish(print *protocol.TradePrint) error {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	return f.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(print.Symbol),
		Value: print.MarshalWire(),
	})
}

func (f *TradeFeed) Close() error {
	return f.writer.Close()
}
