// Package kafka delivers execution reports to counterparties over a Kafka
// topic. Each report passes through the delivery outbox so a crash between
// engine and broker never loses one silently.
package kafka

import (
	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"tyr/infra/outbox"
	"tyr/protocol"
)

type Gateway struct {
	producer sarama.SyncProducer
	outbox   *outbox.Outbox
	topic    string
	log      zerolog.Logger
}

func New(brokers []string, topic string, ob *outbox.Outbox, log zerolog.Logger) (*Gateway, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithProducer(producer, topic, ob, log), nil
}

// NewWithProducer wires an existing producer, used by tests with
// sarama/mocks.
func NewWithProducer(producer sarama.SyncProducer, topic string, ob *outbox.Outbox, log zerolog.Logger) *Gateway {
	return &Gateway{
		producer: producer,
		outbox:   ob,
		topic:    topic,
		log:      log.With().Str("component", "kafka-gateway").Logger(),
	}
}

// Send publishes one report, keyed by its counterparty pair so a consumer
// session sees its own reports in order. The outbox records the outcome.
func (g *Gateway) Send(report *protocol.ExecutionReport) error {
	payload := report.MarshalWire()
	if err := g.outbox.PutNew(report.ExecID, payload); err != nil {
		return err
	}
	// SENT is recorded before the produce call: a crash mid-send leaves a
	// stale SENT record, which the redelivery job rescans
	if err := g.outbox.MarkSent(report.ExecID); err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: g.topic,
		Key:   sarama.StringEncoder(sessionKey(report.Owner, report.Target)),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := g.producer.SendMessage(msg); err != nil {
		if mErr := g.outbox.MarkFailed(report.ExecID); mErr != nil {
			g.log.Error().Err(mErr).Uint64("exec_id", report.ExecID).Msg("outbox mark failed")
		}
		return err
	}
	return g.outbox.MarkAcked(report.ExecID)
}

// Republish resends a stored payload during redelivery. The caller owns the
// retry bookkeeping.
func (g *Gateway) Republish(execID uint64, payload []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: g.topic,
		Value: sarama.ByteEncoder(payload),
	}
	_, _, err := g.producer.SendMessage(msg)
	return err
}

func (g *Gateway) Close() error {
	return g.producer.Close()
}

func sessionKey(owner, target string) string {
	return owner + "|" + target
}
