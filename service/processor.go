package service

import (
	"time"

	"github.com/rs/zerolog"

	"tyr/concurrent"
	"tyr/domain/orderbook"
	"tyr/infra/sequence"
)

const processorIdleSleep = 100 * time.Microsecond

// Processor is the single consumer of the outbound execution ring. Each
// event becomes an execution report handed to the gateway; taker fills
// additionally produce a trade print.
type Processor struct {
	out     *concurrent.QueueMPMC[orderbook.Execution]
	gateway Gateway
	feed    TradeFeed // optional
	execIDs *sequence.Sequencer
	actor   *concurrent.Actor
	log     zerolog.Logger
}

// NewProcessor builds the outgoing actor. lastExecID is the highest exec id
// already issued by a previous run (outbox.LastExecID); numbering continues
// from there so ids stay unique across restarts.
func NewProcessor(out *concurrent.QueueMPMC[orderbook.Execution], gw Gateway, feed TradeFeed, lastExecID uint64, log zerolog.Logger) *Processor {
	return &Processor{
		out:     out,
		gateway: gw,
		feed:    feed,
		execIDs: sequence.New(lastExecID),
		actor:   concurrent.NewActor("outgoing-processor"),
		log:     log.With().Str("actor", "processor").Logger(),
	}
}

func (p *Processor) Start() { p.actor.Start(p.run) }

func (p *Processor) RequestStop() { p.actor.RequestStop() }

func (p *Processor) Join() error { return p.actor.Join() }

func (p *Processor) run() error {
	for {
		e, ok := p.out.Poll()
		if !ok {
			if p.actor.Finishing() {
				p.log.Info().Uint64("last_exec_id", p.execIDs.Current()).Msg("processor stopped")
				return nil
			}
			time.Sleep(processorIdleSleep)
			continue
		}
		p.emit(e)
	}
}

func (p *Processor) emit(e orderbook.Execution) {
	id := p.execIDs.Next()
	report := reportFor(id, e)
	if err := p.gateway.Send(report); err != nil {
		// delivery policy (retry, dead-letter) lives behind the gateway;
		// here a failure is recorded and the stream moves on
		p.log.Error().Err(err).
			Uint64("exec_id", id).
			Str("clord_id", report.ClientOrderID).
			Str("owner", report.Owner).
			Msg("report delivery failed")
	}

	if p.feed == nil || !e.Taker {
		return
	}
	if e.Type != orderbook.ExecFill && e.Type != orderbook.ExecPartialFill {
		return
	}
	if err := p.feed.Publish(printFor(id, e)); err != nil {
		p.log.Error().Err(err).
			Str("symbol", report.Symbol).
			Msg("trade print publish failed")
	}
}
