package service

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"tyr/concurrent"
	"tyr/domain/orderbook"
	"tyr/engine"
)

const (
	dispatcherIdleSleep  = 100 * time.Microsecond
	dispatcherAttachPoll = time.Millisecond
)

// DefaultAttachWait bounds how long the dispatcher waits for a registry to
// be attached before its run loop fails.
const DefaultAttachWait = 5 * time.Second

// Dispatcher is the single consumer of the inbound command queue. Producers
// on any goroutine call Push; the run loop drains in arrival order and routes
// each command to the registry.
type Dispatcher struct {
	in        *concurrent.QueueMPSC[orderbook.Command]
	registry  atomic.Pointer[engine.CentralBook]
	actor     *concurrent.Actor
	maxAttach time.Duration
	log       zerolog.Logger
}

func NewDispatcher(maxAttach time.Duration, log zerolog.Logger) *Dispatcher {
	if maxAttach <= 0 {
		maxAttach = DefaultAttachWait
	}
	return &Dispatcher{
		in:        concurrent.NewQueueMPSC[orderbook.Command](),
		actor:     concurrent.NewActor("incoming-dispatcher"),
		maxAttach: maxAttach,
		log:       log.With().Str("actor", "dispatcher").Logger(),
	}
}

// Attach wires the registry in. Producers may already be pushing; the run
// loop holds off draining until this has happened.
func (d *Dispatcher) Attach(reg *engine.CentralBook) { d.registry.Store(reg) }

// Push enqueues one command. Safe from any goroutine, never blocks.
func (d *Dispatcher) Push(cmd orderbook.Command) { d.in.Push(cmd) }

func (d *Dispatcher) Start() { d.actor.Start(d.run) }

func (d *Dispatcher) RequestStop() { d.actor.RequestStop() }

func (d *Dispatcher) Join() error { return d.actor.Join() }

func (d *Dispatcher) run() error {
	reg, err := d.waitForRegistry()
	if err != nil || reg == nil {
		return err
	}
	d.log.Info().Msg("dispatcher draining")

	for {
		finishing := d.actor.Finishing()
		batch := d.in.Flush()
		for i := range batch {
			d.dispatch(reg, &batch[i])
		}
		if finishing {
			// finishing was sampled before the flush, so this batch is
			// the final complete drain
			d.log.Info().Int("final_batch", len(batch)).Msg("dispatcher stopped")
			return nil
		}
		if len(batch) == 0 {
			time.Sleep(dispatcherIdleSleep)
		}
	}
}

func (d *Dispatcher) waitForRegistry() (*engine.CentralBook, error) {
	deadline := time.Now().Add(d.maxAttach)
	for {
		if reg := d.registry.Load(); reg != nil {
			return reg, nil
		}
		if d.actor.Finishing() {
			return nil, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("service: no registry attached within %s", d.maxAttach)
		}
		time.Sleep(dispatcherAttachPoll)
	}
}

func (d *Dispatcher) dispatch(reg *engine.CentralBook, cmd *orderbook.Command) {
	switch cmd.Type {
	case orderbook.CmdNew:
		reg.AddOrder(cmd.Order)
	case orderbook.CmdCancel:
		reg.CancelOrder(cmd.Order, cmd.OrigClientID)
	default:
		d.log.Warn().
			Uint8("type", uint8(cmd.Type)).
			Str("clord_id", cmd.Order.ClientID).
			Msg("unknown command dropped")
	}
}
