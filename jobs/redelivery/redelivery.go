// Package redelivery re-drives execution reports whose first delivery
// attempt failed. It scans the outbox on a timer, republishes failed and
// stale-sent records, and retires anything past the retry cap.
package redelivery

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"tyr/infra/outbox"
)

// Publisher resends one stored payload. Satisfied by the kafka gateway.
type Publisher interface {
	Republish(execID uint64, payload []byte) error
}

type Job struct {
	outbox     *outbox.Outbox
	publisher  Publisher
	interval   time.Duration
	maxRetries uint32
	staleAfter time.Duration
	log        zerolog.Logger
}

type Config struct {
	Interval   time.Duration // scan period, default 250ms
	MaxRetries uint32        // attempts before a record goes dead, default 10
	StaleAfter time.Duration // sent-but-unacked age treated as lost, default 30s
}

func New(ob *outbox.Outbox, pub Publisher, cfg Config, log zerolog.Logger) *Job {
	if cfg.Interval <= 0 {
		cfg.Interval = 250 * time.Millisecond
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 10
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 30 * time.Second
	}
	return &Job{
		outbox:     ob,
		publisher:  pub,
		interval:   cfg.Interval,
		maxRetries: cfg.MaxRetries,
		staleAfter: cfg.StaleAfter,
		log:        log.With().Str("job", "redelivery").Logger(),
	}
}

// Start runs the scan loop until ctx is canceled.
func (j *Job) Start(ctx context.Context) {
	j.log.Info().Dur("interval", j.interval).Msg("redelivery started")

	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				j.log.Info().Msg("redelivery stopped")
				return
			case <-ticker.C:
				j.scanOnce(time.Now())
			}
		}
	}()
}

func (j *Job) scanOnce(now time.Time) {
	_ = j.outbox.ScanByState(outbox.StateFailed, func(id uint64, rec outbox.Record) error {
		j.redeliver(id, rec)
		return nil
	})

	// a SENT record older than staleAfter means the ack never landed; a
	// NEW record that old means the sender died between outbox write and
	// produce, with the outcome unknown either way
	cutoff := now.Add(-j.staleAfter).UnixNano()
	for _, state := range []outbox.State{outbox.StateSent, outbox.StateNew} {
		_ = j.outbox.ScanByState(state, func(id uint64, rec outbox.Record) error {
			if rec.LastAttempt < cutoff {
				j.redeliver(id, rec)
			}
			return nil
		})
	}
}

func (j *Job) redeliver(id uint64, rec outbox.Record) {
	if rec.Retries >= j.maxRetries {
		j.log.Error().
			Uint64("exec_id", id).
			Uint32("retries", rec.Retries).
			Msg("report exhausted retries, marking dead")
		if err := j.outbox.MarkDead(id); err != nil {
			j.log.Error().Err(err).Uint64("exec_id", id).Msg("outbox mark dead")
		}
		return
	}

	if err := j.publisher.Republish(id, rec.Payload); err != nil {
		j.log.Warn().Err(err).
			Uint64("exec_id", id).
			Uint32("retries", rec.Retries+1).
			Msg("redelivery attempt failed")
		if err := j.outbox.MarkFailed(id); err != nil {
			j.log.Error().Err(err).Uint64("exec_id", id).Msg("outbox mark failed")
		}
		return
	}
	if err := j.outbox.MarkAcked(id); err != nil {
		j.log.Error().Err(err).Uint64("exec_id", id).Msg("outbox mark acked")
	}
}
