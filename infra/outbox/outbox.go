// Package outbox persists the delivery state of emitted execution reports.
// It is not a matching journal; books are never rebuilt from it. Its only
// job is making sure a report that left the engine is eventually delivered
// or explicitly declared dead.
package outbox

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
	StateFailed
	StateDead
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	case StateDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}

// Record tracks one report through delivery. Payload carries the wire-encoded
// report so redelivery does not need the engine.
type Record struct {
	State       State
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

// binary encoding: [state:1][retries:4][lastAttempt:8][payload...]
func encodeRecord(r Record) []byte {
	buf := make([]byte, 1+4+8+len(r.Payload))
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	copy(buf[13:], r.Payload)
	return buf
}

func decodeRecord(b []byte) (Record, error) {
	if len(b) < 13 {
		return Record{}, errors.New("outbox: record too short")
	}
	rec := Record{
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
	}
	if len(b) > 13 {
		rec.Payload = append([]byte(nil), b[13:]...)
	}
	return rec, nil
}

type Outbox struct {
	db *pebble.DB
}

func Open(dir string) (*Outbox, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false, // durability is the point
	})
	if err != nil {
		return nil, err
	}
	return &Outbox{db: db}, nil
}

func (o *Outbox) Close() error {
	return o.db.Close()
}

// PutNew records a report about to be sent for the first time. LastAttempt
// is stamped here so a record orphaned before its first send still ages into
// the redelivery job's stale scan.
func (o *Outbox) PutNew(execID uint64, payload []byte) error {
	rec := Record{
		State:       StateNew,
		LastAttempt: time.Now().UnixNano(),
		Payload:     payload,
	}
	return o.db.Set(keyFor(execID), encodeRecord(rec), pebble.Sync)
}

// MarkSent flags a report as handed to the transport, ack pending.
func (o *Outbox) MarkSent(execID uint64) error {
	return o.transition(execID, StateSent, false)
}

// MarkAcked flags a report as confirmed delivered.
func (o *Outbox) MarkAcked(execID uint64) error {
	return o.transition(execID, StateAcked, false)
}

// MarkFailed flags a delivery failure and bumps the retry count.
func (o *Outbox) MarkFailed(execID uint64) error {
	return o.transition(execID, StateFailed, true)
}

// MarkDead retires a report that exhausted its retries.
func (o *Outbox) MarkDead(execID uint64) error {
	return o.transition(execID, StateDead, false)
}

func (o *Outbox) transition(execID uint64, state State, bumpRetry bool) error {
	rec, err := o.Get(execID)
	if err != nil {
		return err
	}
	rec.State = state
	rec.LastAttempt = time.Now().UnixNano()
	if bumpRetry {
		rec.Retries++
	}
	return o.db.Set(keyFor(execID), encodeRecord(rec), pebble.Sync)
}

// Delete removes acked records during cleanup.
func (o *Outbox) Delete(execID uint64) error {
	return o.db.Delete(keyFor(execID), pebble.Sync)
}

func (o *Outbox) Get(execID uint64) (Record, error) {
	val, closer, err := o.db.Get(keyFor(execID))
	if err != nil {
		return Record{}, err
	}
	defer closer.Close()

	return decodeRecord(val)
}

// LastExecID returns the highest exec id recorded, or zero when the outbox
// is empty. The processor seeds its report numbering from this on startup so
// a restart never reuses an id and overwrites a pending record.
func (o *Outbox) LastExecID() (uint64, error) {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("exec/"),
		UpperBound: []byte("exec/~"),
	})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	if !iter.Last() {
		return 0, iter.Error()
	}
	return parseKey(iter.Key())
}

// ScanByState iterates all records in the given state in exec id order. The
// redelivery job is the only caller.
func (o *Outbox) ScanByState(state State, fn func(execID uint64, rec Record) error) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("exec/"),
		UpperBound: []byte("exec/~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		rec, err := decodeRecord(iter.Value())
		if err != nil {
			return err
		}
		if rec.State != state {
			continue
		}
		id, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		if err := fn(id, rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

func keyFor(execID uint64) []byte {
	return []byte(fmt.Sprintf("exec/%020d", execID))
}

func parseKey(b []byte) (uint64, error) {
	var id uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, []byte("exec/"))), "%d", &id)
	return id, err
}
