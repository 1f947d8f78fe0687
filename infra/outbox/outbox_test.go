package outbox

import (
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Outbox {
	t.Helper()
	o, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, o.Close()) })
	return o
}

func TestLifecycleTransitions(t *testing.T) {
	o := openTest(t)

	require.NoError(t, o.PutNew(1, []byte("payload-1")))
	rec, err := o.Get(1)
	require.NoError(t, err)
	assert.Equal(t, StateNew, rec.State)
	assert.Equal(t, []byte("payload-1"), rec.Payload)
	assert.Zero(t, rec.Retries)

	require.NoError(t, o.MarkSent(1))
	rec, err = o.Get(1)
	require.NoError(t, err)
	assert.Equal(t, StateSent, rec.State)
	assert.NotZero(t, rec.LastAttempt)
	assert.Equal(t, []byte("payload-1"), rec.Payload, "payload survives transitions")

	require.NoError(t, o.MarkAcked(1))
	rec, err = o.Get(1)
	require.NoError(t, err)
	assert.Equal(t, StateAcked, rec.State)
}

func TestFailedBumpsRetries(t *testing.T) {
	o := openTest(t)

	require.NoError(t, o.PutNew(7, []byte("p")))
	require.NoError(t, o.MarkFailed(7))
	require.NoError(t, o.MarkFailed(7))

	rec, err := o.Get(7)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, rec.State)
	assert.Equal(t, uint32(2), rec.Retries)

	require.NoError(t, o.MarkDead(7))
	rec, err = o.Get(7)
	require.NoError(t, err)
	assert.Equal(t, StateDead, rec.State)
	assert.Equal(t, uint32(2), rec.Retries, "dead does not bump retries")
}

func TestScanByStateFiltersAndOrders(t *testing.T) {
	o := openTest(t)

	require.NoError(t, o.PutNew(3, []byte("c")))
	require.NoError(t, o.PutNew(1, []byte("a")))
	require.NoError(t, o.PutNew(2, []byte("b")))
	require.NoError(t, o.MarkFailed(2))

	var newIDs []uint64
	require.NoError(t, o.ScanByState(StateNew, func(id uint64, _ Record) error {
		newIDs = append(newIDs, id)
		return nil
	}))
	assert.Equal(t, []uint64{1, 3}, newIDs)

	var failed []uint64
	require.NoError(t, o.ScanByState(StateFailed, func(id uint64, rec Record) error {
		failed = append(failed, id)
		assert.Equal(t, []byte("b"), rec.Payload)
		return nil
	}))
	assert.Equal(t, []uint64{2}, failed)
}

func TestLastExecID(t *testing.T) {
	o := openTest(t)

	id, err := o.LastExecID()
	require.NoError(t, err)
	assert.Zero(t, id, "empty outbox")

	require.NoError(t, o.PutNew(3, []byte("c")))
	require.NoError(t, o.PutNew(12, []byte("l")))
	require.NoError(t, o.PutNew(7, []byte("g")))

	id, err = o.LastExecID()
	require.NoError(t, err)
	assert.Equal(t, uint64(12), id)
}

func TestSeededIDsDoNotOverwritePendingRecords(t *testing.T) {
	dir := t.TempDir()
	o, err := Open(dir)
	require.NoError(t, err)

	// run 1 leaves a failed record awaiting redelivery
	require.NoError(t, o.PutNew(1, []byte("run-1")))
	require.NoError(t, o.MarkFailed(1))
	require.NoError(t, o.Close())

	// run 2 resumes numbering past the old records
	o, err = Open(dir)
	require.NoError(t, err)
	defer o.Close()

	last, err := o.LastExecID()
	require.NoError(t, err)
	require.NoError(t, o.PutNew(last+1, []byte("run-2")))

	rec, err := o.Get(1)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, rec.State)
	assert.Equal(t, []byte("run-1"), rec.Payload)
}

func TestDeleteRemovesRecord(t *testing.T) {
	o := openTest(t)

	require.NoError(t, o.PutNew(5, nil))
	require.NoError(t, o.Delete(5))

	_, err := o.Get(5)
	assert.ErrorIs(t, err, pebble.ErrNotFound)
}

func TestSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	o, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, o.PutNew(9, []byte("durable")))
	require.NoError(t, o.MarkSent(9))
	require.NoError(t, o.Close())

	o, err = Open(dir)
	require.NoError(t, err)
	defer o.Close()

	rec, err := o.Get(9)
	require.NoError(t, err)
	assert.Equal(t, StateSent, rec.State)
	assert.Equal(t, []byte("durable"), rec.Payload)
}
