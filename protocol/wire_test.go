package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionReportRoundTrip(t *testing.T) {
	in := ExecutionReport{
		ExecID:        42,
		ClientOrderID: "ord-1",
		Symbol:        "MSFT",
		Side:          SideSell,
		Status:        StatusPartialFill,
		Price:         10050,
		Quantity:      100,
		Open:          60,
		Executed:      40,
		AvgPx:         10050.5,
		LastPx:        10050,
		LastQty:       40,
		Owner:         "CLIENT1",
		Target:        "VENUE",
		Reason:        "",
		Seq:           7,
	}

	var out ExecutionReport
	require.NoError(t, out.UnmarshalWire(in.MarshalWire()))
	assert.Equal(t, in, out)
}

func TestExecutionReportZeroValuesOmitted(t *testing.T) {
	var in ExecutionReport
	assert.Empty(t, in.MarshalWire())

	var out ExecutionReport
	require.NoError(t, out.UnmarshalWire(nil))
	assert.Equal(t, in, out)
}

func TestSnapshotResponseRepeated(t *testing.T) {
	in := SnapshotResponse{Orders: []OrderEntry{
		{ClientOrderID: "a", Symbol: "X", Side: SideBuy, Price: 100, Open: 5, Owner: "C1"},
		{ClientOrderID: "b", Symbol: "Y", Side: SideSell, Price: 101, Open: 3, Executed: 2, Owner: "C2"},
	}}

	var out SnapshotResponse
	require.NoError(t, out.UnmarshalWire(in.MarshalWire()))
	assert.Equal(t, in, out)
}

func TestUnknownFieldsSkipped(t *testing.T) {
	req := PlaceOrderRequest{ClientOrderID: "x", Symbol: "S", Quantity: 1}
	b := req.MarshalWire()
	// append an unknown varint field number 99
	b = append(b, 0x98, 0x06, 0x01)

	var out PlaceOrderRequest
	require.NoError(t, out.UnmarshalWire(b))
	assert.Equal(t, req, out)
}

func TestCodecRejectsForeignTypes(t *testing.T) {
	var c Codec
	_, err := c.Marshal(struct{}{})
	assert.Error(t, err)
	assert.Error(t, c.Unmarshal(nil, 3))
}

func TestCodecRoundTrip(t *testing.T) {
	var c Codec
	in := &CancelOrderRequest{ClientOrderID: "c1", OrigClientID: "o1", Symbol: "X"}
	b, err := c.Marshal(in)
	require.NoError(t, err)

	out := new(CancelOrderRequest)
	require.NoError(t, c.Unmarshal(b, out))
	assert.Equal(t, in, out)
}
