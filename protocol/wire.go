package protocol

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Message is any protocol value that knows its own wire form.
type Message interface {
	MarshalWire() []byte
	UnmarshalWire(b []byte) error
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarint(b, num, 1)
}

// walkFields iterates tags and dispatches each value to set. A zero length
// from set means the field was not consumed and is skipped, so older readers
// tolerate newer writers.
func walkFields(b []byte, set func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		n, err := set(num, typ, b)
		if err != nil {
			return err
		}
		if n == 0 {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
		}
		b = b[n:]
	}
	return nil
}

func consumeString(b []byte, dst *string) (int, error) {
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = v
	return n, nil
}

func consumeVarint(b []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func (m *ExecutionReport) MarshalWire() []byte {
	var b []byte
	b = appendVarint(b, 1, m.ExecID)
	b = appendString(b, 2, m.ClientOrderID)
	b = appendString(b, 3, m.Symbol)
	b = appendVarint(b, 4, uint64(m.Side))
	b = appendVarint(b, 5, uint64(m.Status))
	b = appendVarint(b, 6, uint64(m.Price))
	b = appendVarint(b, 7, uint64(m.Quantity))
	b = appendVarint(b, 8, uint64(m.Open))
	b = appendVarint(b, 9, uint64(m.Executed))
	b = appendDouble(b, 10, m.AvgPx)
	b = appendVarint(b, 11, uint64(m.LastPx))
	b = appendVarint(b, 12, uint64(m.LastQty))
	b = appendString(b, 13, m.Owner)
	b = appendString(b, 14, m.Target)
	b = appendString(b, 15, m.Reason)
	b = appendVarint(b, 16, m.Seq)
	return b
}

func (m *ExecutionReport) UnmarshalWire(b []byte) error {
	*m = ExecutionReport{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case typ == protowire.BytesType:
			switch num {
			case 2:
				return consumeString(b, &m.ClientOrderID)
			case 3:
				return consumeString(b, &m.Symbol)
			case 13:
				return consumeString(b, &m.Owner)
			case 14:
				return consumeString(b, &m.Target)
			case 15:
				return consumeString(b, &m.Reason)
			}
		case typ == protowire.Fixed64Type && num == 10:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.AvgPx = math.Float64frombits(v)
			return n, nil
		case typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			switch num {
			case 1:
				m.ExecID = v
			case 4:
				m.Side = int32(v)
			case 5:
				m.Status = int32(v)
			case 6:
				m.Price = int64(v)
			case 7:
				m.Quantity = int64(v)
			case 8:
				m.Open = int64(v)
			case 9:
				m.Executed = int64(v)
			case 11:
				m.LastPx = int64(v)
			case 12:
				m.LastQty = int64(v)
			case 16:
				m.Seq = v
			}
			return n, nil
		}
		return 0, nil
	})
}

func (m *TradePrint) MarshalWire() []byte {
	var b []byte
	b = appendVarint(b, 1, m.ExecID)
	b = appendString(b, 2, m.Symbol)
	b = appendVarint(b, 3, uint64(m.Price))
	b = appendVarint(b, 4, uint64(m.Quantity))
	b = appendVarint(b, 5, uint64(m.Taker))
	b = appendVarint(b, 6, m.Seq)
	return b
}

func (m *TradePrint) UnmarshalWire(b []byte) error {
	*m = TradePrint{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case typ == protowire.BytesType && num == 2:
			return consumeString(b, &m.Symbol)
		case typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			switch num {
			case 1:
				m.ExecID = v
			case 3:
				m.Price = int64(v)
			case 4:
				m.Quantity = int64(v)
			case 5:
				m.Taker = int32(v)
			case 6:
				m.Seq = v
			}
			return n, nil
		}
		return 0, nil
	})
}

func (m *PlaceOrderRequest) MarshalWire() []byte {
	var b []byte
	b = appendString(b, 1, m.ClientOrderID)
	b = appendString(b, 2, m.Symbol)
	b = appendVarint(b, 3, uint64(m.Side))
	b = appendVarint(b, 4, uint64(m.Type))
	b = appendVarint(b, 5, uint64(m.Price))
	b = appendVarint(b, 6, uint64(m.Quantity))
	b = appendString(b, 7, m.Owner)
	b = appendString(b, 8, m.Target)
	return b
}

func (m *PlaceOrderRequest) UnmarshalWire(b []byte) error {
	*m = PlaceOrderRequest{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case typ == protowire.BytesType:
			switch num {
			case 1:
				return consumeString(b, &m.ClientOrderID)
			case 2:
				return consumeString(b, &m.Symbol)
			case 7:
				return consumeString(b, &m.Owner)
			case 8:
				return consumeString(b, &m.Target)
			}
		case typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			switch num {
			case 3:
				m.Side = int32(v)
			case 4:
				m.Type = int32(v)
			case 5:
				m.Price = int64(v)
			case 6:
				m.Quantity = int64(v)
			}
			return n, nil
		}
		return 0, nil
	})
}

func (m *PlaceOrderResponse) MarshalWire() []byte {
	var b []byte
	b = appendBool(b, 1, m.Accepted)
	b = appendString(b, 2, m.Reason)
	return b
}

func (m *PlaceOrderResponse) UnmarshalWire(b []byte) error {
	*m = PlaceOrderResponse{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case typ == protowire.BytesType && num == 2:
			return consumeString(b, &m.Reason)
		case typ == protowire.VarintType && num == 1:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			m.Accepted = v != 0
			return n, nil
		}
		return 0, nil
	})
}

func (m *CancelOrderRequest) MarshalWire() []byte {
	var b []byte
	b = appendString(b, 1, m.ClientOrderID)
	b = appendString(b, 2, m.OrigClientID)
	b = appendString(b, 3, m.Symbol)
	b = appendString(b, 4, m.Owner)
	b = appendString(b, 5, m.Target)
	return b
}

func (m *CancelOrderRequest) UnmarshalWire(b []byte) error {
	*m = CancelOrderRequest{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.BytesType {
			return 0, nil
		}
		switch num {
		case 1:
			return consumeString(b, &m.ClientOrderID)
		case 2:
			return consumeString(b, &m.OrigClientID)
		case 3:
			return consumeString(b, &m.Symbol)
		case 4:
			return consumeString(b, &m.Owner)
		case 5:
			return consumeString(b, &m.Target)
		}
		return 0, nil
	})
}

func (m *CancelOrderResponse) MarshalWire() []byte {
	var b []byte
	b = appendBool(b, 1, m.Accepted)
	b = appendString(b, 2, m.Reason)
	return b
}

func (m *CancelOrderResponse) UnmarshalWire(b []byte) error {
	*m = CancelOrderResponse{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case typ == protowire.BytesType && num == 2:
			return consumeString(b, &m.Reason)
		case typ == protowire.VarintType && num == 1:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			m.Accepted = v != 0
			return n, nil
		}
		return 0, nil
	})
}

func (m *SnapshotRequest) MarshalWire() []byte {
	return appendString(nil, 1, m.Symbol)
}

func (m *SnapshotRequest) UnmarshalWire(b []byte) error {
	*m = SnapshotRequest{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ == protowire.BytesType && num == 1 {
			return consumeString(b, &m.Symbol)
		}
		return 0, nil
	})
}

func (m *OrderEntry) marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.ClientOrderID)
	b = appendString(b, 2, m.Symbol)
	b = appendVarint(b, 3, uint64(m.Side))
	b = appendVarint(b, 4, uint64(m.Price))
	b = appendVarint(b, 5, uint64(m.Open))
	b = appendVarint(b, 6, uint64(m.Executed))
	b = appendString(b, 7, m.Owner)
	return b
}

func (m *OrderEntry) unmarshal(b []byte) error {
	*m = OrderEntry{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case typ == protowire.BytesType:
			switch num {
			case 1:
				return consumeString(b, &m.ClientOrderID)
			case 2:
				return consumeString(b, &m.Symbol)
			case 7:
				return consumeString(b, &m.Owner)
			}
		case typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			switch num {
			case 3:
				m.Side = int32(v)
			case 4:
				m.Price = int64(v)
			case 5:
				m.Open = int64(v)
			case 6:
				m.Executed = int64(v)
			}
			return n, nil
		}
		return 0, nil
	})
}

func (m *SnapshotResponse) MarshalWire() []byte {
	var b []byte
	for i := range m.Orders {
		sub := m.Orders[i].marshal()
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, sub)
	}
	return b
}

func (m *SnapshotResponse) UnmarshalWire(b []byte) error {
	*m = SnapshotResponse{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.BytesType || num != 1 {
			return 0, nil
		}
		sub, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		var e OrderEntry
		if err := e.unmarshal(sub); err != nil {
			return 0, fmt.Errorf("order entry: %w", err)
		}
		m.Orders = append(m.Orders, e)
		return n, nil
	})
}
