package protocol

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// CodecName is the content-subtype announced by clients of this service.
const CodecName = "tyrwire"

// Codec marshals protocol messages for grpc transport. Register it on the
// server with grpc.ForceServerCodec(protocol.Codec{}).
type Codec struct{}

var _ encoding.Codec = Codec{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("protocol: cannot marshal %T", v)
	}
	return m.MarshalWire(), nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(Message)
	if !ok {
		return fmt.Errorf("protocol: cannot unmarshal into %T", v)
	}
	return m.UnmarshalWire(data)
}
