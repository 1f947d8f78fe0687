// Package protocol defines the wire messages exchanged with order gateways
// and downstream consumers. Messages are encoded as protobuf by hand with
// encoding/protowire; there is no generated code and no .proto toolchain in
// the build.
package protocol
