package rpc

import "fmt"

// codec marshals this package's hand-encoded messages for grpc-go. It
// is forced onto the server and onto every client call, so the generic
// proto codec never sees our types. The wire bytes are standard proto3.
type codec struct{}

// Name reports the codec's content-subtype. Keeping "proto" makes the
// traffic indistinguishable from generated-code peers.
func (codec) Name() string { return "proto" }

func (codec) Marshal(v any) ([]byte, error) {
	msg, ok := v.(message)
	if !ok {
		return nil, fmt.Errorf("rpc codec: cannot marshal %T", v)
	}
	return msg.marshalAppend(nil), nil
}

func (codec) Unmarshal(data []byte, v any) error {
	msg, ok := v.(message)
	if !ok {
		return fmt.Errorf("rpc codec: cannot unmarshal into %T", v)
	}
	return msg.unmarshal(data)
}
