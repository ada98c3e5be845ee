package grpcserver

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// Codec carries messages as JSON so the service needs no generated stubs.
// Both ends must force it: servers with ForceServerCodec, clients with
// ForceCodec.
var Codec encoding.Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return "json" }
