package stormcbor

import (
	"github.com/ugorji/go/codec"
)

const name = "cbor"

// Codec that encodes to and decodes from CBOR (Concise Binary Object Representation).
// Struct fields are named after their msgpack tags, like the default storm codec.
// http://cbor.io/
// https://tools.ietf.org/html/rfc7049
var Codec = newCodec()

type cborCodec struct {
	handle *codec.CborHandle
}

func newCodec() *cborCodec {
	h := &codec.CborHandle{}
	h.TypeInfos = codec.NewTypeInfos([]string{"msgpack", "codec"})
	h.Canonical = true
	h.TimeRFC3339 = true

	return &cborCodec{handle: h}
}

func (c *cborCodec) Marshal(v any) ([]byte, error) {
	var b []byte
	err := codec.NewEncoderBytes(&b, c.handle).Encode(v)
	return b, err
}

func (c *cborCodec) Unmarshal(b []byte, v any) error {
	return codec.NewDecoderBytes(b, c.handle).Decode(v)
}

func (c *cborCodec) Name() string {
	return name
}
