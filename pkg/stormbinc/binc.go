package stormbinc

import (
	"github.com/ugorji/go/codec"
)

const name = "binc"

// Codec that encodes to and decodes from Binc.
// Struct fields are named after their msgpack tags, like the default storm codec.
// See https://github.com/ugorji/binc
var Codec = newCodec()

type bincCodec struct {
	handle *codec.BincHandle
}

func newCodec() *bincCodec {
	h := &codec.BincHandle{}
	h.TypeInfos = codec.NewTypeInfos([]string{"msgpack", "codec"})
	h.Canonical = true

	return &bincCodec{handle: h}
}

func (c *bincCodec) Marshal(v any) ([]byte, error) {
	var b []byte
	err := codec.NewEncoderBytes(&b, c.handle).Encode(v)
	return b, err
}

func (c *bincCodec) Unmarshal(b []byte, v any) error {
	return codec.NewDecoderBytes(b, c.handle).Decode(v)
}

func (c *bincCodec) Name() string {
	return name
}
