// Package message writes and reads protobuf wire-format records without
// generated code. Schemas live next to the types they encode.
package message

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

type Encoder struct {
	buf []byte
}

func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Int writes v as an int64 varint field. Zero values are still written so
// decoders see every field they expect.
func (e *Encoder) Int(num protowire.Number, v int) {
	e.buf = protowire.AppendTag(e.buf, num, protowire.VarintType)
	e.buf = protowire.AppendVarint(e.buf, uint64(int64(v)))
}

func (e *Encoder) Float32(num protowire.Number, v float32) {
	e.buf = protowire.AppendTag(e.buf, num, protowire.Fixed32Type)
	e.buf = protowire.AppendFixed32(e.buf, math.Float32bits(v))
}

// PackedFloat32 writes a packed repeated float field.
func (e *Encoder) PackedFloat32(num protowire.Number, vs []float32) {
	if len(vs) == 0 {
		return
	}
	packed := make([]byte, 0, 4*len(vs))
	for _, v := range vs {
		packed = protowire.AppendFixed32(packed, math.Float32bits(v))
	}
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendBytes(e.buf, packed)
}

// Message writes a length-delimited sub message built by fn.
func (e *Encoder) Message(num protowire.Number, fn func(sub *Encoder)) {
	sub := &Encoder{}
	fn(sub)
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendBytes(e.buf, sub.buf)
}

type Field struct {
	Num     protowire.Number
	Type    protowire.Type
	Varint  uint64
	Fixed32 uint32
	Bytes   []byte
}

func (f Field) Int() int {
	return int(int64(f.Varint))
}

func (f Field) Float32() float32 {
	return math.Float32frombits(f.Fixed32)
}

// Range calls fn for every top level field in data. Unknown wire types
// are skipped.
func Range(data []byte, fn func(f Field) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("message: bad tag: %w", protowire.ParseError(n))
		}
		data = data[n:]
		f := Field{Num: num, Type: typ}
		switch typ {
		case protowire.VarintType:
			f.Varint, n = protowire.ConsumeVarint(data)
		case protowire.Fixed32Type:
			f.Fixed32, n = protowire.ConsumeFixed32(data)
		case protowire.BytesType:
			f.Bytes, n = protowire.ConsumeBytes(data)
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
		}
		if n < 0 {
			return fmt.Errorf("message: field %d: %w", num, protowire.ParseError(n))
		}
		data = data[n:]
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// UnpackFloat32s decodes the payload of a packed repeated float field.
func UnpackFloat32s(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("message: packed float payload of %d bytes", len(b))
	}
	res := make([]float32, 0, len(b)/4)
	for len(b) > 0 {
		v, n := protowire.ConsumeFixed32(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		res = append(res, math.Float32frombits(v))
		b = b[n:]
	}
	return res, nil
}
