package rw

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ReaderWriter reads and writes fixed size little-endian values.
// The first read failure is kept and every later read returns zero values,
// so callers check Err once after decoding a whole record.
type ReaderWriter struct {
	order   binary.ByteOrder
	dataBuf []byte
	rw      bytes.Buffer
	err     error
}

func NewBinWriter() *ReaderWriter {
	return &ReaderWriter{order: binary.LittleEndian, dataBuf: make([]byte, 8)}
}

func NewBinReader(data []byte) *ReaderWriter {
	d := &ReaderWriter{order: binary.LittleEndian, dataBuf: make([]byte, 8)}
	d.rw.Write(data)
	return d
}

func (w *ReaderWriter) Err() error {
	return w.err
}

func (w *ReaderWriter) read(n int) []byte {
	buf := w.dataBuf[:n]
	if w.err != nil {
		clear(buf)
		return buf
	}
	if _, err := io.ReadFull(&w.rw, buf); err != nil {
		w.err = fmt.Errorf("rw: read %d bytes: %w", n, io.ErrUnexpectedEOF)
		clear(buf)
	}
	return buf
}

func (w *ReaderWriter) ReadUInt8() uint8 {
	return w.read(1)[0]
}

func (w *ReaderWriter) ReadInt16() int16 {
	return int16(w.ReadUInt16())
}

func (w *ReaderWriter) ReadUInt16() uint16 {
	return w.order.Uint16(w.read(2))
}

func (w *ReaderWriter) ReadInt32() int32 {
	return int32(w.ReadUInt32())
}

func (w *ReaderWriter) ReadUInt32() uint32 {
	return w.order.Uint32(w.read(4))
}

func (w *ReaderWriter) ReadInt32s(value []int32) {
	for i := range value {
		value[i] = w.ReadInt32()
	}
}

func (w *ReaderWriter) ReadFloat32() float32 {
	return math.Float32frombits(w.ReadUInt32())
}

func (w *ReaderWriter) ReadFloat32s(value []float32) {
	for i := range value {
		value[i] = w.ReadFloat32()
	}
}

func (w *ReaderWriter) WriteUInt8(v uint8) {
	w.rw.WriteByte(v)
}

func (w *ReaderWriter) WriteInt16(v int16) {
	w.WriteUInt16(uint16(v))
}

func (w *ReaderWriter) WriteUInt16(v uint16) {
	w.order.PutUint16(w.dataBuf, v)
	w.rw.Write(w.dataBuf[:2])
}

func (w *ReaderWriter) WriteInt32(v int32) {
	w.WriteUInt32(uint32(v))
}

func (w *ReaderWriter) WriteUInt32(v uint32) {
	w.order.PutUint32(w.dataBuf, v)
	w.rw.Write(w.dataBuf[:4])
}

func (w *ReaderWriter) WriteInt32s(v []int32) {
	for _, tmp := range v {
		w.WriteInt32(tmp)
	}
}

func (w *ReaderWriter) WriteFloat32(v float32) {
	w.WriteUInt32(math.Float32bits(v))
}

func (w *ReaderWriter) WriteFloat32s(v []float32) {
	for _, tmp := range v {
		w.WriteFloat32(tmp)
	}
}

func (w *ReaderWriter) Skip(size int) {
	w.rw.Next(size)
}

func (w *ReaderWriter) GetWriteBytes() (res []byte) {
	res = w.rw.Bytes()
	return res
}

func (w *ReaderWriter) PadZero(n int) {
	for i := 0; i < n; i++ {
		w.rw.WriteByte(0)
	}
}

func (w *ReaderWriter) ChangeOrder(order binary.ByteOrder) {
	w.order = order
}

// Size returns the number of unread bytes.
func (w *ReaderWriter) Size() int {
	return w.rw.Len()
}
