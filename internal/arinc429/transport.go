package arinc429

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Transport layout of a packed word (uint64):
//
//	bits  0-31  payload: IEEE-754 float32 bits for numeric words, raw bits for discretes
//	bits 32-33  SSM
//	bits 34-63  zero
//
// On the wire a packed word is 8 bytes, big-endian. float64 payloads are narrowed to
// float32 when packed.
const (
	ssmShift   = 32
	ssmMask    = 0b11
	PackedSize = 8
)

// ErrShortBuffer is returned when a binary encoding is truncated.
var ErrShortBuffer = errors.New("arinc429: short buffer")

// Pack encodes the word into its transport representation.
func (w Word[T]) Pack() uint64 {
	var bits uint32
	switch v := any(w.value).(type) {
	case float32:
		bits = math.Float32bits(v)
	case float64:
		bits = math.Float32bits(float32(v))
	case uint32:
		bits = v
	}
	return uint64(w.ssm&ssmMask)<<ssmShift | uint64(bits)
}

// Unpack decodes a transport representation produced by Pack.
func (w *Word[T]) Unpack(raw uint64) {
	bits := uint32(raw)
	w.ssm = SSM(raw>>ssmShift) & ssmMask
	var v T
	switch p := any(&v).(type) {
	case *float32:
		*p = math.Float32frombits(bits)
	case *float64:
		*p = float64(math.Float32frombits(bits))
	case *uint32:
		*p = bits
	}
	w.value = v
}

// MarshalBinary writes the packed word as 8 big-endian bytes.
func (w Word[T]) MarshalBinary() ([]byte, error) {
	buf := make([]byte, PackedSize)
	binary.BigEndian.PutUint64(buf, w.Pack())
	return buf, nil
}

// UnmarshalBinary reads 8 big-endian bytes written by MarshalBinary.
func (w *Word[T]) UnmarshalBinary(data []byte) error {
	if len(data) < PackedSize {
		return fmt.Errorf("unmarshal word: %w", ErrShortBuffer)
	}
	w.Unpack(binary.BigEndian.Uint64(data))
	return nil
}

// Label is an octal ARINC-429 label number.
type Label uint16

// Entry is one labeled packed word inside a Frame.
type Entry struct {
	Label Label
	Raw   uint64
}

const entrySize = 2 + PackedSize

// Frame is an ordered list of labeled words, the unit published by the bench for
// one computer's output bus.
type Frame []Entry

// Add appends a packed word under the given label.
func (f *Frame) Add(label Label, raw uint64) {
	*f = append(*f, Entry{Label: label, Raw: raw})
}

// Encode writes each entry as a 2-byte big-endian label followed by the packed word.
func (f Frame) Encode() []byte {
	buf := make([]byte, 0, len(f)*entrySize)
	for _, e := range f {
		buf = binary.BigEndian.AppendUint16(buf, uint16(e.Label))
		buf = binary.BigEndian.AppendUint64(buf, e.Raw)
	}
	return buf
}

// DecodeFrame parses the output of Frame.Encode.
func DecodeFrame(data []byte) (Frame, error) {
	if len(data)%entrySize != 0 {
		return nil, fmt.Errorf("decode frame: %d bytes: %w", len(data), ErrShortBuffer)
	}
	f := make(Frame, 0, len(data)/entrySize)
	for off := 0; off < len(data); off += entrySize {
		f = append(f, Entry{
			Label: Label(binary.BigEndian.Uint16(data[off:])),
			Raw:   binary.BigEndian.Uint64(data[off+2:]),
		})
	}
	return f, nil
}

// Lookup returns the packed word for label, if present.
func (f Frame) Lookup(label Label) (uint64, bool) {
	for _, e := range f {
		if e.Label == label {
			return e.Raw, true
		}
	}
	return 0, false
}
