// Package tensor defines tensor handles, metadata, and the storage-format
// registry that sizes and initializes tensors.
package tensor

import (
	"encoding/binary"
	"math"
)

// ID is the handle of a tensor instance in a node-local store.
//
// IDs assigned by the scheduler are non-negative. The store hands out ids
// at or below -2 for anonymous tensors. None never denotes a real tensor.
type ID int32

// None is the reserved tensor id sentinel. It doubles as the end marker of
// notification streams and as the "assign a fresh id" request in store
// reservations.
const None ID = -1

// FormatID identifies a storage format registered with a Registry.
type FormatID int32

// FormatNone marks metadata whose format has not been resolved yet.
const FormatNone FormatID = -1

// Meta describes a tensor without holding its payload.
type Meta struct {
	Format FormatID
	Dims   []int64
}

// NumElements returns the product of the dimensions.
func (m Meta) NumElements() int64 {
	n := int64(1)
	for _, d := range m.Dims {
		n *= d
	}

	return n
}

// Clone returns a copy of the metadata that shares no state with m.
func (m Meta) Clone() Meta {
	c := m
	c.Dims = append([]int64(nil), m.Dims...)

	return c
}

// A Tensor is one node-local tensor instance: its metadata plus the raw
// payload bytes that hold its content. The payload is allocated by the store
// at reservation time and sized exactly; formats only interpret it.
type Tensor struct {
	meta Meta
	data []byte
}

// NewTensor creates a tensor with a zeroed payload of the given byte size
// and unresolved metadata.
func NewTensor(byteSize uint64) *Tensor {
	return &Tensor{
		meta: Meta{Format: FormatNone},
		data: make([]byte, byteSize),
	}
}

// Meta returns the metadata of the tensor.
func (t *Tensor) Meta() Meta {
	return t.meta
}

// SetMeta replaces the metadata of the tensor. It is normally called by a
// format's Init, not by user code.
func (t *Tensor) SetMeta(m Meta) {
	t.meta = m
}

// Data returns the raw payload bytes.
func (t *Tensor) Data() []byte {
	return t.data
}

// ByteSize returns the size of the payload in bytes.
func (t *Tensor) ByteSize() uint64 {
	return uint64(len(t.data))
}

// Float32At reads the i-th float32 element of the payload.
func (t *Tensor) Float32At(i int) float32 {
	bits := binary.LittleEndian.Uint32(t.data[i*4:])
	return math.Float32frombits(bits)
}

// SetFloat32At writes the i-th float32 element of the payload.
func (t *Tensor) SetFloat32At(i int, v float32) {
	binary.LittleEndian.PutUint32(t.data[i*4:], math.Float32bits(v))
}
