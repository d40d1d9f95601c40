package tensor

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformedMeta reports metadata bytes that cannot be decoded.
var ErrMalformedMeta = errors.New("malformed tensor metadata")

const metaHeaderBytes = 8

// EncodedMetaSize returns the number of bytes EncodeMeta produces for m.
func EncodedMetaSize(m Meta) int {
	return metaHeaderBytes + 8*len(m.Dims)
}

// EncodeMeta serializes metadata into a self-describing little-endian record:
// format id, dimension count, then the dimensions.
func EncodeMeta(m Meta) []byte {
	buf := make([]byte, EncodedMetaSize(m))
	binary.LittleEndian.PutUint32(buf[0:], uint32(m.Format))
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(m.Dims)))

	for i, d := range m.Dims {
		binary.LittleEndian.PutUint64(buf[metaHeaderBytes+8*i:], uint64(d))
	}

	return buf
}

// DecodeMeta extracts metadata from the head of buf and returns it together
// with the number of bytes consumed.
func DecodeMeta(buf []byte) (Meta, int, error) {
	if len(buf) < metaHeaderBytes {
		return Meta{}, 0, fmt.Errorf(
			"%w: %d bytes is shorter than the header", ErrMalformedMeta, len(buf))
	}

	format := FormatID(binary.LittleEndian.Uint32(buf[0:]))
	numDims := int(int32(binary.LittleEndian.Uint32(buf[4:])))
	if numDims < 0 {
		return Meta{}, 0, fmt.Errorf(
			"%w: negative dimension count %d", ErrMalformedMeta, numDims)
	}

	total := metaHeaderBytes + 8*numDims
	if len(buf) < total {
		return Meta{}, 0, fmt.Errorf(
			"%w: %d dimensions do not fit in %d bytes",
			ErrMalformedMeta, numDims, len(buf))
	}

	m := Meta{Format: format, Dims: make([]int64, numDims)}
	for i := range m.Dims {
		m.Dims[i] = int64(binary.LittleEndian.Uint64(buf[metaHeaderBytes+8*i:]))
	}

	return m, total, nil
}
