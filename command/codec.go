package command

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sarchlab/tensorbed/kernel"
	"github.com/sarchlab/tensorbed/node"
	"github.com/sarchlab/tensorbed/tensor"
)

// ErrMalformed reports received bytes that do not decode into a command.
var ErrMalformed = errors.New("malformed command")

// The wire layout is a self-contained little-endian record. Every length is
// derivable from the bytes alone:
//
//	 0  int64  command id
//	 8  int32  type
//	12  int64  kernel id
//	20  int32  param count
//	24  int32  input count
//	28  int32  output count
//	32  params, 8 bytes each
//	    inputs, 8 bytes each (int32 tid, int32 node)
//	    outputs, 8 bytes each
const headerBytes = 32

// EncodedSize returns the number of bytes Encode produces for the command.
func (c *Command) EncodedSize() int {
	return headerBytes + 8*(len(c.Params)+len(c.Inputs)+len(c.Outputs))
}

// Encode serializes the command into its wire record.
func (c *Command) Encode() []byte {
	buf := make([]byte, c.EncodedSize())

	binary.LittleEndian.PutUint64(buf[0:], uint64(c.ID))
	binary.LittleEndian.PutUint32(buf[8:], uint32(c.Type))
	binary.LittleEndian.PutUint64(buf[12:], uint64(c.KernelID))
	binary.LittleEndian.PutUint32(buf[20:], uint32(len(c.Params)))
	binary.LittleEndian.PutUint32(buf[24:], uint32(len(c.Inputs)))
	binary.LittleEndian.PutUint32(buf[28:], uint32(len(c.Outputs)))

	offset := headerBytes
	for _, p := range c.Params {
		binary.LittleEndian.PutUint64(buf[offset:], p.Bits())
		offset += 8
	}

	offset = putRefs(buf, offset, c.Inputs)
	putRefs(buf, offset, c.Outputs)

	return buf
}

func putRefs(buf []byte, offset int, refs []TensorRef) int {
	for _, ref := range refs {
		binary.LittleEndian.PutUint32(buf[offset:], uint32(ref.TID))
		binary.LittleEndian.PutUint32(buf[offset+4:], uint32(ref.Node))
		offset += 8
	}

	return offset
}

// Decode extracts a command from its wire record. The buffer must hold
// exactly one command; every field extraction is length-checked and a
// mismatch is reported as ErrMalformed, never as a fault.
func Decode(buf []byte) (*Command, error) {
	if len(buf) < headerBytes {
		return nil, fmt.Errorf(
			"%w: %d bytes is shorter than the header", ErrMalformed, len(buf))
	}

	typ := Type(int32(binary.LittleEndian.Uint32(buf[8:])))
	if typ < 0 || typ >= numTypes {
		return nil, fmt.Errorf("%w: unknown type %d", ErrMalformed, typ)
	}

	numParams := int(int32(binary.LittleEndian.Uint32(buf[20:])))
	numInputs := int(int32(binary.LittleEndian.Uint32(buf[24:])))
	numOutputs := int(int32(binary.LittleEndian.Uint32(buf[28:])))
	if numParams < 0 || numInputs < 0 || numOutputs < 0 {
		return nil, fmt.Errorf("%w: negative list length", ErrMalformed)
	}

	total := headerBytes + 8*(numParams+numInputs+numOutputs)
	if len(buf) != total {
		return nil, fmt.Errorf(
			"%w: record declares %d bytes, received %d",
			ErrMalformed, total, len(buf))
	}

	c := &Command{
		ID:       ID(binary.LittleEndian.Uint64(buf[0:])),
		Type:     typ,
		KernelID: kernel.ID(binary.LittleEndian.Uint64(buf[12:])),
	}

	offset := headerBytes
	if numParams > 0 {
		c.Params = make(kernel.Params, numParams)
	}
	for i := range c.Params {
		c.Params[i] = kernel.ParamFromBits(binary.LittleEndian.Uint64(buf[offset:]))
		offset += 8
	}

	c.Inputs, offset = getRefs(buf, offset, numInputs)
	c.Outputs, _ = getRefs(buf, offset, numOutputs)

	return c, nil
}

func getRefs(buf []byte, offset, n int) ([]TensorRef, int) {
	if n == 0 {
		return nil, offset
	}

	refs := make([]TensorRef, n)
	for i := range refs {
		refs[i] = TensorRef{
			TID:  tensor.ID(int32(binary.LittleEndian.Uint32(buf[offset:]))),
			Node: node.ID(int32(binary.LittleEndian.Uint32(buf[offset+4:]))),
		}
		offset += 8
	}

	return refs, offset
}
