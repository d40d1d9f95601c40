// Package kernel defines the compute-kernel interface the execution layer
// invokes, the scalar parameters kernels receive, and the registry that
// resolves kernels by id.
package kernel

import (
	"math"

	"github.com/sarchlab/tensorbed/tensor"
)

// ID identifies a kernel registered with a Registry. Ids are stable within a
// process and carried inside commands, so every node must register the same
// kernels in the same order.
type ID int64

// A Param is one 8-byte scalar kernel argument. The kernel decides whether
// to interpret it as an integer or a float.
type Param struct {
	bits uint64
}

// IntParam creates a parameter holding an integer.
func IntParam(v int64) Param {
	return Param{bits: uint64(v)}
}

// FloatParam creates a parameter holding a float.
func FloatParam(v float64) Param {
	return Param{bits: math.Float64bits(v)}
}

// ParamFromBits reconstitutes a parameter from its raw wire image.
func ParamFromBits(bits uint64) Param {
	return Param{bits: bits}
}

// Int interprets the parameter as an integer.
func (p Param) Int() int64 {
	return int64(p.bits)
}

// Float interprets the parameter as a float.
func (p Param) Float() float64 {
	return math.Float64frombits(p.bits)
}

// Bits returns the raw wire image of the parameter.
func (p Param) Bits() uint64 {
	return p.bits
}

// Params is the ordered argument list a command carries for its kernel.
type Params []Param

// A Kernel is one compute entry point. Implementations must be safe for
// concurrent invocation; the execution layer may run the same kernel on
// several worker goroutines at once.
type Kernel interface {
	// Name identifies the kernel for registration and diagnostics.
	Name() string

	// OutputTypes declares the storage type name of each output.
	OutputTypes() []string

	// InferOutputMeta derives the output metadata from the input metadata.
	// It runs before any output is allocated; the returned metadata, once
	// its format id is resolved, determines the exact output sizes.
	InferOutputMeta(params Params, in []tensor.Meta) ([]tensor.Meta, error)

	// Compute runs the kernel synchronously over fully materialized inputs
	// and freshly initialized outputs.
	Compute(params Params, in, out []*tensor.Tensor) error
}
