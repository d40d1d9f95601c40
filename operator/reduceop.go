// Package operator implements the transactional execution pattern compute
// kernels run under against the tensor store.
//
// The pattern is two-phase because output sizes are data dependent: a kernel
// cannot size its output before reading the input metadata, and the store
// cannot be re-entered mid-transaction to allocate. Phase one therefore
// infers the output metadata under read locks only; phase two re-acquires
// the read locks together with an exactly sized write reservation and runs
// the kernel. The extra read-only lock acquisition is the price of exact
// allocation. The pattern generalizes to any arity: infer under read locks,
// then allocate and compute under read locks plus a fresh write reservation.
package operator

import (
	"fmt"

	"github.com/sarchlab/tensorbed/kernel"
	"github.com/sarchlab/tensorbed/store"
	"github.com/sarchlab/tensorbed/tensor"
)

// A ReduceOp applies a binary reduction kernel to two node-local tensors and
// materializes the result as a fresh tensor in the store.
type ReduceOp struct {
	formats *tensor.Registry
	store   *store.Store

	lhs, rhs tensor.ID
	outTID   *tensor.ID
	params   kernel.Params
	k        kernel.Kernel

	outFormat tensor.FormatID
	outMeta   tensor.Meta
	outSize   uint64
}

// NewReduceOp creates a reduction over lhs and rhs. The assigned output id
// is written through outTID on success and left untouched on failure. The
// kernel's first declared output type must resolve against the format
// registry.
func NewReduceOp(
	formats *tensor.Registry,
	st *store.Store,
	lhs, rhs tensor.ID,
	outTID *tensor.ID,
	params kernel.Params,
	k kernel.Kernel,
) (*ReduceOp, error) {
	outTypes := k.OutputTypes()
	if len(outTypes) == 0 {
		return nil, fmt.Errorf("kernel %s declares no output type", k.Name())
	}

	outFormat, err := formats.FormatIDFor(outTypes[0])
	if err != nil {
		return nil, err
	}

	return &ReduceOp{
		formats:   formats,
		store:     st,
		lhs:       lhs,
		rhs:       rhs,
		outTID:    outTID,
		params:    params,
		k:         k,
		outFormat: outFormat,
	}, nil
}

// Apply runs the reduction as two sequential store transactions. A failure
// in either phase propagates without leaving a partial output in the store
// and without touching the output id.
func (o *ReduceOp) Apply() error {
	if err := o.inferOutput(); err != nil {
		return err
	}

	return o.materialize()
}

// inferOutput sizes the output under read locks only. All locks release
// when the transaction body returns.
func (o *ReduceOp) inferOutput() error {
	return o.store.LocalTransaction(
		[]tensor.ID{o.lhs, o.rhs},
		nil,
		func(res *store.Reservation) error {
			inMeta := []tensor.Meta{
				res.Get[0].Tensor.Meta(),
				res.Get[1].Tensor.Meta(),
			}

			outMeta, err := o.k.InferOutputMeta(o.params, inMeta)
			if err != nil {
				return err
			}

			if len(outMeta) == 0 {
				return fmt.Errorf(
					"kernel %s inferred no output metadata", o.k.Name())
			}

			meta := outMeta[0]
			meta.Format = o.outFormat

			size, err := o.formats.Size(meta)
			if err != nil {
				return err
			}

			o.outMeta = meta
			o.outSize = size

			return nil
		})
}

// materialize re-acquires the input read locks together with an exactly
// sized fresh output slot, initializes the output, runs the kernel, and
// publishes the assigned id.
func (o *ReduceOp) materialize() error {
	return o.store.LocalTransaction(
		[]tensor.ID{o.lhs, o.rhs},
		[]store.CreateSpec{{TID: tensor.None, ByteSize: o.outSize}},
		func(res *store.Reservation) error {
			out := res.Create[0].Tensor
			if err := o.formats.Init(out, o.outMeta); err != nil {
				return err
			}

			in := []*tensor.Tensor{res.Get[0].Tensor, res.Get[1].Tensor}

			err := o.k.Compute(o.params, in, []*tensor.Tensor{out})
			if err != nil {
				return err
			}

			*o.outTID = res.Create[0].ID

			return nil
		})
}
