package kernel

import (
	"fmt"

	"github.com/sarchlab/tensorbed/tensor"
)

// WeightedAddName is the registered name of the built-in reduction kernel.
const WeightedAddName = "dense_weighted_add"

// NewWeightedAdd creates the built-in binary reduction kernel. It computes
// out = alpha*lhs + beta*rhs elementwise over dense tensors of equal shape.
// Alpha and beta come from the first two params and default to 1.
func NewWeightedAdd() Kernel {
	return weightedAdd{}
}

type weightedAdd struct{}

func (weightedAdd) Name() string {
	return WeightedAddName
}

func (weightedAdd) OutputTypes() []string {
	return []string{tensor.DenseTypeName}
}

func (weightedAdd) InferOutputMeta(
	_ Params,
	in []tensor.Meta,
) ([]tensor.Meta, error) {
	if len(in) != 2 {
		return nil, fmt.Errorf("weighted add takes 2 inputs, got %d", len(in))
	}

	if !sameDims(in[0].Dims, in[1].Dims) {
		return nil, fmt.Errorf(
			"weighted add needs equal shapes, got %v and %v",
			in[0].Dims, in[1].Dims)
	}

	out := tensor.Meta{
		Format: tensor.FormatNone,
		Dims:   append([]int64(nil), in[0].Dims...),
	}

	return []tensor.Meta{out}, nil
}

func (weightedAdd) Compute(params Params, in, out []*tensor.Tensor) error {
	if len(in) != 2 || len(out) != 1 {
		return fmt.Errorf(
			"weighted add takes 2 inputs and 1 output, got %d and %d",
			len(in), len(out))
	}

	alpha, beta := float32(1), float32(1)
	if len(params) > 0 {
		alpha = float32(params[0].Float())
	}
	if len(params) > 1 {
		beta = float32(params[1].Float())
	}

	n := int(out[0].Meta().NumElements())
	for i := 0; i < n; i++ {
		v := alpha*in[0].Float32At(i) + beta*in[1].Float32At(i)
		out[0].SetFloat32At(i, v)
	}

	return nil
}

func sameDims(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
