package command

import (
	"github.com/sarchlab/tensorbed/kernel"
	"github.com/sarchlab/tensorbed/node"
	"github.com/sarchlab/tensorbed/tensor"
)

// Builder can build commands.
type Builder struct {
	id       ID
	typ      Type
	kernelID kernel.ID
	params   kernel.Params
	inputs   []TensorRef
	outputs  []TensorRef
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{typ: TypeApply}
}

// WithID sets the id of the command to build.
func (b Builder) WithID(id ID) Builder {
	b.id = id
	return b
}

// WithType sets the type of the command to build.
func (b Builder) WithType(t Type) Builder {
	b.typ = t
	return b
}

// WithKernelID sets the kernel the command invokes.
func (b Builder) WithKernelID(id kernel.ID) Builder {
	b.kernelID = id
	return b
}

// WithParams sets the kernel arguments the command carries.
func (b Builder) WithParams(params kernel.Params) Builder {
	b.params = params
	return b
}

// WithInput appends one input tensor reference.
func (b Builder) WithInput(tid tensor.ID, owner node.ID) Builder {
	b.inputs = append(b.inputs, TensorRef{TID: tid, Node: owner})
	return b
}

// WithOutput appends one output tensor reference.
func (b Builder) WithOutput(tid tensor.ID, owner node.ID) Builder {
	b.outputs = append(b.outputs, TensorRef{TID: tid, Node: owner})
	return b
}

// Build creates the command.
func (b Builder) Build() *Command {
	return &Command{
		ID:       b.id,
		Type:     b.typ,
		KernelID: b.kernelID,
		Params:   append(kernel.Params(nil), b.params...),
		Inputs:   append([]TensorRef(nil), b.inputs...),
		Outputs:  append([]TensorRef(nil), b.outputs...),
	}
}
