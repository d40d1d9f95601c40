// Package command defines the self-describing work records nodes exchange
// and their wire codec.
package command

import (
	"github.com/sarchlab/tensorbed/kernel"
	"github.com/sarchlab/tensorbed/node"
	"github.com/sarchlab/tensorbed/tensor"
)

// ID identifies a command across the cluster. Ids are assigned by the
// scheduler that builds the command.
type ID int64

// Type tells a node what a command asks it to do.
type Type int32

// The command types.
const (
	// TypeApply runs a kernel over its inputs.
	TypeApply Type = iota

	// TypeReduce runs a binary reduction kernel over two inputs.
	TypeReduce

	// TypeMove transfers a tensor from its owner to another node.
	TypeMove

	// TypeDelete drops tensors from their owners' stores.
	TypeDelete

	// TypeShutdown is the self-addressed sentinel that unblocks a parked
	// command listener. It never describes real work.
	TypeShutdown

	numTypes
)

func (t Type) String() string {
	switch t {
	case TypeApply:
		return "apply"
	case TypeReduce:
		return "reduce"
	case TypeMove:
		return "move"
	case TypeDelete:
		return "delete"
	case TypeShutdown:
		return "shutdown"
	}

	return "invalid"
}

// A TensorRef names a tensor and the node that owns it.
type TensorRef struct {
	TID  tensor.ID
	Node node.ID
}

// A Command describes one unit of work: what to run, the kernel arguments,
// and the input and output tensors with their owning nodes. Commands are
// transient; a sender builds one, receivers decode and own their copies.
type Command struct {
	ID       ID
	Type     Type
	KernelID kernel.ID
	Params   kernel.Params
	Inputs   []TensorRef
	Outputs  []TensorRef
}

// NewShutdown creates the shutdown sentinel addressed to the given rank.
func NewShutdown(rank node.ID) *Command {
	return &Command{
		ID:      ID(rank),
		Type:    TypeShutdown,
		Outputs: []TensorRef{{TID: tensor.None, Node: rank}},
	}
}

// IsShutdown reports whether the command is the shutdown sentinel.
func (c *Command) IsShutdown() bool {
	return c.Type == TypeShutdown
}

// Nodes returns the distinct nodes the command declares as participants, in
// first-appearance order over the input and output lists. This is the
// dispatch distribution set.
func (c *Command) Nodes() []node.ID {
	return c.distinctOwners()
}

// TensorNodes returns the distinct nodes that own a tensor referenced by the
// command's inputs or outputs. This is the forwarding distribution set. It
// coincides with Nodes today, but dispatch and forwarding address different
// roles and are allowed to diverge, so each keeps its own entry point.
func (c *Command) TensorNodes() []node.ID {
	return c.distinctOwners()
}

func (c *Command) distinctOwners() []node.ID {
	var nodes []node.ID
	seen := make(map[node.ID]bool)

	for _, ref := range c.Inputs {
		if !seen[ref.Node] {
			seen[ref.Node] = true
			nodes = append(nodes, ref.Node)
		}
	}

	for _, ref := range c.Outputs {
		if !seen[ref.Node] {
			seen[ref.Node] = true
			nodes = append(nodes, ref.Node)
		}
	}

	return nodes
}
