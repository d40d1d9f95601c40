package cluster

import (
	"github.com/sarchlab/tensorbed/comm"
	"github.com/sarchlab/tensorbed/kernel"
	"github.com/sarchlab/tensorbed/monitoring"
	"github.com/sarchlab/tensorbed/store"
	"github.com/sarchlab/tensorbed/tensor"
	"github.com/sarchlab/tensorbed/trace"
)

// Builder can build nodes.
type Builder struct {
	transport     comm.Transport
	formats       *tensor.Registry
	kernels       *kernel.Registry
	storeCapacity uint64
	recorder      *trace.Recorder
	monitorOn     bool
	monitorPort   int
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{}
}

// WithTransport sets the transport binding of the node to build. A
// transport is required.
func (b Builder) WithTransport(t comm.Transport) Builder {
	b.transport = t
	return b
}

// WithFormatRegistry sets the format registry. Without one, the node
// registers the built-in dense format.
func (b Builder) WithFormatRegistry(r *tensor.Registry) Builder {
	b.formats = r
	return b
}

// WithKernelRegistry sets the kernel registry. Without one, the node
// registers the built-in weighted-add kernel.
func (b Builder) WithKernelRegistry(r *kernel.Registry) Builder {
	b.kernels = r
	return b
}

// WithStoreCapacity bounds the node's tensor store, zero meaning unbounded.
func (b Builder) WithStoreCapacity(bytes uint64) Builder {
	b.storeCapacity = bytes
	return b
}

// WithRecorder sets the trace recorder the node reports events to.
func (b Builder) WithRecorder(r *trace.Recorder) Builder {
	b.recorder = r
	return b
}

// WithMonitor enables the HTTP monitor on the given port, zero selecting a
// random port.
func (b Builder) WithMonitor(port int) Builder {
	b.monitorOn = true
	b.monitorPort = port
	return b
}

// Build creates the node.
func (b Builder) Build() *Node {
	if b.transport == nil {
		panic("cannot build a node without a transport")
	}

	formats := b.formats
	if formats == nil {
		formats = tensor.NewRegistry()
		formats.Register(tensor.NewDenseFormat())
	}

	kernels := b.kernels
	if kernels == nil {
		kernels = kernel.NewRegistry()
		kernels.Register(kernel.NewWeightedAdd())
	}

	n := &Node{
		comm:      comm.NewCommunicator(b.transport),
		store:     store.MakeBuilder().WithCapacity(b.storeCapacity).Build(),
		formats:   formats,
		kernels:   kernels,
		recorder:  b.recorder,
		readiness: newReadinessTracker(),
	}

	if b.monitorOn {
		n.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			n.monitor.WithPortNumber(b.monitorPort)
		}
		n.monitor.RegisterCommunicator(n.comm)
		n.monitor.RegisterStore(n.store)
		n.monitor.StartServer()
	}

	return n
}
