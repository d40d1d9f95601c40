// Package cluster wires one process into the engine. A Node owns the
// transport binding, the messaging layer, the tensor store, and the
// registries, runs the listener goroutines that execute incoming commands,
// and announces the tensors it materializes to the nodes that depend on
// them.
package cluster

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sarchlab/tensorbed/comm"
	"github.com/sarchlab/tensorbed/command"
	"github.com/sarchlab/tensorbed/kernel"
	"github.com/sarchlab/tensorbed/monitoring"
	"github.com/sarchlab/tensorbed/node"
	"github.com/sarchlab/tensorbed/operator"
	"github.com/sarchlab/tensorbed/store"
	"github.com/sarchlab/tensorbed/tensor"
	"github.com/sarchlab/tensorbed/trace"
)

// A Node is the per-process context of one cluster participant. It is built
// once after the transport group exists and torn down once at process exit.
type Node struct {
	comm     *comm.Communicator
	store    *store.Store
	formats  *tensor.Registry
	kernels  *kernel.Registry
	recorder *trace.Recorder
	monitor  *monitoring.Monitor

	readiness *readinessTracker

	wg           sync.WaitGroup
	shutdownOnce sync.Once
	shutdownErr  error
}

// Communicator returns the node's messaging layer.
func (n *Node) Communicator() *comm.Communicator {
	return n.comm
}

// Store returns the node's tensor store.
func (n *Node) Store() *store.Store {
	return n.store
}

// Rank returns the rank of this node.
func (n *Node) Rank() node.ID {
	return n.comm.Rank()
}

// Formats returns the node's tensor format registry.
func (n *Node) Formats() *tensor.Registry {
	return n.formats
}

// Kernels returns the node's kernel registry.
func (n *Node) Kernels() *kernel.Registry {
	return n.kernels
}

// Start synchronizes with the rest of the cluster and launches the
// dispatch, forward, and notification listeners. Every node must call Start
// for any of them to return from the barrier.
func (n *Node) Start() error {
	if err := n.comm.Barrier(); err != nil {
		return err
	}

	n.wg.Add(3)
	go n.dispatchLoop()
	go n.forwardLoop()
	go n.notificationLoop()

	return nil
}

// Submit distributes a command to its participants and, if this node is one
// of them, executes the local share of the work.
func (n *Node) Submit(cmd *command.Command) error {
	if err := n.comm.OpRequest(cmd); err != nil {
		return err
	}

	n.recordComm("send", "dispatch", node.None, cmd)

	for _, participant := range cmd.Nodes() {
		if participant == n.Rank() {
			n.execute(cmd)
			break
		}
	}

	return nil
}

// Forward distributes a command to the owners of the tensors it references.
func (n *Node) Forward(cmd *command.Command) error {
	if err := n.comm.ForwardCmd(cmd); err != nil {
		return err
	}

	n.recordComm("send", "forward", node.None, cmd)

	return nil
}

// TensorOrigin reports whether a remote tensor has been announced and by
// which node.
func (n *Node) TensorOrigin(tid tensor.ID) (node.ID, bool) {
	return n.readiness.origin(tid)
}

// AwaitTensor blocks until a remote tensor has been announced and returns
// the announcing node. There is no timeout; a tensor that never arrives
// blocks forever.
func (n *Node) AwaitTensor(tid tensor.ID) node.ID {
	return n.readiness.await(tid)
}

// Shutdown unblocks the dispatch and notification listeners with the
// self-addressed sentinels. The forward listener exits when the transport
// is torn down; callers terminate the transport after Shutdown and then
// Wait.
func (n *Node) Shutdown() error {
	n.shutdownOnce.Do(func() {
		n.shutdownErr = errors.Join(
			n.comm.ShutdownOpRequest(),
			n.comm.ShutdownNotificationHandler(),
		)
	})

	return n.shutdownErr
}

// Wait blocks until every listener has exited.
func (n *Node) Wait() {
	n.wg.Wait()
}

func (n *Node) dispatchLoop() {
	defer n.wg.Done()

	for {
		cmd, err := n.comm.ExpectOpRequest()
		if err != nil {
			if errors.Is(err, command.ErrMalformed) {
				log.Printf("node %d: dropping dispatch: %s", n.Rank(), err)
				continue
			}

			return
		}

		n.recordComm("recv", "dispatch", node.None, cmd)

		if cmd.IsShutdown() {
			return
		}

		n.execute(cmd)
	}
}

func (n *Node) forwardLoop() {
	defer n.wg.Done()

	for {
		cmd, err := n.comm.ExpectCmd()
		if err != nil {
			if errors.Is(err, command.ErrMalformed) {
				log.Printf("node %d: dropping forward: %s", n.Rank(), err)
				continue
			}

			return
		}

		n.recordComm("recv", "forward", node.None, cmd)

		if cmd.IsShutdown() {
			return
		}

		n.execute(cmd)
	}
}

func (n *Node) notificationLoop() {
	defer n.wg.Done()

	for {
		src, tids, err := n.comm.ReceiveTensorCreatedNotification()
		if err != nil {
			return
		}

		if len(tids) == 1 && tids[0] == tensor.None {
			return
		}

		n.readiness.markArrived(src, tids)

		if n.recorder != nil {
			for _, tid := range tids {
				n.recorder.RecordTensor(trace.TensorEvent{
					Node:     int32(n.Rank()),
					TID:      int32(tid),
					Origin:   int32(src),
					UnixNano: time.Now().UnixNano(),
				})
			}
		}
	}
}

func (n *Node) execute(cmd *command.Command) {
	var err error

	switch cmd.Type {
	case command.TypeReduce, command.TypeApply:
		err = n.runReduce(cmd)
	case command.TypeMove:
		err = n.runMove(cmd)
	case command.TypeDelete:
		err = n.runDelete(cmd)
	default:
		err = fmt.Errorf("command %d has unexpected type %s", cmd.ID, cmd.Type)
	}

	if err != nil {
		log.Printf("node %d: command %d failed: %s", n.Rank(), cmd.ID, err)
	}
}

// runReduce executes a binary reduction when this node owns both inputs,
// renames the result to the id the command declares, and announces it to
// the other participants.
func (n *Node) runReduce(cmd *command.Command) error {
	if len(cmd.Inputs) != 2 || len(cmd.Outputs) != 1 {
		return fmt.Errorf(
			"reduce command %d names %d inputs and %d outputs",
			cmd.ID, len(cmd.Inputs), len(cmd.Outputs))
	}

	if cmd.Inputs[0].Node != n.Rank() || cmd.Inputs[1].Node != n.Rank() {
		// Another participant owns the inputs and runs the kernel.
		return nil
	}

	k, err := n.kernels.Kernel(cmd.KernelID)
	if err != nil {
		return err
	}

	outTID := tensor.None
	op, err := operator.NewReduceOp(
		n.formats, n.store,
		cmd.Inputs[0].TID, cmd.Inputs[1].TID,
		&outTID, cmd.Params, k)
	if err != nil {
		return err
	}

	if err := op.Apply(); err != nil {
		return err
	}

	declared := cmd.Outputs[0].TID
	if declared != tensor.None {
		if err := n.store.Rename(outTID, declared); err != nil {
			return err
		}
		outTID = declared
	}

	if n.recorder != nil {
		n.recorder.RecordTensor(trace.TensorEvent{
			Node:     int32(n.Rank()),
			TID:      int32(outTID),
			Origin:   int32(n.Rank()),
			UnixNano: time.Now().UnixNano(),
		})
	}

	return n.announce(cmd, outTID)
}

// announce notifies every other participant of the command that a tensor
// now exists on this node.
func (n *Node) announce(cmd *command.Command, tid tensor.ID) error {
	var errs []error

	for _, participant := range cmd.Nodes() {
		if participant == n.Rank() {
			continue
		}

		err := n.comm.TensorsCreatedNotification(
			participant, []tensor.ID{tid})
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// runMove transfers one tensor between two nodes on an application tag
// derived from the command id. The owner sends metadata plus payload; the
// destination reserves an exact slot and materializes the copy.
func (n *Node) runMove(cmd *command.Command) error {
	if len(cmd.Inputs) != 1 || len(cmd.Outputs) != 1 {
		return fmt.Errorf(
			"move command %d names %d inputs and %d outputs",
			cmd.ID, len(cmd.Inputs), len(cmd.Outputs))
	}

	in := cmd.Inputs[0]
	out := cmd.Outputs[0]

	// The transfer tag comes off the wire; a command id outside the tag
	// range cannot address a free channel.
	tag := comm.Tag(cmd.ID)
	if tag < 0 {
		return fmt.Errorf(
			"move command %d does not map to a transfer tag", cmd.ID)
	}

	switch n.Rank() {
	case in.Node:
		return n.sendMove(in.TID, out.Node, tag)
	case out.Node:
		if err := n.receiveMove(in.Node, out.TID, tag); err != nil {
			return err
		}

		if n.recorder != nil {
			n.recorder.RecordTensor(trace.TensorEvent{
				Node:     int32(n.Rank()),
				TID:      int32(out.TID),
				Origin:   int32(in.Node),
				UnixNano: time.Now().UnixNano(),
			})
		}

		return n.announce(cmd, out.TID)
	}

	return nil
}

func (n *Node) sendMove(tid tensor.ID, dst node.ID, tag comm.Tag) error {
	var payload []byte

	err := n.store.LocalTransaction(
		[]tensor.ID{tid}, nil,
		func(res *store.Reservation) error {
			t := res.Get[0].Tensor
			payload = append(payload, tensor.EncodeMeta(t.Meta())...)
			payload = append(payload, t.Data()...)

			return nil
		})
	if err != nil {
		return err
	}

	return n.comm.SendSync(payload, dst, tag)
}

func (n *Node) receiveMove(src node.ID, tid tensor.ID, tag comm.Tag) error {
	probe, err := n.comm.ExpectRequest(src, tag)
	if err != nil {
		return err
	}

	buf := make([]byte, probe.NumBytes)
	if err := n.comm.ReceiveRequest(buf, probe); err != nil {
		return err
	}

	meta, consumed, err := tensor.DecodeMeta(buf)
	if err != nil {
		return err
	}
	payload := buf[consumed:]

	return n.store.LocalTransaction(
		nil,
		[]store.CreateSpec{{TID: tid, ByteSize: uint64(len(payload))}},
		func(res *store.Reservation) error {
			t := res.Create[0].Tensor
			if err := n.formats.Init(t, meta); err != nil {
				return err
			}

			copy(t.Data(), payload)

			return nil
		})
}

func (n *Node) runDelete(cmd *command.Command) error {
	var errs []error

	for _, ref := range cmd.Inputs {
		if ref.Node != n.Rank() {
			continue
		}

		if err := n.store.Delete(ref.TID); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (n *Node) recordComm(
	direction, channel string,
	peer node.ID,
	cmd *command.Command,
) {
	if n.recorder == nil {
		return
	}

	n.recorder.RecordComm(trace.CommEvent{
		Node:      int32(n.Rank()),
		Direction: direction,
		Channel:   channel,
		Peer:      int32(peer),
		Bytes:     int64(cmd.EncodedSize()),
		CommandID: int64(cmd.ID),
		UnixNano:  time.Now().UnixNano(),
	})
}
