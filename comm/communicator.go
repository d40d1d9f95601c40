// Package comm implements the node-to-node messaging layer of the engine.
//
// A Communicator multiplexes four logical channels over one transport:
// command dispatch, command forwarding, tensor-readiness notification, and a
// generic tagged byte exchange. It offers synchronous, asynchronous, and
// shutdown-safe primitives and is callable from any number of goroutines
// concurrently.
package comm

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sarchlab/tensorbed/command"
	"github.com/sarchlab/tensorbed/node"
)

// A Communicator is the messaging layer of one node. Every per-call failure
// is value-returned; callers must check every result. No operation retries
// or times out: a silent peer blocks its caller until the transport is torn
// down.
type Communicator struct {
	transport Transport
	rank      node.ID
	numNodes  int

	dispatch channelCounters
	forward  channelCounters
	notify   channelCounters
	free     channelCounters
}

// NewCommunicator binds the messaging layer to a transport. The transport
// must already be part of its fixed-size group. A transport reporting an
// invalid rank or group size cannot participate at all, so that is a fatal
// configuration error.
func NewCommunicator(t Transport) *Communicator {
	rank := t.Rank()
	numNodes := t.NumNodes()

	if numNodes <= 0 {
		panic(fmt.Sprintf("transport reports group size %d", numNodes))
	}

	if rank < 0 || int(rank) >= numNodes {
		panic(fmt.Sprintf(
			"transport reports rank %d outside group of %d", rank, numNodes))
	}

	return &Communicator{
		transport: t,
		rank:      rank,
		numNodes:  numNodes,
	}
}

// Rank returns the rank of this node. Membership is immutable after the
// startup barrier, so the accessor is race-free.
func (c *Communicator) Rank() node.ID {
	return c.rank
}

// NumNodes returns the size of the cluster.
func (c *Communicator) NumNodes() int {
	return c.numNodes
}

// Barrier blocks until every node has entered it. It is meant for startup
// synchronization only.
func (c *Communicator) Barrier() error {
	return c.transport.Barrier()
}

// Stats returns a snapshot of the per-channel traffic counters.
func (c *Communicator) Stats() Stats {
	return Stats{
		Dispatch: c.dispatch.snapshot(),
		Forward:  c.forward.snapshot(),
		Notify:   c.notify.snapshot(),
		Free:     c.free.snapshot(),
	}
}

// SendSync sends a byte payload on an application-chosen tag with rendezvous
// semantics: it returns only once the receiver has begun a matching receive.
func (c *Communicator) SendSync(data []byte, dst node.ID, tag Tag) error {
	if tag < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTag, tag)
	}

	err := c.transport.SendSync(data, dst, freeTagBase+tag)
	if err != nil {
		return err
	}

	c.free.countSent(len(data))

	return nil
}

// RecvSync receives into a pre-sized buffer on an application-chosen tag.
func (c *Communicator) RecvSync(buf []byte, src node.ID, tag Tag) error {
	if tag < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTag, tag)
	}

	err := c.transport.RecvSync(buf, src, freeTagBase+tag)
	if err != nil {
		return err
	}

	c.free.countReceived(len(buf))

	return nil
}

// SendAsync starts a non-blocking send on an application-chosen tag. The
// data buffer must not be reused or freed until WaitAsync returns for the
// returned request. A rejected tag surfaces from the request's Wait.
func (c *Communicator) SendAsync(data []byte, dst node.ID, tag Tag) AsyncRequest {
	if tag < 0 {
		return &failedRequest{err: fmt.Errorf("%w: %d", ErrInvalidTag, tag)}
	}

	return &countedRequest{
		req:      c.transport.SendAsync(data, dst, freeTagBase+tag),
		counters: &c.free,
		bytes:    len(data),
	}
}

// WaitAsync blocks until the given async send completes. It must be called
// exactly once per request.
func (c *Communicator) WaitAsync(req AsyncRequest) error {
	return req.Wait()
}

// ExpectRequest blocks until a message matching src and the
// application-chosen tag is pending and describes it without consuming it.
// node.None as src matches any sender.
func (c *Communicator) ExpectRequest(src node.ID, tag Tag) (*ProbeResult, error) {
	if tag < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTag, tag)
	}

	probe, err := c.transport.Probe(src, freeTagBase+tag)
	if err != nil {
		return nil, err
	}

	probe.Tag -= freeTagBase

	return probe, nil
}

// ReceiveRequest consumes a previously probed message into a buffer sized
// exactly probe.NumBytes.
func (c *Communicator) ReceiveRequest(buf []byte, probe *ProbeResult) error {
	err := c.transport.RecvProbed(buf, probe)
	if err != nil {
		return err
	}

	c.free.countReceived(len(buf))

	return nil
}

// OpRequest distributes a command to every node it declares as a
// participant, excluding this one, on the dispatch channel. It issues one
// async send per destination, waits for all of them, and succeeds only if
// every send succeeded.
func (c *Communicator) OpRequest(cmd *command.Command) error {
	return c.distribute(cmd, cmd.Nodes(), tagCmdDispatch, &c.dispatch)
}

// ForwardCmd distributes a command to every node owning a tensor the command
// references, excluding this one, on the forward channel. The destination
// set ignores the declared participant list. Same all-or-nothing semantics
// as OpRequest.
func (c *Communicator) ForwardCmd(cmd *command.Command) error {
	return c.distribute(cmd, cmd.TensorNodes(), tagCmdForward, &c.forward)
}

func (c *Communicator) distribute(
	cmd *command.Command,
	dests []node.ID,
	tag Tag,
	counters *channelCounters,
) error {
	data := cmd.Encode()

	var requests []AsyncRequest
	for _, dst := range dests {
		if dst == c.rank {
			continue
		}

		requests = append(requests, &countedRequest{
			req:      c.transport.SendAsync(data, dst, tag),
			counters: counters,
			bytes:    len(data),
		})
	}

	// Every request must be waited on, even after one fails.
	var errs []error
	for _, req := range requests {
		if err := req.Wait(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// ShutdownOpRequest sends the shutdown sentinel command to this node itself
// on the dispatch channel, unblocking one goroutine parked in
// ExpectOpRequest. Shutting down other nodes is their own responsibility.
func (c *Communicator) ShutdownOpRequest() error {
	cmd := command.NewShutdown(c.rank)
	data := cmd.Encode()

	req := c.transport.SendAsync(data, c.rank, tagCmdDispatch)
	err := req.Wait()
	if err != nil {
		return err
	}

	c.dispatch.countSent(len(data))

	return nil
}

// ExpectOpRequest blocks until a command arrives on the dispatch channel
// from any node, then decodes and returns it. Ownership of the command
// transfers to the caller.
func (c *Communicator) ExpectOpRequest() (*command.Command, error) {
	return c.expectCommand(tagCmdDispatch, &c.dispatch)
}

// ExpectCmd mirrors ExpectOpRequest on the forward channel.
func (c *Communicator) ExpectCmd() (*command.Command, error) {
	return c.expectCommand(tagCmdForward, &c.forward)
}

func (c *Communicator) expectCommand(
	tag Tag,
	counters *channelCounters,
) (*command.Command, error) {
	probe, err := c.transport.Probe(node.None, tag)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, probe.NumBytes)
	if err := c.transport.RecvProbed(buf, probe); err != nil {
		return nil, err
	}

	cmd, err := command.Decode(buf)
	if err != nil {
		return nil, err
	}

	counters.countReceived(len(buf))

	return cmd, nil
}

// A countedRequest charges its channel's sent counters only once the
// underlying send is known to have succeeded.
type countedRequest struct {
	req      AsyncRequest
	counters *channelCounters
	bytes    int
}

func (r *countedRequest) Wait() error {
	err := r.req.Wait()
	if err != nil {
		return err
	}

	r.counters.countSent(r.bytes)

	return nil
}

// A failedRequest is a send that was rejected before reaching the transport.
// It keeps the exactly-once Wait contract.
type failedRequest struct {
	mu     sync.Mutex
	waited bool
	err    error
}

func (r *failedRequest) Wait() error {
	r.mu.Lock()
	if r.waited {
		r.mu.Unlock()
		panic("async request waited twice")
	}
	r.waited = true
	r.mu.Unlock()

	return r.err
}
