package memtransport

import (
	"fmt"
	"sync"

	"github.com/sarchlab/tensorbed/comm"
	"github.com/sarchlab/tensorbed/node"
)

// An Endpoint is the transport binding of one rank within a group. It
// implements comm.Transport and is safe for concurrent use.
type Endpoint struct {
	group *Group
	rank  node.ID
}

// Rank returns the rank of this endpoint.
func (e *Endpoint) Rank() node.ID {
	return e.rank
}

// NumNodes returns the size of the group.
func (e *Endpoint) NumNodes() int {
	return e.group.numNodes
}

// SendSync delivers a payload to dst and blocks until a receiver on dst has
// begun a matching receive.
func (e *Endpoint) SendSync(data []byte, dst node.ID, tag comm.Tag) error {
	m, err := e.deliver(data, dst, tag)
	if err != nil {
		return err
	}

	return m.awaitMatch()
}

// SendAsync delivers a payload to dst without blocking. The returned request
// completes when a receiver claims the message.
func (e *Endpoint) SendAsync(
	data []byte,
	dst node.ID,
	tag comm.Tag,
) comm.AsyncRequest {
	m, err := e.deliver(data, dst, tag)

	return &asyncRequest{msg: m, initErr: err}
}

func (e *Endpoint) deliver(
	data []byte,
	dst node.ID,
	tag comm.Tag,
) (*message, error) {
	if dst < 0 || int(dst) >= e.group.numNodes {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRank, dst)
	}

	m := &message{
		src: e.rank,
		tag: tag,
		// Snapshot the payload, so the sender may reuse its buffer as soon
		// as the rendezvous completes.
		data:    append([]byte(nil), data...),
		matched: make(chan struct{}),
	}

	if err := e.group.mailboxes[dst].push(m); err != nil {
		return nil, err
	}

	return m, nil
}

// RecvSync blocks until a message matching src and tag arrives and copies it
// into buf, whose length must equal the message's length.
func (e *Endpoint) RecvSync(buf []byte, src node.ID, tag comm.Tag) error {
	m, err := e.group.mailboxes[e.rank].claim(src, tag)
	if err != nil {
		return err
	}

	if len(buf) != len(m.data) {
		return fmt.Errorf(
			"%w: message holds %d bytes, buffer %d",
			ErrSizeMismatch, len(m.data), len(buf))
	}

	copy(buf, m.data)

	return nil
}

// Probe blocks until a message matching src and tag is pending, claims it,
// and describes it. node.None as src matches any sender.
func (e *Endpoint) Probe(src node.ID, tag comm.Tag) (*comm.ProbeResult, error) {
	m, err := e.group.mailboxes[e.rank].claim(src, tag)
	if err != nil {
		return nil, err
	}

	return &comm.ProbeResult{
		Src:      m.src,
		Tag:      m.tag,
		NumBytes: len(m.data),
		Claim:    m,
	}, nil
}

// RecvProbed consumes a previously probed message into buf. Passing a probe
// result that did not come from this transport, or consuming one twice, is a
// programming error.
func (e *Endpoint) RecvProbed(buf []byte, probe *comm.ProbeResult) error {
	if probe.Claim == nil {
		panic("probe result already consumed")
	}

	m, ok := probe.Claim.(*message)
	if !ok {
		panic("probe result does not belong to a memtransport endpoint")
	}

	if len(buf) != len(m.data) {
		return fmt.Errorf(
			"%w: message holds %d bytes, buffer %d",
			ErrSizeMismatch, len(m.data), len(buf))
	}

	copy(buf, m.data)
	probe.Claim = nil

	return nil
}

// Barrier blocks until every rank of the group has entered it.
func (e *Endpoint) Barrier() error {
	return e.group.barrier.await()
}

// An asyncRequest owns a delivery until waited exactly once.
type asyncRequest struct {
	mu     sync.Mutex
	waited bool

	msg     *message
	initErr error
}

func (r *asyncRequest) Wait() error {
	r.mu.Lock()
	if r.waited {
		r.mu.Unlock()
		panic("async request waited twice")
	}
	r.waited = true
	r.mu.Unlock()

	if r.initErr != nil {
		return r.initErr
	}

	return r.msg.awaitMatch()
}
