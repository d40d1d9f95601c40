// Package memtransport provides an in-process implementation of the comm
// transport contract. Every node of the fixed-size group lives in the same
// OS process and exchanges messages through shared memory, which makes the
// package the natural substrate for tests, demos, and single-host runs.
//
// The implementation honors the full contract: rendezvous sends complete
// when a receiver claims the message, probes claim exactly one pending
// message in send order per (sender, receiver, tag) triple, and all
// endpoints are safe for concurrent use from any number of goroutines.
package memtransport

import (
	"errors"
	"fmt"

	"github.com/sarchlab/tensorbed/node"
)

// The runtime failures an endpoint can report.
var (
	// ErrTerminated reports an operation on a terminated group. Probes and
	// sends parked at termination time fail with it as well.
	ErrTerminated = errors.New("memtransport: group terminated")

	// ErrInvalidRank reports a destination rank outside the group.
	ErrInvalidRank = errors.New("memtransport: rank outside the group")

	// ErrSizeMismatch reports a receive buffer whose length differs from
	// the matched message's length.
	ErrSizeMismatch = errors.New(
		"memtransport: buffer size does not match message size")
)

// A Group is one fixed-size set of in-process nodes. Membership is fixed at
// build time; a Group is built once and terminated exactly once at process
// teardown.
type Group struct {
	numNodes  int
	mailboxes []*mailbox
	barrier   *barrier
}

// Builder can build groups.
type Builder struct {
	numNodes int
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{numNodes: 1}
}

// WithNumNodes sets the size of the group to build.
func (b Builder) WithNumNodes(n int) Builder {
	b.numNodes = n
	return b
}

// Build creates the group.
func (b Builder) Build() *Group {
	if b.numNodes <= 0 {
		panic(fmt.Sprintf("cannot build a group of %d nodes", b.numNodes))
	}

	g := &Group{
		numNodes: b.numNodes,
		barrier:  newBarrier(b.numNodes),
	}

	for i := 0; i < b.numNodes; i++ {
		g.mailboxes = append(g.mailboxes, newMailbox())
	}

	return g
}

// NumNodes returns the size of the group.
func (g *Group) NumNodes() int {
	return g.numNodes
}

// Bind returns the transport endpoint of one rank. Binding a rank outside
// the group is a configuration error.
func (g *Group) Bind(rank node.ID) *Endpoint {
	if rank < 0 || int(rank) >= g.numNodes {
		panic(fmt.Sprintf(
			"cannot bind rank %d in a group of %d", rank, g.numNodes))
	}

	return &Endpoint{group: g, rank: rank}
}

// Terminate tears the group down. Every parked probe, receive, send, and
// barrier fails with ErrTerminated, and so does every later operation.
// Terminating twice is harmless.
func (g *Group) Terminate() {
	for _, mb := range g.mailboxes {
		mb.terminate()
	}

	g.barrier.terminate()
}
