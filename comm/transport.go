package comm

import "github.com/sarchlab/tensorbed/node"

// A ProbeResult describes a pending inbound message that a probe has claimed
// but not yet consumed. It carries the exact byte length, so the receiver
// can allocate before receiving.
type ProbeResult struct {
	Src      node.ID
	Tag      Tag
	NumBytes int

	// Claim is the transport-private handle of the claimed message. Probe
	// sets it and RecvProbed consumes it.
	Claim any
}

// An AsyncRequest is a non-blocking send in flight. It owns transport
// resources until Wait is called exactly once. Waiting twice is a
// programming error and panics.
type AsyncRequest interface {
	// Wait blocks until this specific send completes and reports whether
	// the send succeeded.
	Wait() error
}

// Transport is the point-to-point substrate the messaging layer runs over.
// Any substrate offering these primitives over a fixed-size group is
// substitutable. Implementations must be safe for concurrent use from
// multiple goroutines; the communicator drives several logical channels from
// independent goroutines at once.
type Transport interface {
	// Rank returns the rank of this endpoint within the group.
	Rank() node.ID

	// NumNodes returns the size of the group.
	NumNodes() int

	// SendSync performs a rendezvous send: it returns only once the
	// receiver has begun a matching receive.
	SendSync(data []byte, dst node.ID, tag Tag) error

	// RecvSync receives into a pre-sized buffer. The buffer length must
	// equal the matched message's length.
	RecvSync(buf []byte, src node.ID, tag Tag) error

	// SendAsync starts a non-blocking send. The data buffer must not be
	// reused until the returned request has been waited on.
	SendAsync(data []byte, dst node.ID, tag Tag) AsyncRequest

	// Probe blocks until a message matching src and tag is pending, claims
	// it, and describes it without consuming the payload. node.None as src
	// matches any sender.
	Probe(src node.ID, tag Tag) (*ProbeResult, error)

	// RecvProbed consumes a previously probed message into a buffer sized
	// exactly probe.NumBytes.
	RecvProbed(buf []byte, probe *ProbeResult) error

	// Barrier blocks until every node of the group has entered it.
	Barrier() error
}
