package comm

import "errors"

// A Tag selects one logical channel multiplexed over the transport.
//
// Three tags are reserved for the communicator's own channels. Every
// application-chosen tag passed to the generic byte-exchange operations must
// be non-negative and is shifted into the free range, so user traffic can
// never collide with the reserved channels.
type Tag int32

// ErrInvalidTag reports a negative application-chosen tag. Only non-negative
// tags shift injectively into the free range; a negative tag would land back
// on a reserved channel.
var ErrInvalidTag = errors.New("comm: invalid application tag")

const (
	tagCmdDispatch Tag = iota
	tagCmdForward
	tagTensorNotify

	// freeTagBase is where the application-chosen tag range starts.
	freeTagBase
)
