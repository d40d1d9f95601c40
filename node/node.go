// Package node defines the identity of one participant in the fixed-size
// cluster. Membership is established when the transport group is initialized
// and never changes afterwards.
package node

// ID is the rank of a cluster participant. Valid ranks are in the range
// [0, numNodes).
type ID int32

// None is the reserved rank sentinel. A probe with its source set to None
// matches messages from any sender, and operations that fail before a sender
// is known report None as the origin.
const None ID = -1
