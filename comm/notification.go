package comm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sarchlab/tensorbed/node"
	"github.com/sarchlab/tensorbed/tensor"
)

// ErrMalformedNotification reports a tensor notification whose payload is
// not a whole number of tensor ids.
var ErrMalformedNotification = errors.New("malformed tensor notification")

// TensorsCreatedNotification tells dst that the listed tensors now exist and
// are readable on this node. The send is blocking with rendezvous semantics.
func (c *Communicator) TensorsCreatedNotification(
	dst node.ID,
	tids []tensor.ID,
) error {
	data := encodeTIDs(tids)

	err := c.transport.SendSync(data, dst, tagTensorNotify)
	if err != nil {
		return err
	}

	c.notify.countSent(len(data))

	return nil
}

// ReceiveTensorCreatedNotification blocks until a tensor notification
// arrives from any node and returns the origin and the tensor id list. On
// failure it reports node.None as the origin and an empty list.
func (c *Communicator) ReceiveTensorCreatedNotification() (
	node.ID,
	[]tensor.ID,
	error,
) {
	probe, err := c.transport.Probe(node.None, tagTensorNotify)
	if err != nil {
		return node.None, nil, err
	}

	buf := make([]byte, probe.NumBytes)
	if err := c.transport.RecvProbed(buf, probe); err != nil {
		return node.None, nil, err
	}

	if len(buf)%4 != 0 {
		return node.None, nil, fmt.Errorf(
			"%w: %d bytes", ErrMalformedNotification, len(buf))
	}

	c.notify.countReceived(len(buf))

	return probe.Src, decodeTIDs(buf), nil
}

// ShutdownNotificationHandler sends the singleton list [tensor.None] to this
// node itself, unblocking one goroutine parked in
// ReceiveTensorCreatedNotification with a payload the listener must
// interpret as "stop".
func (c *Communicator) ShutdownNotificationHandler() error {
	return c.TensorsCreatedNotification(c.rank, []tensor.ID{tensor.None})
}

func encodeTIDs(tids []tensor.ID) []byte {
	buf := make([]byte, 4*len(tids))
	for i, tid := range tids {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(tid))
	}

	return buf
}

func decodeTIDs(buf []byte) []tensor.ID {
	tids := make([]tensor.ID, len(buf)/4)
	for i := range tids {
		tids[i] = tensor.ID(int32(binary.LittleEndian.Uint32(buf[4*i:])))
	}

	return tids
}
