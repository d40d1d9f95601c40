package memtransport

import (
	"sync"

	"github.com/sarchlab/tensorbed/comm"
	"github.com/sarchlab/tensorbed/node"
)

// A message is one pending transfer sitting in the receiver's mailbox. The
// matched channel closes when a receiver claims the message; that moment
// completes the sender's rendezvous.
type message struct {
	src  node.ID
	tag  comm.Tag
	data []byte

	matched chan struct{}
	err     error // set before matched closes when the group terminates
}

func (m *message) awaitMatch() error {
	<-m.matched
	return m.err
}

// A mailbox holds the not-yet-claimed inbound messages of one rank. Claims
// scan in arrival order, which preserves send order per
// (sender, receiver, tag) triple.
type mailbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*message
	closed bool
}

func newMailbox() *mailbox {
	mb := &mailbox{}
	mb.cond = sync.NewCond(&mb.mu)

	return mb
}

func (mb *mailbox) push(m *message) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if mb.closed {
		return ErrTerminated
	}

	mb.queue = append(mb.queue, m)
	mb.cond.Broadcast()

	return nil
}

// claim blocks until a message matching src and tag is pending, removes it
// from the queue, and completes the sender's rendezvous. src set to
// node.None matches any sender.
func (mb *mailbox) claim(src node.ID, tag comm.Tag) (*message, error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	for {
		if mb.closed {
			return nil, ErrTerminated
		}

		for i, m := range mb.queue {
			if m.tag != tag {
				continue
			}
			if src != node.None && m.src != src {
				continue
			}

			mb.queue = append(mb.queue[:i], mb.queue[i+1:]...)
			close(m.matched)

			return m, nil
		}

		mb.cond.Wait()
	}
}

func (mb *mailbox) terminate() {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if mb.closed {
		return
	}

	mb.closed = true

	for _, m := range mb.queue {
		m.err = ErrTerminated
		close(m.matched)
	}
	mb.queue = nil

	mb.cond.Broadcast()
}
