package memtransport

import "sync"

// A barrier releases its waiters once all members of the group have arrived.
// It is reusable across generations.
type barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	size       int
	arrived    int
	generation uint64
	terminated bool
}

func newBarrier(size int) *barrier {
	b := &barrier{size: size}
	b.cond = sync.NewCond(&b.mu)

	return b
}

func (b *barrier) await() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.terminated {
		return ErrTerminated
	}

	gen := b.generation

	b.arrived++
	if b.arrived == b.size {
		b.arrived = 0
		b.generation++
		b.cond.Broadcast()

		return nil
	}

	for b.generation == gen && !b.terminated {
		b.cond.Wait()
	}

	if b.generation == gen {
		return ErrTerminated
	}

	return nil
}

func (b *barrier) terminate() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.terminated = true
	b.cond.Broadcast()
}
