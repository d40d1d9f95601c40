package cluster

import (
	"sync"

	"github.com/sarchlab/tensorbed/node"
	"github.com/sarchlab/tensorbed/tensor"
)

// A readinessTracker remembers which remote tensors have been announced and
// by whom.
type readinessTracker struct {
	mu      sync.Mutex
	cond    *sync.Cond
	origins map[tensor.ID]node.ID
}

func newReadinessTracker() *readinessTracker {
	t := &readinessTracker{
		origins: make(map[tensor.ID]node.ID),
	}
	t.cond = sync.NewCond(&t.mu)

	return t
}

func (t *readinessTracker) markArrived(origin node.ID, tids []tensor.ID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, tid := range tids {
		if tid == tensor.None {
			continue
		}

		t.origins[tid] = origin
	}

	t.cond.Broadcast()
}

func (t *readinessTracker) origin(tid tensor.ID) (node.ID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	origin, ok := t.origins[tid]

	return origin, ok
}

func (t *readinessTracker) await(tid tensor.ID) node.ID {
	t.mu.Lock()
	defer t.mu.Unlock()

	for {
		if origin, ok := t.origins[tid]; ok {
			return origin
		}

		t.cond.Wait()
	}
}
