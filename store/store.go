// Package store provides the node-local tensor store with transactional,
// reservation-scoped access.
//
// A transaction locks a set of existing tensors for read and reserves a set
// of fresh, exactly sized output slots for write. The handles it exposes are
// valid only for the dynamic extent of the transaction body; the store, not
// its callers, serializes conflicting reservations.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sarchlab/tensorbed/tensor"
)

// The reservation failures a transaction can report.
var (
	// ErrUnknownTensor reports a read of a tensor the store does not hold.
	ErrUnknownTensor = errors.New("store: tensor does not exist")

	// ErrTensorExists reports a create under an id the store already holds.
	ErrTensorExists = errors.New("store: tensor already exists")

	// ErrOutOfCapacity reports a reservation the store cannot satisfy.
	ErrOutOfCapacity = errors.New("store: reservation exceeds capacity")
)

// A CreateSpec requests one fresh output slot of an exact byte size.
// tensor.None as the id asks the store to assign an anonymous id.
type CreateSpec struct {
	TID      tensor.ID
	ByteSize uint64
}

// A ReadHandle exposes one tensor locked for read.
type ReadHandle struct {
	ID     tensor.ID
	Tensor *tensor.Tensor
}

// A CreateHandle exposes one freshly reserved output slot and its assigned
// id.
type CreateHandle struct {
	ID     tensor.ID
	Tensor *tensor.Tensor
}

// A Reservation is the locked view a transaction body receives. Get holds
// one handle per requested read, Create one per requested create, both in
// request order. The reservation never outlives the body.
type Reservation struct {
	Get    []ReadHandle
	Create []CreateHandle
}

type slot struct {
	t        *tensor.Tensor
	byteSize uint64
	readers  int
	creating bool
}

// A Store keeps the tensors of one node.
type Store struct {
	mu   sync.Mutex
	cond *sync.Cond

	capacity uint64
	used     uint64
	tensors  map[tensor.ID]*slot

	// Anonymous ids grow downward from -2; ids assigned by the scheduler
	// are non-negative and tensor.None stays reserved.
	nextAnonID tensor.ID
}

// Builder can build stores.
type Builder struct {
	capacity uint64
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{}
}

// WithCapacity bounds the total payload bytes the store will hold. Zero
// leaves the store unbounded.
func (b Builder) WithCapacity(bytes uint64) Builder {
	b.capacity = bytes
	return b
}

// Build creates the store.
func (b Builder) Build() *Store {
	s := &Store{
		capacity:   b.capacity,
		tensors:    make(map[tensor.ID]*slot),
		nextAnonID: tensor.None - 1,
	}
	s.cond = sync.NewCond(&s.mu)

	return s
}

// LocalTransaction locks the read set, reserves the create set, runs body
// over the resulting reservation, and releases every lock when the body
// returns, success or failure. A failed body rolls the creates back, so no
// partial output ever becomes visible. A denied reservation is returned
// without running the body.
func (s *Store) LocalTransaction(
	reads []tensor.ID,
	creates []CreateSpec,
	body func(*Reservation) error,
) error {
	res, err := s.acquire(reads, creates)
	if err != nil {
		return err
	}

	err = body(res)
	s.release(reads, res, err)

	return err
}

func (s *Store) acquire(
	reads []tensor.ID,
	creates []CreateSpec,
) (*Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Wait until every read target is committed. Acquisition is
	// all-or-nothing under one monitor, so transactions cannot deadlock on
	// partially taken locks.
	for {
		ready := true

		for _, tid := range reads {
			sl, ok := s.tensors[tid]
			if !ok {
				return nil, fmt.Errorf("%w: %d", ErrUnknownTensor, tid)
			}

			if sl.creating {
				ready = false
				break
			}
		}

		if ready {
			break
		}

		s.cond.Wait()
	}

	var total uint64
	for _, spec := range creates {
		total += spec.ByteSize
	}

	if s.capacity > 0 && s.used+total > s.capacity {
		return nil, fmt.Errorf(
			"%w: %d bytes requested, %d of %d in use",
			ErrOutOfCapacity, total, s.used, s.capacity)
	}

	for _, spec := range creates {
		if spec.TID == tensor.None {
			continue
		}

		if _, ok := s.tensors[spec.TID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrTensorExists, spec.TID)
		}
	}

	res := &Reservation{}

	for _, tid := range reads {
		sl := s.tensors[tid]
		sl.readers++
		res.Get = append(res.Get, ReadHandle{ID: tid, Tensor: sl.t})
	}

	for _, spec := range creates {
		id := spec.TID
		if id == tensor.None {
			id = s.nextAnonID
			s.nextAnonID--
		}

		sl := &slot{
			t:        tensor.NewTensor(spec.ByteSize),
			byteSize: spec.ByteSize,
			creating: true,
		}
		s.tensors[id] = sl
		s.used += spec.ByteSize

		res.Create = append(res.Create, CreateHandle{ID: id, Tensor: sl.t})
	}

	return res, nil
}

func (s *Store) release(reads []tensor.ID, res *Reservation, bodyErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tid := range reads {
		s.tensors[tid].readers--
	}

	for _, h := range res.Create {
		sl := s.tensors[h.ID]

		if bodyErr != nil {
			delete(s.tensors, h.ID)
			s.used -= sl.byteSize
			continue
		}

		sl.creating = false
	}

	s.cond.Broadcast()
}

// Rename moves a committed tensor to a new id, typically to give an
// anonymous result the id its command declared. It waits until no
// transaction reads the tensor.
func (s *Store) Rename(from, to tensor.ID) error {
	if to == tensor.None {
		return fmt.Errorf("%w: %d", ErrUnknownTensor, to)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		sl, ok := s.tensors[from]
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownTensor, from)
		}

		if _, ok := s.tensors[to]; ok {
			return fmt.Errorf("%w: %d", ErrTensorExists, to)
		}

		if sl.readers == 0 && !sl.creating {
			delete(s.tensors, from)
			s.tensors[to] = sl
			s.cond.Broadcast()

			return nil
		}

		s.cond.Wait()
	}
}

// Delete drops a tensor and frees its capacity. It waits until no
// transaction reads the tensor.
func (s *Store) Delete(tid tensor.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		sl, ok := s.tensors[tid]
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownTensor, tid)
		}

		if sl.readers == 0 && !sl.creating {
			delete(s.tensors, tid)
			s.used -= sl.byteSize
			s.cond.Broadcast()

			return nil
		}

		s.cond.Wait()
	}
}

// Has reports whether the store holds a committed tensor under tid.
func (s *Store) Has(tid tensor.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.tensors[tid]

	return ok && !sl.creating
}

// NumTensors returns the number of committed tensors.
func (s *Store) NumTensors() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, sl := range s.tensors {
		if !sl.creating {
			n++
		}
	}

	return n
}

// Used returns the payload bytes currently held.
func (s *Store) Used() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.used
}

// Capacity returns the configured capacity, zero meaning unbounded.
func (s *Store) Capacity() uint64 {
	return s.capacity
}
