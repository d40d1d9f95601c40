package kernel

import (
	"fmt"
	"sync"
)

// A Registry resolves kernels by id and by name. It is safe for concurrent
// use.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]ID
	kernels []Kernel
}

// NewRegistry creates an empty kernel registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]ID),
	}
}

// Register adds a kernel and returns its assigned id. Registering the same
// name twice is a configuration error.
func (r *Registry) Register(k Kernel) ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := k.Name()
	if _, ok := r.byName[name]; ok {
		panic("kernel " + name + " already registered")
	}

	id := ID(len(r.kernels))
	r.kernels = append(r.kernels, k)
	r.byName[name] = id

	return id
}

// Kernel returns the kernel registered under an id.
func (r *Registry) Kernel(id ID) (Kernel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id < 0 || int(id) >= len(r.kernels) {
		return nil, fmt.Errorf("unknown kernel id %d", id)
	}

	return r.kernels[id], nil
}

// IDFor resolves the id a kernel name was registered under.
func (r *Registry) IDFor(name string) (ID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[name]
	if !ok {
		return 0, fmt.Errorf("no kernel registered under name %q", name)
	}

	return id, nil
}
