package tensor

import (
	"fmt"
	"sync"
)

// A Format knows how to size and initialize tensors of one storage layout.
type Format interface {
	// Name is the type name the format is resolved by.
	Name() string

	// Size returns the exact payload byte size a tensor with the given
	// metadata occupies.
	Size(meta Meta) (uint64, error)

	// Init initializes a freshly reserved tensor with the given metadata.
	// The tensor's payload must already be sized exactly for the metadata.
	Init(t *Tensor, meta Meta) error
}

// A Registry resolves storage formats by type name and by id. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]FormatID
	formats []Format
}

// NewRegistry creates an empty format registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]FormatID),
	}
}

// Register adds a format to the registry and returns its assigned id.
// Registering the same type name twice is a configuration error.
func (r *Registry) Register(f Format) FormatID {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := f.Name()
	if _, ok := r.byName[name]; ok {
		panic("format " + name + " already registered")
	}

	id := FormatID(len(r.formats))
	r.formats = append(r.formats, f)
	r.byName[name] = id

	return id
}

// FormatIDFor resolves the format id registered for a type name.
func (r *Registry) FormatIDFor(typeName string) (FormatID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[typeName]
	if !ok {
		return FormatNone, fmt.Errorf("no format registered for type %q", typeName)
	}

	return id, nil
}

// Size returns the exact byte size of a tensor with the given metadata.
func (r *Registry) Size(meta Meta) (uint64, error) {
	f, err := r.format(meta.Format)
	if err != nil {
		return 0, err
	}

	return f.Size(meta)
}

// Init initializes a freshly reserved tensor with the given metadata.
func (r *Registry) Init(t *Tensor, meta Meta) error {
	f, err := r.format(meta.Format)
	if err != nil {
		return err
	}

	return f.Init(t, meta)
}

func (r *Registry) format(id FormatID) (Format, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id < 0 || int(id) >= len(r.formats) {
		return nil, fmt.Errorf("unknown format id %d", id)
	}

	return r.formats[id], nil
}
