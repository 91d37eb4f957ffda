package render

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-validgen/pkg/codegen"
)

// Registry stores code generation back-ends by name, providing discovery and
// duplication safeguards. The orchestrator resolves the configured back-end
// through it so callers can swap the Go back-end for their own.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]codegen.Backend
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]codegen.Backend),
	}
}

// Register adds a back-end by its Name(). Duplicate names return an error.
func (r *Registry) Register(backend codegen.Backend) error {
	if backend == nil {
		return fmt.Errorf("render: backend is required")
	}
	name := strings.TrimSpace(backend.Name())
	if name == "" {
		return fmt.Errorf("render: backend name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.backends[name]; exists {
		return fmt.Errorf("render: backend %q already registered", name)
	}

	r.backends[name] = backend
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(backend codegen.Backend) {
	if err := r.Register(backend); err != nil {
		panic(err)
	}
}

// Get retrieves a back-end by name.
func (r *Registry) Get(name string) (codegen.Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	backend, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("render: backend %q not found", name)
	}
	return backend, nil
}

// List returns a sorted list of back-end names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a back-end is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.backends[name]
	return ok
}
