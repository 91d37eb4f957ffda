package extension

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrSealed is returned when registering into a sealed registry.
var ErrSealed = errors.New("extension: registry is sealed")

// Registry collects extensions during initialisation. Once sealed it is read
// only and may be shared by concurrent synthesis runs.
type Registry struct {
	mu         sync.RWMutex
	extensions []Extension
	names      map[string]struct{}
	sealed     bool
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Register adds extensions. Names must be non-empty and unique.
func (r *Registry) Register(extensions ...Extension) error {
	if r == nil {
		return errors.New("extension: registry is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrSealed
	}
	for _, ext := range extensions {
		if ext == nil {
			return errors.New("extension: extension is nil")
		}
		name := strings.TrimSpace(ext.Name())
		if name == "" {
			return errors.New("extension: name is required")
		}
		if _, exists := r.names[name]; exists {
			return fmt.Errorf("extension: %q already registered", name)
		}
		r.names[name] = struct{}{}
		r.extensions = append(r.extensions, ext)
	}
	return nil
}

// MustRegister panics when Register fails.
func (r *Registry) MustRegister(extensions ...Extension) {
	if err := r.Register(extensions...); err != nil {
		panic(err)
	}
}

// Seal freezes the registry. Sealing twice is a no-op.
func (r *Registry) Seal() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// List returns the registered extension names sorted alphabetically.
func (r *Registry) List() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.names))
	for name := range r.names {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Pipeline returns the ordered snapshot used by synthesis runs: ascending
// priority, ties broken by name.
func (r *Registry) Pipeline() *Pipeline {
	if r == nil {
		return &Pipeline{}
	}
	r.mu.RLock()
	exts := append([]Extension(nil), r.extensions...)
	r.mu.RUnlock()

	sort.SliceStable(exts, func(i, j int) bool {
		if exts[i].Priority() == exts[j].Priority() {
			return exts[i].Name() < exts[j].Name()
		}
		return exts[i].Priority() < exts[j].Priority()
	})
	return &Pipeline{extensions: exts}
}
