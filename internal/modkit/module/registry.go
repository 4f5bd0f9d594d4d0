package module

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the modules composed by a binary
type Registry struct {
	mu   sync.RWMutex
	mods map[string]Module
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry { return &Registry{mods: map[string]Module{}} }

// Add registers m under its name; names are unique
func (r *Registry) Add(m Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.mods[m.Name()]; dup {
		return fmt.Errorf("module %q registered twice", m.Name())
	}
	r.mods[m.Name()] = m
	return nil
}

// Get returns the module registered under name
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mods[name]
	return m, ok
}

// All returns the modules in name order
func (r *Registry) All() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.mods))
	for n := range r.mods {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Module, 0, len(names))
	for _, n := range names {
		out = append(out, r.mods[n])
	}
	return out
}

// PortsAs fetches a module by name and type asserts its ports
func PortsAs[T any](r *Registry, name string) (T, bool) {
	var zero T
	m, ok := r.Get(name)
	if !ok {
		return zero, false
	}
	return PortsOf[T](m)
}
