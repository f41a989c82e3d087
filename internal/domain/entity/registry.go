package entity

import (
	"fmt"
	"sort"
	"sync"

	"github.com/erp/erpcore/internal/domain/shared"
)

// Registry maps entity names to their descriptors
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]*Descriptor
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{descriptors: make(map[string]*Descriptor)}
}

// Register adds a descriptor. It fails on an invalid descriptor, on a
// duplicate name and on a reference to an entity that is not registered yet.
func (r *Registry) Register(d *Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.descriptors[d.Name]; exists {
		return fmt.Errorf("entity already registered: %s", d.Name)
	}
	for _, f := range d.Fields {
		if f.Ref == nil || f.Ref.Entity == d.Name {
			continue
		}
		if _, ok := r.descriptors[f.Ref.Entity]; !ok {
			return fmt.Errorf("entity %s: field %s references unregistered entity %s", d.Name, f.Name, f.Ref.Entity)
		}
	}
	r.descriptors[d.Name] = d
	return nil
}

// MustRegister is like Register but panics on error
func (r *Registry) MustRegister(ds ...*Descriptor) *Registry {
	for _, d := range ds {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

// Describe returns the descriptor for name, or an UnknownEntity error
func (r *Registry) Describe(name string) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.descriptors[name]
	if !ok {
		return nil, shared.UnknownEntity(name)
	}
	return d, nil
}

// Names returns the registered entity names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every descriptor sorted by name
func (r *Registry) All() []*Descriptor {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Descriptor, len(names))
	for i, name := range names {
		out[i] = r.descriptors[name]
	}
	return out
}

// Models returns an empty record per entity, for schema migration
func (r *Registry) Models() []any {
	all := r.All()
	models := make([]any, len(all))
	for i, d := range all {
		models[i] = d.New()
	}
	return models
}
