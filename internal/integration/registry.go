// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package integration

import "slices"

// Registry is an ordered set of integrations keyed by name.
// Iteration follows insertion order; Replace keeps an entry's position.
type Registry struct {
	order  []string
	byName map[string]Descriptor
}

// NewRegistry creates a registry holding descs in order.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{byName: make(map[string]Descriptor, len(descs))}
	for _, d := range descs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on an invalid or duplicate
// descriptor. Use it for the built-in catalog.
func MustRegistry(descs ...Descriptor) *Registry {
	r, err := NewRegistry(descs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register appends d. Names must be unique.
func (r *Registry) Register(d Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, ok := r.byName[d.Name]; ok {
		return ErrDuplicateIntegration(d.Name)
	}
	r.order = append(r.order, d.Name)
	r.byName[d.Name] = d
	return nil
}

// Replace substitutes the descriptor registered under d.Name, keeping its
// position, or appends d if the name is new.
func (r *Registry) Replace(d Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, ok := r.byName[d.Name]; !ok {
		r.order = append(r.order, d.Name)
	}
	r.byName[d.Name] = d
	return nil
}

// Remove drops name. Removing an unknown name is a no-op.
func (r *Registry) Remove(name string) {
	if _, ok := r.byName[name]; !ok {
		return
	}
	delete(r.byName, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
}

// Get returns the descriptor registered under name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Names returns integration names in registry order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Integrations returns a snapshot of the descriptors in registry order.
// The slice is a copy and safe to modify.
func (r *Registry) Integrations() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Len returns the number of integrations.
func (r *Registry) Len() int {
	return len(r.order)
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		order:  slices.Clone(r.order),
		byName: make(map[string]Descriptor, len(r.byName)),
	}
	for name, d := range r.byName {
		c.byName[name] = d
	}
	return c
}

// Adjustment narrows or substitutes entries of a working set for the
// current host environment.
type Adjustment func(*Registry) error

// Adjust applies adjs in order and stops at the first error.
func (r *Registry) Adjust(adjs ...Adjustment) error {
	for _, adj := range adjs {
		if err := adj(r); err != nil {
			return err
		}
	}
	return nil
}

// Without removes the named integrations.
func Without(names ...string) Adjustment {
	return func(r *Registry) error {
		for _, name := range names {
			r.Remove(name)
		}
		return nil
	}
}

// Substitute replaces or adds d.
func Substitute(d Descriptor) Adjustment {
	return func(r *Registry) error {
		return r.Replace(d)
	}
}

// When applies adjs only if cond holds.
func When(cond bool, adjs ...Adjustment) Adjustment {
	return func(r *Registry) error {
		if !cond {
			return nil
		}
		return r.Adjust(adjs...)
	}
}
