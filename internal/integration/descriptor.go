// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package integration

// Kind identifies how an integration is activated.
type Kind int

// Integration calling conventions.
const (
	// KindStateful integrations are constructed, then initialized.
	KindStateful Kind = iota + 1
	// KindStatic integrations expose a single load function.
	KindStatic
)

func (k Kind) String() string {
	switch k {
	case KindStateful:
		return "stateful-init"
	case KindStatic:
		return "static-load"
	default:
		return "unknown"
	}
}

// Initializer is an integration instance that registers its hooks in Init.
type Initializer interface {
	Init() Status
}

// Descriptor names an integration and locates its implementation.
// Build descriptors with Stateful or Static.
type Descriptor struct {
	Name string
	Kind Kind

	newFn func() Initializer
	load  func() Status
}

// Stateful describes an integration activated by constructing an instance
// with newFn and calling its Init method.
func Stateful(name string, newFn func() Initializer) Descriptor {
	return Descriptor{Name: name, Kind: KindStateful, newFn: newFn}
}

// Static describes an integration activated by calling load.
func Static(name string, load func() Status) Descriptor {
	return Descriptor{Name: name, Kind: KindStatic, load: load}
}

// Validate checks that d has a name and a locator matching its kind.
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return ErrInvalidDescriptor(d.Name, "name is required")
	}
	switch d.Kind {
	case KindStateful:
		if d.newFn == nil {
			return ErrInvalidDescriptor(d.Name, "stateful integration has no constructor")
		}
	case KindStatic:
		if d.load == nil {
			return ErrInvalidDescriptor(d.Name, "static integration has no load function")
		}
	default:
		return ErrInvalidDescriptor(d.Name, "unknown integration kind")
	}
	return nil
}

// Dispatch activates the integration described by d and returns the status
// it reports. The result is not validated, and calling Dispatch again after a
// Loaded result installs the integration's hooks twice; preventing both is
// the Loader's job.
func Dispatch(d Descriptor) Status {
	switch d.Kind {
	case KindStateful:
		return d.newFn().Init()
	case KindStatic:
		return d.load()
	default:
		return invalidStatus
	}
}

// invalidStatus is returned when a descriptor cannot be dispatched at all.
const invalidStatus Status = -1
