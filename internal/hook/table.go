// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package hook provides the interception table through which host code
// exposes entry points and integrations wrap them.
//
// Host libraries declare each interceptable entry point once with Declare and
// invoke it through Call. Integrations install wrappers with Wrap; a wrapper
// for an entry point that has not been declared yet is queued and applied when
// the host declares it. Hosts can also publish values (configs, interceptor
// chains) under string keys for integrations to find with Lookup.
//
// Installation (Declare, Wrap, Provide) is not synchronized and must be driven
// from a single goroutine. Call only reads the table and may run concurrently
// once installation is done.
package hook

import (
	"context"
	"log/slog"
	"slices"
)

// Func is an interceptable host entry point. The receiver, if any, is passed
// as the first argument.
type Func func(ctx context.Context, args []any) (any, error)

// Wrapper decorates an entry point. A wrapper must call next with the
// arguments it received and return next's result and error unchanged.
type Wrapper func(next Func) Func

// Listener is notified when an entry point is declared or a value is
// published. The key is the entry point name or value key.
type Listener func(key string)

// Table holds host entry points, pending wrappers, and published values.
type Table struct {
	entries   map[string]Func
	pending   map[string][]Wrapper
	values    map[string]any
	state     map[string]any
	listeners []Listener
	disabled  bool
}

// NewTable creates an empty, enabled hook table.
func NewTable() *Table {
	return &Table{
		entries: make(map[string]Func),
		pending: make(map[string][]Wrapper),
		values:  make(map[string]any),
		state:   make(map[string]any),
	}
}

// Available reports whether interception is possible through this table.
// A nil or disabled table is unavailable.
func (t *Table) Available() bool {
	return t != nil && !t.disabled
}

// Disable turns the table into a pass-through: later wrappers are ignored.
// Wrappers already installed stay installed.
func (t *Table) Disable() {
	t.disabled = true
}

// Enable makes a disabled table accept wrappers again. Wrappers ignored while
// it was disabled are not restored.
func (t *Table) Enable() {
	t.disabled = false
}

// Declare registers a host entry point. Wrappers queued for name are applied
// in the order they were added, then listeners are notified.
func (t *Table) Declare(name string, fn Func) error {
	if fn == nil {
		return ErrNilEntryPoint(name)
	}
	if _, ok := t.entries[name]; ok {
		return ErrEntryPointExists(name)
	}

	for _, w := range t.pending[name] {
		fn = w(fn)
	}
	delete(t.pending, name)
	t.entries[name] = fn

	t.notify(name)
	return nil
}

// Declared reports whether the host has declared name.
func (t *Table) Declared(name string) bool {
	_, ok := t.entries[name]
	return ok
}

// Wrap installs w around the entry point name, or queues it until the host
// declares name. Wrapping the same entry point twice nests the wrappers;
// callers are responsible for installing each wrapper once, typically by
// recording what they installed with State.
func (t *Table) Wrap(name string, w Wrapper) {
	if !t.Available() {
		slog.Debug("hook table unavailable, wrapper ignored", "entry_point", name)
		return
	}
	if fn, ok := t.entries[name]; ok {
		t.entries[name] = w(fn)
		return
	}
	t.pending[name] = append(t.pending[name], w)
}

// Pending returns the number of wrappers queued for an undeclared entry point.
func (t *Table) Pending(name string) int {
	return len(t.pending[name])
}

// Call invokes the entry point name with args through its installed wrappers.
func (t *Table) Call(ctx context.Context, name string, args ...any) (any, error) {
	fn, ok := t.entries[name]
	if !ok {
		return nil, ErrUnknownEntryPoint(name)
	}
	return fn(ctx, args)
}

// Provide publishes a host value under key and notifies listeners.
// Publishing again under the same key replaces the value.
func (t *Table) Provide(key string, v any) {
	t.values[key] = v
	t.notify(key)
}

// Lookup returns the value published under key.
func (t *Table) Lookup(key string) (any, bool) {
	v, ok := t.values[key]
	return v, ok
}

// State returns the value integrations keep on this table under key,
// creating it with init on first use. Unlike Provide it notifies no
// listeners; integrations use it to remember what they installed here.
func (t *Table) State(key string, init func() any) any {
	if v, ok := t.state[key]; ok {
		return v
	}
	v := init()
	t.state[key] = v
	return v
}

// OnChange registers l to run after every Declare and Provide.
// Listeners run synchronously on the installing goroutine.
func (t *Table) OnChange(l Listener) {
	t.listeners = append(t.listeners, l)
}

func (t *Table) notify(key string) {
	for _, l := range t.listeners {
		l(key)
	}
}

// Before returns a wrapper that runs fn ahead of the entry point. fn receives
// a copy of the arguments; the entry point always receives the originals.
func Before(fn func(ctx context.Context, args []any)) Wrapper {
	return func(next Func) Func {
		return func(ctx context.Context, args []any) (any, error) {
			fn(ctx, slices.Clone(args))
			return next(ctx, args)
		}
	}
}

// After returns a wrapper that runs fn once the entry point has returned.
// fn observes the result and error but cannot change them. If the entry point
// panics, fn is not run and the panic propagates.
func After(fn func(ctx context.Context, args []any, result any, err error)) Wrapper {
	return func(next Func) Func {
		return func(ctx context.Context, args []any) (any, error) {
			result, err := next(ctx, args)
			fn(ctx, slices.Clone(args), result, err)
			return result, err
		}
	}
}

// Passthrough returns a wrapper that only delegates.
func Passthrough() Wrapper {
	return func(next Func) Func {
		return func(ctx context.Context, args []any) (any, error) {
			return next(ctx, args)
		}
	}
}
