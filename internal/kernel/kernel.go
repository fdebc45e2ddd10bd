// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package kernel is a small request-handling framework used as an
// instrumentation target.
//
// A Kernel owns a set of bundles, a service container, and a route table.
// Its lifecycle entry points (boot, handle, controller selection) run through
// a hook table so that integrations can observe them. The entry points are
// declared once per table and receive the kernel or event as their first
// argument, so several kernels can share one table.
package kernel

import (
	"context"
	"net/http"

	"github.com/holomush/holotrace/internal/hook"
)

// Version is the framework version reported by kernels built without
// WithVersion.
const Version = "4.4.2"

// Entry points declared on the hook table.
const (
	EntryBoot          = "kernel.boot"
	EntryHandle        = "kernel.handle"
	EntryControllerSet = "kernel.controller_set"
)

// Request is an incoming request.
type Request struct {
	Method     string
	Path       string
	Attributes map[string]any
}

// Response is the result of handling a request.
type Response struct {
	Status int
	Body   string
}

// Handler serves a routed request.
type Handler func(ctx context.Context, req *Request) (*Response, error)

// Route binds a path to a handler. Controller describes the handler for
// diagnostics: a "Type::method" string, or a two-element []any holding a
// controller instance or type name and a method name.
type Route struct {
	Name       string
	Controller any
	Handler    Handler
}

// Bundle is a unit of kernel extension, booted with the kernel.
type Bundle interface {
	Name() string
	SetContainer(c *Container)
	Boot()
}

// Kernel is an application instance.
type Kernel struct {
	version   string
	hooks     *hook.Table
	bundles   map[string]Bundle
	order     []string
	container *Container
	routes    map[string]Route
	booted    bool
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithVersion overrides the reported framework version.
func WithVersion(v string) Option {
	return func(k *Kernel) {
		k.version = v
	}
}

// WithBundles registers bundles booted with the kernel.
func WithBundles(bundles ...Bundle) Option {
	return func(k *Kernel) {
		for _, b := range bundles {
			k.addBundle(b)
		}
	}
}

// New creates a kernel whose entry points run through hooks, declaring them
// on first use of the table. A nil table means hook.Default().
func New(hooks *hook.Table, opts ...Option) (*Kernel, error) {
	if hooks == nil {
		hooks = hook.Default()
	}
	if err := Declare(hooks); err != nil {
		return nil, err
	}

	k := &Kernel{
		version:   Version,
		hooks:     hooks,
		bundles:   make(map[string]Bundle),
		container: NewContainer(),
		routes:    make(map[string]Route),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

// Declare declares the kernel entry points on t if not yet declared.
func Declare(t *hook.Table) error {
	entries := []struct {
		name string
		fn   hook.Func
	}{
		{EntryBoot, bootEntry},
		{EntryHandle, handleEntry},
		{EntryControllerSet, controllerSetEntry},
	}
	for _, e := range entries {
		if t.Declared(e.name) {
			continue
		}
		if err := t.Declare(e.name, e.fn); err != nil {
			return err
		}
	}
	return nil
}

// Version returns the framework version of k.
func (k *Kernel) Version() string {
	return k.version
}

// Container returns the service container.
func (k *Kernel) Container() *Container {
	return k.container
}

// Route registers route under path.
func (k *Kernel) Route(path string, route Route) {
	k.routes[path] = route
}

// HasBundle reports whether a bundle named name is registered.
func (k *Kernel) HasBundle(name string) bool {
	_, ok := k.bundles[name]
	return ok
}

// Bundles returns bundle names in registration order.
func (k *Kernel) Bundles() []string {
	out := make([]string, len(k.order))
	copy(out, k.order)
	return out
}

// AddBundle registers and immediately boots b on an already booted kernel,
// following the same sequence as Boot. On a kernel that has not booted yet,
// b is booted with the others.
func (k *Kernel) AddBundle(b Bundle) {
	if !k.addBundle(b) {
		return
	}
	if k.booted {
		b.SetContainer(k.container)
		b.Boot()
	}
}

func (k *Kernel) addBundle(b Bundle) bool {
	if _, ok := k.bundles[b.Name()]; ok {
		return false
	}
	k.bundles[b.Name()] = b
	k.order = append(k.order, b.Name())
	return true
}

// Booted reports whether Boot has completed.
func (k *Kernel) Booted() bool {
	return k.booted
}

// Boot boots every registered bundle once.
func (k *Kernel) Boot(ctx context.Context) error {
	_, err := k.hooks.Call(ctx, EntryBoot, k)
	return err
}

// Handle boots the kernel if needed and serves req.
func (k *Kernel) Handle(ctx context.Context, req *Request) (*Response, error) {
	result, err := k.hooks.Call(ctx, EntryHandle, k, req)
	resp, _ := result.(*Response)
	return resp, err
}

func bootEntry(_ context.Context, args []any) (any, error) {
	k, err := kernelArg(args)
	if err != nil {
		return nil, err
	}
	if k.booted {
		return nil, nil
	}
	for _, name := range k.order {
		b := k.bundles[name]
		b.SetContainer(k.container)
		b.Boot()
	}
	k.booted = true
	return nil, nil
}

func handleEntry(ctx context.Context, args []any) (any, error) {
	k, err := kernelArg(args)
	if err != nil {
		return nil, err
	}
	req, ok := argAt[*Request](args, 1)
	if !ok || req == nil {
		return nil, ErrBadArguments(EntryHandle)
	}

	if !k.booted {
		if err := k.Boot(ctx); err != nil {
			return nil, err
		}
	}

	route, ok := k.routes[req.Path]
	if !ok {
		return &Response{Status: http.StatusNotFound, Body: "not found"}, nil
	}

	event := &ControllerEvent{Request: req, Route: route.Name}
	if _, err := k.hooks.Call(ctx, EntryControllerSet, event, route.Controller); err != nil {
		return nil, err
	}
	k.container.Events().Dispatch(ctx, EventController, event)

	return route.Handler(ctx, req)
}

func controllerSetEntry(_ context.Context, args []any) (any, error) {
	event, ok := argAt[*ControllerEvent](args, 0)
	if !ok || event == nil || len(args) < 2 {
		return nil, ErrBadArguments(EntryControllerSet)
	}
	event.Controller = args[1]
	return event, nil
}

func kernelArg(args []any) (*Kernel, error) {
	k, ok := argAt[*Kernel](args, 0)
	if !ok || k == nil {
		return nil, ErrBadArguments("kernel receiver")
	}
	return k, nil
}

func argAt[T any](args []any, i int) (T, bool) {
	var zero T
	if i >= len(args) {
		return zero, false
	}
	v, ok := args[i].(T)
	return v, ok
}
