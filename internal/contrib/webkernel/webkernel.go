// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package webkernel traces applications built on the kernel framework.
//
// Which hooks apply depends on the framework version, which is only known once
// a kernel boots. Activation therefore installs a wrapper around kernel boot
// and defers the version-specific hooks to a versiongate.Gate:
//
//   - modern-a (3.3, 3.4): a V3 tracing bundle labeling requests by controller
//   - modern-b (4.x): a V4 tracing bundle labeling requests by route name
//   - legacy (2.x): a process-wide hook on controller selection
//
// Any other version gets no hooks.
package webkernel

import (
	"context"

	"github.com/holomush/holotrace/internal/hook"
	"github.com/holomush/holotrace/internal/integration"
	"github.com/holomush/holotrace/internal/kernel"
	"github.com/holomush/holotrace/internal/tracing"
	"github.com/holomush/holotrace/internal/versiongate"
)

// Name is the integration name.
const Name = "webkernel"

var classifier = versiongate.MustClassifier(
	versiongate.Rule{Bucket: versiongate.ModernA, Constraint: ">=3.3.0-0, <3.5.0-0"},
	versiongate.Rule{Bucket: versiongate.ModernB, Constraint: "^4.0.0-0"},
	versiongate.Rule{Bucket: versiongate.Legacy, Constraint: "^2.0.0-0"},
)

// Classify returns the bucket of a kernel framework version.
func Classify(version string) versiongate.Bucket {
	return classifier.Classify(version)
}

// Descriptor returns the registry entry for this integration.
func Descriptor() integration.Descriptor {
	return integration.Static(Name, Load)
}

// Load activates the integration against the default hook table.
func Load() integration.Status {
	return New(hook.Default()).Load()
}

// stateKey holds the integration bound to a table.
const stateKey = "webkernel.integration"

// Integration holds the hooks installed into one table.
type Integration struct {
	hooks     *hook.Table
	gate      *versiongate.Gate[*kernel.Kernel]
	installed bool
}

// New returns the integration installing into hooks. Every call for the same
// table returns the same integration, so the version gate is shared by all
// loaders activating against that table.
func New(hooks *hook.Table) *Integration {
	return hooks.State(stateKey, func() any { return newIntegration(hooks) }).(*Integration)
}

func newIntegration(hooks *hook.Table) *Integration {
	i := &Integration{hooks: hooks}
	i.gate = versiongate.NewGate[*kernel.Kernel](Name, classifier).
		On(versiongate.ModernA, func(k *kernel.Kernel) { k.AddBundle(newBundle(V3)) }).
		On(versiongate.ModernB, func(k *kernel.Kernel) { k.AddBundle(newBundle(V4)) }).
		OnFirst(versiongate.Legacy, func(*kernel.Kernel) {
			i.hooks.Wrap(kernel.EntryControllerSet, hook.Before(labelController))
		})
	return i
}

// Load wraps the kernel entry points. Wrappers for entry points not declared
// yet are applied when a kernel first declares them. Loading again wraps
// nothing further.
func (i *Integration) Load() integration.Status {
	if i.installed || !i.hooks.Available() {
		return integration.Loaded
	}
	i.hooks.Wrap(kernel.EntryHandle, hook.Before(labelRequest))
	i.hooks.Wrap(kernel.EntryBoot, hook.After(i.afterBoot))
	i.installed = true
	return integration.Loaded
}

// Gate exposes the version gate for diagnostics.
func (i *Integration) Gate() *versiongate.Gate[*kernel.Kernel] {
	return i.gate
}

func (i *Integration) afterBoot(_ context.Context, args []any, _ any, err error) {
	if err != nil || len(args) == 0 {
		return
	}
	k, ok := args[0].(*kernel.Kernel)
	if !ok || k == nil || k.HasBundle(BundleName) || k.Version() == "" {
		return
	}
	i.gate.Observe(k.Version(), k)
}

// labelRequest gives the span a coarse label until a controller is known.
func labelRequest(ctx context.Context, args []any) {
	if len(args) < 2 {
		return
	}
	if req, ok := args[1].(*kernel.Request); ok && req != nil {
		tracing.SetResource(ctx, req.Method+" "+req.Path)
	}
}

func labelController(ctx context.Context, args []any) {
	if len(args) < 2 {
		return
	}
	tracing.SetResource(ctx, ControllerLabel(args[1]))
}
