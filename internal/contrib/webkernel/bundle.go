// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package webkernel

import (
	"context"

	"github.com/holomush/holotrace/internal/kernel"
	"github.com/holomush/holotrace/internal/tracing"
)

// BundleName is the name under which the tracing bundle registers.
const BundleName = "holotrace.tracing"

// Flavor selects how a tracing bundle labels requests.
type Flavor int

// Bundle flavors.
const (
	// V3 labels with the request method and the controller reference.
	V3 Flavor = iota + 3
	// V4 labels with the request method and the route name.
	V4
)

type bundle struct {
	flavor    Flavor
	container *kernel.Container
}

func newBundle(f Flavor) *bundle {
	return &bundle{flavor: f}
}

func (b *bundle) Name() string { return BundleName }

func (b *bundle) SetContainer(c *kernel.Container) { b.container = c }

func (b *bundle) Boot() {
	if b.container == nil {
		return
	}
	b.container.Set(BundleName, b.flavor)
	b.container.Events().AddListener(kernel.EventController, b.onController)
}

func (b *bundle) onController(ctx context.Context, ev *kernel.ControllerEvent) {
	if ev == nil || ev.Request == nil {
		return
	}
	var subject string
	switch b.flavor {
	case V3:
		subject = ControllerLabel(ev.Controller)
	case V4:
		subject = ev.Route
	}
	if subject == "" {
		return
	}
	tracing.SetResource(ctx, ev.Request.Method+" "+subject)
}
