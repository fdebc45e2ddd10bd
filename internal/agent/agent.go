// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package agent holds the process-wide integration loader.
//
// The loader is built lazily from DefaultRegistry and the options last passed
// to Configure. Like the loader itself, the holder is driven from a single
// goroutine; only Ready and Snapshot may be called from elsewhere.
package agent

import (
	"log/slog"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/Masterminds/semver/v3"

	"github.com/holomush/holotrace/internal/contrib/grpctrace"
	"github.com/holomush/holotrace/internal/contrib/pgxtrace"
	"github.com/holomush/holotrace/internal/contrib/webkernel"
	"github.com/holomush/holotrace/internal/hook"
	"github.com/holomush/holotrace/internal/integration"
)

// Minimum toolchains for integrations whose libraries need a recent Go.
var (
	grpcMinGo = semver.MustParse("1.24.0")
	pgxMinGo  = semver.MustParse("1.24.0")
)

var (
	options  []integration.LoaderOption
	current  *integration.Loader
	ready    atomic.Bool
	snapshot atomic.Pointer[map[string]integration.Status]
)

// DefaultRegistry returns the built-in integrations, in activation order,
// adjusted for the running toolchain.
func DefaultRegistry() *integration.Registry {
	reg := integration.MustRegistry(
		webkernel.Descriptor(),
		pgxtrace.Descriptor(),
		grpctrace.Descriptor(),
	)
	if err := reg.Adjust(HostAdjustments(runtime.Version())...); err != nil {
		panic(err)
	}
	return reg
}

// HostAdjustments returns the catalog changes for a Go toolchain version such
// as "go1.23.4". Unparsable versions (development builds) get none.
func HostAdjustments(goVersion string) []integration.Adjustment {
	v, err := semver.NewVersion(strings.TrimPrefix(goVersion, "go"))
	if err != nil {
		return nil
	}
	return []integration.Adjustment{
		integration.When(v.LessThan(grpcMinGo), integration.Without(grpctrace.Name)),
		integration.When(v.LessThan(pgxMinGo), integration.Substitute(pgxtrace.Unsupported())),
	}
}

// Configure sets the loader options and discards the current loader; the
// next Get builds a fresh one. Recorded statuses are lost.
func Configure(opts ...integration.LoaderOption) {
	options = opts
	current = nil
}

// Get returns the process-wide loader, building it on first use.
func Get() *integration.Loader {
	if current == nil {
		current = integration.NewLoader(DefaultRegistry(), options...)
		slog.Debug("integration loader created", "loader_id", current.ID().String())
	}
	return current
}

// Load runs one activation pass.
func Load() {
	Get().LoadAll()
	publish()
}

// Reload replaces the loader with a fresh one and runs a pass. Integrations
// that reported NotAvailable are attempted again.
func Reload() {
	current = nil
	Load()
}

// Reset empties the working set of the current loader.
func Reset() {
	Get().Reset()
	publish()
}

// Status returns the recorded status of an integration.
func Status(name string) integration.Status {
	return Get().Status(name)
}

// publish exposes the loader state to other goroutines.
func publish() {
	statuses := current.Statuses()
	snapshot.Store(&statuses)
	ready.Store(current.Settled())
}

// Snapshot returns the statuses of the working set as of the last pass.
// Safe for concurrent use.
func Snapshot() map[string]integration.Status {
	if s := snapshot.Load(); s != nil {
		return *s
	}
	return map[string]integration.Status{}
}

// Ready reports whether the last pass left every enabled integration
// settled. Safe for concurrent use.
func Ready() bool {
	return ready.Load()
}

// watchingKey marks a table Watch has already subscribed to.
const watchingKey = "agent.watching"

// Watch runs a pass whenever the host declares an entry point or publishes
// a value on t. Watching the same table again adds no listener.
func Watch(t *hook.Table) {
	watching := t.State(watchingKey, func() any { return new(bool) }).(*bool)
	if *watching {
		return
	}
	*watching = true
	t.OnChange(func(key string) {
		slog.Debug("hook table changed, loading integrations", "key", key)
		Load()
	})
}
