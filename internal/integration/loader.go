// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package integration

import (
	"log/slog"
	"maps"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/holotrace/internal/hook"
	"github.com/holomush/holotrace/pkg/errutil"
)

// Loader activates the integrations of its working set and remembers the
// status each one reported.
//
// A Loader is driven from one goroutine at a time. LoadAll may be called any
// number of times, including re-entrantly from a hook table listener; an
// integration whose status is Loaded or NotAvailable is never dispatched
// again, so hooks are installed at most once per Loader. LoadAll calls issued
// while a pass is running are folded into a single extra pass after it; calls
// made during that extra pass are dropped.
type Loader struct {
	id       ulid.ULID
	registry *Registry
	statuses map[string]Status
	config   Config
	probe    Probe
	logger   *slog.Logger
	warned   bool
	running  bool
	again    bool
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithConfig sets the configuration consulted on every pass.
// Without it, tracing and every integration are enabled.
func WithConfig(c Config) LoaderOption {
	return func(l *Loader) {
		l.config = c
	}
}

// WithProbe sets the host capability probe.
// Without it, the loader probes the default hook table.
func WithProbe(p Probe) LoaderOption {
	return func(l *Loader) {
		l.probe = p
	}
}

// WithLogger sets the logger for activation events.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader whose working set is a copy of reg.
func NewLoader(reg *Registry, opts ...LoaderOption) *Loader {
	l := &Loader{
		id:       ulid.Make(),
		registry: reg.Clone(),
		statuses: make(map[string]Status),
		config:   &StaticConfig{},
		probe:    ProbeFunc(func() bool { return hook.Default().Available() }),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("loader_id", l.id.String())
	return l
}

// ID identifies this loader instance in diagnostics.
func (l *Loader) ID() ulid.ULID {
	return l.id
}

// LoadAll runs one activation pass over the working set.
//
// Nothing happens while the interception mechanism is unavailable or tracing
// is disabled. Otherwise each enabled integration that has not settled is
// dispatched and its status recorded. An integration that reports an invalid
// status or panics is logged and left as it was; the pass continues.
func (l *Loader) LoadAll() {
	if !l.probe.Available() {
		if !l.warned {
			l.warned = true
			l.logger.Warn("hook table unavailable, integrations will not be loaded; " +
				"set trace.enabled=false to disable tracing")
		}
		return
	}

	if !l.config.TracingEnabled() {
		return
	}

	if l.running {
		l.again = true
		return
	}
	l.running = true
	defer func() { l.running = false }()

	l.again = false
	l.pass()
	if l.again {
		l.again = false
		l.pass()
		l.again = false
	}
}

func (l *Loader) pass() {
	l.logger.Debug("attempting integrations load")

	for _, d := range l.registry.Integrations() {
		if !l.config.IntegrationEnabled(d.Name) {
			l.logger.Debug("integration disabled", "integration", d.Name)
			continue
		}

		if l.Status(d.Name).Settled() {
			continue
		}

		status, err := l.dispatch(d)
		if err != nil {
			recordAnomaly(d.Name)
			errutil.LogError(l.logger, "integration activation failed", err)
			continue
		}

		l.statuses[d.Name] = status
		recordActivation(d.Name, status)
		l.logResult(d, status)
	}
}

// dispatch activates d, converting panics and invalid results into errors.
func (l *Loader) dispatch(d Descriptor) (status Status, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrActivationPanic(d.Name, r)
		}
	}()

	status = Dispatch(d)
	if !status.Valid() {
		return status, ErrInvalidStatus(d.Name, status)
	}
	return status, nil
}

func (l *Loader) logResult(d Descriptor, status Status) {
	attrs := []any{"integration", d.Name, "kind", d.Kind.String()}
	switch status {
	case Loaded:
		l.logger.Debug("loaded integration", attrs...)
	case NotAvailable:
		l.logger.Debug("integration not available, no further attempts", attrs...)
	case NotLoaded:
		l.logger.Debug("integration not loaded, may retry", attrs...)
	}
}

// Status returns the recorded status of name, or NotLoaded if none.
func (l *Loader) Status(name string) Status {
	return l.statuses[name]
}

// Statuses returns the status of every integration in the working set.
func (l *Loader) Statuses() map[string]Status {
	out := make(map[string]Status, l.registry.Len())
	for _, name := range l.registry.Names() {
		out[name] = l.Status(name)
	}
	return out
}

// Recorded returns a copy of every recorded status, including integrations
// dropped from the working set by Reset.
func (l *Loader) Recorded() map[string]Status {
	return maps.Clone(l.statuses)
}

// Integrations returns a snapshot of the working set in activation order.
func (l *Loader) Integrations() []Descriptor {
	return l.registry.Integrations()
}

// Reset empties the working set. Recorded statuses are kept.
func (l *Loader) Reset() {
	l.registry = MustRegistry()
}

// Settled reports whether further passes can change anything: the loader is
// inert, or every enabled integration has settled.
func (l *Loader) Settled() bool {
	return len(l.Pending()) == 0
}

// Pending returns, in activation order, the enabled integrations that a
// further pass would still dispatch. It is empty while the loader is inert.
func (l *Loader) Pending() []string {
	if !l.probe.Available() || !l.config.TracingEnabled() {
		return nil
	}
	var out []string
	for _, name := range l.registry.Names() {
		if l.config.IntegrationEnabled(name) && !l.Status(name).Settled() {
			out = append(out, name)
		}
	}
	return out
}
