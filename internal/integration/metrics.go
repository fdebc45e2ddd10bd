// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package integration

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Activations counts dispatch results by integration and status.
// Use RegisterMetrics to register this with a Prometheus registry.
var Activations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "holotrace_integration_activations_total",
		Help: "Total number of integration activation attempts by result status",
	},
	[]string{"integration", "status"},
)

// Anomalies counts dispatches that returned an invalid status or panicked.
// Use RegisterMetrics to register this with a Prometheus registry.
var Anomalies = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "holotrace_integration_anomalies_total",
		Help: "Total number of integration activations with an invalid result",
	},
	[]string{"integration"},
)

// RegisterMetrics registers integration metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Activations)
	reg.MustRegister(Anomalies)
}

func recordActivation(name string, status Status) {
	Activations.WithLabelValues(name, status.String()).Inc()
}

func recordAnomaly(name string) {
	Anomalies.WithLabelValues(name).Inc()
}
