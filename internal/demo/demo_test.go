// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package demo_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/holotrace/internal/agent"
	"github.com/holomush/holotrace/internal/demo"
	"github.com/holomush/holotrace/internal/hook"
	"github.com/holomush/holotrace/internal/integration"
	"github.com/holomush/holotrace/internal/versiongate"
)

func run(t *testing.T, cfg integration.Config, opts demo.Options) *demo.Report {
	t.Helper()
	tbl := hook.NewTable()
	t.Cleanup(hook.SetDefault(tbl))
	agent.Configure(
		integration.WithConfig(cfg),
		integration.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	t.Cleanup(func() { agent.Configure() })

	report, err := demo.Run(context.Background(), tbl, opts)
	require.NoError(t, err)
	return report
}

func resources(r *demo.Report) map[string]string {
	out := make(map[string]string, len(r.Spans))
	for _, s := range r.Spans {
		out[s.Name] = s.Resource
	}
	return out
}

func TestRun_ModernKernel(t *testing.T) {
	report := run(t, &integration.StaticConfig{}, demo.Options{KernelVersion: "4.4.2"})

	assert.Equal(t, versiongate.ModernB, report.Bucket)
	for name, st := range report.Statuses {
		assert.Equal(t, integration.Loaded, st, name)
	}
	assert.Equal(t, map[string]string{
		"http.request": "GET user_show",
		"pgx.query":    "SELECT users",
		"grpc.server":  "/holotrace.demo.v1.Echo/Say",
	}, resources(report))
}

func TestRun_LegacyKernel(t *testing.T) {
	report := run(t, &integration.StaticConfig{}, demo.Options{KernelVersion: "2.8.52"})

	assert.Equal(t, versiongate.Legacy, report.Bucket)
	assert.Equal(t, "demo.UserController show", resources(report)["http.request"])
}

func TestRun_UnrecognizedKernel(t *testing.T) {
	report := run(t, &integration.StaticConfig{}, demo.Options{KernelVersion: "7.0.0"})

	assert.Equal(t, versiongate.Unrecognized, report.Bucket)
	assert.Equal(t, "GET /users/1", resources(report)["http.request"])
}

func TestRun_TracingDisabled(t *testing.T) {
	report := run(t, &integration.StaticConfig{TracingDisabled: true}, demo.Options{})

	for name, st := range report.Statuses {
		assert.Equal(t, integration.NotLoaded, st, name)
	}
	for _, s := range report.Spans {
		assert.Empty(t, s.Resource, s.Name)
	}
}

func TestRun_DisabledIntegration(t *testing.T) {
	report := run(t, &integration.StaticConfig{Disabled: []string{"pgx"}}, demo.Options{})

	assert.Equal(t, integration.NotLoaded, report.Statuses["pgx"])
	assert.Equal(t, integration.Loaded, report.Statuses["grpc"])
	assert.Empty(t, resources(report)["pgx.query"])
}

func TestRun_InvalidDSN(t *testing.T) {
	tbl := hook.NewTable()
	t.Cleanup(hook.SetDefault(tbl))

	_, err := demo.Run(context.Background(), tbl, demo.Options{DSN: "postgres://%zz"})
	assert.Error(t, err)
}
