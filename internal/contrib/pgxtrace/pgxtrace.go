// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package pgxtrace labels spans with the SQL statements a pgx host runs.
//
// The host publishes its connection configuration on the hook table under
// ConnConfigKey, either a *pgx.ConnConfig or a *pgxpool.Config, before
// connecting. Activation installs a QueryTracer into that configuration.
package pgxtrace

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/holomush/holotrace/internal/hook"
	"github.com/holomush/holotrace/internal/integration"
	"github.com/holomush/holotrace/internal/tracing"
)

// Name is the integration name.
const Name = "pgx"

// ConnConfigKey is the hook table key under which hosts publish their
// connection configuration.
const ConnConfigKey = "pgx.conn_config"

// Descriptor returns the registry entry for this integration.
func Descriptor() integration.Descriptor {
	return integration.Stateful(Name, func() integration.Initializer {
		return New(hook.Default())
	})
}

// Unsupported returns a stand-in entry for toolchains pgx does not support.
// It always reports NotAvailable.
func Unsupported() integration.Descriptor {
	return integration.Static(Name, func() integration.Status {
		return integration.NotAvailable
	})
}

// Integration installs the query tracer into a published configuration.
type Integration struct {
	hooks *hook.Table
}

// New creates an integration reading from hooks.
func New(hooks *hook.Table) *Integration {
	return &Integration{hooks: hooks}
}

// Init installs the tracer. It reports NotLoaded until the host publishes a
// configuration, and NotAvailable when the application already set its own
// tracer or published something unusable.
func (i *Integration) Init() integration.Status {
	v, ok := i.hooks.Lookup(ConnConfigKey)
	if !ok {
		return integration.NotLoaded
	}

	cfg := connConfig(v)
	if cfg == nil {
		return integration.NotAvailable
	}
	switch cfg.Tracer.(type) {
	case nil:
		cfg.Tracer = &QueryTracer{}
		return integration.Loaded
	case *QueryTracer:
		return integration.Loaded
	default:
		return integration.NotAvailable
	}
}

func connConfig(v any) *pgx.ConnConfig {
	switch c := v.(type) {
	case *pgx.ConnConfig:
		return c
	case *pgxpool.Config:
		if c == nil {
			return nil
		}
		return c.ConnConfig
	default:
		return nil
	}
}

// QueryTracer labels the active span with each query it sees.
// It never alters the query, its context, or its outcome.
type QueryTracer struct{}

// TraceQueryStart implements pgx.QueryTracer.
func (*QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	tracing.SetResource(ctx, QueryLabel(data.SQL))
	return ctx
}

// TraceQueryEnd implements pgx.QueryTracer.
func (*QueryTracer) TraceQueryEnd(context.Context, *pgx.Conn, pgx.TraceQueryEndData) {}

// QueryLabel summarizes a statement as its verb and target table, for
// example "SELECT users" or "INSERT orders". Statements without a
// recognizable table yield the verb alone.
func QueryLabel(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return ""
	}
	verb := strings.ToUpper(fields[0])

	var marker string
	switch verb {
	case "SELECT", "DELETE":
		marker = "FROM"
	case "INSERT":
		marker = "INTO"
	case "UPDATE":
		if len(fields) > 1 {
			return verb + " " + tableName(fields[1])
		}
		return verb
	default:
		return verb
	}

	for j, f := range fields[1:] {
		if strings.EqualFold(f, marker) && j+2 < len(fields) {
			if table := tableName(fields[j+2]); table != "" {
				return verb + " " + table
			}
		}
	}
	return verb
}

func tableName(token string) string {
	if i := strings.IndexAny(token, "(;,"); i >= 0 {
		token = token[:i]
	}
	return strings.Trim(token, `"`)
}
