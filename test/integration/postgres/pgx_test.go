// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package postgres_test

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/holomush/holotrace/internal/agent"
	"github.com/holomush/holotrace/internal/contrib/pgxtrace"
	"github.com/holomush/holotrace/internal/hook"
	"github.com/holomush/holotrace/internal/integration"
	"github.com/holomush/holotrace/internal/tracing"
)

// appTracer stands in for a tracer the application installed itself.
type appTracer struct{ queries int }

func (a *appTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, _ pgx.TraceQueryStartData) context.Context {
	a.queries++
	return ctx
}

func (*appTracer) TraceQueryEnd(context.Context, *pgx.Conn, pgx.TraceQueryEndData) {}

func resourceOf(s sdktrace.ReadOnlySpan) string {
	for _, kv := range s.Attributes() {
		if kv.Key == tracing.ResourceKey {
			return kv.Value.AsString()
		}
	}
	return ""
}

var _ = Describe("pgx integration against PostgreSQL", func() {
	var (
		ctx      context.Context
		recorder *tracetest.SpanRecorder
		tracer   *sdktrace.TracerProvider
		poolCfg  *pgxpool.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		DeferCleanup(hook.SetDefault(hook.NewTable()))
		agent.Configure(
			integration.WithConfig(&integration.StaticConfig{}),
			integration.WithLogger(quietLogger()),
		)
		DeferCleanup(func() { agent.Configure() })

		recorder = tracetest.NewSpanRecorder()
		tracer = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		DeferCleanup(func() { _ = tracer.Shutdown(context.Background()) })

		var err error
		poolCfg, err = pgxpool.ParseConfig(env.connStr)
		Expect(err).NotTo(HaveOccurred())
	})

	// connect publishes the pool config, runs a pass and opens the pool.
	connect := func() *pgxpool.Pool {
		hook.Default().Provide(pgxtrace.ConnConfigKey, poolCfg)
		agent.Load()

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(pool.Close)
		return pool
	}

	// inSpan runs fn inside a recorded span and returns that span's resource.
	inSpan := func(name string, fn func(context.Context) error) (string, error) {
		spanCtx, span := tracer.Tracer("postgres-test").Start(ctx, name)
		err := fn(spanCtx)
		span.End()

		spans := recorder.Ended()
		Expect(spans).NotTo(BeEmpty())
		return resourceOf(spans[len(spans)-1]), err
	}

	It("stays pending until the host publishes its configuration", func() {
		agent.Load()
		Expect(agent.Status(pgxtrace.Name)).To(Equal(integration.NotLoaded))
	})

	It("labels spans with the statement verb and table", func() {
		pool := connect()
		Expect(agent.Status(pgxtrace.Name)).To(Equal(integration.Loaded))
		Expect(poolCfg.ConnConfig.Tracer).To(BeAssignableToTypeOf(&pgxtrace.QueryTracer{}))

		resource, err := inSpan("db.insert", func(c context.Context) error {
			_, err := pool.Exec(c, `INSERT INTO users (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, "ada")
			return err
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resource).To(Equal("INSERT users"))

		var name string
		resource, err = inSpan("db.select", func(c context.Context) error {
			return pool.QueryRow(c, `SELECT name FROM users WHERE name = $1`, "ada").Scan(&name)
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(Equal("ada"))
		Expect(resource).To(Equal("SELECT users"))

		resource, err = inSpan("db.update", func(c context.Context) error {
			_, err := pool.Exec(c, `UPDATE users SET name = $1 WHERE name = $2`, "ada", "ada")
			return err
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resource).To(Equal("UPDATE users"))
	})

	It("returns database errors unchanged", func() {
		pool := connect()

		resource, err := inSpan("db.missing", func(c context.Context) error {
			_, err := pool.Exec(c, `SELECT id FROM missing_table`)
			return err
		})

		var pgErr *pgconn.PgError
		Expect(errors.As(err, &pgErr)).To(BeTrue())
		Expect(pgErr.Code).To(Equal(pgerrcode.UndefinedTable))
		Expect(resource).To(Equal("SELECT missing_table"))

		_, err = inSpan("db.duplicate", func(c context.Context) error {
			_, err := pool.Exec(c, `INSERT INTO users (name) VALUES ('grace'), ('grace')`)
			return err
		})
		Expect(errors.As(err, &pgErr)).To(BeTrue())
		Expect(pgErr.Code).To(Equal(pgerrcode.UniqueViolation))
	})

	It("leaves an application tracer in place", func() {
		app := &appTracer{}
		poolCfg.ConnConfig.Tracer = app
		pool := connect()

		Expect(agent.Status(pgxtrace.Name)).To(Equal(integration.NotAvailable))
		Expect(poolCfg.ConnConfig.Tracer).To(BeIdenticalTo(app))

		resource, err := inSpan("db.select", func(c context.Context) error {
			var n int
			return pool.QueryRow(c, `SELECT count(*) FROM users`).Scan(&n)
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resource).To(BeEmpty())
		Expect(app.queries).To(BeNumerically(">", 0))
	})
})
