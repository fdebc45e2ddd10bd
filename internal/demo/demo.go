// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package demo runs a small in-process host so the agent can be observed
// end to end: a kernel application, a pgx connection configuration, and a
// gRPC unary interceptor chain, each published on a hook table the agent
// watches. One request of each kind is then served inside a recorded span.
package demo

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"google.golang.org/grpc"

	"github.com/holomush/holotrace/internal/agent"
	"github.com/holomush/holotrace/internal/contrib/grpctrace"
	"github.com/holomush/holotrace/internal/contrib/pgxtrace"
	"github.com/holomush/holotrace/internal/contrib/webkernel"
	"github.com/holomush/holotrace/internal/hook"
	"github.com/holomush/holotrace/internal/integration"
	"github.com/holomush/holotrace/internal/kernel"
	"github.com/holomush/holotrace/internal/tracing"
	"github.com/holomush/holotrace/internal/versiongate"
)

// DefaultDSN is the connection string parsed for the demo pgx host.
// The demo never connects.
const DefaultDSN = "postgres://holotrace@localhost:5432/holotrace"

// Options configures a demo run.
type Options struct {
	KernelVersion string
	DSN           string
	// Controller is the controller reference routed for the demo request.
	Controller any
}

// Report is what a demo run observed.
type Report struct {
	KernelVersion string                        `yaml:"kernel_version"`
	Bucket        versiongate.Bucket            `yaml:"bucket"`
	Statuses      map[string]integration.Status `yaml:"statuses"`
	Spans         []Span                        `yaml:"spans"`
}

// Span is one recorded unit of work and its resource label.
type Span struct {
	Name     string `yaml:"name"`
	Resource string `yaml:"resource"`
}

// UserController is the demo application controller.
type UserController struct{}

// Run starts the demo host on hooks with a freshly built agent loader. The
// agent must load integrations from the same table, so hooks is normally
// hook.Default().
func Run(ctx context.Context, hooks *hook.Table, opts Options) (*Report, error) {
	if opts.KernelVersion == "" {
		opts.KernelVersion = kernel.Version
	}
	if opts.DSN == "" {
		opts.DSN = DefaultDSN
	}
	if opts.Controller == nil {
		opts.Controller = []any{&UserController{}, "show"}
	}

	agent.Reload()
	agent.Watch(hooks)

	app, err := kernel.New(hooks, kernel.WithVersion(opts.KernelVersion))
	if err != nil {
		return nil, oops.With("kernel_version", opts.KernelVersion).Wrap(err)
	}
	app.Route("/users/1", kernel.Route{
		Name:       "user_show",
		Controller: opts.Controller,
		Handler: func(context.Context, *kernel.Request) (*kernel.Response, error) {
			return &kernel.Response{Status: http.StatusOK, Body: `{"id":1}`}, nil
		},
	})

	connConfig, err := pgx.ParseConfig(opts.DSN)
	if err != nil {
		return nil, oops.With("dsn", opts.DSN).Wrap(err)
	}
	hooks.Provide(pgxtrace.ConnConfigKey, connConfig)

	var interceptors []grpc.UnaryServerInterceptor
	hooks.Provide(grpctrace.InterceptorsKey, &interceptors)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()
	tracer := tp.Tracer("holotrace/demo")

	reqCtx, span := tracer.Start(ctx, "http.request")
	_, err = app.Handle(reqCtx, &kernel.Request{Method: http.MethodGet, Path: "/users/1"})
	span.End()
	if err != nil {
		return nil, oops.Wrapf(err, "handle demo request")
	}

	queryCtx, span := tracer.Start(ctx, "pgx.query")
	if connConfig.Tracer != nil {
		queryCtx = connConfig.Tracer.TraceQueryStart(queryCtx, nil, pgx.TraceQueryStartData{
			SQL: "SELECT id, name FROM users WHERE id = $1",
		})
		connConfig.Tracer.TraceQueryEnd(queryCtx, nil, pgx.TraceQueryEndData{})
	}
	span.End()

	rpcCtx, span := tracer.Start(ctx, "grpc.server")
	_, err = chain(interceptors)(rpcCtx, "ping", &grpc.UnaryServerInfo{FullMethod: "/holotrace.demo.v1.Echo/Say"},
		func(context.Context, any) (any, error) { return "pong", nil })
	span.End()
	if err != nil {
		return nil, oops.Wrapf(err, "handle demo rpc")
	}

	report := &Report{
		KernelVersion: opts.KernelVersion,
		Bucket:        webkernel.Classify(opts.KernelVersion),
		Statuses:      agent.Snapshot(),
	}
	for _, s := range recorder.Ended() {
		entry := Span{Name: s.Name()}
		for _, kv := range s.Attributes() {
			if kv.Key == tracing.ResourceKey {
				entry.Resource = kv.Value.AsString()
			}
		}
		report.Spans = append(report.Spans, entry)
	}
	return report, nil
}

// chain composes interceptors the way grpc.ChainUnaryInterceptor does.
func chain(interceptors []grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		next := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			interceptor, inner := interceptors[i], next
			next = func(ctx context.Context, req any) (any, error) {
				return interceptor(ctx, req, info, inner)
			}
		}
		return next(ctx, req)
	}
}
