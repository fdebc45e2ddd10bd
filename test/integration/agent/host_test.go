// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package agent_test

import (
	"context"
	"net"
	"net/http"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/holomush/holotrace/internal/agent"
	"github.com/holomush/holotrace/internal/contrib/grpctrace"
	"github.com/holomush/holotrace/internal/demo"
	"github.com/holomush/holotrace/internal/hook"
	"github.com/holomush/holotrace/internal/integration"
	"github.com/holomush/holotrace/internal/kernel"
	"github.com/holomush/holotrace/internal/tracing"
	"github.com/holomush/holotrace/internal/versiongate"
)

func resourceOf(s sdktrace.ReadOnlySpan) string {
	for _, kv := range s.Attributes() {
		if kv.Key == tracing.ResourceKey {
			return kv.Value.AsString()
		}
	}
	return ""
}

var _ = Describe("Instrumented hosts", func() {
	var (
		tbl      *hook.Table
		recorder *tracetest.SpanRecorder
		tracer   *sdktrace.TracerProvider
	)

	BeforeEach(func() {
		tbl = hook.NewTable()
		DeferCleanup(hook.SetDefault(tbl))
		agent.Configure(
			integration.WithConfig(&integration.StaticConfig{}),
			integration.WithLogger(quietLogger()),
		)
		DeferCleanup(func() { agent.Configure() })

		recorder = tracetest.NewSpanRecorder()
		tracer = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		DeferCleanup(func() { _ = tracer.Shutdown(context.Background()) })
	})

	Describe("a kernel application", func() {
		DescribeTable("selects exactly one hook bundle per version",
			func(version string, bucket versiongate.Bucket, wantLabel string) {
				report, err := demo.Run(context.Background(), tbl, demo.Options{
					KernelVersion: version,
					Controller:    "App\\Controller\\UserController::show",
				})
				Expect(err).NotTo(HaveOccurred())

				Expect(report.Bucket).To(Equal(bucket))
				Expect(report.Spans).To(ContainElement(demo.Span{Name: "http.request", Resource: wantLabel}))
			},
			Entry("3.4.1 is modern-a", "3.4.1", versiongate.ModernA, "GET App\\Controller\\UserController::show"),
			Entry("4.2 is modern-b", "4.2", versiongate.ModernB, "GET user_show"),
			Entry("2.8.52 is legacy", "2.8.52", versiongate.Legacy, "App\\Controller\\UserController::show"),
			Entry("9.0 is unrecognized", "9.0", versiongate.Unrecognized, "GET /users/1"),
		)

		It("answers identically with and without the agent", func() {
			build := func(t *hook.Table) *kernel.Kernel {
				k, err := kernel.New(t, kernel.WithVersion("4.4.2"))
				Expect(err).NotTo(HaveOccurred())
				k.Route("/ping", kernel.Route{Name: "ping", Handler: func(context.Context, *kernel.Request) (*kernel.Response, error) {
					return &kernel.Response{Status: http.StatusOK, Body: "pong"}, nil
				}})
				return k
			}

			agent.Watch(tbl)
			traced := build(tbl)
			plain := build(hook.NewTable())
			Expect(agent.Status("webkernel")).To(Equal(integration.Loaded))

			req := &kernel.Request{Method: http.MethodGet, Path: "/ping"}
			want, err := plain.Handle(context.Background(), req)
			Expect(err).NotTo(HaveOccurred())
			got, err := traced.Handle(context.Background(), req)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		})
	})

	Describe("a gRPC server", func() {
		It("labels server spans once the host publishes its interceptor chain", func() {
			agent.Watch(tbl)
			Expect(agent.Status(grpctrace.Name)).To(Equal(integration.NotLoaded))

			// The host's own interceptor starts the server span.
			chain := []grpc.UnaryServerInterceptor{
				func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
					ctx, span := tracer.Tracer("host").Start(ctx, "grpc.server")
					defer span.End()
					return handler(ctx, req)
				},
			}
			tbl.Provide(grpctrace.InterceptorsKey, &chain)
			Expect(agent.Status(grpctrace.Name)).To(Equal(integration.Loaded))
			Expect(chain).To(HaveLen(2))

			lis := bufconn.Listen(1 << 20)
			srv := grpc.NewServer(grpc.ChainUnaryInterceptor(chain...))
			healthpb.RegisterHealthServer(srv, health.NewServer())
			go func() { _ = srv.Serve(lis) }()
			DeferCleanup(srv.Stop)

			conn, err := grpc.NewClient("passthrough:///bufnet",
				grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
					return lis.DialContext(ctx)
				}),
				grpc.WithTransportCredentials(insecure.NewCredentials()),
			)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(conn.Close)

			resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.GetStatus()).To(Equal(healthpb.HealthCheckResponse_SERVING))

			Eventually(recorder.Ended).Should(HaveLen(1))
			Expect(resourceOf(recorder.Ended()[0])).To(Equal("/grpc.health.v1.Health/Check"))
		})
	})
})
