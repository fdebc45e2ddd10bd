// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package grpctrace labels spans with the gRPC method a server handles.
//
// The host publishes the unary interceptor chain it will pass to
// grpc.ChainUnaryInterceptor under InterceptorsKey, as a
// *[]grpc.UnaryServerInterceptor, before creating its server.
package grpctrace

import (
	"context"

	"google.golang.org/grpc"

	"github.com/holomush/holotrace/internal/hook"
	"github.com/holomush/holotrace/internal/integration"
	"github.com/holomush/holotrace/internal/tracing"
)

// Name is the integration name.
const Name = "grpc"

// InterceptorsKey is the hook table key of the host's unary interceptor chain.
const InterceptorsKey = "grpc.unary_interceptors"

// Descriptor returns the registry entry for this integration.
func Descriptor() integration.Descriptor {
	return integration.Static(Name, Load)
}

// Load appends the labeling interceptor to the chain published on the
// default hook table.
func Load() integration.Status {
	return Install(hook.Default())
}

// installedKey holds the chains this package has already extended on a table.
const installedKey = "grpctrace.installed"

type installedChains map[*[]grpc.UnaryServerInterceptor]bool

// Install appends the labeling interceptor to the chain published on hooks.
// A chain is extended at most once, however many loaders activate the
// integration against the same table.
func Install(hooks *hook.Table) integration.Status {
	v, ok := hooks.Lookup(InterceptorsKey)
	if !ok {
		return integration.NotLoaded
	}
	chain, ok := v.(*[]grpc.UnaryServerInterceptor)
	if !ok || chain == nil {
		return integration.NotAvailable
	}

	installed := hooks.State(installedKey, func() any { return installedChains{} }).(installedChains)
	if !installed[chain] {
		*chain = append(*chain, UnaryServerInterceptor())
		installed[chain] = true
	}
	return integration.Loaded
}

// UnaryServerInterceptor labels the active span with the full method name
// and calls handler unchanged.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if info != nil {
			tracing.SetResource(ctx, info.FullMethod)
		}
		return handler(ctx, req)
	}
}
