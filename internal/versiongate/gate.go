// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package versiongate

import "log/slog"

// Gate runs the hook bundle bound to a host's version bucket.
//
// Actions registered with On run on every observation of their bucket and
// must be idempotent per host value. Actions registered with OnFirst run only
// the first time their bucket is observed; use them for one-time, process-wide
// hook installation. A Gate is driven from a single goroutine.
type Gate[H any] struct {
	name       string
	classifier *Classifier
	always     map[Bucket][]func(H)
	first      map[Bucket][]func(H)
	fired      map[Bucket]bool
}

// NewGate creates a gate for the named integration.
func NewGate[H any](name string, c *Classifier) *Gate[H] {
	return &Gate[H]{
		name:       name,
		classifier: c,
		always:     make(map[Bucket][]func(H)),
		first:      make(map[Bucket][]func(H)),
		fired:      make(map[Bucket]bool),
	}
}

// On binds action to every observation of bucket.
func (g *Gate[H]) On(bucket Bucket, action func(H)) *Gate[H] {
	g.always[bucket] = append(g.always[bucket], action)
	return g
}

// OnFirst binds action to the first observation of bucket only.
func (g *Gate[H]) OnFirst(bucket Bucket, action func(H)) *Gate[H] {
	g.first[bucket] = append(g.first[bucket], action)
	return g
}

// Observe classifies version and runs the actions bound to its bucket with
// host. Unrecognized versions run nothing.
func (g *Gate[H]) Observe(version string, host H) Bucket {
	bucket := g.classifier.Classify(version)
	if bucket == Unrecognized {
		slog.Debug("host version not supported, no hooks selected",
			"integration", g.name,
			"version", version)
		return bucket
	}

	if !g.fired[bucket] {
		g.fired[bucket] = true
		for _, action := range g.first[bucket] {
			action(host)
		}
	}
	for _, action := range g.always[bucket] {
		action(host)
	}

	slog.Debug("host version observed",
		"integration", g.name,
		"version", version,
		"bucket", bucket)
	return bucket
}

// Fired reports whether bucket has been observed.
func (g *Gate[H]) Fired(bucket Bucket) bool {
	return g.fired[bucket]
}
