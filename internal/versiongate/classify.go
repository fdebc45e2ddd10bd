// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package versiongate defers hook selection until a host reveals its version.
//
// An integration that cannot choose its hooks at activation time installs one
// transparent wrapper around an early host lifecycle entry point. Inside that
// wrapper it hands the observed version to a Gate, which classifies it into a
// Bucket and runs the hook bundle bound to that bucket.
package versiongate

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
)

// Bucket is a version-range classification used to select a hook bundle.
type Bucket string

// Buckets known to integrations. Unrecognized versions get no hooks.
const (
	ModernA      Bucket = "modern-a"
	ModernB      Bucket = "modern-b"
	Legacy       Bucket = "legacy"
	Unrecognized Bucket = "unrecognized"
)

// Rule maps a semver constraint to a bucket.
// Constraints follow github.com/Masterminds/semver syntax; add a "-0"
// prerelease to a bound to let development builds (e.g. "4.4.0-DEV") match.
type Rule struct {
	Bucket     Bucket
	Constraint string
}

type compiledRule struct {
	bucket     Bucket
	constraint *semver.Constraints
}

// Classifier assigns versions to buckets. The first matching rule wins.
type Classifier struct {
	rules []compiledRule
}

// NewClassifier compiles rules in order.
func NewClassifier(rules ...Rule) (*Classifier, error) {
	c := &Classifier{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		if r.Bucket == "" || r.Bucket == Unrecognized {
			return nil, oops.Code(CodeInvalidRule).
				With("bucket", r.Bucket).
				Errorf("rule bucket must be a named, recognized bucket")
		}
		constraint, err := semver.NewConstraint(r.Constraint)
		if err != nil {
			return nil, oops.Code(CodeInvalidRule).
				With("bucket", r.Bucket).
				With("constraint", r.Constraint).
				Wrap(err)
		}
		c.rules = append(c.rules, compiledRule{bucket: r.Bucket, constraint: constraint})
	}
	return c, nil
}

// MustClassifier is like NewClassifier but panics on an invalid rule.
// Use it for package-level rule tables.
func MustClassifier(rules ...Rule) *Classifier {
	c, err := NewClassifier(rules...)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify returns the bucket of version. Unparsable or unmatched versions
// are Unrecognized.
func (c *Classifier) Classify(version string) Bucket {
	v, err := semver.NewVersion(strings.TrimSpace(version))
	if err != nil {
		return Unrecognized
	}
	for _, r := range c.rules {
		if r.constraint.Check(v) {
			return r.bucket
		}
	}
	return Unrecognized
}

// Error codes for gate configuration.
const (
	CodeInvalidRule = "INVALID_VERSION_RULE"
)
