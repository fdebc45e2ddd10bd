// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Command gen-schema writes the JSON Schema that holotrace validates its
// config file against, so editors can offer completion for config.yaml.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/holotrace/internal/config"
	"github.com/holomush/holotrace/pkg/errutil"
)

func main() {
	out := pflag.StringP("out", "o", filepath.Join("schemas", "config.schema.json"), "schema output path")
	pflag.Parse()

	if err := write(*out); err != nil {
		errutil.LogError(slog.Default(), "schema generation failed", err)
		os.Exit(1)
	}
	slog.Info("generated config schema", "path", *out, "id", config.GetSchemaID())
}

func write(path string) error {
	schema, err := config.GenerateSchema()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return oops.With("path", path).Wrapf(err, "create schema directory")
	}
	if err := os.WriteFile(path, schema, 0o600); err != nil {
		return oops.With("path", path).Wrapf(err, "write schema")
	}
	return nil
}
