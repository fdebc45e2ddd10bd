// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/holomush/holotrace/internal/demo"
	"github.com/holomush/holotrace/internal/hook"
	"github.com/holomush/holotrace/internal/kernel"
)

type demoConfig struct {
	kernelVersion string
	dsn           string
	output        string
}

func newDemoCmd(_ *cliState) *cobra.Command {
	cfg := &demoConfig{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Trace a built-in demo host",
		Long: `Start an in-process demo host (a kernel application, a pgx connection
configuration and a gRPC interceptor chain), let the agent activate its
integrations, serve one request of each kind inside a recorded span, and
print the resource label each span received.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(cfg.output); err != nil {
				return err
			}
			report, err := demo.Run(cmd.Context(), hook.Default(), demo.Options{
				KernelVersion: cfg.kernelVersion,
				DSN:           cfg.dsn,
			})
			if err != nil {
				return err
			}
			return writeReport(cmd, cfg.output, report)
		},
	}

	cmd.Flags().StringVar(&cfg.kernelVersion, "kernel-version", kernel.Version, "framework version the demo kernel reports")
	cmd.Flags().StringVar(&cfg.dsn, "dsn", demo.DefaultDSN, "connection string for the demo pgx configuration")
	cmd.Flags().StringVarP(&cfg.output, "output", "o", outputText, "output format (text or yaml)")

	return cmd
}

func writeReport(cmd *cobra.Command, format string, report *demo.Report) error {
	w := cmd.OutOrStdout()
	if format == outputYAML {
		return writeYAML(w, report)
	}

	_, _ = fmt.Fprintf(w, "kernel %s (%s)\n\n", report.KernelVersion, report.Bucket)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SPAN\tRESOURCE")
	for _, s := range report.Spans {
		resource := s.Resource
		if resource == "" {
			resource = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", s.Name, resource)
	}
	return tw.Flush()
}
