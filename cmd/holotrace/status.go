// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/holomush/holotrace/internal/agent"
	"github.com/holomush/holotrace/internal/integration"
)

// IntegrationRow describes one integration of the working set.
type IntegrationRow struct {
	Name    string             `yaml:"name"`
	Kind    string             `yaml:"kind"`
	Enabled bool               `yaml:"enabled"`
	Status  integration.Status `yaml:"status"`
}

type statusConfig struct {
	output string
}

func newStatusCmd(st *cliState) *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Run one activation pass and show integration status",
		Long: `Run one activation pass against this process's hook table and show the
status each integration reported: loaded, not_loaded (may retry) or
not_available (no further attempts).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(cfg.output); err != nil {
				return err
			}
			agent.Load()
			return writeRows(cmd.OutOrStdout(), cfg.output, collectRows(st))
		},
	}

	cmd.Flags().StringVarP(&cfg.output, "output", "o", outputText, "output format (text or yaml)")

	return cmd
}

func collectRows(st *cliState) []IntegrationRow {
	l := agent.Get()
	rows := make([]IntegrationRow, 0, len(l.Integrations()))
	for _, d := range l.Integrations() {
		rows = append(rows, IntegrationRow{
			Name:    d.Name,
			Kind:    d.Kind.String(),
			Enabled: st.cfg.IntegrationEnabled(d.Name),
			Status:  l.Status(d.Name),
		})
	}
	return rows
}

func writeRows(w io.Writer, format string, rows []IntegrationRow) error {
	if format == outputYAML {
		return writeYAML(w, rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "INTEGRATION\tKIND\tENABLED\tSTATUS")
	for _, r := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", r.Name, r.Kind, r.Enabled, r.Status)
	}
	return tw.Flush()
}
