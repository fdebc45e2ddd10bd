// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"
)

func newIntegrationsCmd(st *cliState) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "integrations",
		Short: "List the integrations in activation order",
		Long: `List the integrations this agent knows, in the order they are activated,
without running an activation pass.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			return writeRows(cmd.OutOrStdout(), output, collectRows(st))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format (text or yaml)")

	return cmd
}
