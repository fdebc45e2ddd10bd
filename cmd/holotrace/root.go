// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/holotrace/internal/agent"
	"github.com/holomush/holotrace/internal/config"
	"github.com/holomush/holotrace/internal/hook"
	"github.com/holomush/holotrace/internal/integration"
	"github.com/holomush/holotrace/internal/logging"
	"github.com/holomush/holotrace/internal/xdg"
)

// cliState is shared by all subcommands of one root command.
type cliState struct {
	configFile string
	cfg        *config.Config
}

// NewRootCmd creates the root command for the holotrace CLI.
func NewRootCmd() *cobra.Command {
	st := &cliState{}

	cmd := &cobra.Command{
		Use:   "holotrace",
		Short: "holotrace - automatic tracing integrations for Go hosts",
		Long: `holotrace activates tracing integrations against the libraries a host
process publishes on its hook table, and reports which ones loaded.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&st.configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/holotrace/config.yaml if present)")
	flags.Bool("trace-enabled", true, "enable tracing integrations")
	flags.Bool("hooks-enabled", true, "allow wrapping host entry points")
	flags.StringSlice("integrations-disabled", nil, "integration name patterns to skip (glob syntax)")
	flags.StringSlice("integrations-enabled", nil, "integration names loaded even if a disabled pattern matches")
	flags.String("log-format", config.DefaultLogFormat, "log format (json or text)")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.String("metrics-addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	flags.String("retry-interval", config.DefaultRetryInterval.String(), "delay between activation passes")
	flags.Int("retry-attempts", config.DefaultRetryAttempts, "activation passes before giving up")

	cmd.AddCommand(newStatusCmd(st))
	cmd.AddCommand(newIntegrationsCmd(st))
	cmd.AddCommand(newServeCmd(st))
	cmd.AddCommand(newDemoCmd(st))
	cmd.AddCommand(newConfigCmd(st))

	return cmd
}

// setup loads configuration, installs the logger, and configures the agent.
func (st *cliState) setup(cmd *cobra.Command) error {
	opts := []config.Option{config.WithEnv(), config.WithFlags(cmd.Flags())}
	path := st.configFile
	if path == "" {
		defaultPath, exists, err := xdg.ConfigFile()
		if err != nil {
			return oops.Wrapf(err, "locate default config file")
		}
		if exists {
			path = defaultPath
		}
	}
	if path != "" {
		opts = append(opts, config.WithFile(path))
	}

	cfg, err := config.New(opts...)
	if err != nil {
		return oops.Wrapf(err, "load configuration")
	}
	st.cfg = cfg

	logging.SetDefault(logging.Options{
		Service: "holotrace",
		Version: version,
		Format:  cfg.LogFormat(),
		Level:   cfg.LogLevel(),
		Writer:  cmd.ErrOrStderr(),
	})

	applyHooks(cfg)
	agent.Configure(integration.WithConfig(cfg))
	return nil
}

// applyHooks makes the default hook table follow hooks.enabled.
func applyHooks(cfg *config.Config) {
	if cfg.HooksEnabled() {
		hook.Default().Enable()
		return
	}
	hook.Default().Disable()
}
