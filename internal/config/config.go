// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config provides the agent configuration.
//
// Sources are layered in order: built-in defaults, an optional YAML file,
// HOLOTRACE_* environment variables, command-line flags, then runtime
// overrides applied with Set. Values are read live, so a change made with Set
// or Reload is seen by the next loader pass without rebuilding the loader.
package config

import (
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Configuration keys.
const (
	KeyTraceEnabled        = "trace.enabled"
	KeyHooksEnabled        = "hooks.enabled"
	KeyIntegrationsDisable = "integrations.disabled"
	KeyIntegrationsEnable  = "integrations.enabled"
	KeyLogFormat           = "log.format"
	KeyLogLevel            = "log.level"
	KeyMetricsAddr         = "metrics.addr"
	KeyRetryInterval       = "retry.interval"
	KeyRetryAttempts       = "retry.attempts"
)

// EnvPrefix is the prefix of environment variables read by WithEnv.
const EnvPrefix = "HOLOTRACE_"

// Default values.
const (
	DefaultLogFormat     = "json"
	DefaultLogLevel      = "info"
	DefaultMetricsAddr   = "127.0.0.1:9464"
	DefaultRetryInterval = 500 * time.Millisecond
	DefaultRetryAttempts = 20
)

var defaults = map[string]any{
	KeyTraceEnabled:        true,
	KeyHooksEnabled:        true,
	KeyIntegrationsDisable: []string{},
	KeyIntegrationsEnable:  []string{},
	KeyLogFormat:           DefaultLogFormat,
	KeyLogLevel:            DefaultLogLevel,
	KeyMetricsAddr:         DefaultMetricsAddr,
	KeyRetryInterval:       DefaultRetryInterval.String(),
	KeyRetryAttempts:       DefaultRetryAttempts,
}

// Config is the live agent configuration.
type Config struct {
	path      string
	useEnv    bool
	flags     *pflag.FlagSet
	k         *koanf.Koanf
	overrides map[string]any
	disabled  []glob.Glob
}

// Option configures a Config.
type Option func(*Config)

// WithFile layers the YAML file at path over the defaults.
// An empty path is ignored.
func WithFile(path string) Option {
	return func(c *Config) {
		c.path = path
	}
}

// WithEnv layers HOLOTRACE_* environment variables. Underscores separate key
// levels: HOLOTRACE_TRACE_ENABLED sets trace.enabled.
func WithEnv() Option {
	return func(c *Config) {
		c.useEnv = true
	}
}

// WithFlags layers the changed flags of fs. Flag names map to keys by
// replacing dashes with dots: --log-format sets log.format.
func WithFlags(fs *pflag.FlagSet) Option {
	return func(c *Config) {
		c.flags = fs
	}
}

// New loads a configuration from the given sources.
func New(opts ...Option) (*Config, error) {
	c := &Config{overrides: make(map[string]any)}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Default returns a configuration holding only the built-in defaults.
func Default() *Config {
	c, err := New()
	if err != nil {
		// Defaults are static and always load.
		panic(err)
	}
	return c
}

// Reload re-reads every source. Runtime overrides are kept. On error the
// previous values stay in effect.
func (c *Config) Reload() error {
	k := koanf.New(".")

	for key, v := range defaults {
		if err := k.Set(key, v); err != nil {
			return oops.Code(CodeConfigInvalid).With("key", key).Wrap(err)
		}
	}

	if c.path != "" {
		data, err := os.ReadFile(c.path)
		if err != nil {
			return oops.Code(CodeConfigRead).With("path", c.path).Wrap(err)
		}
		if err := ValidateSchema(data); err != nil {
			return oops.Code(CodeConfigInvalid).With("path", c.path).Wrap(err)
		}
		if err := k.Load(file.Provider(c.path), yaml.Parser()); err != nil {
			return oops.Code(CodeConfigRead).With("path", c.path).Wrap(err)
		}
	}

	if c.useEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return oops.Code(CodeConfigRead).With("source", "env").Wrap(err)
		}
	}

	if c.flags != nil {
		provider := posflag.ProviderWithFlag(c.flags, ".", k, func(f *pflag.Flag) (string, any) {
			key := strings.ReplaceAll(f.Name, "-", ".")
			if _, known := defaults[key]; !known {
				return "", nil
			}
			return key, posflag.FlagVal(c.flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return oops.Code(CodeConfigRead).With("source", "flags").Wrap(err)
		}
	}

	for key, v := range c.overrides {
		if err := k.Set(key, v); err != nil {
			return oops.Code(CodeConfigInvalid).With("key", key).Wrap(err)
		}
	}

	patterns, err := compileGlobs(stringList(k, KeyIntegrationsDisable))
	if err != nil {
		return err
	}

	c.k = k
	c.disabled = patterns
	return nil
}

// Set overrides key at runtime. The override survives Reload.
func (c *Config) Set(key string, v any) error {
	if key == KeyIntegrationsDisable {
		patterns, err := compileGlobs(toStrings(v))
		if err != nil {
			return err
		}
		c.disabled = patterns
	}
	if err := c.k.Set(key, v); err != nil {
		return oops.Code(CodeConfigInvalid).With("key", key).Wrap(err)
	}
	c.overrides[key] = v
	return nil
}

// TracingEnabled reports whether tracing is enabled.
func (c *Config) TracingEnabled() bool {
	return c.k.Bool(KeyTraceEnabled)
}

// HooksEnabled reports whether the hook table may intercept host calls.
func (c *Config) HooksEnabled() bool {
	return c.k.Bool(KeyHooksEnabled)
}

// IntegrationEnabled reports whether the named integration may be activated.
// An integration is disabled when its name matches a pattern of
// integrations.disabled and is not listed in integrations.enabled.
func (c *Config) IntegrationEnabled(name string) bool {
	if slices.Contains(stringList(c.k, KeyIntegrationsEnable), name) {
		return true
	}
	for _, g := range c.disabled {
		if g.Match(name) {
			return false
		}
	}
	return true
}

// LogFormat returns "json" or "text".
func (c *Config) LogFormat() string {
	return c.k.String(KeyLogFormat)
}

// LogLevel returns the configured log level name.
func (c *Config) LogLevel() string {
	return c.k.String(KeyLogLevel)
}

// MetricsAddr returns the observability listen address; empty disables it.
func (c *Config) MetricsAddr() string {
	return c.k.String(KeyMetricsAddr)
}

// RetryInterval returns the delay between activation passes in serve mode.
func (c *Config) RetryInterval() time.Duration {
	d := c.k.Duration(KeyRetryInterval)
	if d <= 0 {
		return DefaultRetryInterval
	}
	return d
}

// RetryAttempts returns the maximum number of activation passes in serve mode.
func (c *Config) RetryAttempts() uint64 {
	n := c.k.Int64(KeyRetryAttempts)
	if n <= 0 {
		return DefaultRetryAttempts
	}
	return uint64(n)
}

// All returns every effective key and value, for display.
func (c *Config) All() map[string]any {
	return c.k.All()
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, oops.Code(CodeConfigInvalid).
				With("key", KeyIntegrationsDisable).
				With("pattern", p).
				Wrap(err)
		}
		out = append(out, g)
	}
	return out, nil
}

// stringList reads key as a list. Environment variables and flags deliver a
// single comma-separated string.
func stringList(k *koanf.Koanf, key string) []string {
	return toStrings(k.Get(key))
}

func toStrings(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		var out []string
		for _, part := range strings.Split(val, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
