// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// File describes the YAML configuration file. It exists to generate and
// validate against the JSON Schema; values are read through Config.
type File struct {
	Trace        *TraceSection        `json:"trace,omitempty" yaml:"trace,omitempty"`
	Hooks        *HooksSection        `json:"hooks,omitempty" yaml:"hooks,omitempty"`
	Integrations *IntegrationsSection `json:"integrations,omitempty" yaml:"integrations,omitempty"`
	Log          *LogSection          `json:"log,omitempty" yaml:"log,omitempty"`
	Metrics      *MetricsSection      `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Retry        *RetrySection        `json:"retry,omitempty" yaml:"retry,omitempty"`
}

// TraceSection toggles tracing as a whole.
type TraceSection struct {
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty" jsonschema:"description=Disable to turn the agent into a no-op"`
}

// HooksSection toggles host call interception.
type HooksSection struct {
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty" jsonschema:"description=Disable to leave every host entry point unwrapped"`
}

// IntegrationsSection selects integrations by name.
type IntegrationsSection struct {
	Disabled []string `json:"disabled,omitempty" yaml:"disabled,omitempty" jsonschema:"description=Glob patterns of integration names to skip"`
	Enabled  []string `json:"enabled,omitempty" yaml:"enabled,omitempty" jsonschema:"description=Integration names activated even if matched by disabled"`
}

// LogSection configures agent logging.
type LogSection struct {
	Format string `json:"format,omitempty" yaml:"format,omitempty" jsonschema:"enum=json,enum=text"`
	Level  string `json:"level,omitempty" yaml:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// MetricsSection configures the observability endpoint.
type MetricsSection struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty" jsonschema:"description=host:port for /metrics and /healthz; empty disables"`
}

// RetrySection configures repeated activation passes in serve mode.
type RetrySection struct {
	Interval string `json:"interval,omitempty" yaml:"interval,omitempty" jsonschema:"pattern=^[0-9]+(ns|us|ms|s|m|h)$"`
	Attempts int    `json:"attempts,omitempty" yaml:"attempts,omitempty" jsonschema:"minimum=1"`
}

// schemaCache holds the compiled schema to avoid recompilation.
var schemaCache *jschema.Schema

// GenerateSchema generates a JSON Schema from the File struct.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&File{})

	schema.ID = jsonschema.ID(GetSchemaID())
	schema.Title = "HoloTrace Agent Configuration"
	schema.Description = "Schema for holotrace.yaml configuration files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// ValidateSchema validates YAML data against the configuration JSON Schema.
// An empty document is valid.
func ValidateSchema(data []byte) error {
	var yamlData any
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	if yamlData == nil {
		return nil
	}

	sch, err := getCompiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	if err := sch.Validate(convertToJSONTypes(yamlData)); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// getCompiledSchema returns the cached compiled schema or compiles it.
func getCompiledSchema() (*jschema.Schema, error) {
	if schemaCache != nil {
		return schemaCache, nil
	}

	schemaBytes, err := GenerateSchema()
	if err != nil {
		return nil, err
	}

	var schemaData any
	if err := json.Unmarshal(schemaBytes, &schemaData); err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaData); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	sch, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	schemaCache = sch
	return sch, nil
}

// convertToJSONTypes normalizes YAML-decoded values into the types the
// validator accepts: integers become float64 round-trips through JSON.
func convertToJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[k] = convertToJSONTypes(v)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v := range val {
			result[i] = convertToJSONTypes(v)
		}
		return result
	case string, bool, float64, nil:
		return val
	default:
		if b, err := json.Marshal(val); err == nil {
			var result any
			if err := json.Unmarshal(b, &result); err == nil {
				return result
			}
		}
		return val
	}
}

// GetSchemaID returns the schema $id for use in configuration files.
func GetSchemaID() string {
	return "https://holomush.dev/schemas/holotrace-config.schema.json"
}

// FormatSchemaError strips the wrapping prefix from a validation error.
func FormatSchemaError(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimPrefix(err.Error(), "schema validation failed: ")
}
