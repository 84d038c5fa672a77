// Package config provides configuration structures and loading logic for agentline.
package config

import (
	"fmt"
	"net"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agentline/agentline/pkg/domain"
	"github.com/agentline/agentline/pkg/prepare"
)

// Output formats for decision results.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds the global configuration for agentline.
type Config struct {
	Agent        AgentConfig `yaml:"agent"`
	PropertyName string      `yaml:"property_name"`
	Skip         SkipConfig  `yaml:"skip"`
	FailSilent   bool        `yaml:"fail_silent"`

	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// AgentConfig names the dependency that supplies the agent jar. Completeness is
// deliberately not enforced here: the engine owns that rule so fail-silent mode
// can downgrade it.
type AgentConfig struct {
	GroupID    string `yaml:"group_id"`
	ArtifactID string `yaml:"artifact_id"`
}

// SkipConfig mirrors the build's skip switches.
type SkipConfig struct {
	Prepare domain.TriState `yaml:"prepare"`
	Tests   bool            `yaml:"tests"`
}

// OutputConfig controls how applied decisions leave the process.
type OutputConfig struct {
	Format         string `yaml:"format"`
	PropertiesFile string `yaml:"properties_file"`
}

// LoggingConfig holds configuration for logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TelemetryConfig holds configuration for OpenTelemetry export.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
}

// MetricsConfig holds configuration for the watch-mode Prometheus endpoint.
type MetricsConfig struct {
	Address string `yaml:"address"`
}

// Load reads configuration from a file and applies environment variable
// overrides. An empty path loads defaults plus environment only.
func Load(path string) (*Config, error) {
	cfg := &Config{
		// Defaults
		Agent: AgentConfig{
			GroupID:    prepare.DefaultAgentGroupID,
			ArtifactID: prepare.DefaultAgentArtifactID,
		},
		Output: OutputConfig{
			Format: OutputText,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if val := os.Getenv("AGENTLINE_AGENT_GROUP_ID"); val != "" {
		cfg.Agent.GroupID = val
	}
	if val := os.Getenv("AGENTLINE_AGENT_ARTIFACT_ID"); val != "" {
		cfg.Agent.ArtifactID = val
	}
	if val := os.Getenv("AGENTLINE_PROPERTY_NAME"); val != "" {
		cfg.PropertyName = val
	}

	// A malformed value must fail the same way a malformed flag does, not
	// silently fall back to unset.
	if raw := os.Getenv("AGENTLINE_SKIP_PREPARE"); raw != "" {
		val, err := domain.ParseTriState(raw)
		if err != nil {
			return fmt.Errorf("AGENTLINE_SKIP_PREPARE: %w", err)
		}
		cfg.Skip.Prepare = val
	}
	if val := os.Getenv("AGENTLINE_SKIP_TESTS"); val == "true" {
		cfg.Skip.Tests = true
	}
	if val := os.Getenv("AGENTLINE_FAIL_SILENT"); val == "true" {
		cfg.FailSilent = true
	}

	if val := os.Getenv("AGENTLINE_OUTPUT_FORMAT"); val != "" {
		cfg.Output.Format = val
	}
	if val := os.Getenv("AGENTLINE_PROPERTIES_FILE"); val != "" {
		cfg.Output.PropertiesFile = val
	}

	if val := os.Getenv("AGENTLINE_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("AGENTLINE_LOG_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}

	if val := os.Getenv("AGENTLINE_OTLP_ENDPOINT"); val != "" {
		cfg.Telemetry.OTLPEndpoint = val
	}
	if val := os.Getenv("AGENTLINE_OTLP_INSECURE"); val == "true" {
		cfg.Telemetry.Insecure = true
	}

	if val := os.Getenv("AGENTLINE_METRICS_ADDR"); val != "" {
		cfg.Metrics.Address = val
	}
	return nil
}

// Validate performs validation of the entire configuration.
func (c *Config) Validate() error {
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output configuration: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging configuration: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics configuration: %w", err)
	}
	return nil
}

// Validate normalizes and checks the output format.
func (o *OutputConfig) Validate() error {
	format := strings.ToLower(strings.TrimSpace(o.Format))
	switch format {
	case OutputText, OutputJSON:
		o.Format = format
		return nil
	default:
		return fmt.Errorf("%w: unknown output format %q (want %s or %s)",
			domain.ErrConfigInvalid, o.Format, OutputText, OutputJSON)
	}
}

// Validate normalizes and checks the log level and format.
func (l *LoggingConfig) Validate() error {
	level := strings.ToLower(strings.TrimSpace(l.Level))
	switch level {
	case "debug", "info", "warn", "error":
		l.Level = level
	default:
		return fmt.Errorf("%w: unknown log level %q", domain.ErrConfigInvalid, l.Level)
	}

	format := strings.ToLower(strings.TrimSpace(l.Format))
	switch format {
	case "text", "json":
		l.Format = format
	default:
		return fmt.Errorf("%w: unknown log format %q", domain.ErrConfigInvalid, l.Format)
	}
	return nil
}

// Validate checks the metrics listen address when one is configured.
func (m *MetricsConfig) Validate() error {
	if m.Address == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(m.Address); err != nil {
		return fmt.Errorf("%w: invalid metrics address %q: %v", domain.ErrConfigInvalid, m.Address, err)
	}
	return nil
}

// EngineConfig converts the user-facing configuration into the engine's options.
func (c *Config) EngineConfig() prepare.Config {
	return prepare.Config{
		AgentGroupID:    c.Agent.GroupID,
		AgentArtifactID: c.Agent.ArtifactID,
		PropertyName:    c.PropertyName,
		SkipPrepare:     c.Skip.Prepare,
		SkipTests:       c.Skip.Tests,
		FailSilent:      c.FailSilent,
	}
}
