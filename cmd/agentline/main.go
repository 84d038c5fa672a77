// Package main is the entry point for the agentline binary.
// It decides how a JVM build should attach its mocking-framework agent and
// delivers the resulting arg-line property assignment.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/agentline/agentline/pkg/config"
	"github.com/agentline/agentline/pkg/domain"
	"github.com/agentline/agentline/pkg/logging"
	"github.com/agentline/agentline/pkg/prepare"
	"github.com/agentline/agentline/pkg/sink"
	"github.com/agentline/agentline/pkg/snapshot"
	"github.com/agentline/agentline/pkg/telemetry"
	"github.com/agentline/agentline/pkg/watch"
)

// version is stamped at build time via -ldflags.
var version = "dev"

const defaultSnapshotPath = "agentline-snapshot.yaml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "agentline",
		Short: "Java agent preparation for JVM test builds",
		Long: `agentline computes the -javaagent flag a JVM build needs to attach its
mocking-framework agent and injects it into the correct arg-line property.

The build exports its resolved dependencies, test plugins and properties into a
snapshot file; agentline evaluates it and emits the property assignment.

Example:
  agentline run --snapshot target/agentline-snapshot.yaml`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file (YAML)")
	rootCmd.PersistentFlags().StringP("snapshot", "s", defaultSnapshotPath, "Path to the build snapshot file")
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text, json)")

	rootCmd.PersistentFlags().String("agent-group-id", "", "Group id of the dependency supplying the agent")
	rootCmd.PersistentFlags().String("agent-artifact-id", "", "Artifact id of the dependency supplying the agent")
	rootCmd.PersistentFlags().String("property-name", "", "Property to write, bypassing test-runner detection")
	rootCmd.PersistentFlags().String("skip-prepare", "", "Skip preparation (true, false or empty to defer to --skip-tests)")
	rootCmd.PersistentFlags().Bool("skip-tests", false, "The build is skipping tests")
	rootCmd.PersistentFlags().Bool("fail-silent", false, "Downgrade failures to warnings")

	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (text, json)")
	rootCmd.PersistentFlags().String("properties-file", "", "Also write the assignment into this Java properties file")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newExplainCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// buildToolConfig merges flag overrides over the loaded configuration.
// Precedence is flags > environment > config file > defaults; Load already
// covers the last three.
func buildToolConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("agent-group-id") {
		cfg.Agent.GroupID, _ = flags.GetString("agent-group-id")
	}
	if flags.Changed("agent-artifact-id") {
		cfg.Agent.ArtifactID, _ = flags.GetString("agent-artifact-id")
	}
	if flags.Changed("property-name") {
		cfg.PropertyName, _ = flags.GetString("property-name")
	}
	if flags.Changed("skip-prepare") {
		raw, _ := flags.GetString("skip-prepare")
		tri, err := domain.ParseTriState(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --skip-prepare value: %w", err)
		}
		cfg.Skip.Prepare = tri
	}
	if flags.Changed("skip-tests") {
		cfg.Skip.Tests, _ = flags.GetBool("skip-tests")
	}
	if flags.Changed("fail-silent") {
		cfg.FailSilent, _ = flags.GetBool("fail-silent")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("output") {
		cfg.Output.Format, _ = flags.GetString("output")
	}
	if flags.Changed("properties-file") {
		cfg.Output.PropertiesFile, _ = flags.GetString("properties-file")
	}

	// Flag values bypass Load's validation, so validate the merged result.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func buildLogger(cfg *config.Config) *slog.Logger {
	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	slog.SetDefault(logger)
	return logger
}

func loadSnapshot(cmd *cobra.Command, logger *slog.Logger) (*snapshot.Snapshot, *snapshot.Loader, error) {
	path, err := cmd.Flags().GetString("snapshot")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get snapshot flag: %w", err)
	}

	loader, err := snapshot.NewLoader(path, logger)
	if err != nil {
		return nil, nil, err
	}
	snap, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	return snap, loader, nil
}

// buildSinks assembles the destinations an applied decision writes to.
func buildSinks(cfg *config.Config, out io.Writer) []sink.Sink {
	sinks := []sink.Sink{}
	if cfg.Output.Format == config.OutputText {
		sinks = append(sinks, sink.Console{W: out})
	}
	if cfg.Output.PropertiesFile != "" {
		sinks = append(sinks, sink.PropertiesFile{Path: cfg.Output.PropertiesFile})
	}
	return sinks
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Evaluate the snapshot once and apply the decision",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildToolConfig(cmd)
			if err != nil {
				return err
			}
			logger := buildLogger(cfg)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			shutdown, err := telemetry.SetupProvider(ctx, telemetry.Config{
				ServiceName: "agentline",
				Endpoint:    cfg.Telemetry.OTLPEndpoint,
				Insecure:    cfg.Telemetry.Insecure,
			})
			if err != nil {
				logger.Warn("telemetry setup failed, continuing without tracing", "error", err)
			} else {
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := shutdown(shutdownCtx); err != nil {
						logger.Warn("telemetry shutdown failed", "error", err)
					}
				}()
			}

			snap, _, err := loadSnapshot(cmd, logger)
			if err != nil {
				return err
			}

			runID := uuid.NewString()
			logger = logger.With("run_id", runID)

			spanCtx, span := otel.Tracer("agentline").Start(ctx, "prepare.decide")
			start := time.Now()
			decision := prepare.New(logger).Decide(spanCtx, snap.EngineInput(), cfg.EngineConfig())
			telemetry.RecordDecision(span, decision)
			telemetry.RecordDecisionMetrics(spanCtx, telemetry.DecisionMetrics{
				Outcome:     decision.Outcome,
				Severity:    decision.Severity,
				PropertyKey: decision.PropertyKey,
				Duration:    time.Since(start),
			})
			span.End()

			if decision.Outcome == prepare.OutcomeApplied {
				for _, s := range buildSinks(cfg, cmd.OutOrStdout()) {
					if err := s.Apply(decision.PropertyKey, decision.PropertyValue); err != nil {
						return fmt.Errorf("apply decision to sink: %w", err)
					}
				}
			}

			if cfg.Output.Format == config.OutputJSON {
				if err := sink.NewReport(runID, decision).Write(cmd.OutOrStdout()); err != nil {
					return err
				}
			}

			// A skip lets the surrounding build continue; a failure aborts it.
			if decision.Outcome == prepare.OutcomeFailed {
				return decision.Err
			}
			return nil
		},
	}
}

func newExplainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain",
		Short: "Evaluate the snapshot and show the decision without applying it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildToolConfig(cmd)
			if err != nil {
				return err
			}
			logger := buildLogger(cfg)

			snap, _, err := loadSnapshot(cmd, logger)
			if err != nil {
				return err
			}

			decision := prepare.New(logger).Decide(cmd.Context(), snap.EngineInput(), cfg.EngineConfig())
			renderExplanation(cmd.OutOrStdout(), snap, decision)
			return nil
		},
	}
}

func renderExplanation(out io.Writer, snap *snapshot.Snapshot, decision prepare.Decision) {
	deps := table.NewWriter()
	deps.SetOutputMirror(out)
	deps.SetTitle("Resolved dependencies")
	deps.AppendHeader(table.Row{"", "Group", "Artifact", "Version", "Path"})
	for _, d := range snap.Dependencies {
		marker := ""
		if decision.Agent != nil && d.GroupID == decision.Agent.GroupID && d.ArtifactID == decision.Agent.ArtifactID {
			marker = "agent"
		}
		deps.AppendRow(table.Row{marker, d.GroupID, d.ArtifactID, d.Version, d.Path})
	}
	deps.Render()

	plugins := table.NewWriter()
	plugins.SetOutputMirror(out)
	plugins.SetTitle("Test plugins")
	plugins.AppendHeader(table.Row{"Group", "Artifact"})
	for _, p := range snap.TestPlugins {
		plugins.AppendRow(table.Row{p.GroupID, p.ArtifactID})
	}
	plugins.Render()

	result := table.NewWriter()
	result.SetOutputMirror(out)
	result.SetTitle("Decision")
	result.AppendRow(table.Row{"Outcome", string(decision.Outcome)})
	result.AppendRow(table.Row{"Severity", string(decision.Severity)})
	result.AppendRow(table.Row{"Reason", decision.Reason})
	if decision.Outcome == prepare.OutcomeApplied {
		result.AppendRow(table.Row{"Property", decision.PropertyKey})
		result.AppendRow(table.Row{"Value", decision.PropertyValue})
	}
	result.Render()
}

func newWatchCmd() *cobra.Command {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-evaluate whenever the snapshot file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildToolConfig(cmd)
			if err != nil {
				return err
			}
			logger := buildLogger(cfg)

			metricsAddr := cfg.Metrics.Address
			if cmd.Flags().Changed("metrics-addr") {
				metricsAddr, _ = cmd.Flags().GetString("metrics-addr")
			}

			path, err := cmd.Flags().GetString("snapshot")
			if err != nil {
				return fmt.Errorf("failed to get snapshot flag: %w", err)
			}
			loader, err := snapshot.NewLoader(path, logger)
			if err != nil {
				return err
			}

			runner := watch.NewRunner(watch.RunnerConfig{
				Engine:      cfg.EngineConfig(),
				MetricsAddr: metricsAddr,
			}, loader, buildSinks(cfg, os.Stdout), logger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				select {
				case sig := <-sigChan:
					logger.Info("received shutdown signal", "signal", sig.String())
					cancel()
				case <-ctx.Done():
				}
			}()

			if err := runner.Start(ctx); err != nil && err != context.Canceled {
				return err
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			return runner.Stop(shutdownCtx)
		},
	}
	watchCmd.Flags().String("metrics-addr", "", "Listen address for the Prometheus endpoint (empty disables)")
	return watchCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the agentline version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "agentline %s\n", version)
		},
	}
}
