package prepare

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agentline/agentline/pkg/domain"
	"github.com/agentline/agentline/pkg/version"
)

// Default agent coordinates and the property keys the supported test runners read.
const (
	DefaultAgentGroupID    = "org.mockito"
	DefaultAgentArtifactID = "mockito-core"

	// TychoArgLineProperty is consumed by the Eclipse Tycho test runner,
	// SurefireArgLineProperty by everything else.
	TychoArgLineProperty    = "tycho.testArgLine"
	SurefireArgLineProperty = "argLine"
)

const (
	tychoPluginGroupID    = "org.eclipse.tycho"
	tychoPluginArtifactID = "tycho-surefire-plugin"

	// Mocking-library releases below this version cannot attach themselves and
	// need the byte-buddy agent that ships alongside them.
	inlineAttachMinVersion = "5.14.0"

	fallbackAgentGroupID    = "net.bytebuddy"
	fallbackAgentArtifactID = "byte-buddy-agent"
)

// Config holds the user-facing options of a single evaluation.
type Config struct {
	// AgentGroupID and AgentArtifactID name the dependency that supplies the
	// agent jar. Both must be set; the version-gated fallback only applies when
	// they are left at their defaults.
	AgentGroupID    string
	AgentArtifactID string

	// PropertyName overrides test-runner detection when non-empty.
	PropertyName string

	// SkipPrepare skips the evaluation when explicitly true and, when left
	// unset, defers to SkipTests. An explicit false forces preparation even for
	// builds that skip tests.
	SkipPrepare domain.TriState
	SkipTests   bool

	// FailSilent downgrades failures to warnings so a missing agent does not
	// abort the surrounding build.
	FailSilent bool
}

// DefaultConfig returns the options used when nothing is overridden: prepare the
// default mocking library on an auto-detected property and fail loudly.
func DefaultConfig() Config {
	return Config{
		AgentGroupID:    DefaultAgentGroupID,
		AgentArtifactID: DefaultAgentArtifactID,
	}
}

// AgentCoordinate returns the configured agent identity.
func (c Config) AgentCoordinate() domain.Coordinate {
	return domain.Coordinate{GroupID: c.AgentGroupID, ArtifactID: c.AgentArtifactID}
}

// Input carries one build's state into an evaluation.
type Input struct {
	// Dependencies is the build's fully resolved dependency set, transitive
	// artifacts included.
	Dependencies []domain.ResolvedArtifact

	// Plugins lists the test-execution plugins configured in the build.
	Plugins []domain.ExecutionPlugin

	// Properties resolves current build property values. May be nil.
	Properties domain.PropertyLookup
}

// Engine evaluates preparation decisions. It holds no mutable state, so a single
// engine may be shared across goroutines.
type Engine struct {
	logger *slog.Logger
}

// New constructs an engine. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Decide runs one evaluation against the given build state and options. It never
// mutates the input and never touches the filesystem; applying the resulting
// property value is the caller's job.
func (e *Engine) Decide(ctx context.Context, in Input, cfg Config) Decision {
	if cfg.SkipTests && cfg.SkipPrepare != domain.TriFalse {
		e.logger.InfoContext(ctx, "skipping agent preparation", "reason", "tests are skipped")
		return Skipped("tests are skipped")
	}
	if cfg.SkipPrepare == domain.TriTrue {
		e.logger.InfoContext(ctx, "skipping agent preparation", "reason", "goal is skipped")
		return Skipped("goal is skipped")
	}

	if !cfg.AgentCoordinate().IsComplete() {
		return e.failOrSkip(ctx, cfg, domain.ErrAgentNotConfigured)
	}

	key := propertyKey(cfg, in.Plugins)

	agent, ok := findArtifact(in.Dependencies, cfg.AgentGroupID, cfg.AgentArtifactID)
	if !ok {
		return e.failOrSkip(ctx, cfg, fmt.Errorf("%w: %s is not in the resolved dependency set",
			domain.ErrAgentNotFound, cfg.AgentCoordinate()))
	}

	selected := agent
	if usesDefaultAgent(cfg) && version.Less(agent.Version, inlineAttachMinVersion) {
		e.logger.DebugContext(ctx, "agent predates inline attachment, selecting fallback",
			"agent", agent.String(),
			"min_version", inlineAttachMinVersion)
		fallback, ok := findArtifact(in.Dependencies, fallbackAgentGroupID, fallbackAgentArtifactID)
		if !ok {
			return e.failOrSkip(ctx, cfg, fmt.Errorf("%w: %s requires %s:%s, check for an excluded transitive dependency",
				domain.ErrAgentNotFound, agent, fallbackAgentGroupID, fallbackAgentArtifactID))
		}
		selected = fallback
	}

	value := agentFlag(selected.Path) + " " + lookup(in.Properties, key)

	e.logger.InfoContext(ctx, "agent preparation applied",
		"agent", selected.String(),
		"property", key)
	return Applied(key, value, selected)
}

// failOrSkip is the single funnel for evaluation failures so fail-silent mode is
// honored everywhere a failure can arise.
func (e *Engine) failOrSkip(ctx context.Context, cfg Config, err error) Decision {
	if cfg.FailSilent {
		e.logger.WarnContext(ctx, "continuing without agent instrumentation", "reason", err.Error())
		return SkippedWarn(err.Error())
	}
	e.logger.ErrorContext(ctx, "agent preparation failed", "error", err.Error())
	return Failed(err)
}

// propertyKey picks the arg-line property the build's test runner will read. An
// explicit override always wins over plugin detection.
func propertyKey(cfg Config, plugins []domain.ExecutionPlugin) string {
	if cfg.PropertyName != "" {
		return cfg.PropertyName
	}
	for _, p := range plugins {
		if p.GroupID == tychoPluginGroupID && p.ArtifactID == tychoPluginArtifactID {
			return TychoArgLineProperty
		}
	}
	return SurefireArgLineProperty
}

func usesDefaultAgent(cfg Config) bool {
	return cfg.AgentGroupID == DefaultAgentGroupID && cfg.AgentArtifactID == DefaultAgentArtifactID
}

// findArtifact returns the first dependency matching the coordinate. Resolution
// guarantees at most one version per coordinate, so first match is the match.
func findArtifact(deps []domain.ResolvedArtifact, groupID, artifactID string) (domain.ResolvedArtifact, bool) {
	for _, d := range deps {
		if d.GroupID == groupID && d.ArtifactID == artifactID {
			return d, true
		}
	}
	return domain.ResolvedArtifact{}, false
}

// agentFlag renders the JVM flag. The path is quoted so paths containing spaces
// survive arg-line tokenization.
func agentFlag(path string) string {
	return `-javaagent:"` + path + `"`
}

func lookup(props domain.PropertyLookup, key string) string {
	if props == nil {
		return ""
	}
	return props(key)
}
