// Package snapshot loads the build-state files agentline evaluates: the resolved
// dependency set, the configured test-execution plugins and the current build
// properties, serialized by the host build once resolution has finished.
//
// A snapshot is a plain YAML document (JSON works too, YAML being a superset).
// The loader can additionally watch the file and hand re-validated snapshots to
// a callback, which is what keeps the watch command honest about edits made
// while it runs.
package snapshot

import (
	"fmt"
	"path/filepath"

	"github.com/agentline/agentline/pkg/domain"
	"github.com/agentline/agentline/pkg/prepare"
)

// Snapshot is one build's serialized state at evaluation time.
type Snapshot struct {
	// Dependencies is the fully resolved dependency set, transitive entries
	// included, exactly as the host build resolved it.
	Dependencies []domain.ResolvedArtifact `yaml:"dependencies" json:"dependencies"`

	// TestPlugins lists the test-execution plugins configured in the build.
	TestPlugins []domain.ExecutionPlugin `yaml:"test_plugins" json:"test_plugins"`

	// Properties carries the current build property values, keyed by name.
	Properties map[string]string `yaml:"properties" json:"properties"`
}

// Validate checks the structural invariants the engine relies on: complete
// coordinates everywhere and an absolute path for every dependency, since the
// path goes into a -javaagent flag verbatim.
func (s *Snapshot) Validate() error {
	for i, dep := range s.Dependencies {
		if !dep.Coordinate().IsComplete() {
			return fmt.Errorf("%w: dependency %d has incomplete coordinates %q", domain.ErrSnapshotInvalid, i, dep.Coordinate())
		}
		if dep.Version == "" {
			return fmt.Errorf("%w: dependency %s has no version", domain.ErrSnapshotInvalid, dep.Coordinate())
		}
		if dep.Path == "" {
			return fmt.Errorf("%w: dependency %s has no resolved path", domain.ErrSnapshotInvalid, dep)
		}
		if !filepath.IsAbs(dep.Path) {
			return fmt.Errorf("%w: dependency %s resolved to relative path %q", domain.ErrSnapshotInvalid, dep, dep.Path)
		}
	}
	for i, p := range s.TestPlugins {
		if !p.Coordinate().IsComplete() {
			return fmt.Errorf("%w: test plugin %d has incomplete coordinates %q", domain.ErrSnapshotInvalid, i, p.Coordinate())
		}
	}
	return nil
}

// EngineInput converts the snapshot into the engine's input shape. The returned
// value shares the snapshot's slices; neither side mutates them.
func (s *Snapshot) EngineInput() prepare.Input {
	props := s.Properties
	return prepare.Input{
		Dependencies: s.Dependencies,
		Plugins:      s.TestPlugins,
		Properties:   func(key string) string { return props[key] },
	}
}
