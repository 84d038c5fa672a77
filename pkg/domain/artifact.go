package domain

// Coordinate identifies an artifact within a JVM build by group and artifact id.
// Version is deliberately not part of the identity: dependency resolution has
// already picked exactly one version per coordinate.
type Coordinate struct {
	GroupID    string `json:"group_id" yaml:"group_id"`
	ArtifactID string `json:"artifact_id" yaml:"artifact_id"`
}

func (c Coordinate) String() string {
	return c.GroupID + ":" + c.ArtifactID
}

// IsComplete reports whether both halves of the coordinate are set.
// Partially configured coordinates are a configuration error, not a lookup miss.
func (c Coordinate) IsComplete() bool {
	return c.GroupID != "" && c.ArtifactID != ""
}

// ResolvedArtifact is one entry of a build's resolved dependency set: a coordinate,
// the version resolution selected for it, and the absolute filesystem path of the
// file it resolved to.
type ResolvedArtifact struct {
	GroupID    string `json:"group_id" yaml:"group_id"`
	ArtifactID string `json:"artifact_id" yaml:"artifact_id"`
	Version    string `json:"version" yaml:"version"`
	Path       string `json:"path" yaml:"path"`
}

func (a ResolvedArtifact) Coordinate() Coordinate {
	return Coordinate{GroupID: a.GroupID, ArtifactID: a.ArtifactID}
}

func (a ResolvedArtifact) String() string {
	return a.GroupID + ":" + a.ArtifactID + ":" + a.Version
}

// ExecutionPlugin identifies a test-execution plugin configured in the build,
// such as a surefire-style test runner. Only the identity matters for deciding
// which arg-line property the build will honor.
type ExecutionPlugin struct {
	GroupID    string `json:"group_id" yaml:"group_id"`
	ArtifactID string `json:"artifact_id" yaml:"artifact_id"`
}

func (p ExecutionPlugin) Coordinate() Coordinate {
	return Coordinate{GroupID: p.GroupID, ArtifactID: p.ArtifactID}
}

// PropertyLookup reads the current value of a build property. A nil lookup and a
// lookup returning "" are equivalent: the property is treated as unset.
type PropertyLookup func(key string) string
