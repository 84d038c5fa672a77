package sink

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/agentline/agentline/pkg/prepare"
)

// Report is the machine-readable record of one evaluation, one JSON document
// per run. RunID correlates the report with log lines and trace spans.
type Report struct {
	RunID    string          `json:"run_id"`
	Outcome  string          `json:"outcome"`
	Severity string          `json:"severity"`
	Reason   string          `json:"reason,omitempty"`
	Property *ReportProperty `json:"property,omitempty"`
	Agent    *ReportAgent    `json:"agent,omitempty"`
}

// ReportProperty is the assignment an applied decision produced.
type ReportProperty struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ReportAgent identifies the artifact selected to supply the agent.
type ReportAgent struct {
	GroupID    string `json:"group_id"`
	ArtifactID string `json:"artifact_id"`
	Version    string `json:"version"`
	Path       string `json:"path"`
}

// NewReport flattens a decision into its report form.
func NewReport(runID string, d prepare.Decision) Report {
	r := Report{
		RunID:    runID,
		Outcome:  string(d.Outcome),
		Severity: string(d.Severity),
		Reason:   d.Reason,
	}
	if d.Outcome == prepare.OutcomeApplied {
		r.Property = &ReportProperty{Key: d.PropertyKey, Value: d.PropertyValue}
	}
	if d.Agent != nil {
		r.Agent = &ReportAgent{
			GroupID:    d.Agent.GroupID,
			ArtifactID: d.Agent.ArtifactID,
			Version:    d.Agent.Version,
			Path:       d.Agent.Path,
		}
	}
	return r
}

// Write serializes the report as indented JSON.
func (r Report) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
