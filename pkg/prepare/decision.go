package prepare

import "github.com/agentline/agentline/pkg/domain"

// Outcome defines the result class of a preparation decision.
type Outcome string

const (
	// OutcomeApplied means an agent was selected and a property value produced.
	OutcomeApplied Outcome = "applied"
	// OutcomeSkipped means preparation deliberately did nothing.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means preparation was required but impossible.
	OutcomeFailed Outcome = "failed"
)

// Severity classifies how loudly a decision should be reported.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Decision captures the full result of one engine evaluation. PropertyKey,
// PropertyValue and Agent are only populated for OutcomeApplied; Err is only
// populated for OutcomeFailed.
type Decision struct {
	Outcome       Outcome
	PropertyKey   string
	PropertyValue string
	Agent         *domain.ResolvedArtifact
	Reason        string
	Severity      Severity
	Err           error
}

// Applied builds the decision for a successful preparation.
func Applied(key, value string, agent domain.ResolvedArtifact) Decision {
	return Decision{
		Outcome:       OutcomeApplied,
		PropertyKey:   key,
		PropertyValue: value,
		Agent:         &agent,
		Reason:        "agent configured on " + key,
		Severity:      SeverityInfo,
	}
}

// Skipped builds the decision for an uneventful no-op, such as tests being
// skipped for the whole build.
func Skipped(reason string) Decision {
	return Decision{Outcome: OutcomeSkipped, Reason: reason, Severity: SeverityInfo}
}

// SkippedWarn builds the decision for a no-op that masks a real problem, used
// when fail-silent mode downgrades a failure.
func SkippedWarn(reason string) Decision {
	return Decision{Outcome: OutcomeSkipped, Reason: reason, Severity: SeverityWarn}
}

// Failed builds the decision for an unrecoverable evaluation.
func Failed(err error) Decision {
	return Decision{Outcome: OutcomeFailed, Reason: err.Error(), Severity: SeverityError, Err: err}
}
