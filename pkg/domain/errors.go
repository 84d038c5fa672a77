package domain

import "errors"

// Common domain errors
var (
	ErrAgentNotConfigured = errors.New("agent group id and artifact id must both be set")
	ErrAgentNotFound      = errors.New("agent artifact not found")
	ErrSnapshotInvalid    = errors.New("invalid build snapshot")
	ErrConfigInvalid      = errors.New("invalid configuration")
)
