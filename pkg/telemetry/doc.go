// Package telemetry wires OpenTelemetry exporters and meters for agentline.
//
// It centralises trace provider setup, applies service resource attributes, and
// offers enrichment helpers that attach decision metadata to spans and meters so
// build operators can correlate agent preparation outcomes across CI runs.
package telemetry
