// Package sink delivers decided property assignments to their destinations.
//
// The engine only computes (key, value) pairs; sinks own the side effects. The
// console sink feeds command substitution in shell pipelines, the properties
// sink persists the assignment into a Java properties file, and the report
// writer serializes a whole decision for machine consumers.
package sink

import (
	"fmt"
	"io"
)

// Sink applies one property assignment to a destination.
type Sink interface {
	Apply(key, value string) error
}

// Console writes the assignment as a single "key=value" line, the format
// expected by tools that capture agentline's stdout.
type Console struct {
	W io.Writer
}

func (c Console) Apply(key, value string) error {
	_, err := fmt.Fprintf(c.W, "%s=%s\n", key, value)
	return err
}
