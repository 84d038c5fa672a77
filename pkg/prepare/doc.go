// Package prepare decides how a JVM build should attach its mocking-framework
// Java agent before tests run.
//
// The package owns the whole decision: whether preparation should happen at all,
// which resolved artifact supplies the agent (including the byte-buddy fallback
// for mocking-library versions that predate inline attachment), which arg-line
// property the flag belongs in, and how the flag merges with a value that is
// already there. The result is a plain Decision value; callers own every side
// effect, so the same engine serves the one-shot CLI, the explain view, and the
// watch loop without modification.
package prepare
