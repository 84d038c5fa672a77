package prepare

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/agentline/agentline/pkg/domain"
)

// Property-based coverage of the decision rules that must hold for every input,
// not just the handpicked table cases.

func quietEngine() *Engine {
	return New(slog.New(slog.NewTextHandler(nopWriter{}, nil)))
}

func TestSkipPrecedenceProperty(t *testing.T) {
	e := quietEngine()
	triGen := rapid.SampledFrom([]domain.TriState{domain.TriUnset, domain.TriTrue, domain.TriFalse})

	rapid.Check(t, func(t *rapid.T) {
		cfg := DefaultConfig()
		cfg.SkipPrepare = triGen.Draw(t, "skipPrepare")
		cfg.SkipTests = rapid.Bool().Draw(t, "skipTests")

		d := e.Decide(context.Background(), testInput(), cfg)

		shouldSkip := (cfg.SkipTests && cfg.SkipPrepare != domain.TriFalse) || cfg.SkipPrepare == domain.TriTrue
		if shouldSkip {
			if d.Outcome != OutcomeSkipped {
				t.Fatalf("skipPrepare=%v skipTests=%v: got %v, want skipped", cfg.SkipPrepare, cfg.SkipTests, d.Outcome)
			}
			if d.PropertyKey != "" || d.PropertyValue != "" {
				t.Fatalf("skipped decision must not carry a property, got %q=%q", d.PropertyKey, d.PropertyValue)
			}
		} else if d.Outcome != OutcomeApplied {
			t.Fatalf("skipPrepare=%v skipTests=%v: got %v, want applied", cfg.SkipPrepare, cfg.SkipTests, d.Outcome)
		}
	})
}

func TestExplicitFalseNeverSkipsForTestsProperty(t *testing.T) {
	e := quietEngine()

	rapid.Check(t, func(t *rapid.T) {
		cfg := DefaultConfig()
		cfg.SkipPrepare = domain.TriFalse
		cfg.SkipTests = rapid.Bool().Draw(t, "skipTests")

		d := e.Decide(context.Background(), testInput(), cfg)
		if d.Outcome == OutcomeSkipped {
			t.Fatalf("explicit skipPrepare=false must force evaluation, got skipped (%s)", d.Reason)
		}
	})
}

func TestMergeLawProperty(t *testing.T) {
	e := quietEngine()

	// Existing values are arbitrary printable strings, including ones already
	// containing the flag; the merge never inspects them.
	existingGen := rapid.StringMatching(`[ -~]{0,60}`)

	rapid.Check(t, func(t *rapid.T) {
		existing := existingGen.Draw(t, "existing")

		in := testInput()
		in.Properties = func(key string) string {
			if key == SurefireArgLineProperty {
				return existing
			}
			return ""
		}

		d := e.Decide(context.Background(), in, DefaultConfig())
		if d.Outcome != OutcomeApplied {
			t.Fatalf("unexpected outcome %v (%s)", d.Outcome, d.Reason)
		}

		want := `-javaagent:"` + mockitoJar + `" ` + existing
		if d.PropertyValue != want {
			t.Fatalf("merge law violated:\n got %q\nwant %q", d.PropertyValue, want)
		}
		if !strings.HasSuffix(d.PropertyValue, existing) {
			t.Fatalf("existing value not preserved verbatim in %q", d.PropertyValue)
		}
	})
}

func TestFailSilentNeverFailsProperty(t *testing.T) {
	e := quietEngine()

	depsGen := rapid.SampledFrom([][]domain.ResolvedArtifact{
		nil,
		testDependencies("5.13.0")[:2], // mocking library present, fallback absent
		{{GroupID: "org.mockito", ArtifactID: "mockito-core", Version: "5.13.0", Path: mockitoJar}},
		testDependencies("5.15.0"),
	})

	rapid.Check(t, func(t *rapid.T) {
		cfg := DefaultConfig()
		cfg.FailSilent = true
		if rapid.Bool().Draw(t, "dropGroupID") {
			cfg.AgentGroupID = ""
		}

		d := e.Decide(context.Background(), Input{Dependencies: depsGen.Draw(t, "deps")}, cfg)
		if d.Outcome == OutcomeFailed {
			t.Fatalf("fail-silent evaluation produced a failure: %s", d.Reason)
		}
	})
}
