package domain

import "testing"

func TestCoordinateString(t *testing.T) {
	c := Coordinate{GroupID: "org.mockito", ArtifactID: "mockito-core"}
	if got := c.String(); got != "org.mockito:mockito-core" {
		t.Fatalf("unexpected coordinate string %q", got)
	}
}

func TestCoordinateIsComplete(t *testing.T) {
	cases := []struct {
		coord Coordinate
		want  bool
	}{
		{Coordinate{GroupID: "org.mockito", ArtifactID: "mockito-core"}, true},
		{Coordinate{GroupID: "org.mockito"}, false},
		{Coordinate{ArtifactID: "mockito-core"}, false},
		{Coordinate{}, false},
	}
	for _, tc := range cases {
		if got := tc.coord.IsComplete(); got != tc.want {
			t.Fatalf("IsComplete(%v) = %v, want %v", tc.coord, got, tc.want)
		}
	}
}

func TestResolvedArtifactCoordinate(t *testing.T) {
	a := ResolvedArtifact{GroupID: "net.bytebuddy", ArtifactID: "byte-buddy-agent", Version: "1.15.0", Path: "/repo/bba.jar"}
	if a.Coordinate() != (Coordinate{GroupID: "net.bytebuddy", ArtifactID: "byte-buddy-agent"}) {
		t.Fatalf("unexpected coordinate %v", a.Coordinate())
	}
	if a.String() != "net.bytebuddy:byte-buddy-agent:1.15.0" {
		t.Fatalf("unexpected artifact string %q", a.String())
	}
}
