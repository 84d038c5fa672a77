package version

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{name: "equal", a: "5.14.0", b: "5.14.0", want: 0},
		{name: "patch below", a: "5.13.0", b: "5.14.0", want: -1},
		{name: "patch above", a: "5.15.0", b: "5.14.0", want: 1},
		{name: "numeric not lexicographic", a: "5.9.0", b: "5.14.0", want: -1},
		{name: "two digit major", a: "10.0.0", b: "9.9.9", want: 1},
		{name: "shorter sorts below", a: "5.14", b: "5.14.0", want: -1},
		{name: "longer sorts above", a: "5.14.0.1", b: "5.14.0", want: 1},
		{name: "leading zeros compare numerically", a: "5.014.0", b: "5.14.0", want: 0},
		{name: "non-numeric component lexicographic", a: "5.14.0-rc1", b: "5.14.0", want: 1},
		{name: "qualifiers ordered lexicographically", a: "1.0.alpha", b: "1.0.beta", want: -1},
		{name: "empty below everything", a: "", b: "0.0.1", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
			assert.Equal(t, -tt.want, Compare(tt.b, tt.a))
		})
	}
}

func TestLessAndAtLeast(t *testing.T) {
	assert.True(t, Less("5.13.0", "5.14.0"))
	assert.False(t, Less("5.14.0", "5.14.0"))
	assert.False(t, Less("5.15.0", "5.14.0"))

	assert.True(t, AtLeast("5.14.0", "5.14.0"))
	assert.True(t, AtLeast("5.15.0", "5.14.0"))
	assert.False(t, AtLeast("5.13.2", "5.14.0"))
}

func TestCompareProperties(t *testing.T) {
	versionGen := rapid.Custom(func(t *rapid.T) string {
		parts := rapid.SliceOfN(rapid.IntRange(0, 99), 1, 5).Draw(t, "parts")
		strs := make([]string, len(parts))
		for i, p := range parts {
			strs[i] = strconv.Itoa(p)
		}
		return strings.Join(strs, ".")
	})

	t.Run("reflexive", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			v := versionGen.Draw(t, "v")
			if Compare(v, v) != 0 {
				t.Fatalf("Compare(%q, %q) != 0", v, v)
			}
		})
	})

	t.Run("antisymmetric", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			a := versionGen.Draw(t, "a")
			b := versionGen.Draw(t, "b")
			if Compare(a, b) != -Compare(b, a) {
				t.Fatalf("Compare(%q, %q) and Compare(%q, %q) are not mirrored", a, b, b, a)
			}
		})
	})

	t.Run("matches integer slice ordering", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			a := rapid.SliceOfN(rapid.IntRange(0, 99), 1, 5).Draw(t, "a")
			b := rapid.SliceOfN(rapid.IntRange(0, 99), 1, 5).Draw(t, "b")

			want := compareIntSlices(a, b)
			got := Compare(joinInts(a), joinInts(b))
			if got != want {
				t.Fatalf("Compare(%v, %v) = %d, want %d", a, b, got, want)
			}
		})
	})
}

func compareIntSlices(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func joinInts(parts []int) string {
	strs := make([]string, len(parts))
	for i, p := range parts {
		strs[i] = strconv.Itoa(p)
	}
	return strings.Join(strs, ".")
}
