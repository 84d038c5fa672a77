// Package version compares dotted artifact version strings.
//
// The ordering is intentionally simpler than full semantic versioning: versions
// are split on dots, corresponding components are compared numerically when both
// parse as unsigned integers and lexicographically otherwise, and a missing
// component sorts below any present one. That is exactly enough to order the
// release trains of JVM build artifacts ("5.13.2" < "5.14.0" < "5.14.1") without
// taking a dependency on a versioning scheme those artifacts do not follow.
package version

import (
	"strconv"
	"strings"
)

// Compare returns -1 when a orders before b, +1 when a orders after b and 0 when
// the two are equivalent.
func Compare(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		switch {
		case i >= len(as):
			return -1
		case i >= len(bs):
			return 1
		}
		if c := compareComponent(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return 0
}

// Less reports whether a orders strictly before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// AtLeast reports whether a orders at or after b.
func AtLeast(a, b string) bool {
	return Compare(a, b) >= 0
}

func compareComponent(a, b string) int {
	an, aerr := strconv.ParseUint(a, 10, 64)
	bn, berr := strconv.ParseUint(b, 10, 64)
	if aerr == nil && berr == nil {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}
