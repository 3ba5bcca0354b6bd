package dispatch

import (
	"fmt"
	"strconv"
	"strings"
)

// Specificity holds one score per parameter. Lower scores are more
// specific; WildcardScore marks a wildcard match.
type Specificity []int

// CompareSpecificity orders two specificities of equal length
// lexicographically. It returns a negative number when a is more specific
// than b, zero when they tie and a positive number otherwise.
// Comparing specificities of different lengths is a programming error.
func CompareSpecificity(a, b Specificity) int {
	if len(a) != len(b) {
		panic(fmt.Sprintf("dispatch: specificity length mismatch (%d vs %d)", len(a), len(b)))
	}
	for i := range a {
		if a[i] != b[i] {
			return a[i] - b[i]
		}
	}
	return 0
}

func (s Specificity) String() string {
	parts := make([]string, len(s))
	for i, v := range s {
		if v == WildcardScore {
			parts[i] = Wildcard
		} else {
			parts[i] = strconv.Itoa(v)
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}
