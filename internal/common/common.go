package common

import (
	"fmt"
	"strings"
)

// Search returns the position of i in the ascending index list, or -1.
// Lists are short, a linear scan beats binary search here.
func Search(idx []int, i int) int {
	for j, n := range idx {
		if n == i {
			return j
		}
		if n > i {
			break
		}
	}
	return -1
}

// IsSortedStrict reports whether idx is strictly ascending and inside [0, n).
func IsSortedStrict(idx []int, n int) bool {
	for j, v := range idx {
		if v < 0 || v >= n {
			return false
		}
		if j > 0 && idx[j-1] >= v {
			return false
		}
	}
	return true
}

// ReprValue formats a single value for display.
func ReprValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return fmt.Sprintf("%q", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Repr renders name(f1=v1, f2=v2, ...).
func Repr(name string, fields []string, values []any) string {
	var b strings.Builder
	b.Grow(len(name) + 2 + len(fields)*8)
	b.WriteString(name)
	b.WriteByte('(')
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f)
		b.WriteByte('=')
		b.WriteString(ReprValue(values[i]))
	}
	b.WriteByte(')')
	return b.String()
}
