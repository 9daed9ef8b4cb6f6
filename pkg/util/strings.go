package util

import (
	"strconv"
	"strings"
)

// FormatFloat renders a float with the shortest exact representation.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Abbrev joins up to n items with ", " and marks truncation with "...".
func Abbrev(items []string, n int) string {
	if len(items) <= n {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:n], ", ") + "..."
}
