// Package strings provides string-slice helpers for set-like identifier lists.
package strings

import (
	"strings"
)

// Union appends every trimmed, non-empty value of extra that base does not
// already contain. base order is kept and new values follow in first-seen
// order. base is not modified.
//
//	Union([]string{"XYZ Corp"}, []string{"ACME", "XYZ Corp", "ACME"})
//	// []string{"XYZ Corp", "ACME"}
func Union(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	result := make([]string, 0, len(base)+len(extra))
	for _, v := range base {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	for _, v := range extra {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}
	return result
}

// Contains reports whether values holds v exactly.
func Contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
