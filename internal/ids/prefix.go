// Package ids abbreviates identifiers for display.
package ids

import (
	"sort"
	"strings"
)

// DefaultMinLength is the shortest abbreviation Abbreviate produces.
const DefaultMinLength = 8

// UniquePrefixLengths returns the shortest unique prefix length for each ID,
// keyed by the lowercased ID. Matching is case-insensitive; blank and
// duplicate IDs are skipped.
func UniquePrefixLengths(ids []string) map[string]int {
	sorted := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.ToLower(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	// In sorted order the longest shared prefix is always with a neighbor.
	lengths := make(map[string]int, len(sorted))
	for i, id := range sorted {
		shared := 0
		if i > 0 {
			shared = max(shared, commonPrefix(id, sorted[i-1]))
		}
		if i < len(sorted)-1 {
			shared = max(shared, commonPrefix(id, sorted[i+1]))
		}
		lengths[id] = min(shared+1, len(id))
	}
	return lengths
}

// Abbreviate maps each ID to its shortest unique prefix, padded out to
// minLength characters where the ID is long enough.
func Abbreviate(ids []string, minLength int) map[string]string {
	lengths := UniquePrefixLengths(ids)
	short := make(map[string]string, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		n := max(lengths[strings.ToLower(id)], minLength)
		short[id] = id[:min(n, len(id))]
	}
	return short
}

func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
