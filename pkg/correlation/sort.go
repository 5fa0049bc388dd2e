package correlation

import "sort"

// SortMatches orders matches deterministically by
// (Timestamp, AnchorFeatherID, AnchorRowID). Timestamp is the match's own
// timestamp field; the anchor row's timestamp is not consulted. Call this once on
// finalize; worker-induced timing nondeterminism during emission is hidden
// behind this sort.
func SortMatches(matches []CorrelationMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.AnchorFeatherID != b.AnchorFeatherID {
			return a.AnchorFeatherID < b.AnchorFeatherID
		}
		return a.AnchorRowID < b.AnchorRowID
	})
}
