package engine

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"wingspan/pkg/correlation"
	"wingspan/pkg/feather"
	"wingspan/pkg/timeparse"
)

// ParseTimestamp delegates to parser.Parse; both engines go through this
// one call site (design notes: "shared helpers (parse_timestamp,
// apply_time_filter) live in a common module").
func ParseTimestamp(parser *timeparse.Parser, raw interface{}) (time.Time, bool) {
	if parser == nil {
		parser = timeparse.NewParser()
	}
	return parser.Parse(raw)
}

// ApplyTimeFilter reports whether t satisfies filters' time bounds.
func ApplyTimeFilter(filters *correlation.FilterConfig, t time.Time) bool {
	return filters.InRange(t)
}

// MatchesIdentityFilter reports whether normalizedValue passes filters'
// identity_filters[] glob patterns. An empty pattern list always passes.
// IBCE applies this during load; TWSE ignores identity_filters with a
// warning, since it does not group by identity until after windowing.
func MatchesIdentityFilter(filters *correlation.FilterConfig, normalizedValue string) bool {
	if filters == nil || len(filters.IdentityFilters) == 0 {
		return true
	}
	candidate := normalizedValue
	if !filters.CaseSensitive {
		candidate = strings.ToLower(candidate)
	}
	for _, pattern := range filters.IdentityFilters {
		p := pattern
		if !filters.CaseSensitive {
			p = strings.ToLower(p)
		}
		if ok, err := filepath.Match(p, candidate); err == nil && ok {
			return true
		}
	}
	return false
}

// AnchorPriorityRank returns priority's index for artifactType, or
// len(priority) when artifactType is not listed (lower rank sorts first).
// Used by both engines to pick an anchor: the highest-priority
// anchor_priority artifact present, tie-broken by earliest timestamp.
func AnchorPriorityRank(priority []string, artifactType string) int {
	for i, p := range priority {
		if p == artifactType {
			return i
		}
	}
	return len(priority)
}

// CountFiltered counts loader's rows honoring filters' time bounds,
// independent of how either engine subsequently partitions the timeline, so
// a wing's TotalRecordsScanned never double-counts a row that falls in more
// than one scanning window (twse) or gets visited while clustering more
// than one identity bucket (ibce, which never happens, but the same count
// pass serves both for one shared code path).
func CountFiltered(ctx context.Context, loader feather.Loader, filters *correlation.FilterConfig) (int64, error) {
	if filters == nil || (filters.TimeStart == nil && filters.TimeEnd == nil) {
		return loader.Count(ctx)
	}

	it, err := loader.Query(ctx, feather.QueryOptions{TimeStart: filters.TimeStart, TimeEnd: filters.TimeEnd})
	if err != nil {
		return 0, err
	}
	defer it.Close()

	var n int64
	for {
		_, ok, err := it.Next(ctx)
		if err != nil {
			return n, err
		}
		if !ok {
			break
		}
		n++
	}
	return n, nil
}

// TrimToSpread implements the bidirectional time-window validation both
// engines apply before emitting a candidate match: every kept entry's
// timestamp must be within w of every other. While
// the spread exceeds w, the entry furthest from the midpoint of the
// earliest and latest timestamps is
// dropped and the check repeats; falling below minEntries rejects the whole
// candidate. ts extracts the timestamp so callers keep their own row type.
func TrimToSpread[T any](rows []T, ts func(T) time.Time, w time.Duration, minEntries int) ([]T, bool) {
	kept := make([]T, len(rows))
	copy(kept, rows)

	for {
		if len(kept) < minEntries {
			return nil, false
		}
		lo, hi := ts(kept[0]), ts(kept[0])
		for _, r := range kept[1:] {
			t := ts(r)
			if t.Before(lo) {
				lo = t
			}
			if t.After(hi) {
				hi = t
			}
		}
		if hi.Sub(lo) <= w {
			return kept, true
		}
		median := lo.Add(hi.Sub(lo) / 2)
		worst, worstDist := 0, time.Duration(-1)
		for i, r := range kept {
			d := ts(r).Sub(median)
			if d < 0 {
				d = -d
			}
			if d > worstDist {
				worst, worstDist = i, d
			}
		}
		kept = append(kept[:worst], kept[worst+1:]...)
	}
}
