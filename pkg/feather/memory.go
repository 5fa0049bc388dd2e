package feather

import (
	"context"
	"sort"
	"time"
)

// MemoryLoader is an in-memory Loader implementation, used by engine tests
// and by small pipelines that pre-materialize feather rows without a SQLite
// file on disk.
type MemoryLoader struct {
	ref  FeatherRef
	cols Columns
	rows []Row
}

// NewMemoryLoader builds a MemoryLoader from pre-built rows. Rows need not
// be pre-sorted; NewMemoryLoader sorts them by timestamp ascending
// (timestampless rows sort last, preserving insertion order among
// themselves).
func NewMemoryLoader(ref FeatherRef, cols Columns, rows []Row) *MemoryLoader {
	sorted := append([]Row(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].HasTime != sorted[j].HasTime {
			return sorted[i].HasTime
		}
		if !sorted[i].HasTime {
			return false
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return &MemoryLoader{ref: ref, cols: cols, rows: sorted}
}

func (m *MemoryLoader) Ref() FeatherRef  { return m.ref }
func (m *MemoryLoader) Columns() Columns { return m.cols }

func (m *MemoryLoader) Count(ctx context.Context) (int64, error) {
	return int64(len(m.rows)), nil
}

func (m *MemoryLoader) TimeRange(ctx context.Context) (time.Time, time.Time, bool, error) {
	var min, max time.Time
	found := false
	for _, r := range m.rows {
		if !r.HasTime {
			continue
		}
		if !found {
			min, max = r.Timestamp, r.Timestamp
			found = true
			continue
		}
		if r.Timestamp.Before(min) {
			min = r.Timestamp
		}
		if r.Timestamp.After(max) {
			max = r.Timestamp
		}
	}
	return min, max, found, nil
}

func (m *MemoryLoader) HasAny(ctx context.Context, start, end time.Time) (bool, error) {
	for _, r := range m.rows {
		if r.HasTime && !r.Timestamp.Before(start) && r.Timestamp.Before(end) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryLoader) Query(ctx context.Context, opts QueryOptions) (RecordIterator, error) {
	var filtered []Row
	for _, r := range m.rows {
		if opts.TimeStart != nil && r.HasTime && r.Timestamp.Before(*opts.TimeStart) {
			continue
		}
		if opts.TimeEnd != nil && r.HasTime && !r.Timestamp.Before(*opts.TimeEnd) {
			continue
		}
		filtered = append(filtered, r)
	}
	return &memoryIterator{rows: filtered}, nil
}

func (m *MemoryLoader) Close() error { return nil }

type memoryIterator struct {
	rows []Row
	pos  int
}

func (it *memoryIterator) Next(ctx context.Context) (Row, bool, error) {
	if it.pos >= len(it.rows) {
		return Row{}, false, nil
	}
	r := it.rows[it.pos]
	it.pos++
	return r, true, nil
}

func (it *memoryIterator) Close() error { return nil }
