package feather

import (
	"context"
	"testing"
	"time"

	"wingspan/pkg/record"
)

func TestMemoryLoader_QueryOrdersByTimestamp(t *testing.T) {
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	rows := []Row{
		{RowID: "2", Timestamp: base.Add(2 * time.Minute), HasTime: true, Data: record.New()},
		{RowID: "1", Timestamp: base, HasTime: true, Data: record.New()},
		{RowID: "3", Data: record.New()}, // no timestamp
	}
	loader := NewMemoryLoader(FeatherRef{FeatherID: "f1"}, Columns{Timestamp: "ts"}, rows)

	it, err := loader.Query(context.Background(), QueryOptions{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	var order []string
	for {
		r, ok, err := it.Next(context.Background())
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if !ok {
			break
		}
		order = append(order, r.RowID)
	}
	want := []string{"1", "2", "3"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, order[i], want[i])
		}
	}
}

func TestMemoryLoader_HasAnyAndTimeRange(t *testing.T) {
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	rows := []Row{
		{RowID: "1", Timestamp: base, HasTime: true, Data: record.New()},
		{RowID: "2", Timestamp: base.Add(time.Hour), HasTime: true, Data: record.New()},
	}
	loader := NewMemoryLoader(FeatherRef{}, Columns{}, rows)

	min, max, ok, err := loader.TimeRange(context.Background())
	if err != nil || !ok {
		t.Fatalf("time range: ok=%v err=%v", ok, err)
	}
	if !min.Equal(base) || !max.Equal(base.Add(time.Hour)) {
		t.Errorf("time range = [%v, %v]", min, max)
	}

	has, err := loader.HasAny(context.Background(), base.Add(-time.Minute), base.Add(time.Minute))
	if err != nil || !has {
		t.Errorf("expected HasAny true, got %v err=%v", has, err)
	}
	has, err = loader.HasAny(context.Background(), base.Add(10*time.Hour), base.Add(11*time.Hour))
	if err != nil || has {
		t.Errorf("expected HasAny false, got %v err=%v", has, err)
	}
}

func TestDetectColumn_ExactThenSubstring(t *testing.T) {
	cols := []string{"id", "last_executed", "data"}
	got := detectColumn(cols, timestampColumnCandidates)
	if got != "last_executed" {
		t.Errorf("expected exact match last_executed, got %q", got)
	}

	cols2 := []string{"id", "execution_timestamp_utc"}
	got2 := detectColumn(cols2, timestampColumnCandidates)
	if got2 != "execution_timestamp_utc" {
		t.Errorf("expected substring match, got %q", got2)
	}
}
