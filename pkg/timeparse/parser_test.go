package timeparse

import (
	"testing"
	"time"
)

func TestParse_ISO8601(t *testing.T) {
	p := NewParser()
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-15T10:30:00Z", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15T10:30:00.500Z", time.Date(2024, 1, 15, 10, 30, 0, 500000000, time.UTC)},
		{"2024-01-15T10:30:00+02:00", time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)},
		{"2024-01-15 10:30:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, ok := p.Parse(c.in)
		if !ok {
			t.Fatalf("Parse(%q) failed", c.in)
		}
		if !got.Equal(c.want) {
			t.Errorf("Parse(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParse_USAndEuropeanCalendar(t *testing.T) {
	p := NewParser()
	if got, ok := p.Parse("01/15/2024 10:30:00 AM"); !ok || got.Hour() != 10 {
		t.Fatalf("US format failed: %v ok=%v", got, ok)
	}
	if got, ok := p.Parse("15.01.2024 10:30:00"); !ok || got.Day() != 15 {
		t.Fatalf("European dotted format failed: %v ok=%v", got, ok)
	}
}

func TestParse_CompactAndDateOnly(t *testing.T) {
	p := NewParser()
	got, ok := p.Parse("20240115103000")
	if !ok || got.Year() != 2024 || got.Minute() != 30 {
		t.Fatalf("compact form failed: %v ok=%v", got, ok)
	}
	got, ok = p.Parse("2024-01-15")
	if !ok || !got.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date-only form failed: %v ok=%v", got, ok)
	}
}

func TestParse_UnixSecondsAndMillis(t *testing.T) {
	p := NewParser()
	// 2024-01-15T10:30:00Z in unix seconds.
	want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	got, ok := p.Parse(int64(want.Unix()))
	if !ok || !got.Equal(want) {
		t.Fatalf("unix seconds failed: %v ok=%v", got, ok)
	}

	gotMs, ok := p.Parse(float64(want.UnixMilli()))
	if !ok || !gotMs.Equal(want) {
		t.Fatalf("unix millis failed: %v ok=%v", gotMs, ok)
	}
}

func TestParse_FILETIMEEpoch(t *testing.T) {
	p := NewParser()
	got, ok := p.Parse(int64(116444736000000000))
	if !ok {
		t.Fatalf("FILETIME parse failed")
	}
	if !got.Equal(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("FILETIME epoch = %v, want 1970-01-01", got)
	}
}

func TestParse_OutOfRangeRejected(t *testing.T) {
	p := NewParser()
	if _, ok := p.Parse("1980-01-01T00:00:00Z"); ok {
		t.Errorf("expected 1980 timestamp to be rejected as out of range")
	}
	if _, ok := p.Parse("2051-01-01T00:00:00Z"); ok {
		t.Errorf("expected 2051 timestamp to be rejected as out of range")
	}
}

func TestParse_Garbage(t *testing.T) {
	p := NewParser()
	if _, ok := p.Parse("not-a-timestamp"); ok {
		t.Errorf("expected garbage string to fail parsing")
	}
	if _, ok := p.Parse(nil); ok {
		t.Errorf("expected nil to fail parsing")
	}
}

func TestParse_CustomLayout(t *testing.T) {
	p := NewParser("Jan 2, 2006 3:04pm")
	got, ok := p.Parse("Jan 15, 2024 10:30am")
	if !ok || got.Hour() != 10 {
		t.Fatalf("custom layout failed: %v ok=%v", got, ok)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	p := NewParser()
	original := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	s := Format(original)
	got, ok := p.Parse(s)
	if !ok {
		t.Fatalf("round trip parse failed for %q", s)
	}
	if !got.Equal(original) {
		t.Errorf("round trip = %v, want %v", got, original)
	}
}
