package timeparse

import (
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MinInstant and MaxInstant bound the valid range for forensic correlation.
// Values outside this range are treated as invalid, whatever form they
// arrived in.
var (
	MinInstant = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	MaxInstant = time.Date(2050, 1, 1, 0, 0, 0, 0, time.UTC)
)

// windowsEpochDiffTicks is the number of 100ns ticks between the Windows
// FILETIME epoch (1601-01-01T00:00:00Z) and the UNIX epoch
// (1970-01-01T00:00:00Z). 116444736000000000 ticks since 1601 lands exactly
// on the UNIX epoch.
const windowsEpochDiffTicks = 116444736000000000

// builtinLayouts are tried, in order, for string timestamps before any
// layouts supplied via configuration. Order matters: more specific / less
// ambiguous layouts are tried first.
var builtinLayouts = []string{
	// ISO-8601 with fractional seconds and timezone offset.
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	// Common date-time with space separator.
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	// US calendar format.
	"01/02/2006 15:04:05 PM",
	"01/02/2006 03:04:05 PM",
	"01/02/2006 15:04:05",
	// European calendar formats.
	"02.01.2006 15:04:05",
	"02/01/2006 15:04:05",
	// Compact form.
	"20060102150405",
	// Date only (midnight UTC assumed).
	"2006-01-02",
	"01/02/2006",
	"02.01.2006",
}

// Parser parses timestamp values using the built-in layout list plus any
// implementer-supplied additional layouts. A Parser is safe for concurrent
// use.
type Parser struct {
	mu      sync.RWMutex
	extra   []string
	minInst time.Time
	maxInst time.Time
}

// NewParser constructs a Parser. extraLayouts are tried after the built-in
// list, in the order given, using Go reference-time layout syntax.
func NewParser(extraLayouts ...string) *Parser {
	p := &Parser{
		minInst: MinInstant,
		maxInst: MaxInstant,
	}
	p.extra = append(p.extra, extraLayouts...)
	return p
}

// AddLayout registers an additional layout at runtime (e.g. loaded from a
// pipeline configuration file after the Parser was constructed).
func (p *Parser) AddLayout(layout string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.extra = append(p.extra, layout)
}

// Parse converts a string, integer, or floating-point timestamp value into a
// canonical UTC instant. ok is false when every recognized form fails to
// parse, or when the resulting instant falls outside [MinInstant,
// MaxInstant).
func (p *Parser) Parse(v interface{}) (time.Time, bool) {
	switch val := v.(type) {
	case string:
		return p.parseString(val)
	case int:
		return p.parseNumeric(float64(val))
	case int32:
		return p.parseNumeric(float64(val))
	case int64:
		return p.parseNumeric(float64(val))
	case float32:
		return p.parseNumeric(float64(val))
	case float64:
		return p.parseNumeric(val)
	default:
		return time.Time{}, false
	}
}

func (p *Parser) parseString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range builtinLayouts {
		if t, ok := tryLayout(layout, s); ok {
			return p.validate(t)
		}
	}

	p.mu.RLock()
	extra := append([]string(nil), p.extra...)
	p.mu.RUnlock()
	for _, layout := range extra {
		if t, ok := tryLayout(layout, s); ok {
			return p.validate(t)
		}
	}

	// A bare numeric string may be a UNIX/FILETIME value serialized as text.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return p.parseNumeric(f)
	}

	return time.Time{}, false
}

func tryLayout(layout, s string) (time.Time, bool) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// parseNumeric interprets a bare number as UNIX seconds, UNIX milliseconds,
// or Windows FILETIME ticks, selected by magnitude.
func (p *Parser) parseNumeric(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}

	switch {
	case f >= 1e9 && f < 1e11:
		return p.validate(time.Unix(int64(f), 0).UTC())
	case f >= 1e12 && f < 1e14:
		ms := int64(f)
		return p.validate(time.Unix(ms/1000, (ms%1000)*int64(time.Millisecond)).UTC())
	case f >= 1e16 && f < 1.4e18:
		ticks := int64(f)
		ns := (ticks - windowsEpochDiffTicks) * 100
		return p.validate(time.Unix(0, ns).UTC())
	default:
		return time.Time{}, false
	}
}

func (p *Parser) validate(t time.Time) (time.Time, bool) {
	t = t.UTC()
	if t.Before(p.minInst) || !t.Before(p.maxInst) {
		return time.Time{}, false
	}
	return t, true
}

// Format renders an instant back into a canonical ISO-8601 string, the
// inverse used by the parse-then-format-then-parse round-trip law.
func Format(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}
