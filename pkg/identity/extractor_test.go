package identity

import (
	"errors"
	"testing"

	"wingspan/pkg/record"
)

func rec(fields map[string]string) *record.Record {
	r := record.New()
	for k, v := range fields {
		r.Set(k, record.NewString(v))
	}
	return r
}

func TestExtract_PrefetchAndShimcacheNormalizeToSameKey(t *testing.T) {
	e := NewExtractor(NewRegistry())

	pf, err := e.Extract(rec(map[string]string{"executable_name": "CHROME.EXE"}), "prefetch")
	if err != nil {
		t.Fatalf("prefetch extract: %v", err)
	}
	sc, err := e.Extract(rec(map[string]string{"filename": "chrome.exe"}), "shimcache")
	if err != nil {
		t.Fatalf("shimcache extract: %v", err)
	}
	if pf.NormalizedValue != sc.NormalizedValue {
		t.Errorf("normalized keys differ: %q vs %q", pf.NormalizedValue, sc.NormalizedValue)
	}
	if pf.Type != TypeName {
		t.Errorf("expected dominant type name, got %s", pf.Type)
	}
}

func TestExtract_PathDominatesOverName(t *testing.T) {
	e := NewExtractor(NewRegistry())
	k, err := e.Extract(rec(map[string]string{
		"executable_name": "chrome.exe",
		"full_path":       `C:\Program Files\Chrome\chrome.exe`,
	}), "prefetch")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if k.Type != TypePath {
		t.Errorf("expected path to dominate, got %s", k.Type)
	}
}

func TestExtract_RejectsNumericOnly(t *testing.T) {
	e := NewExtractor(NewRegistry())
	_, err := e.Extract(rec(map[string]string{"executable_name": "12345"}), "prefetch")
	if !errors.Is(err, ErrIdentityRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
}

func TestExtract_RejectsBooleanLiteral(t *testing.T) {
	e := NewExtractor(NewRegistry())
	_, err := e.Extract(rec(map[string]string{"executable_name": "true"}), "prefetch")
	if !errors.Is(err, ErrIdentityRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
}

func TestExtract_KnownMeaninglessFieldBypassesNumericRule(t *testing.T) {
	e := NewExtractor(NewRegistry())
	e.registry.Register("synthetic", FieldConfig{NameFields: []string{"guid"}})
	k, err := e.Extract(rec(map[string]string{"guid": "1234567890"}), "synthetic")
	if err != nil {
		t.Fatalf("expected guid field to bypass numeric rejection: %v", err)
	}
	if k.NormalizedValue == "" {
		t.Errorf("expected non-empty normalized value")
	}
}

func TestExtract_StripsCopyMarkerAndVersion(t *testing.T) {
	e := NewExtractor(NewRegistry())
	k1, _ := e.Extract(rec(map[string]string{"executable_name": "chrome (1).exe"}), "prefetch")
	k2, _ := e.Extract(rec(map[string]string{"executable_name": "chrome.exe"}), "prefetch")
	if k1.NormalizedValue != k2.NormalizedValue {
		t.Errorf("copy marker not stripped: %q vs %q", k1.NormalizedValue, k2.NormalizedValue)
	}

	k3, _ := e.Extract(rec(map[string]string{"executable_name": "myapp v2.1.3"}), "prefetch")
	k4, _ := e.Extract(rec(map[string]string{"executable_name": "myapp"}), "prefetch")
	if k3.NormalizedValue != k4.NormalizedValue {
		t.Errorf("version token not stripped: %q vs %q", k3.NormalizedValue, k4.NormalizedValue)
	}
}

func TestExtract_UnknownArtifactHeuristicFallback(t *testing.T) {
	e := NewExtractor(NewRegistry())
	k, err := e.Extract(rec(map[string]string{
		"weird_field_1": "some random label",
		"custom_app":    "Notepad.exe",
	}), "totally_unknown_artifact")
	if err != nil {
		t.Fatalf("expected heuristic fallback to succeed: %v", err)
	}
	if k.NormalizedValue == "" {
		t.Errorf("expected non-empty key from heuristic fallback")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	cases := []struct {
		kind Type
		in   string
	}{
		{TypeName, "CHROME (1).exe"},
		{TypePath, `C:\\Windows\\System32\\`},
		{TypeHash, "ABCDEF0123"},
	}
	for _, c := range cases {
		once := Normalize(c.kind, c.in)
		twice := Normalize(c.kind, once)
		if once != twice {
			t.Errorf("normalize not idempotent for %q: %q vs %q", c.in, once, twice)
		}
	}
}

func TestExtract_EmptyRecordRejected(t *testing.T) {
	e := NewExtractor(NewRegistry())
	_, err := e.Extract(record.New(), "prefetch")
	if !errors.Is(err, ErrIdentityRejected) {
		t.Fatalf("expected rejection for empty record, got %v", err)
	}
}
