package identity

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"wingspan/pkg/record"
)

// Type identifies which component of the normalized key dominates, used as
// the Identity's identity_type.
type Type string

const (
	TypeName Type = "name"
	TypePath Type = "path"
	TypeHash Type = "hash"
)

// ErrIdentityRejected is returned by Extract when the candidate value fails
// validation: the record becomes supporting evidence for no identity, a
// non-fatal outcome the caller must handle by treating the row as
// unidentified rather than aborting.
var ErrIdentityRejected = errors.New("identity rejected")

// Key is the normalized identity produced by extraction.
type Key struct {
	// Type is the dominant component (hash > path > name).
	Type Type
	// NormalizedValue is "{name}|{path}|{hash}" with absent components empty.
	NormalizedValue string
}

// knownMeaninglessFields bypasses the stricter all-digits/boolean rejection
// rule: these fields are legitimately numeric-looking identifiers.
var knownMeaninglessFields = map[string]bool{
	"guid":       true,
	"event_id":   true,
	"session_id": true,
}

var copyMarkerPattern = regexp.MustCompile(`(?i)\s*(\(\d+\)|-\s*copy(\s*\(\d+\))?)\s*$`)
var versionTokenPattern = regexp.MustCompile(`(?i)\s*v?\d+(\.\d+)*\s*$`)
var knownExtensions = map[string]bool{
	"exe": true, "dll": true, "lnk": true, "sys": true, "com": true, "bat": true,
}

// scoringTerms are substring cues used by the heuristic fallback when an
// artifact type has no registered field config and the built-in defaults
// also fail to find anything.
var nameScoringTerms = []string{"name", "file", "exe", "app"}
var pathScoringTerms = []string{"path", "location", "directory", "file"}

// Extractor derives identity keys from records, given a Registry of
// per-artifact field configs.
type Extractor struct {
	registry *Registry
}

// NewExtractor constructs an Extractor bound to registry.
func NewExtractor(registry *Registry) *Extractor {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Extractor{registry: registry}
}

// Extract derives a normalized identity Key for rec under artifactType.
// It returns ErrIdentityRejected (non-fatal) when no category yields a
// value that passes validation.
func (e *Extractor) Extract(rec *record.Record, artifactType string) (Key, error) {
	cfg, ok := e.registry.Lookup(artifactType)
	if !ok {
		cfg = defaultFieldConfig
	}

	nameField, nameVal := selectField(rec, cfg.NameFields)
	pathField, pathVal := selectField(rec, cfg.PathFields)
	hashField, hashVal := selectField(rec, cfg.HashFields)

	// Unknown-artifact heuristic fallback: score every field on the record
	// itself when none of the declared/default candidates produced a value.
	if nameVal == "" && pathVal == "" && hashVal == "" {
		nameField, nameVal, pathField, pathVal = heuristicSelect(rec)
	}

	normName := normalizeName(nameVal)
	normPath := normalizePath(pathVal)
	normHash := normalizeHash(hashVal)

	// Dominant component, hash > path > name, determines identity_type and
	// is the component validation is applied against.
	var dominantType Type
	var dominantVal, dominantField string
	switch {
	case normHash != "":
		dominantType, dominantVal, dominantField = TypeHash, normHash, hashField
	case normPath != "":
		dominantType, dominantVal, dominantField = TypePath, normPath, pathField
	case normName != "":
		dominantType, dominantVal, dominantField = TypeName, normName, nameField
	default:
		return Key{}, ErrIdentityRejected
	}

	if !validate(dominantVal, dominantField) {
		return Key{}, ErrIdentityRejected
	}

	key := normName + "|" + normPath + "|" + normHash
	return Key{Type: dominantType, NormalizedValue: key}, nil
}

// selectField returns the field name and string value of the first
// candidate present and non-empty on rec.
func selectField(rec *record.Record, candidates []string) (string, string) {
	for _, name := range candidates {
		v, ok := rec.Get(name)
		if !ok || v.IsNull() {
			continue
		}
		s, ok := v.AsString()
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s != "" {
			return name, s
		}
	}
	return "", ""
}

// heuristicSelect scores every field on rec by substring presence of key
// terms and by value shape, returning the highest-scoring non-empty
// candidate for name and path respectively.
func heuristicSelect(rec *record.Record) (nameField, nameVal, pathField, pathVal string) {
	fields := rec.Fields()
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names) // deterministic tie-break

	bestNameScore, bestPathScore := -1, -1
	for _, fname := range names {
		v, ok := rec.Get(fname)
		if !ok || v.IsNull() {
			continue
		}
		sval, ok := v.AsString()
		if !ok || strings.TrimSpace(sval) == "" {
			continue
		}

		lower := strings.ToLower(fname)
		nScore := scoreField(lower, sval, nameScoringTerms, false)
		if nScore > bestNameScore {
			bestNameScore, nameField, nameVal = nScore, fname, sval
		}
		pScore := scoreField(lower, sval, pathScoringTerms, true)
		if pScore > bestPathScore {
			bestPathScore, pathField, pathVal = pScore, fname, sval
		}
	}
	return nameField, nameVal, pathField, pathVal
}

func scoreField(lowerFieldName, value string, terms []string, pathShape bool) int {
	score := 0
	for _, term := range terms {
		if strings.Contains(lowerFieldName, term) {
			score++
		}
	}
	if pathShape {
		if strings.ContainsAny(value, "/\\") {
			score += 2
		}
	} else {
		lowerVal := strings.ToLower(value)
		if strings.HasSuffix(lowerVal, ".exe") {
			score += 2
		}
	}
	return score
}

// normalizeName normalizes a name-shaped value: lowercase, strip a known
// trailing extension, strip copy markers, strip a trailing version token,
// trim whitespace.
func normalizeName(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if dot := strings.LastIndexByte(s, '.'); dot >= 0 {
		ext := s[dot+1:]
		if knownExtensions[ext] {
			s = s[:dot]
		}
	}
	s = strings.TrimSpace(copyMarkerPattern.ReplaceAllString(s, ""))
	if v := strings.TrimSpace(versionTokenPattern.ReplaceAllString(s, "")); v != "" {
		s = v
	}
	return strings.TrimSpace(s)
}

// normalizePath normalizes a path-shaped value: lowercase, backslashes to
// forward slashes, collapse duplicate separators, strip trailing slash,
// trim whitespace.
func normalizePath(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, `\`, "/")
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", "/")
	}
	s = strings.TrimRight(s, "/")
	return strings.TrimSpace(s)
}

// normalizeHash normalizes a hash-shaped value: lowercase, trim whitespace.
func normalizeHash(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s))
}

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)
var hasAlnum = regexp.MustCompile(`[a-zA-Z0-9]`)

// validate applies the rejection rules to a dominant normalized value.
// fieldName is the source field, used for the known-meaningless-field
// bypass.
func validate(v, fieldName string) bool {
	if len(v) < 2 {
		return false
	}
	if !hasAlnum.MatchString(v) {
		return false
	}

	if knownMeaninglessFields[strings.ToLower(fieldName)] {
		return true
	}

	switch strings.ToLower(v) {
	case "true", "false", "yes", "no":
		return false
	}
	if digitsOnly.MatchString(v) {
		return false
	}
	return true
}

// Normalize re-applies name normalization; exposed for the idempotence
// round-trip law (normalize(normalize(x)) == normalize(x)).
func Normalize(kind Type, s string) string {
	switch kind {
	case TypePath:
		return normalizePath(s)
	case TypeHash:
		return normalizeHash(s)
	default:
		return normalizeName(s)
	}
}
