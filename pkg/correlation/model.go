package correlation

import (
	"time"

	"wingspan/pkg/record"
)

// WingFeather binds one feather into a wing with its scoring weight and
// whether it is required for a match to be emitted.
type WingFeather struct {
	FeatherID string
	Weight    float64
	Required  bool
}

// Wing is a declarative correlation rule, immutable after load. Both engines
// consume the same Wing type.
type Wing struct {
	WingID             string
	WingName           string
	Feathers           []WingFeather
	TimeWindow         time.Duration
	MinimumMatches     int
	AnchorPriority     []string // ordered artifact types, earlier = higher priority
	MaxMatchesPerAnchor int     // 0 means unbounded
}

// FeatherIDs returns the feather ids participating in the wing, in
// declaration order.
func (w *Wing) FeatherIDs() []string {
	ids := make([]string, len(w.Feathers))
	for i, f := range w.Feathers {
		ids[i] = f.FeatherID
	}
	return ids
}

// WeightFor returns the wing-local weight for featherID and whether one is
// declared.
func (w *Wing) WeightFor(featherID string) (float64, bool) {
	for _, f := range w.Feathers {
		if f.FeatherID == featherID {
			return f.Weight, true
		}
	}
	return 0, false
}

// FilterConfig is applied by the engine before correlation.
type FilterConfig struct {
	TimeStart       *time.Time
	TimeEnd         *time.Time
	IdentityFilters []string // glob patterns
	CaseSensitive   bool
}

// InRange reports whether t falls within the filter's time bounds (when set).
func (f *FilterConfig) InRange(t time.Time) bool {
	if f == nil {
		return true
	}
	if f.TimeStart != nil && t.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && t.After(*f.TimeEnd) {
		return false
	}
	return true
}

// Role describes an evidence row's part within an anchor.
type Role string

const (
	RolePrimary   Role = "primary"
	RoleSecondary Role = "secondary"
	RoleSupporting Role = "supporting"
)

// EvidenceRow references one record in one feather, plus its role within an
// anchor. Back-references to owning Identity/Anchor are handles (IDs), never
// pointers, so ownership stays a tree.
type EvidenceRow struct {
	FeatherID    string
	Table        string
	RowID        string
	Timestamp    *time.Time
	Role         Role
	OriginalData *record.Record

	IdentityID string
	AnchorID   string
}

// Anchor is a temporal cluster of evidence belonging to a single identity.
type Anchor struct {
	AnchorID        string
	IdentityID      string
	StartTime       time.Time
	EndTime         time.Time
	Rows            []EvidenceRow // sorted by timestamp ascending
	PrimaryArtifact string
}

// FeatherIDs returns the distinct feather ids represented among the anchor's
// rows.
func (a *Anchor) FeatherIDs() []string {
	seen := map[string]bool{}
	var ids []string
	for _, r := range a.Rows {
		if !seen[r.FeatherID] {
			seen[r.FeatherID] = true
			ids = append(ids, r.FeatherID)
		}
	}
	return ids
}

// Identity is a normalized representation of one logical entity clustered
// across feathers. It owns its Anchors.
type Identity struct {
	IdentityID      string
	IdentityType    string // "name" | "path" | "hash"
	NormalizedValue string
	FirstSeen       time.Time
	LastSeen        time.Time
	Anchors         []*Anchor
}

// CorrelationMatch is the observable correlation unit.
type CorrelationMatch struct {
	MatchID              string
	Timestamp            time.Time
	FeatherRecords       map[string]*record.Record
	MatchScore           float64
	FeatherCount         int
	TimeSpreadSeconds    float64
	AnchorFeatherID      string
	AnchorArtifactType   string
	MatchedApplication   string
	MatchedFilePath      string
	WeightedScoreBreakdown map[string]FeatherContribution
	ScoreMode            string
	SemanticData         map[string]interface{}

	// fingerprint inputs, retained for deduplication and debugging.
	AnchorRowID         string
	NonAnchorFingerprint []FingerprintEntry
}

// FingerprintEntry is one (feather_id, row_id) pair contributing to a
// match's dedup fingerprint.
type FingerprintEntry struct {
	FeatherID string
	RowID     string
}

// FeatherContribution is one line of the weighted-score breakdown.
type FeatherContribution struct {
	Matched      bool
	Weight       float64
	Contribution float64
}

// CorrelationResult is the per-wing aggregate produced by one engine
// execution.
type CorrelationResult struct {
	WingID                  string
	WingName                string
	Matches                 []CorrelationMatch
	TotalMatches            int
	FeathersProcessed       int
	TotalRecordsScanned     int64
	DuplicatesPrevented     int64
	MatchesFailedValidation int64
	ExecutionDuration       time.Duration
	Errors                  []string
	Warnings                []string
	StreamingMode           bool
	BackingResultRowID      string
	WasCancelled            bool
}

// Fingerprint returns the canonical dedup fingerprint string for a match:
// anchor feather/row plus the sorted set of non-anchor (feather_id, row_id)
// participants.
func Fingerprint(anchorFeatherID, anchorRowID string, nonAnchor []FingerprintEntry) string {
	s := anchorFeatherID + "#" + anchorRowID
	for _, e := range nonAnchor {
		s += "|" + e.FeatherID + "#" + e.RowID
	}
	return s
}
