// Package correlation defines the shared data model produced and consumed
// by both correlation engines: wings (declarative rules), filters,
// identities/anchors/evidence rows, and the observable CorrelationMatch /
// CorrelationResult types. Entities use string handles (identity_id,
// anchor_id) for cross-references rather than pointers, so ownership stays a
// tree (Identity owns Anchors, Anchor owns EvidenceRows) even though the
// domain has a conceptual identity<->anchor<->evidence cycle.
package correlation
