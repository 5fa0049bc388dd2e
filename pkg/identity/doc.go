// Package identity derives a normalized identity key from a forensic
// artifact record: the (identity_type, normalized_value) pair that the
// identity-based correlation engine clusters on, and that the time-window
// engine uses to group records within a window.
//
// Extraction is field-selection (which column holds the name/path/hash of
// the entity) followed by normalization (case-folding, separator
// canonicalization, copy/version-marker stripping) and validation (rejecting
// values too generic to correlate on, such as bare booleans or digit
// strings).
package identity
