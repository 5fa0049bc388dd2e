// Package semantic annotates records and identities with human-meaningful
// labels derived from declarative rules: per-record field mappings,
// and per-identity multi-condition rules combined with AND/OR. Rule loading
// is optional and scoped wing > pipeline > global; a failure to load rules
// degrades to "no annotations" rather than aborting an execution.
package semantic
