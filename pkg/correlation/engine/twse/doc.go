// Package twse implements the Time-Window Scanning Engine: a fixed
// window-size sweep over the global timeline that emits per-window
// cross-feather correlation matches. Windows are independent and are
// processed by a bounded worker pool (pkg/correlation/runtime); emission
// back into the result is serialized through a single dedup pass so the
// engine's O(N log N) amortized cost never regresses to a naive O(N²)
// pairwise comparison.
package twse
