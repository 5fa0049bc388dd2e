// Package engine defines the shared Engine contract both correlation
// algorithms implement, the metadata each variant publishes, and the
// small set of helpers (timestamp parsing, time-filter application) common
// to both TWSE and IBCE. The concrete algorithms live in the twse and ibce
// subpackages, and the selector that dispatches a pipeline's engine_type to
// a concrete instance lives in pkg/correlation/selector; this package never
// imports either engine, so the selector is the only place the tagged-sum
// dispatch is resolved.
package engine
