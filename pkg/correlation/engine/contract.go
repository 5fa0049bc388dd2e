package engine

import (
	"context"
	"time"

	"wingspan/pkg/correlation"
)

// Engine is the shared operation set both correlation algorithms implement:
// a tagged sum dispatched by the selector, never a class hierarchy.
type Engine interface {
	// Execute runs the engine's correlation algorithm over wings, returning
	// one CorrelationResult per wing. A non-nil error here is always a
	// ConfigError-class failure surfaced before any work began; anything
	// recoverable is folded into the per-wing result's Errors/Warnings.
	Execute(ctx context.Context, wings []*correlation.Wing) ([]*correlation.CorrelationResult, error)

	// GetResults returns the results of the most recent Execute call.
	GetResults() []*correlation.CorrelationResult

	// GetStatistics summarizes the most recent Execute call across all
	// wings.
	GetStatistics() Statistics

	// Metadata describes this engine variant.
	Metadata() Metadata
}

// Metadata is the introspection record the selector's ListEngines exposes
// for each variant.
type Metadata struct {
	Name                   string
	Description            string
	Complexity             string
	UseCases               []string
	SupportsIdentityFilter bool
}

// Statistics aggregates counters across every wing an Execute call
// processed.
type Statistics struct {
	TotalRecordsScanned     int64
	TotalMatches            int
	FeathersProcessed       int
	DuplicatesPrevented     int64
	MatchesFailedValidation int64
	ExecutionDuration       time.Duration
	WasCancelled            bool
}
