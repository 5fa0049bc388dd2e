package engine

import (
	"log/slog"

	"wingspan/pkg/correlation"
	"wingspan/pkg/correlation/runtime"
	"wingspan/pkg/correlation/storage"
	"wingspan/pkg/feather"
	"wingspan/pkg/identity"
	"wingspan/pkg/scoring"
	"wingspan/pkg/semantic"
	"wingspan/pkg/timeparse"
)

// Options is the shared construction configuration for both engine
// variants, bound once by the selector from a pipeline configuration plus
// the caller's filters. Both twse.New and ibce.New accept *Options
// directly, so a pipeline's options never need translating twice.
type Options struct {
	PipelineName string

	// ExecutionID is the owning pipeline execution's id, when the caller has
	// already opened one via storage.Writer.OpenExecution. Left empty when
	// an engine runs standalone (e.g. under test); FinalizeResult then keeps
	// the placeholder id a Writer assigned at OpenResult time.
	ExecutionID string

	// Feathers maps feather_id to its externally-constructed reference.
	// Owned by the pipeline caller; the engine only reads it.
	Feathers map[string]feather.FeatherRef

	Filters *correlation.FilterConfig

	IdentityRegistry *identity.Registry
	Parser           *timeparse.Parser
	ScoringConfig    *scoring.Config
	Semantic         *semantic.Mapper

	// Writer, when non-nil, forces streaming mode regardless of the
	// projected match count, or when the caller supplies a writer up front.
	Writer               storage.Writer
	StreamingForceEnable bool
	StreamingThreshold   int // 0 uses storage.StreamingThreshold

	MaxWorkers     int // 0 uses runtime.DefaultWorkerCount
	MemoryBudget   *runtime.MemoryBudget
	SpillDir       string
	MaxTimeRange   int // years; TWSE's configurable maximum, 0 uses default 20

	Progress *runtime.Publisher
	Cancel   *runtime.CancelToken

	Logger *slog.Logger
}

// EffectiveStreamingThreshold returns the configured threshold or the
// default.
func (o *Options) EffectiveStreamingThreshold() int {
	if o.StreamingThreshold > 0 {
		return o.StreamingThreshold
	}
	return storage.StreamingThreshold
}

// EffectiveWorkers returns the configured worker count or the default
// given the host's core count.
func (o *Options) EffectiveWorkers(cores int) int {
	if o.MaxWorkers > 0 {
		return o.MaxWorkers
	}
	return runtime.DefaultWorkerCount(cores)
}

// EffectiveMaxTimeRangeYears returns the configured maximum time range in
// years for TWSE's range-detection phase, or the spec default of 20.
func (o *Options) EffectiveMaxTimeRangeYears() int {
	if o.MaxTimeRange > 0 {
		return o.MaxTimeRange
	}
	return 20
}

// EffectiveLogger returns o.Logger or slog.Default(), so engines never
// nil-check it.
func (o *Options) EffectiveLogger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
