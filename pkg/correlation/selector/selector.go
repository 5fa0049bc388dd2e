// Package selector resolves a pipeline's configured engine_type to a bound
// engine.Engine instance. It depends on both twse and ibce so that
// neither correlation engine package needs to know the other exists.
package selector

import (
	"time"

	"wingspan/pkg/correlation/engine"
	"wingspan/pkg/correlation/engine/ibce"
	"wingspan/pkg/correlation/engine/twse"
	"wingspan/pkg/correlation/runtime"
)

// TypeTimeWindowScanning and TypeIdentityBasedCorrelation are the two
// recognized values of a pipeline's engine_type.
const (
	TypeTimeWindowScanning       = "time_window_scanning"
	TypeIdentityBasedCorrelation = "identity_based"
)

// Select constructs the engine named by engineType, bound to opts.
// scanInterval is twse-only (set from the run command's --scan-interval
// flag) and ignored by ibce; zero means "use each wing's own time_window".
func Select(engineType string, opts *engine.Options, scanInterval time.Duration) (engine.Engine, error) {
	switch engineType {
	case TypeTimeWindowScanning:
		return twse.New(&twse.Options{Options: opts, ScanInterval: scanInterval}), nil
	case TypeIdentityBasedCorrelation:
		return ibce.New(opts), nil
	default:
		return nil, &runtime.UnknownEngineError{EngineType: engineType}
	}
}

// ListEngines returns introspection metadata for every recognized engine
// variant, in a stable order.
func ListEngines() []engine.Metadata {
	return []engine.Metadata{
		twse.New(&twse.Options{Options: &engine.Options{}}).Metadata(),
		ibce.New(&engine.Options{}).Metadata(),
	}
}
