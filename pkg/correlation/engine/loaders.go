package engine

import (
	"context"
	"fmt"
	"log/slog"

	"wingspan/pkg/correlation/runtime"
	"wingspan/pkg/feather"
	"wingspan/pkg/timeparse"
)

// OpenFeathers opens every ref in refs, in wing feather order, skipping and
// warning about any that fail (InvalidDatabase/NoDataTable/EmptyTable/
// SchemaDetectionFailed are all recoverable at the engine level). The
// returned map is keyed by feather_id; callers must Close each loader
// when done.
func OpenFeathers(ctx context.Context, order []string, refs map[string]feather.FeatherRef, parser *timeparse.Parser, logger *slog.Logger) (map[string]feather.Loader, []string) {
	loaders := make(map[string]feather.Loader, len(order))
	var warnings []string

	for _, featherID := range order {
		ref, ok := refs[featherID]
		if !ok {
			w := fmt.Sprintf("wing references unknown feather %q", featherID)
			warnings = append(warnings, w)
			logger.Warn("skipping unknown feather", "feather_id", featherID)
			continue
		}
		loader, err := feather.Open(ctx, ref, parser)
		if err != nil {
			fu := &runtime.FeatherUnavailableError{FeatherID: featherID, Cause: err}
			warnings = append(warnings, fu.Error())
			logger.Warn("feather unavailable, skipping", "feather_id", featherID, "error", err)
			continue
		}
		loaders[featherID] = loader
	}

	return loaders, warnings
}

// CloseAll closes every loader, ignoring individual close errors (best
// effort cleanup at the end of an execution).
func CloseAll(loaders map[string]feather.Loader) {
	for _, l := range loaders {
		_ = l.Close()
	}
}
