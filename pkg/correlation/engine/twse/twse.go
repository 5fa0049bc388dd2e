package twse

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"wingspan/pkg/correlation"
	"wingspan/pkg/correlation/engine"
	"wingspan/pkg/correlation/runtime"
	"wingspan/pkg/feather"
	"wingspan/pkg/identity"
	"wingspan/pkg/record"
	"wingspan/pkg/scoring"
	"wingspan/pkg/semantic"
)

// Options extends the shared engine.Options with TWSE's one private knob:
// the step between successive window starts. Zero defaults to the wing's
// TimeWindow, reproducing the base non-overlapping sweep; a smaller value
// produces overlapping windows whose duplicate candidates the post-pool
// dedup pass absorbs.
type Options struct {
	*engine.Options
	ScanInterval time.Duration
}

// Engine is the TWSE implementation of engine.Engine.
type Engine struct {
	opts *Options

	mu      sync.Mutex
	results []*correlation.CorrelationResult
	stats   engine.Statistics
}

// New constructs a TWSE engine bound to opts.
func New(opts *Options) *Engine {
	return &Engine{opts: opts}
}

// Metadata describes the TWSE variant.
func (e *Engine) Metadata() engine.Metadata {
	return engine.Metadata{
		Name:        "time_window_scanning",
		Description: "Scans the full forensic timeline at a fixed window size, correlating across feathers within each window.",
		Complexity:  "O(N log N) amortized",
		UseCases: []string{
			"systematic timeline sweeps",
			"fixed-cadence cross-artifact correlation",
			"large feathers where identity clustering is too coarse",
		},
		SupportsIdentityFilter: false,
	}
}

// GetResults returns the results of the most recent Execute call.
func (e *Engine) GetResults() []*correlation.CorrelationResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.results
}

// GetStatistics summarizes the most recent Execute call.
func (e *Engine) GetStatistics() engine.Statistics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Execute runs the TWSE algorithm over wings.
func (e *Engine) Execute(ctx context.Context, wings []*correlation.Wing) ([]*correlation.CorrelationResult, error) {
	for _, w := range wings {
		if err := validateWing(w); err != nil {
			return nil, &runtime.ConfigError{Reason: fmt.Sprintf("wing %q invalid", w.WingID), Cause: err}
		}
	}

	results := make([]*correlation.CorrelationResult, 0, len(wings))
	var agg engine.Statistics

	for _, wing := range wings {
		result, err := e.executeWing(ctx, wing)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
		agg.TotalRecordsScanned += result.TotalRecordsScanned
		agg.TotalMatches += result.TotalMatches
		agg.FeathersProcessed += result.FeathersProcessed
		agg.DuplicatesPrevented += result.DuplicatesPrevented
		agg.MatchesFailedValidation += result.MatchesFailedValidation
		agg.ExecutionDuration += result.ExecutionDuration
		agg.WasCancelled = agg.WasCancelled || result.WasCancelled
	}

	e.mu.Lock()
	e.results = results
	e.stats = agg
	e.mu.Unlock()

	return results, nil
}

func validateWing(w *correlation.Wing) error {
	if w.TimeWindow <= 0 {
		return fmt.Errorf("time_window_minutes must be positive")
	}
	if w.MinimumMatches < 0 {
		return fmt.Errorf("minimum_matches must be non-negative")
	}
	if len(w.Feathers) == 0 {
		return fmt.Errorf("wing has no feathers")
	}
	return nil
}

// featherRange caches one feather's timestamp bounds so window generation
// can skip a quick HasAny probe when a window cannot possibly intersect it.
type featherRange struct {
	min, max time.Time
}

func (fr featherRange) intersects(start, end time.Time) bool {
	return !fr.max.Before(start) && fr.min.Before(end)
}

// windowRow is one loaded row tagged with the feather it came from, the
// unit correlateWindow and buildMatch group by identity and trim by time.
type windowRow struct {
	featherID string
	artifact  string
	row       feather.Row
}

// safeResult serializes warning/error appends onto a CorrelationResult
// shared across the concurrent window workers.
type safeResult struct {
	mu sync.Mutex
	r  *correlation.CorrelationResult
}

func (s *safeResult) warn(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Warnings = append(s.r.Warnings, msg)
}

// executeWing runs one wing's correlation, returning a complete
// CorrelationResult. A non-nil error indicates a fatal, execution-aborting
// condition (TimeRangeTooLarge or an exhausted storage retry budget);
// everything else is folded into the result's Errors/Warnings.
func (e *Engine) executeWing(ctx context.Context, wing *correlation.Wing) (*correlation.CorrelationResult, error) {
	start := time.Now()
	logger := e.opts.EffectiveLogger().With("component", "engine.twse", "wing_id", wing.WingID)
	result := &correlation.CorrelationResult{WingID: wing.WingID, WingName: wing.WingName}
	sr := &safeResult{r: result}
	publish(e.opts.Progress, wing.WingID, runtime.EventLoadStarted, nil)

	loaders, warnings := engine.OpenFeathers(ctx, wing.FeatherIDs(), e.opts.Feathers, e.opts.Parser, logger)
	defer engine.CloseAll(loaders)
	result.Warnings = append(result.Warnings, warnings...)
	result.FeathersProcessed = len(loaders)

	if e.opts.Filters != nil && len(e.opts.Filters.IdentityFilters) > 0 {
		result.Warnings = append(result.Warnings, "TWSE ignores filters.identity_filters; identity grouping happens within each window")
	}

	if len(loaders) == 0 {
		result.Errors = append(result.Errors, "no feathers available for wing")
		result.ExecutionDuration = time.Since(start)
		return result, nil
	}

	ranges := make(map[string]featherRange, len(loaders))
	var tLo, tHi time.Time
	haveRange := false
	for fid, loader := range loaders {
		mn, mx, ok, err := loader.TimeRange(ctx)
		if err != nil || !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("feather %q: no usable time range", fid))
			continue
		}
		ranges[fid] = featherRange{min: mn, max: mx}
		if !haveRange || mn.Before(tLo) {
			tLo = mn
		}
		if !haveRange || mx.After(tHi) {
			tHi = mx
		}
		haveRange = true
	}
	if !haveRange {
		result.Warnings = append(result.Warnings, "no feather produced a usable time range")
		result.ExecutionDuration = time.Since(start)
		return result, nil
	}

	maxRange := time.Duration(e.opts.EffectiveMaxTimeRangeYears()) * 365 * 24 * time.Hour
	if tHi.Sub(tLo) > maxRange {
		return nil, &runtime.TimeRangeTooLargeError{WingID: wing.WingID, Range: tHi.Sub(tLo), Max: maxRange}
	}

	for fid, loader := range loaders {
		n, err := engine.CountFiltered(ctx, loader, e.opts.Filters)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("feather %q: count failed: %v", fid, err))
			continue
		}
		result.TotalRecordsScanned += n
	}

	streaming := e.opts.StreamingForceEnable || e.opts.Writer != nil ||
		result.TotalRecordsScanned > int64(e.opts.EffectiveStreamingThreshold())
	if streaming && e.opts.Writer == nil {
		result.Warnings = append(result.Warnings, "streaming indicated but no writer configured; falling back to in-memory mode")
		streaming = false
	}

	var resultID string
	if streaming {
		if err := runtime.RetryStorage(func() error {
			var innerErr error
			resultID, innerErr = e.opts.Writer.OpenResult(wing.WingID, wing.WingName)
			return innerErr
		}, nil); err != nil {
			result.ExecutionDuration = time.Since(start)
			return result, err
		}
		result.StreamingMode = true
		result.BackingResultRowID = resultID
		for fid, loader := range loaders {
			n, _ := loader.Count(ctx)
			_ = e.opts.Writer.RecordFeatherMetadata(resultID, fid, loader.Ref().ArtifactType, n)
		}
	}

	windowSize := wing.TimeWindow
	scanInterval := windowSize
	if e.opts.ScanInterval > 0 {
		scanInterval = e.opts.ScanInterval
	}

	type windowSpec struct {
		index      int
		start, end time.Time
		weight     int
	}
	var windows []windowSpec
	idx := 0
	for ws := tLo; !ws.After(tHi); ws = ws.Add(scanInterval) {
		we := ws.Add(windowSize)
		weight := 0
		for fid, loader := range loaders {
			fr, ok := ranges[fid]
			if !ok || !fr.intersects(ws, we) {
				continue
			}
			has, err := loader.HasAny(ctx, ws, we)
			if err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("feather %q: existence check failed for window %d: %v", fid, idx, err))
				continue
			}
			if has {
				weight++
			}
		}
		if weight > 0 {
			windows = append(windows, windowSpec{index: idx, start: ws, end: we, weight: weight})
		}
		idx++
	}

	extractor := identity.NewExtractor(e.opts.IdentityRegistry)

	var failedValidation int64
	var store *runtime.TieredWindowStore
	if e.opts.MemoryBudget != nil && e.opts.SpillDir != "" {
		if ts, err := runtime.NewTieredWindowStore(e.opts.MemoryBudget, e.opts.SpillDir); err == nil {
			store = ts
			defer store.Close()
		}
	}

	tasks := make([]runtime.WindowTask[correlation.CorrelationMatch], 0, len(windows))
	for _, w := range windows {
		w := w
		tasks = append(tasks, runtime.WindowTask[correlation.CorrelationMatch]{
			Index:  w.index,
			Weight: w.weight,
			Run: func(taskCtx context.Context) ([]correlation.CorrelationMatch, error) {
				publish(e.opts.Progress, wing.WingID, runtime.EventWindowStarted, map[string]interface{}{"window_index": w.index})
				matches := e.correlateWindow(taskCtx, wing, loaders, extractor, w.index, w.start, w.end, store, &failedValidation, sr)
				publish(e.opts.Progress, wing.WingID, runtime.EventWindowProgress, map[string]interface{}{"window_index": w.index, "matches": len(matches)})
				return matches, nil
			},
		})
	}

	pool := runtime.NewWindowPool[correlation.CorrelationMatch](e.opts.EffectiveWorkers(8))
	windowResults, _ := pool.Run(ctx, tasks, e.opts.Cancel)

	var rawMatches []correlation.CorrelationMatch
	for _, wr := range windowResults {
		rawMatches = append(rawMatches, wr.Items...)
	}

	seen := make(map[string]bool, len(rawMatches))
	var duplicatesPrevented int64
	final := make([]correlation.CorrelationMatch, 0, len(rawMatches))
	for _, m := range rawMatches {
		fp := correlation.Fingerprint(m.AnchorFeatherID, m.AnchorRowID, m.NonAnchorFingerprint)
		if seen[fp] {
			duplicatesPrevented++
			continue
		}
		seen[fp] = true
		final = append(final, m)
	}

	correlation.SortMatches(final)

	if streaming {
		for i := range final {
			m := final[i]
			if err := runtime.RetryStorage(func() error {
				return e.opts.Writer.AppendMatch(resultID, &m)
			}, nil); err != nil {
				result.ExecutionDuration = time.Since(start)
				return result, err
			}
		}
	} else {
		result.Matches = final
	}

	result.TotalMatches = len(final)
	result.DuplicatesPrevented = duplicatesPrevented
	result.MatchesFailedValidation = atomic.LoadInt64(&failedValidation)
	result.WasCancelled = e.opts.Cancel.IsCancelled()
	result.ExecutionDuration = time.Since(start)

	if streaming {
		if err := runtime.RetryStorage(func() error {
			return e.opts.Writer.FinalizeResult(resultID, e.opts.ExecutionID, result)
		}, nil); err != nil {
			return result, err
		}
	}

	if result.WasCancelled {
		publish(e.opts.Progress, wing.WingID, runtime.EventCancelled, nil)
	}
	publish(e.opts.Progress, wing.WingID, runtime.EventExecutionComplete, map[string]interface{}{"total_matches": result.TotalMatches})

	return result, nil
}

// correlateWindow loads each feather's records within [start,end), groups
// them by identity, and emits validated candidate matches for the window.
// Dedup across windows happens afterward in executeWing; duplicate rows
// from the same feather within one window are collapsed here by keeping
// the earliest.
func (e *Engine) correlateWindow(
	ctx context.Context,
	wing *correlation.Wing,
	loaders map[string]feather.Loader,
	extractor *identity.Extractor,
	windowIndex int,
	start, end time.Time,
	store *runtime.TieredWindowStore,
	failedValidation *int64,
	sr *safeResult,
) []correlation.CorrelationMatch {
	groups := make(map[string][]windowRow)

	for fid, loader := range loaders {
		rows, err := loadWindowRows(ctx, loader, start, end, e.opts.Filters)
		if err != nil {
			sr.warn(fmt.Sprintf("feather %q: window %d load failed: %v", fid, windowIndex, err))
			continue
		}
		artifact := loader.Ref().ArtifactType

		if store != nil {
			key := runtime.WindowKey{WindowIndex: windowIndex, FeatherID: fid}
			if err := store.Put(key, rows); err == nil {
				defer store.Release(key)
				if cached, gerr := store.Get(key); gerr == nil {
					rows = cached
				}
			}
		}

		for _, row := range rows {
			key, err := extractor.Extract(row.Data, artifact)
			if err != nil {
				continue // identity rejected: row contributes to no group
			}
			groups[key.NormalizedValue] = append(groups[key.NormalizedValue], windowRow{featherID: fid, artifact: artifact, row: row})
		}
	}

	var matches []correlation.CorrelationMatch
	for _, rows := range groups {
		byFeather := make(map[string]windowRow, len(rows))
		for _, r := range rows {
			if existing, ok := byFeather[r.featherID]; !ok || r.row.Timestamp.Before(existing.row.Timestamp) {
				byFeather[r.featherID] = r
			}
		}
		if len(byFeather) < wing.MinimumMatches+1 {
			continue
		}

		included := make([]windowRow, 0, len(byFeather))
		for _, r := range byFeather {
			included = append(included, r)
		}

		included, ok := engine.TrimToSpread(included, func(r windowRow) time.Time { return r.row.Timestamp }, wing.TimeWindow, wing.MinimumMatches+1)
		if !ok {
			atomic.AddInt64(failedValidation, 1)
			continue
		}

		matches = append(matches, buildMatch(wing, included, e.opts.ScoringConfig, e.opts.Semantic))
	}

	return matches
}

// buildMatch assembles the observable CorrelationMatch for one validated,
// trimmed identity group within a window.
func buildMatch(wing *correlation.Wing, included []windowRow, scoringCfg *scoring.Config, mapper *semantic.Mapper) correlation.CorrelationMatch {
	sort.Slice(included, func(i, j int) bool { return included[i].row.Timestamp.Before(included[j].row.Timestamp) })

	matchedFeathers := make(map[string]bool, len(included))
	anchorIdx := 0
	for i, r := range included {
		matchedFeathers[r.featherID] = true
		if i != anchorIdx && betterAnchor(included[anchorIdx], r, wing.AnchorPriority) {
			anchorIdx = i
		}
	}
	anchor := included[anchorIdx]

	lo, hi := included[0].row.Timestamp, included[0].row.Timestamp
	for _, r := range included {
		if r.row.Timestamp.Before(lo) {
			lo = r.row.Timestamp
		}
		if r.row.Timestamp.After(hi) {
			hi = r.row.Timestamp
		}
	}
	central := lo.Add(hi.Sub(lo) / 2)

	featherRecords := make(map[string]*record.Record, len(included))
	var nonAnchor []correlation.FingerprintEntry
	var recordAnns []semantic.Annotation
	for _, r := range included {
		featherRecords[r.featherID] = r.row.Data
		if mapper != nil {
			recordAnns = append(recordAnns, mapper.AnnotateRecord(wing.WingID, r.artifact, r.row.Data)...)
		}
		if r.featherID != anchor.featherID {
			nonAnchor = append(nonAnchor, correlation.FingerprintEntry{FeatherID: r.featherID, RowID: r.row.RowID})
		}
	}
	sort.Slice(nonAnchor, func(i, j int) bool {
		if nonAnchor[i].FeatherID != nonAnchor[j].FeatherID {
			return nonAnchor[i].FeatherID < nonAnchor[j].FeatherID
		}
		return nonAnchor[i].RowID < nonAnchor[j].RowID
	})

	score := scoring.Score(wing, matchedFeathers, scoringCfg)

	return correlation.CorrelationMatch{
		MatchID:                uuid.NewString(),
		Timestamp:              central,
		FeatherRecords:         featherRecords,
		MatchScore:             score.Score,
		FeatherCount:           len(matchedFeathers),
		TimeSpreadSeconds:      hi.Sub(lo).Seconds(),
		AnchorFeatherID:        anchor.featherID,
		AnchorArtifactType:     anchor.artifact,
		AnchorRowID:            anchor.row.RowID,
		NonAnchorFingerprint:   nonAnchor,
		WeightedScoreBreakdown: score.Breakdown,
		ScoreMode:              string(score.Mode),
		SemanticData:           semantic.AnnotationsToSemanticData(recordAnns, nil),
	}
}

// betterAnchor reports whether candidate outranks current as the window's
// anchor: highest anchor_priority artifact present, tie-broken by earliest
// timestamp.
func betterAnchor(current, candidate windowRow, priority []string) bool {
	cr := engine.AnchorPriorityRank(priority, current.artifact)
	kr := engine.AnchorPriorityRank(priority, candidate.artifact)
	if kr != cr {
		return kr < cr
	}
	return candidate.row.Timestamp.Before(current.row.Timestamp)
}

// loadWindowRows queries loader for rows within [start,end), discarding any
// row whose timestamp could not be parsed (it cannot be placed in a window)
// or that fails the caller's global time filter.
func loadWindowRows(ctx context.Context, loader feather.Loader, start, end time.Time, filters *correlation.FilterConfig) ([]feather.Row, error) {
	it, err := loader.Query(ctx, feather.QueryOptions{TimeStart: &start, TimeEnd: &end})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var rows []feather.Row
	for {
		row, ok, err := it.Next(ctx)
		if err != nil {
			return rows, err
		}
		if !ok {
			break
		}
		if !row.HasTime || !engine.ApplyTimeFilter(filters, row.Timestamp) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// publish is a nil-safe wrapper around Publisher.Publish so every call site
// in this file doesn't need to check for a caller that opted out of
// progress events.
func publish(pub *runtime.Publisher, wingID string, t runtime.EventType, payload map[string]interface{}) {
	if pub == nil {
		return
	}
	pub.Publish(runtime.Event{Type: t, WingID: wingID, Payload: payload})
}
