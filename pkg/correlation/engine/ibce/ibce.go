package ibce

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

// Options is a plain alias for the shared engine.Options: unlike twse, ibce
// has no variant-specific knob.
type Options = engine.Options

// Engine is the IBCE implementation of engine.Engine.
type Engine struct {
	opts *Options

	mu      sync.Mutex
	results []*correlation.CorrelationResult
	stats   engine.Statistics
}

// New constructs an IBCE engine bound to opts.
func New(opts *Options) *Engine {
	return &Engine{opts: opts}
}

// Metadata describes the IBCE variant.
func (e *Engine) Metadata() engine.Metadata {
	return engine.Metadata{
		Name:        "identity_based",
		Description: "Clusters evidence by normalized identity first, then groups each identity's evidence into temporal anchors.",
		Complexity:  "O(N log N) amortized, dominated by the per-identity sort",
		UseCases: []string{
			"tracking one entity (executable, path, hash) across its full lifetime",
			"identities that recur in short bursts separated by long gaps",
			"investigations scoped by filters.identity_filters",
		},
		SupportsIdentityFilter: true,
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

// Execute runs the IBCE algorithm over wings.
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

// identRow is one loaded row tagged with the feather and identity it was
// attributed to. Rows without a parseable timestamp still carry identity
// (they are supporting evidence, not timeline anchors).
type identRow struct {
	featherID string
	artifact  string
	row       feather.Row
}

func (r identRow) timestamp() time.Time { return r.row.Timestamp }

// safeResult serializes warning/error appends onto a CorrelationResult
// shared across concurrent identity workers.
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
// condition; everything recoverable is folded into the result.
func (e *Engine) executeWing(ctx context.Context, wing *correlation.Wing) (*correlation.CorrelationResult, error) {
	start := time.Now()
	logger := e.opts.EffectiveLogger().With("component", "engine.ibce", "wing_id", wing.WingID)
	result := &correlation.CorrelationResult{WingID: wing.WingID, WingName: wing.WingName}
	sr := &safeResult{r: result}
	publish(e.opts.Progress, wing.WingID, runtime.EventLoadStarted, nil)

	loaders, warnings := engine.OpenFeathers(ctx, wing.FeatherIDs(), e.opts.Feathers, e.opts.Parser, logger)
	defer engine.CloseAll(loaders)
	result.Warnings = append(result.Warnings, warnings...)
	result.FeathersProcessed = len(loaders)

	if len(loaders) == 0 {
		result.Errors = append(result.Errors, "no feathers available for wing")
		result.ExecutionDuration = time.Since(start)
		return result, nil
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

	extractor := identity.NewExtractor(e.opts.IdentityRegistry)

	identities := make(map[string][]identRow)
	for fid, loader := range loaders {
		rows, err := loadFilteredRows(ctx, loader, e.opts.Filters)
		if err != nil {
			sr.warn(fmt.Sprintf("feather %q: load failed: %v", fid, err))
			continue
		}
		artifact := loader.Ref().ArtifactType
		for _, row := range rows {
			key, err := extractor.Extract(row.Data, artifact)
			if err != nil {
				continue // identity rejected: row contributes to no identity
			}
			if !engine.MatchesIdentityFilter(e.opts.Filters, key.NormalizedValue) {
				continue
			}
			identities[key.NormalizedValue] = append(identities[key.NormalizedValue], identRow{featherID: fid, artifact: artifact, row: row})
		}
	}

	type identityTask struct {
		key  string
		rows []identRow
	}
	tasks := make([]identityTask, 0, len(identities))
	for key, rows := range identities {
		tasks = append(tasks, identityTask{key: key, rows: rows})
	}
	// Deterministic task ordering before weight-sort, so otherwise-equal
	// weights don't depend on Go's randomized map iteration.
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].key < tasks[j].key })

	var failedValidation int64
	poolTasks := make([]runtime.WindowTask[correlation.CorrelationMatch], 0, len(tasks))
	for i, t := range tasks {
		t := t
		idx := i
		poolTasks = append(poolTasks, runtime.WindowTask[correlation.CorrelationMatch]{
			Index:  idx,
			Weight: len(t.rows),
			Run: func(taskCtx context.Context) ([]correlation.CorrelationMatch, error) {
				if e.opts.Cancel.IsCancelled() {
					return nil, nil
				}
				publish(e.opts.Progress, wing.WingID, runtime.EventIdentityProgress, map[string]interface{}{"identity": t.key})
				return e.correlateIdentity(wing, t.key, t.rows, &failedValidation), nil
			},
		})
	}

	pool := runtime.NewWindowPool[correlation.CorrelationMatch](e.opts.EffectiveWorkers(8))
	identityResults, _ := pool.Run(ctx, poolTasks, e.opts.Cancel)

	var rawMatches []correlation.CorrelationMatch
	for _, ir := range identityResults {
		rawMatches = append(rawMatches, ir.Items...)
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

// correlateIdentity clusters one identity's rows into temporal anchors and
// emits a validated match for every anchor spanning at least
// wing.MinimumMatches+1 distinct feathers.
func (e *Engine) correlateIdentity(wing *correlation.Wing, normalizedValue string, rows []identRow, failedValidation *int64) []correlation.CorrelationMatch {
	var timed, untimed []identRow
	for _, r := range rows {
		if r.row.HasTime {
			timed = append(timed, r)
		} else {
			untimed = append(untimed, r)
		}
	}
	if len(timed) == 0 {
		// Nothing to anchor a time span to; untimed-only identities
		// contribute no match, since a cluster needs at least one
		// timestamp to exist.
		return nil
	}

	sort.Slice(timed, func(i, j int) bool { return timed[i].row.Timestamp.Before(timed[j].row.Timestamp) })

	// Each cluster chains from its own start: a row joins the current
	// cluster only while it stays within TimeWindow of that cluster's
	// first row, not merely its immediate predecessor, so a slow drift
	// across many closely-spaced rows still splits into separate anchors.
	var clusters [][]identRow
	current := []identRow{timed[0]}
	for _, r := range timed[1:] {
		anchorStart := current[0]
		if r.row.Timestamp.Sub(anchorStart.row.Timestamp) > wing.TimeWindow {
			clusters = append(clusters, current)
			current = []identRow{r}
			continue
		}
		current = append(current, r)
	}
	clusters = append(clusters, current)

	// Supporting (untimed) rows attach to the identity's first anchor; an
	// identity with no anchors never reaches this point, so there is
	// always one to attach to.
	if len(untimed) > 0 {
		clusters[0] = append(clusters[0], untimed...)
	}

	identityID := uuid.NewString()
	fullIdentity := &correlation.Identity{
		IdentityID:      identityID,
		NormalizedValue: normalizedValue,
		FirstSeen:       timed[0].row.Timestamp,
		LastSeen:        timed[len(timed)-1].row.Timestamp,
	}

	var matches []correlation.CorrelationMatch
	for _, cluster := range clusters {
		var clusterTimed, clusterUntimed []identRow
		for _, r := range cluster {
			if r.row.HasTime {
				clusterTimed = append(clusterTimed, r)
			} else {
				clusterUntimed = append(clusterUntimed, r)
			}
		}

		// Only timed rows participate in the spread check: an untimed
		// row's zero Timestamp would otherwise masquerade as a genuine
		// outlier and distort the midpoint.
		trimmedTimed, ok := engine.TrimToSpread(clusterTimed, identRow.timestamp, wing.TimeWindow, wing.MinimumMatches+1)
		if !ok {
			atomic.AddInt64(failedValidation, 1)
			continue
		}
		trimmed := append(trimmedTimed, clusterUntimed...)

		primaries := selectPrimaries(trimmed)
		if len(primaries) < wing.MinimumMatches+1 {
			atomic.AddInt64(failedValidation, 1)
			continue
		}

		anchor := buildAnchor(identityID, primaries)
		fullIdentity.Anchors = append(fullIdentity.Anchors, anchor)

		matches = append(matches, buildMatch(wing, primaries, fullIdentity, e.opts.ScoringConfig, e.opts.Semantic))
	}

	return matches
}

// selectPrimaries picks one representative row per feather within a
// cluster: rows with a parsed timestamp outrank rows without one, then the
// row with the most populated fields, then the earliest timestamp.
func selectPrimaries(cluster []identRow) []identRow {
	byFeather := make(map[string]identRow)
	for _, r := range cluster {
		existing, ok := byFeather[r.featherID]
		if !ok || richerPrimary(r, existing) {
			byFeather[r.featherID] = r
		}
	}
	out := make([]identRow, 0, len(byFeather))
	for _, r := range byFeather {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].featherID < out[j].featherID })
	return out
}

func richerPrimary(candidate, current identRow) bool {
	if candidate.row.HasTime != current.row.HasTime {
		return candidate.row.HasTime
	}
	if candidate.row.Data.Len() != current.row.Data.Len() {
		return candidate.row.Data.Len() > current.row.Data.Len()
	}
	if !candidate.row.HasTime {
		return false
	}
	return candidate.row.Timestamp.Before(current.row.Timestamp)
}

// buildAnchor converts one cluster's primaries into the persistent Anchor
// model, used both for the match's provenance and for semantic.AnnotateIdentity.
func buildAnchor(identityID string, primaries []identRow) *correlation.Anchor {
	anchor := &correlation.Anchor{
		AnchorID:   uuid.NewString(),
		IdentityID: identityID,
	}
	haveSpan := false
	for i, r := range primaries {
		var ts *time.Time
		if r.row.HasTime {
			t := r.row.Timestamp
			ts = &t
			if !haveSpan || t.Before(anchor.StartTime) {
				anchor.StartTime = t
			}
			if !haveSpan || t.After(anchor.EndTime) {
				anchor.EndTime = t
			}
			haveSpan = true
		}
		role := correlation.RoleSecondary
		if i == 0 {
			role = correlation.RolePrimary
		}
		anchor.Rows = append(anchor.Rows, correlation.EvidenceRow{
			FeatherID:    r.featherID,
			RowID:        r.row.RowID,
			Timestamp:    ts,
			Role:         role,
			OriginalData: r.row.Data,
			IdentityID:   identityID,
			AnchorID:     anchor.AnchorID,
		})
	}
	return anchor
}

// buildMatch assembles the observable CorrelationMatch for one validated
// anchor, applying both record- and identity-level semantic annotation
// since ibce (unlike twse) builds a real, persistent Identity.
func buildMatch(wing *correlation.Wing, primaries []identRow, ident *correlation.Identity, scoringCfg *scoring.Config, mapper *semantic.Mapper) correlation.CorrelationMatch {
	matchedFeathers := make(map[string]bool, len(primaries))
	anchorIdx := 0
	for i, r := range primaries {
		matchedFeathers[r.featherID] = true
		if i != anchorIdx && engine.AnchorPriorityRank(wing.AnchorPriority, r.artifact) < engine.AnchorPriorityRank(wing.AnchorPriority, primaries[anchorIdx].artifact) {
			anchorIdx = i
		}
	}
	anchorRow := primaries[anchorIdx]

	var lo, hi time.Time
	haveSpan := false
	for _, r := range primaries {
		if !r.row.HasTime {
			continue
		}
		if !haveSpan || r.row.Timestamp.Before(lo) {
			lo = r.row.Timestamp
		}
		if !haveSpan || r.row.Timestamp.After(hi) {
			hi = r.row.Timestamp
		}
		haveSpan = true
	}
	central := lo
	if haveSpan {
		central = lo.Add(hi.Sub(lo) / 2)
	}

	featherRecords := make(map[string]*record.Record, len(primaries))
	var nonAnchor []correlation.FingerprintEntry
	var recordAnns []semantic.Annotation
	for _, r := range primaries {
		featherRecords[r.featherID] = r.row.Data
		if mapper != nil {
			recordAnns = append(recordAnns, mapper.AnnotateRecord(wing.WingID, r.artifact, r.row.Data)...)
		}
		if r.featherID != anchorRow.featherID {
			nonAnchor = append(nonAnchor, correlation.FingerprintEntry{FeatherID: r.featherID, RowID: r.row.RowID})
		}
	}
	sort.Slice(nonAnchor, func(i, j int) bool {
		if nonAnchor[i].FeatherID != nonAnchor[j].FeatherID {
			return nonAnchor[i].FeatherID < nonAnchor[j].FeatherID
		}
		return nonAnchor[i].RowID < nonAnchor[j].RowID
	})

	var identityAnns []semantic.Annotation
	if mapper != nil {
		identityAnns = mapper.AnnotateIdentity(wing.WingID, ident)
	}

	score := scoring.Score(wing, matchedFeathers, scoringCfg)

	return correlation.CorrelationMatch{
		MatchID:                uuid.NewString(),
		Timestamp:              central,
		FeatherRecords:         featherRecords,
		MatchScore:             score.Score,
		FeatherCount:           len(matchedFeathers),
		TimeSpreadSeconds:      hi.Sub(lo).Seconds(),
		AnchorFeatherID:        anchorRow.featherID,
		AnchorArtifactType:     anchorRow.artifact,
		AnchorRowID:            anchorRow.row.RowID,
		NonAnchorFingerprint:   nonAnchor,
		WeightedScoreBreakdown: score.Breakdown,
		ScoreMode:              string(score.Mode),
		SemanticData:           semantic.AnnotationsToSemanticData(recordAnns, identityAnns),
	}
}

// loadFilteredRows queries loader across its full time range (no window
// bound: ibce clusters by identity, not by a fixed sweep), applying the
// caller's time filter inline.
func loadFilteredRows(ctx context.Context, loader feather.Loader, filters *correlation.FilterConfig) ([]feather.Row, error) {
	opts := feather.QueryOptions{}
	if filters != nil {
		opts.TimeStart = filters.TimeStart
		opts.TimeEnd = filters.TimeEnd
	}
	it, err := loader.Query(ctx, opts)
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
		if row.HasTime && !engine.ApplyTimeFilter(filters, row.Timestamp) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// publish is a nil-safe wrapper around Publisher.Publish.
func publish(pub *runtime.Publisher, wingID string, t runtime.EventType, payload map[string]interface{}) {
	if pub == nil {
		return
	}
	pub.Publish(runtime.Event{Type: t, WingID: wingID, Payload: payload})
}
