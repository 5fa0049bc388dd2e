package storage

import "wingspan/pkg/correlation"

// BatchSize is the number of matches accumulated in memory before a batch is
// flushed to persistent storage.
const BatchSize = 1000

// StreamingThreshold is the default count of records scanned for a wing
// above which an engine puts its result in streaming mode. Streaming needs a
// Writer: without one the engine records a warning and keeps the result in
// memory, and with one every result streams regardless of this threshold.
const StreamingThreshold = 5000

// PlaceholderExecutionID is the execution id a result row is opened with
// before the owning execution's real id is known. FinalizeResult replaces it.
const PlaceholderExecutionID = "pending"

// Writer persists executions, their per-wing results, and the matches each
// result accumulates. Implementations must be safe for concurrent use by
// multiple wing executions sharing one writer.
type Writer interface {
	// OpenExecution creates an execution row and returns its id.
	OpenExecution(pipelineName, engineType string, totalWings int) (executionID string, err error)

	// OpenResult creates a result row under a placeholder execution id and
	// returns its id, so match appending can begin before the owning
	// execution is finalized.
	OpenResult(wingID, wingName string) (resultID string, err error)

	// AppendMatch buffers m under resultID, flushing to storage once the
	// batch reaches BatchSize.
	AppendMatch(resultID string, m *correlation.CorrelationMatch) error

	// RecordFeatherMetadata records one feather's participation summary for
	// a result.
	RecordFeatherMetadata(resultID, featherID, artifactType string, totalRecords int64) error

	// FinalizeResult flushes any tail batch and updates the result row with
	// the owning execution's real id and final counters.
	FinalizeResult(resultID, executionID string, result *correlation.CorrelationResult) error

	// FinalizeExecution updates the execution row with final totals.
	FinalizeExecution(executionID string, totalMatches int, wasCancelled bool) error

	// Close releases any resources held by the writer.
	Close() error
}
