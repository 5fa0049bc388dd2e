package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"wingspan/pkg/correlation"
)

// SQLiteConfig configures the results-database writer.
type SQLiteConfig struct {
	Path         string
	MaxOpenConns int
	WALMode      bool
	BusyTimeout  time.Duration
}

// DefaultSQLiteConfig returns sensible defaults for the results database.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/results.db",
		MaxOpenConns: 4,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

type pendingBatch struct {
	mu      sync.Mutex
	wingID  string
	matches []*correlation.CorrelationMatch
}

// SQLiteWriter is the streaming results writer. Once it is supplied to an
// engine as its Writer, every wing result streams to it, whatever the
// streaming threshold. It is the pkg domain's use of
// github.com/mattn/go-sqlite3, the cgo driver, reserved for result writes so
// the pure-Go modernc.org/sqlite driver can stay on the hot feather-read
// path.
type SQLiteWriter struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger

	mu      sync.Mutex
	batches map[string]*pendingBatch // resultID -> pending batch
}

// NewSQLiteWriter opens (creating if necessary) the results database at
// config.Path and ensures its schema is current.
func NewSQLiteWriter(config *SQLiteConfig) (*SQLiteWriter, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	logger := slog.Default().With("component", "correlation.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, fmt.Errorf("storage: open results database %q: %w", config.Path, err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	w := &SQLiteWriter{db: db, config: config, logger: logger, batches: make(map[string]*pendingBatch)}
	if err := w.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("results database initialized", "path", config.Path, "wal_mode", config.WALMode)
	return w, nil
}

func (w *SQLiteWriter) initialize() error {
	if w.config.WALMode {
		if _, err := w.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("storage: enable WAL mode: %w", err)
		}
	}
	busyMs := w.config.BusyTimeout.Milliseconds()
	if _, err := w.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyMs)); err != nil {
		return fmt.Errorf("storage: set busy timeout: %w", err)
	}
	if _, err := w.db.Exec(Schema); err != nil {
		return fmt.Errorf("storage: create schema: %w", err)
	}
	if _, err := w.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return fmt.Errorf("storage: insert schema version: %w", err)
	}
	var version int
	if err := w.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("storage: read schema version: %w", err)
	}
	if version != SchemaVersion {
		return fmt.Errorf("storage: schema version mismatch: expected %d, got %d", SchemaVersion, version)
	}
	return nil
}

// OpenExecution creates an execution row and returns its id.
func (w *SQLiteWriter) OpenExecution(pipelineName, engineType string, totalWings int) (string, error) {
	executionID := uuid.NewString()
	_, err := w.db.Exec(
		`INSERT INTO executions (execution_id, pipeline_name, started_at, engine_type, total_wings) VALUES (?, ?, ?, ?, ?)`,
		executionID, pipelineName, time.Now().UTC(), engineType, totalWings,
	)
	if err != nil {
		return "", fmt.Errorf("storage: open execution: %w", err)
	}
	return executionID, nil
}

// OpenResult creates a result row under PlaceholderExecutionID.
func (w *SQLiteWriter) OpenResult(wingID, wingName string) (string, error) {
	resultID := uuid.NewString()
	_, err := w.db.Exec(
		`INSERT INTO results (result_id, execution_id, wing_id, wing_name) VALUES (?, ?, ?, ?)`,
		resultID, PlaceholderExecutionID, wingID, wingName,
	)
	if err != nil {
		return "", fmt.Errorf("storage: open result: %w", err)
	}
	w.mu.Lock()
	w.batches[resultID] = &pendingBatch{wingID: wingID}
	w.mu.Unlock()
	return resultID, nil
}

// AppendMatch buffers m, flushing the batch once it reaches BatchSize.
func (w *SQLiteWriter) AppendMatch(resultID string, m *correlation.CorrelationMatch) error {
	w.mu.Lock()
	batch, ok := w.batches[resultID]
	w.mu.Unlock()
	if !ok {
		return fmt.Errorf("storage: append match: unknown result %q", resultID)
	}

	batch.mu.Lock()
	batch.matches = append(batch.matches, m)
	shouldFlush := len(batch.matches) >= BatchSize
	var toFlush []*correlation.CorrelationMatch
	if shouldFlush {
		toFlush = batch.matches
		batch.matches = nil
	}
	batch.mu.Unlock()

	if shouldFlush {
		return w.flushBatch(resultID, toFlush)
	}
	return nil
}

func (w *SQLiteWriter) flushBatch(resultID string, matches []*correlation.CorrelationMatch) error {
	if len(matches) == 0 {
		return nil
	}
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: begin batch transaction: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO matches (
			match_id, result_id, timestamp, match_score, feather_count, time_spread_seconds,
			anchor_feather_id, anchor_artifact_type, matched_application, matched_file_path,
			feather_records_blob, score_breakdown_blob, semantic_blob, score_mode
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("storage: prepare match insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range matches {
		recordsBlob, err := marshalFeatherRecords(m)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("storage: marshal feather records: %w", err)
		}
		breakdownBlob, _ := json.Marshal(m.WeightedScoreBreakdown)
		var semanticBlob []byte
		if m.SemanticData != nil {
			semanticBlob, _ = json.Marshal(m.SemanticData)
		}
		_, err = stmt.Exec(
			m.MatchID, resultID, m.Timestamp, m.MatchScore, m.FeatherCount, m.TimeSpreadSeconds,
			m.AnchorFeatherID, m.AnchorArtifactType, nullableString(m.MatchedApplication), nullableString(m.MatchedFilePath),
			recordsBlob, breakdownBlob, semanticBlob, m.ScoreMode,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("storage: insert match %s: %w", m.MatchID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit batch transaction: %w", err)
	}
	return nil
}

func marshalFeatherRecords(m *correlation.CorrelationMatch) ([]byte, error) {
	out := make(map[string]map[string]interface{}, len(m.FeatherRecords))
	for featherID, rec := range m.FeatherRecords {
		out[featherID] = rec.ToMap()
	}
	return json.Marshal(out)
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// RecordFeatherMetadata records one feather's participation summary.
func (w *SQLiteWriter) RecordFeatherMetadata(resultID, featherID, artifactType string, totalRecords int64) error {
	_, err := w.db.Exec(
		`INSERT INTO feather_metadata (result_id, feather_id, artifact_type, total_records) VALUES (?, ?, ?, ?)
		 ON CONFLICT(result_id, feather_id) DO UPDATE SET total_records = excluded.total_records`,
		resultID, featherID, artifactType, totalRecords,
	)
	if err != nil {
		return fmt.Errorf("storage: record feather metadata: %w", err)
	}
	return nil
}

// FinalizeResult flushes any tail batch and updates the result row.
func (w *SQLiteWriter) FinalizeResult(resultID, executionID string, result *correlation.CorrelationResult) error {
	w.mu.Lock()
	batch, ok := w.batches[resultID]
	delete(w.batches, resultID)
	w.mu.Unlock()
	if ok {
		batch.mu.Lock()
		tail := batch.matches
		batch.matches = nil
		batch.mu.Unlock()
		if err := w.flushBatch(resultID, tail); err != nil {
			return err
		}
	}

	errorsBlob, _ := json.Marshal(result.Errors)
	warningsBlob, _ := json.Marshal(result.Warnings)
	_, err := w.db.Exec(
		`UPDATE results SET
			execution_id = ?, total_matches = ?, feathers_processed = ?, total_records_scanned = ?,
			duplicates_prevented = ?, matches_failed_validation = ?, execution_duration_ms = ?,
			errors = ?, warnings = ?, streaming_mode = ?, was_cancelled = ?
		 WHERE result_id = ?`,
		executionID, result.TotalMatches, result.FeathersProcessed, result.TotalRecordsScanned,
		result.DuplicatesPrevented, result.MatchesFailedValidation, result.ExecutionDuration.Milliseconds(),
		string(errorsBlob), string(warningsBlob), result.StreamingMode, result.WasCancelled,
		resultID,
	)
	if err != nil {
		return fmt.Errorf("storage: finalize result %s: %w", resultID, err)
	}
	return nil
}

// FinalizeExecution updates the execution row with final totals.
func (w *SQLiteWriter) FinalizeExecution(executionID string, totalMatches int, wasCancelled bool) error {
	_, err := w.db.Exec(
		`UPDATE executions SET finished_at = ?, total_matches = ?, was_cancelled = ? WHERE execution_id = ?`,
		time.Now().UTC(), totalMatches, wasCancelled, executionID,
	)
	if err != nil {
		return fmt.Errorf("storage: finalize execution %s: %w", executionID, err)
	}
	return nil
}

// Close closes the underlying database handle.
func (w *SQLiteWriter) Close() error {
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("storage: close results database: %w", err)
	}
	return nil
}

// Ping verifies the results database connection is alive, for use as a
// health check component.
func (w *SQLiteWriter) Ping(ctx context.Context) error {
	return w.db.PingContext(ctx)
}
