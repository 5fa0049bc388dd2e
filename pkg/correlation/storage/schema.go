package storage

// SchemaVersion is the current results-database schema version, recorded in
// an integer schema_version row. No migration between versions is
// performed: opening a database with a different version is an error.
const SchemaVersion = 1

// Schema contains the SQL statements that create the results database.
const Schema = `
CREATE TABLE IF NOT EXISTS executions (
    execution_id TEXT PRIMARY KEY,
    pipeline_name TEXT NOT NULL,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,
    engine_type TEXT NOT NULL,
    total_wings INTEGER NOT NULL DEFAULT 0,
    total_matches INTEGER NOT NULL DEFAULT 0,
    was_cancelled BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS results (
    result_id TEXT PRIMARY KEY,
    execution_id TEXT NOT NULL,
    wing_id TEXT NOT NULL,
    wing_name TEXT NOT NULL,
    total_matches INTEGER NOT NULL DEFAULT 0,
    feathers_processed INTEGER NOT NULL DEFAULT 0,
    total_records_scanned INTEGER NOT NULL DEFAULT 0,
    duplicates_prevented INTEGER NOT NULL DEFAULT 0,
    matches_failed_validation INTEGER NOT NULL DEFAULT 0,
    execution_duration_ms INTEGER NOT NULL DEFAULT 0,
    errors TEXT,
    warnings TEXT,
    streaming_mode BOOLEAN NOT NULL DEFAULT 0,
    was_cancelled BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS matches (
    match_id TEXT PRIMARY KEY,
    result_id TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    match_score REAL NOT NULL,
    feather_count INTEGER NOT NULL,
    time_spread_seconds REAL NOT NULL,
    anchor_feather_id TEXT NOT NULL,
    anchor_artifact_type TEXT,
    matched_application TEXT,
    matched_file_path TEXT,
    feather_records_blob BLOB NOT NULL,
    score_breakdown_blob BLOB,
    semantic_blob BLOB,
    score_mode TEXT
);

CREATE TABLE IF NOT EXISTS feather_metadata (
    result_id TEXT NOT NULL,
    feather_id TEXT NOT NULL,
    artifact_type TEXT NOT NULL,
    total_records INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (result_id, feather_id)
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_execution_id ON results(execution_id);
CREATE INDEX IF NOT EXISTS idx_matches_result_id ON matches(result_id);
CREATE INDEX IF NOT EXISTS idx_matches_timestamp ON matches(timestamp);
CREATE INDEX IF NOT EXISTS idx_feather_metadata_result_id ON feather_metadata(result_id);
`

// InsertSchemaVersion records the schema version the first time a database
// is initialized; subsequent opens are no-ops against the same version.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the highest applied schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
