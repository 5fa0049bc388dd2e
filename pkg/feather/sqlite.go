package feather

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"wingspan/pkg/record"
	"wingspan/pkg/timeparse"
)

// timestampColumnCandidates is tried, exact match first, then substring
// match, to discover which physical column holds the timestamp.
var timestampColumnCandidates = []string{
	"timestamp", "last_executed", "last_modified", "last_written",
	"created_timestamp", "event_time", "last_run_time", "run_time",
	"modified_time", "access_time", "creation_time", "time",
}

var nameColumnCandidates = []string{"name", "file_name", "filename", "process_name", "executable_name", "application_name"}
var pathColumnCandidates = []string{"path", "full_path", "file_path", "target_path"}
var hashColumnCandidates = []string{"hash", "sha1", "sha256", "md5"}

// SQLiteLoader implements Loader against a feather database opened with the
// pure-Go modernc.org/sqlite driver.
type SQLiteLoader struct {
	ref     FeatherRef
	db      *sql.DB
	cols    Columns
	logger  *slog.Logger
	parser  *timeparse.Parser
	allCols []string
}

// Open verifies the file is a valid database, that the expected data table
// exists and is non-empty, and that a timestamp column is discoverable. It
// creates an index on the timestamp column if one does not already exist.
func Open(ctx context.Context, ref FeatherRef, parser *timeparse.Parser) (*SQLiteLoader, error) {
	if parser == nil {
		parser = timeparse.NewParser()
	}

	db, err := sql.Open("sqlite", ref.DatabasePath)
	if err != nil {
		return nil, &InvalidDatabaseError{Path: ref.DatabasePath, Cause: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &InvalidDatabaseError{Path: ref.DatabasePath, Cause: err}
	}

	l := &SQLiteLoader{
		ref:    ref,
		db:     db,
		parser: parser,
		logger: slog.Default().With("component", "feather.sqlite", "feather_id", ref.FeatherID),
	}

	if err := l.verifyTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := l.detectColumns(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := l.ensureTimestampIndex(ctx); err != nil {
		l.logger.Warn("failed to create timestamp index", "error", err)
	}

	return l, nil
}

func (l *SQLiteLoader) verifyTable(ctx context.Context) error {
	var count int
	err := l.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", l.ref.TableName,
	).Scan(&count)
	if err != nil {
		return &InvalidDatabaseError{Path: l.ref.DatabasePath, Cause: err}
	}
	if count == 0 {
		return &NoDataTableError{Path: l.ref.DatabasePath, Table: l.ref.TableName}
	}

	var rowCount int64
	err = l.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(l.ref.TableName))).Scan(&rowCount)
	if err != nil {
		return &InvalidDatabaseError{Path: l.ref.DatabasePath, Cause: err}
	}
	if rowCount == 0 {
		return &EmptyTableError{Path: l.ref.DatabasePath, Table: l.ref.TableName}
	}
	return nil
}

func (l *SQLiteLoader) detectColumns(ctx context.Context) error {
	rows, err := l.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(l.ref.TableName)))
	if err != nil {
		return &InvalidDatabaseError{Path: l.ref.DatabasePath, Cause: err}
	}
	defer rows.Close()

	var allCols []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return &InvalidDatabaseError{Path: l.ref.DatabasePath, Cause: err}
		}
		allCols = append(allCols, name)
	}
	l.allCols = allCols

	cols := Columns{}
	if v, ok := l.ref.FieldMapping["timestamp"]; ok {
		cols.Timestamp = v
	} else {
		cols.Timestamp = detectColumn(allCols, timestampColumnCandidates)
	}
	if v, ok := l.ref.FieldMapping["name"]; ok {
		cols.Name = v
	} else {
		cols.Name = detectColumn(allCols, nameColumnCandidates)
	}
	if v, ok := l.ref.FieldMapping["path"]; ok {
		cols.Path = v
	} else {
		cols.Path = detectColumn(allCols, pathColumnCandidates)
	}
	if v, ok := l.ref.FieldMapping["hash"]; ok {
		cols.Hash = v
	} else {
		cols.Hash = detectColumn(allCols, hashColumnCandidates)
	}

	if cols.Timestamp == "" {
		return &SchemaDetectionFailedError{Path: l.ref.DatabasePath, Table: l.ref.TableName}
	}
	l.cols = cols
	return nil
}

// detectColumn tries an exact (case-insensitive) match first, then a
// substring match, against the candidate list in order.
func detectColumn(allCols, candidates []string) string {
	lowerAll := make(map[string]string, len(allCols))
	for _, c := range allCols {
		lowerAll[strings.ToLower(c)] = c
	}
	for _, cand := range candidates {
		if actual, ok := lowerAll[cand]; ok {
			return actual
		}
	}
	for _, cand := range candidates {
		for lower, actual := range lowerAll {
			if strings.Contains(lower, cand) {
				return actual
			}
		}
	}
	return ""
}

func (l *SQLiteLoader) ensureTimestampIndex(ctx context.Context) error {
	idxName := fmt.Sprintf("idx_%s_%s_wingspan", l.ref.TableName, l.cols.Timestamp)
	stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
		quoteIdent(idxName), quoteIdent(l.ref.TableName), quoteIdent(l.cols.Timestamp))
	_, err := l.db.ExecContext(ctx, stmt)
	return err
}

// Ref returns the FeatherRef this loader was opened with.
func (l *SQLiteLoader) Ref() FeatherRef { return l.ref }

// Columns returns the discovered logical->physical column mapping.
func (l *SQLiteLoader) Columns() Columns { return l.cols }

// Count returns the total row count of the data table.
func (l *SQLiteLoader) Count(ctx context.Context) (int64, error) {
	var n int64
	err := l.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(l.ref.TableName))).Scan(&n)
	return n, err
}

// TimeRange returns the min/max parseable timestamp in the table, using the
// timestamp index.
func (l *SQLiteLoader) TimeRange(ctx context.Context) (time.Time, time.Time, bool, error) {
	query := fmt.Sprintf("SELECT MIN(%s), MAX(%s) FROM %s",
		quoteIdent(l.cols.Timestamp), quoteIdent(l.cols.Timestamp), quoteIdent(l.ref.TableName))
	var minRaw, maxRaw interface{}
	if err := l.db.QueryRowContext(ctx, query).Scan(&minRaw, &maxRaw); err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	minT, minOK := l.parser.Parse(minRaw)
	maxT, maxOK := l.parser.Parse(maxRaw)
	if !minOK || !maxOK {
		return time.Time{}, time.Time{}, false, nil
	}
	return minT, maxT, true, nil
}

// HasAny reports whether any row's timestamp falls within [start, end).
// The underlying driver resolves this via the timestamp index, making the
// check O(log N) rather than a full table scan.
func (l *SQLiteLoader) HasAny(ctx context.Context, start, end time.Time) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s >= ? AND %s < ? LIMIT 1)",
		quoteIdent(l.ref.TableName), quoteIdent(l.cols.Timestamp), quoteIdent(l.cols.Timestamp))
	var exists int
	err := l.db.QueryRowContext(ctx, query, formatBound(start), formatBound(end)).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists == 1, nil
}

// Query returns a lazily-paginated iterator over rows sorted by timestamp
// ascending, restricted to opts.TimeStart/TimeEnd when set.
func (l *SQLiteLoader) Query(ctx context.Context, opts QueryOptions) (RecordIterator, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	var where []string
	var args []interface{}
	if opts.TimeStart != nil {
		where = append(where, fmt.Sprintf("%s >= ?", quoteIdent(l.cols.Timestamp)))
		args = append(args, formatBound(*opts.TimeStart))
	}
	if opts.TimeEnd != nil {
		where = append(where, fmt.Sprintf("%s < ?", quoteIdent(l.cols.Timestamp)))
		args = append(args, formatBound(*opts.TimeEnd))
	}

	query := fmt.Sprintf("SELECT rowid, * FROM %s", quoteIdent(l.ref.TableName))
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY %s ASC", quoteIdent(l.cols.Timestamp))

	return &sqliteIterator{
		db:        l.db,
		query:     query,
		args:      args,
		batchSize: batchSize,
		cols:      l.cols,
		parser:    l.parser,
	}, nil
}

// Close releases the underlying database connection.
func (l *SQLiteLoader) Close() error { return l.db.Close() }

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func formatBound(t time.Time) string {
	return timeparse.Format(t)
}
