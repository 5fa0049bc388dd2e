package feather

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"wingspan/pkg/record"
	"wingspan/pkg/timeparse"
)

// sqliteIterator lazily streams rows from an already-built SQL query,
// converting each row into a record.Record keyed by column name.
type sqliteIterator struct {
	db        *sql.DB
	query     string
	args      []interface{}
	batchSize int
	cols      Columns
	parser    *timeparse.Parser

	rows    *sql.Rows
	colspec []string
	err     error
}

func (it *sqliteIterator) ensureOpen(ctx context.Context) error {
	if it.rows != nil || it.err != nil {
		return it.err
	}
	rows, err := it.db.QueryContext(ctx, it.query, it.args...)
	if err != nil {
		it.err = fmt.Errorf("feather query: %w", err)
		return it.err
	}
	colspec, err := rows.Columns()
	if err != nil {
		rows.Close()
		it.err = fmt.Errorf("feather query columns: %w", err)
		return it.err
	}
	it.rows = rows
	it.colspec = colspec
	return nil
}

// Next advances to the next row. ok is false once the iterator is
// exhausted; err is non-nil only on a genuine I/O or scan failure.
func (it *sqliteIterator) Next(ctx context.Context) (Row, bool, error) {
	if err := it.ensureOpen(ctx); err != nil {
		return Row{}, false, err
	}

	select {
	case <-ctx.Done():
		return Row{}, false, ctx.Err()
	default:
	}

	if !it.rows.Next() {
		if err := it.rows.Err(); err != nil {
			return Row{}, false, err
		}
		return Row{}, false, nil
	}

	vals := make([]interface{}, len(it.colspec))
	ptrs := make([]interface{}, len(it.colspec))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := it.rows.Scan(ptrs...); err != nil {
		return Row{}, false, err
	}

	rec := record.New()
	var rowID string
	var tsRaw interface{}
	for i, col := range it.colspec {
		v := normalizeSQLValue(vals[i])
		if col == "rowid" {
			rowID = fmt.Sprint(v)
			continue
		}
		rec.Set(col, record.FromAny(v))
		if col == it.cols.Timestamp {
			tsRaw = v
		}
	}
	if rowID == "" {
		rowID = strconv.Itoa(int(len(it.colspec)))
	}

	row := Row{RowID: rowID, Data: rec}
	if tsRaw != nil {
		if t, ok := it.parser.Parse(tsRaw); ok {
			row.Timestamp = t
			row.HasTime = true
		}
	}
	return row, true, nil
}

// Close releases the underlying rows handle.
func (it *sqliteIterator) Close() error {
	if it.rows != nil {
		return it.rows.Close()
	}
	return nil
}

// normalizeSQLValue converts driver-returned values ([]byte for text,
// int64, float64, nil) into the plain Go types record.FromAny expects.
func normalizeSQLValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return string(val)
	default:
		return val
	}
}
