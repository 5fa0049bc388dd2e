package feather

import (
	"context"
	"time"

	"wingspan/pkg/record"
)

// FeatherRef is created externally (by the feather-construction
// collaborator) and consumed read-only by the core. One instance exists per
// feather per execution.
type FeatherRef struct {
	FeatherID    string
	ArtifactType string
	DatabasePath string
	TableName    string
	// FieldMapping maps a logical name ("timestamp", "name", "path", "hash")
	// to the physical column name, when known ahead of time. Any logical
	// name absent from the map is discovered via column detection
	// (detectColumns).
	FieldMapping map[string]string
}

// Columns is the discovered (or configured) logical->physical column
// mapping for a feather's data table.
type Columns struct {
	Timestamp string
	Name      string
	Path      string
	Hash      string
}

// QueryOptions narrows a Query call to a time range and a batch size for
// lazy pagination.
type QueryOptions struct {
	TimeStart *time.Time
	TimeEnd   *time.Time
	BatchSize int
}

// Row is one record returned by a query, carrying its row identifier and
// (if parseable) its timestamp alongside the raw field data.
type Row struct {
	RowID     string
	Timestamp time.Time
	HasTime   bool
	Data      *record.Record
}

// RecordIterator is a lazy, ordered (by timestamp ascending) sequence of
// rows produced by a query.
type RecordIterator interface {
	Next(ctx context.Context) (Row, bool, error)
	Close() error
}

// Loader provides indexed, filtered access to one feather database.
type Loader interface {
	Ref() FeatherRef
	Columns() Columns
	Count(ctx context.Context) (int64, error)
	TimeRange(ctx context.Context) (min, max time.Time, ok bool, err error)
	Query(ctx context.Context, opts QueryOptions) (RecordIterator, error)
	// HasAny reports whether at least one row falls within [start, end).
	// Implementations use the timestamp index so this is O(log N).
	HasAny(ctx context.Context, start, end time.Time) (bool, error)
	Close() error
}
