package runtime

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"wingspan/pkg/feather"
	"wingspan/pkg/record"
)

// WindowKey identifies one (window, feather) bucket of loaded rows within a
// TWSE scan.
type WindowKey struct {
	WindowIndex int
	FeatherID   string
}

// WindowStore is a typed key-value store for a window's loaded rows,
// transparent to the correlation algorithm: TWSE reads and writes through
// this interface without knowing whether the window is resident in memory
// or spilled to disk.
type WindowStore interface {
	Put(key WindowKey, rows []feather.Row) error
	Get(key WindowKey) ([]feather.Row, error)
	Delete(key WindowKey) error
	Close() error
}

// MemoryWindowStore is the default, in-memory backend.
type MemoryWindowStore struct {
	mu   sync.RWMutex
	data map[WindowKey][]feather.Row
}

// NewMemoryWindowStore constructs an empty in-memory store.
func NewMemoryWindowStore() *MemoryWindowStore {
	return &MemoryWindowStore{data: make(map[WindowKey][]feather.Row)}
}

func (s *MemoryWindowStore) Put(key WindowKey, rows []feather.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = rows
	return nil
}

func (s *MemoryWindowStore) Get(key WindowKey) ([]feather.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key], nil
}

func (s *MemoryWindowStore) Delete(key WindowKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryWindowStore) Close() error { return nil }

// spillRow is the on-disk encoding of a feather.Row: record.Record's fields
// are unexported, so rows are flattened to a plain map via ToMap/FromMap
// before being handed to encoding/gob.
type spillRow struct {
	RowID     string
	Timestamp time.Time
	HasTime   bool
	Data      map[string]interface{}
}

// FileWindowStore spills window buckets too large to hold in memory to an
// append-log file plus a small in-memory index recording each bucket's
// offset and length within the log. Entries are written once and read back
// whole; there is no in-place update.
type FileWindowStore struct {
	mu      sync.Mutex
	logFile *os.File
	enc     *gob.Encoder
	offset  int64
	index   map[WindowKey]logEntry
}

type logEntry struct {
	Offset int64
	Length int64
}

// NewFileWindowStore creates the append-log under dir (created if needed).
func NewFileWindowStore(dir string) (*FileWindowStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("runtime: create spill dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "windows.log"), os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("runtime: open spill log: %w", err)
	}
	return &FileWindowStore{
		logFile: f,
		enc:     gob.NewEncoder(f),
		index:   make(map[WindowKey]logEntry),
	}, nil
}

func (s *FileWindowStore) Put(key WindowKey, rows []feather.Row) error {
	payload := make([]spillRow, len(rows))
	for i, r := range rows {
		payload[i] = spillRow{RowID: r.RowID, Timestamp: r.Timestamp, HasTime: r.HasTime, Data: r.Data.ToMap()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Append at the end of the log (a Get may have moved the file position),
	// with a fresh encoder so each entry carries its own type information
	// and decodes on its own.
	before, err := s.logFile.Seek(0, os.SEEK_END)
	if err != nil {
		return fmt.Errorf("runtime: seek spill log: %w", err)
	}
	if err := gob.NewEncoder(s.logFile).Encode(payload); err != nil {
		return fmt.Errorf("runtime: encode spill entry: %w", err)
	}
	after, err := s.logFile.Seek(0, os.SEEK_CUR)
	if err != nil {
		return fmt.Errorf("runtime: seek spill log: %w", err)
	}
	s.index[key] = logEntry{Offset: before, Length: after - before}
	return nil
}

func (s *FileWindowStore) Get(key WindowKey) ([]feather.Row, error) {
	s.mu.Lock()
	entry, ok := s.index[key]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.logFile.Seek(entry.Offset, os.SEEK_SET); err != nil {
		return nil, fmt.Errorf("runtime: seek spill log: %w", err)
	}
	dec := gob.NewDecoder(bufio.NewReader(s.logFile))
	var payload []spillRow
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("runtime: decode spill entry: %w", err)
	}

	rows := make([]feather.Row, len(payload))
	for i, p := range payload {
		rows[i] = feather.Row{RowID: p.RowID, Timestamp: p.Timestamp, HasTime: p.HasTime, Data: record.FromMap(p.Data)}
	}
	return rows, nil
}

func (s *FileWindowStore) Delete(key WindowKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.index, key)
	return nil
}

func (s *FileWindowStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.logFile.Name()
	if err := s.logFile.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

// TieredWindowStore routes Put calls to an in-memory or file-backed
// WindowStore based on a MemoryBudget, so workers never decide which
// backend to use: the memory manager does. While the budget is exceeded,
// new Puts go to the file-backed store; entries already held in memory are
// not moved and stay there until released.
type TieredWindowStore struct {
	budget  *MemoryBudget
	memory  *MemoryWindowStore
	spill   WindowStore
	mu      sync.Mutex
	sizes   map[WindowKey]int64
}

// NewTieredWindowStore constructs a store that spills to spillDir once
// budget reports pressure.
func NewTieredWindowStore(budget *MemoryBudget, spillDir string) (*TieredWindowStore, error) {
	spill, err := NewFileWindowStore(spillDir)
	if err != nil {
		return nil, err
	}
	return &TieredWindowStore{
		budget: budget,
		memory: NewMemoryWindowStore(),
		spill:  spill,
		sizes:  make(map[WindowKey]int64),
	}, nil
}

func (t *TieredWindowStore) Put(key WindowKey, rows []feather.Row) error {
	var size int64
	for _, r := range rows {
		size += EstimateRowBytes(r.Data.Len())
	}

	if t.budget.Exceeded() {
		if err := t.spill.Put(key, rows); err != nil {
			return &MemoryPressureError{Cause: err}
		}
		t.mu.Lock()
		t.sizes[key] = 0
		t.mu.Unlock()
		return nil
	}

	if err := t.memory.Put(key, rows); err != nil {
		return err
	}
	t.budget.Reserve(size)
	t.mu.Lock()
	t.sizes[key] = size
	t.mu.Unlock()
	return nil
}

func (t *TieredWindowStore) Get(key WindowKey) ([]feather.Row, error) {
	if rows, err := t.memory.Get(key); err == nil && rows != nil {
		return rows, nil
	}
	return t.spill.Get(key)
}

// Release frees key's reservation after the window has finished
// correlating, releasing window-local data once the window completes.
func (t *TieredWindowStore) Release(key WindowKey) {
	t.mu.Lock()
	size := t.sizes[key]
	delete(t.sizes, key)
	t.mu.Unlock()
	t.budget.Release(size)
	t.memory.Delete(key)
	t.spill.Delete(key)
}

func (t *TieredWindowStore) Close() error {
	return t.spill.Close()
}
