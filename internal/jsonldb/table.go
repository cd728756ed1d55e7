package jsonldb

import (
	"bufio"
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/maruel/ksid"
)

// Row is implemented by types stored in a [Table].
type Row[T any] interface {
	// Clone returns a deep copy so cached rows never escape by reference.
	Clone() T
	// GetID returns the row's primary key.
	GetID() ksid.ID
}

// TableObserver receives notifications for every table mutation. Observers
// are invoked under the table's write lock and must not call back into the
// table.
type TableObserver[T Row[T]] interface {
	OnAppend(row T)
	OnUpdate(prev, curr T)
	OnDelete(row T)
}

// Table handles storage and in-memory caching for a single table in JSONL
// format. The first line of the backing file is a schema header.
type Table[T Row[T]] struct {
	path   string
	header schemaHeader

	mu        sync.RWMutex
	rows      []T
	byID      map[ksid.ID]int
	observers []TableObserver[T]
}

// NewTable creates a new Table and loads all data from the file. A missing
// file is created with only the schema header.
func NewTable[T Row[T]](path string) (*Table[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	columns, err := schemaFromType[T]()
	if err != nil {
		return nil, fmt.Errorf("failed to derive schema for %s: %w", path, err)
	}

	t := &Table[T]{
		path:   path,
		header: schemaHeader{Version: currentVersion, Columns: columns},
		byID:   make(map[ksid.ID]int),
	}
	if err := t.load(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table[T]) load() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			t.rows = []T{}
			return t.writeAllLocked()
		}
		return fmt.Errorf("failed to open table file %s: %w", t.path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read table file %s: %w", t.path, err)
		}
		// Empty file, treat as new.
		t.rows = []T{}
		return t.writeAllLocked()
	}
	var header schemaHeader
	if err := json.Unmarshal(scanner.Bytes(), &header); err != nil {
		return fmt.Errorf("failed to unmarshal schema header in %s: %w", t.path, err)
	}
	if err := header.Validate(); err != nil {
		return fmt.Errorf("invalid schema header in %s: %w", t.path, err)
	}

	var rows []T
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var row T
		if err := json.Unmarshal(line, &row); err != nil {
			return fmt.Errorf("failed to unmarshal row in %s: %w", t.path, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read table file %s: %w", t.path, err)
	}

	// Rows out of order happen after clock drift or manual edits.
	if !slices.IsSortedFunc(rows, compareRows[T]) {
		slices.SortFunc(rows, compareRows[T])
	}

	t.rows = rows
	t.reindexLocked()
	return nil
}

func compareRows[T Row[T]](a, b T) int {
	if a.GetID() < b.GetID() {
		return -1
	}
	if a.GetID() > b.GetID() {
		return 1
	}
	return 0
}

func (t *Table[T]) reindexLocked() {
	clear(t.byID)
	for i, row := range t.rows {
		t.byID[row.GetID()] = i
	}
}

// writeAllLocked rewrites the entire file: schema header then all rows.
func (t *Table[T]) writeAllLocked() error {
	f, err := os.Create(t.path)
	if err != nil {
		return fmt.Errorf("failed to create table file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	if err := enc.Encode(&t.header); err != nil {
		return fmt.Errorf("failed to write schema header: %w", err)
	}
	for _, row := range t.rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	return nil
}

// AddObserver registers an observer and replays OnAppend for every existing
// row so the observer starts in sync.
func (t *Table[T]) AddObserver(obs TableObserver[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, obs)
	for _, row := range t.rows {
		obs.OnAppend(row)
	}
}

// Len returns the number of rows.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Get returns a clone of the row with the given ID, or the zero value if not
// found.
func (t *Table[T]) Get(id ksid.ID) T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.byID[id]
	if !ok {
		var zero T
		return zero
	}
	return t.rows[i].Clone()
}

// All returns an iterator over clones of all rows in ID order.
func (t *Table[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		t.mu.RLock()
		defer t.mu.RUnlock()
		for _, row := range t.rows {
			if !yield(row.Clone()) {
				return
			}
		}
	}
}

// Append adds a new row to the table and persists it. The row's ID must not
// already exist.
func (t *Table[T]) Append(row T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := row.GetID()
	if id.IsZero() {
		return fmt.Errorf("row has zero ID")
	}
	if _, ok := t.byID[id]; ok {
		return fmt.Errorf("row %s already exists", id)
	}

	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to marshal row: %w", err)
	}

	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open table file for append: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	if _, err := f.WriteString("\n"); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	t.rows = append(t.rows, row)
	t.byID[id] = len(t.rows) - 1
	for _, obs := range t.observers {
		obs.OnAppend(row)
	}
	return nil
}

// Update replaces the row with the same ID and persists the table.
func (t *Table[T]) Update(row T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.byID[row.GetID()]
	if !ok {
		return fmt.Errorf("row %s not found", row.GetID())
	}
	prev := t.rows[i]
	t.rows[i] = row
	if err := t.writeAllLocked(); err != nil {
		t.rows[i] = prev
		return err
	}
	for _, obs := range t.observers {
		obs.OnUpdate(prev, row)
	}
	return nil
}

// Modify atomically applies fn to the row with the given ID and persists the
// result. fn receives a clone; returning an error aborts without writing.
func (t *Table[T]) Modify(id ksid.ID, fn func(row T) error) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	i, ok := t.byID[id]
	if !ok {
		return zero, fmt.Errorf("row %s not found", id)
	}
	prev := t.rows[i]
	curr := prev.Clone()
	if err := fn(curr); err != nil {
		return zero, err
	}
	if curr.GetID() != id {
		return zero, fmt.Errorf("row ID must not change")
	}
	t.rows[i] = curr
	if err := t.writeAllLocked(); err != nil {
		t.rows[i] = prev
		return zero, err
	}
	for _, obs := range t.observers {
		obs.OnUpdate(prev, curr)
	}
	return curr.Clone(), nil
}

// Delete removes the row with the given ID and persists the table.
func (t *Table[T]) Delete(id ksid.ID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.byID[id]
	if !ok {
		return fmt.Errorf("row %s not found", id)
	}
	prev := t.rows[i]
	t.rows = slices.Delete(t.rows, i, i+1)
	t.reindexLocked()
	if err := t.writeAllLocked(); err != nil {
		t.rows = slices.Insert(t.rows, i, prev)
		t.reindexLocked()
		return err
	}
	for _, obs := range t.observers {
		obs.OnDelete(prev)
	}
	return nil
}
