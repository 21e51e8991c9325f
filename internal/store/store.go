// Package store implements the JSON-file collections behind every record
// type. Each collection is one UTF-8 file holding a flat array of objects;
// every mutation is a whole-file read-modify-write guarded by a mutex.
// Concurrent writers from other processes are not coordinated: the last
// full-collection snapshot written wins.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ErrCorrupt marks a collection file that exists but does not parse. Loading
// must surface this to the operator instead of silently starting empty.
var ErrCorrupt = errors.New("corrupt collection file")

// Collection is a JSON-array-backed list of records of one type.
type Collection[T any] struct {
	mu    sync.Mutex
	path  string
	items []T
}

// Open loads the collection at path. A missing file starts an empty
// collection; an unparseable file fails with ErrCorrupt.
func Open[T any](path string) (*Collection[T], error) {
	c := &Collection[T]{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &c.items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return c, nil
}

// Path returns the backing file path.
func (c *Collection[T]) Path() string {
	return c.path
}

// Len returns the current number of records.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// All returns a copy of every record in insertion order.
func (c *Collection[T]) All() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Find returns the first record matching the predicate.
func (c *Collection[T]) Find(match func(T) bool) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if match(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Filter returns every record matching the predicate, insertion order.
func (c *Collection[T]) Filter(match func(T) bool) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, 0)
	for _, it := range c.items {
		if match(it) {
			out = append(out, it)
		}
	}
	return out
}

// Update runs fn over the full record list and persists the result as the
// new collection snapshot. Returning an error from fn aborts the write and
// leaves the in-memory list untouched.
func (c *Collection[T]) Update(fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	work := make([]T, len(c.items))
	copy(work, c.items)

	next, err := fn(work)
	if err != nil {
		return err
	}
	if err := save(c.path, next); err != nil {
		return err
	}
	c.items = next
	return nil
}

func save(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// NextID returns max(id)+1 over the given records. IDs are assigned at
// creation and never reused while the referent is live; gaps left by
// deletions are acceptable.
func NextID[T any](items []T, id func(T) int64) int64 {
	var max int64
	for _, it := range items {
		if v := id(it); v > max {
			max = v
		}
	}
	return max + 1
}

// Object is a single-record JSON file, used for settings.json.
type Object[T any] struct {
	mu    sync.Mutex
	path  string
	value T
}

// OpenObject loads the object at path, falling back to def when the file is
// missing. An unparseable file fails with ErrCorrupt.
func OpenObject[T any](path string, def T) (*Object[T], error) {
	o := &Object[T]{path: path, value: def}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return o, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &o.value); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return o, nil
}

// Get returns the current value.
func (o *Object[T]) Get() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// Set persists v as the new file content.
func (o *Object[T]) Set(v T) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := save(o.path, v); err != nil {
		return err
	}
	o.value = v
	return nil
}
