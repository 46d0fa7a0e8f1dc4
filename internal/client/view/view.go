package view

import (
	"slices"
	"sync"
)

// View holds the inputs of one listing and caches the derived order until
// one of them changes.
type View[T any] struct {
	schema Schema[T]

	mu      sync.Mutex
	records []T
	filter  string
	sort    SortSpec
	dirty   bool
	cached  []T
	err     error
	derives int
}

func New[T any](schema Schema[T]) *View[T] {
	return &View[T]{schema: schema, dirty: true}
}

// SetRecords replaces the source listing. The slice is not copied and must
// not be modified afterwards.
func (v *View[T]) SetRecords(records []T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.records = records
	v.dirty = true
}

func (v *View[T]) SetFilter(filter string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.filter != filter {
		v.filter = filter
		v.dirty = true
	}
}

// SetSort replaces the sort spec. An unknown key is reported by Rows.
func (v *View[T]) SetSort(spec SortSpec) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sort != spec {
		v.sort = spec
		v.dirty = true
	}
}

// ToggleSort applies SortSpec.Toggle and returns the new spec. An unknown
// key leaves the sort unchanged.
func (v *View[T]) ToggleSort(key string) (SortSpec, error) {
	if _, err := v.schema.Field(key); err != nil {
		return v.Sort(), err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sort = v.sort.Toggle(key)
	v.dirty = true
	return v.sort, nil
}

func (v *View[T]) Filter() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

func (v *View[T]) Sort() SortSpec {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sort
}

// Records returns a copy of the source listing, before filter and sort.
func (v *View[T]) Records() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.records)
}

func (v *View[T]) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.records)
}

// Rows returns the derived listing. The result is shared between calls
// until an input changes; callers must not modify it.
func (v *View[T]) Rows() ([]T, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.dirty {
		v.cached, v.err = Derive(v.schema, v.records, v.filter, v.sort)
		v.dirty = false
		v.derives++
	}
	return v.cached, v.err
}

func (v *View[T]) Schema() Schema[T] { return v.schema }
