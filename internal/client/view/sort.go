package view

import "fmt"

type Direction uint8

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// SortSpec is the sort state of a view. The zero value keeps input order.
type SortSpec struct {
	Key       string
	Direction Direction
}

// SortNone keeps records in input order.
var SortNone = SortSpec{}

func (s SortSpec) IsNone() bool { return s.Key == "" }

// Toggle advances the sort state for a click on key: a new key sorts
// ascending, the same key flips between ascending and descending.
func (s SortSpec) Toggle(key string) SortSpec {
	if s.Key != key {
		return SortSpec{Key: key, Direction: Ascending}
	}
	if s.Direction == Ascending {
		return SortSpec{Key: key, Direction: Descending}
	}
	return SortSpec{Key: key, Direction: Ascending}
}

func (s SortSpec) String() string {
	if s.IsNone() {
		return "none"
	}
	return fmt.Sprintf("%s %s", s.Key, s.Direction)
}
