// Package view derives the displayed order of a fetched record listing from
// a filter text and a sort specification. Derivation is a pure function of
// its inputs; View adds memoization on top of it.
package view

import (
	"cmp"
	"math"
	"strconv"
)

// Kind is the comparable type of a field value.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindNumber
	KindText
)

// Value is a single sortable field value.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Number returns a numeric value. NaN is treated as absent.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Absent()
	}
	return Value{kind: KindNumber, num: f}
}

// NumberPtr returns Absent for nil.
func NumberPtr(f *float64) Value {
	if f == nil {
		return Absent()
	}
	return Number(*f)
}

func Text(s string) Value { return Value{kind: KindText, text: s} }

// TextOrAbsent treats the empty string as absent.
func TextOrAbsent(s string) Value {
	if s == "" {
		return Absent()
	}
	return Text(s)
}

func Absent() Value { return Value{} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		return v.text
	default:
		return ""
	}
}

// Compare orders present values: numbers numerically, text by bytes, and
// numbers before text when a field mixes kinds. Absent values are equal to
// each other; their placement is decided by the caller so that it does not
// flip with the sort direction.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}
	switch a.kind {
	case KindNumber:
		return cmp.Compare(a.num, b.num)
	case KindText:
		return cmp.Compare(a.text, b.text)
	default:
		return 0
	}
}
