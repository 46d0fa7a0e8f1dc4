package view

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Derive filters records by a case-insensitive substring match on the
// searchable fields, then stably sorts them by spec. records is never
// modified. Ties keep input order in both directions and absent values
// always come last.
func Derive[T any](schema Schema[T], records []T, filter string, spec SortSpec) ([]T, error) {
	var key Field[T]
	if !spec.IsNone() {
		f, err := schema.Field(spec.Key)
		if err != nil {
			return nil, err
		}
		key = f
	}

	out := filterRecords(schema, records, filter)
	if spec.IsNone() || len(out) < 2 {
		return out, nil
	}

	// Values are computed once per record rather than once per comparison.
	type keyed struct {
		rec T
		val Value
	}
	rows := make([]keyed, len(out))
	for i, r := range out {
		rows[i] = keyed{rec: r, val: key.Value(r)}
	}

	desc := spec.Direction == Descending
	slices.SortStableFunc(rows, func(a, b keyed) int {
		aa, ba := a.val.IsAbsent(), b.val.IsAbsent()
		switch {
		case aa && ba:
			return 0
		case aa:
			return 1
		case ba:
			return -1
		}
		c := Compare(a.val, b.val)
		if desc {
			return -c
		}
		return c
	})

	for i := range rows {
		out[i] = rows[i].rec
	}
	return out, nil
}

func filterRecords[T any](schema Schema[T], records []T, filter string) []T {
	out := make([]T, 0, len(records))
	if filter == "" {
		return append(out, records...)
	}

	// A Caser is stateful and must not be shared between goroutines.
	folder := cases.Fold()
	needle := folder.String(filter)
	for _, r := range records {
		for _, f := range schema.fields {
			if !f.Searchable {
				continue
			}
			if strings.Contains(folder.String(f.text(r)), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
