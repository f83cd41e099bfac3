// Package tabular implements the query pipeline shared by every list view:
// free-text search, per-column filters, single-key type-aware sort, and an
// optional page slice for locally-paginated sources. The transform is pure
// (input rows are never mutated) and deterministic, so the same query over
// the same rows always yields the same view.
package tabular

import (
	"sort"
	"strings"

	"github.com/catattrans/umkm-api/internal/pkg/format"
)

// FieldType selects the formatter and comparator for a column.
type FieldType string

const (
	TypeText   FieldType = "text"
	TypeDate   FieldType = "date"
	TypeNumber FieldType = "number"
	TypeAmount FieldType = "amount"
)

// Row is an open column-key → value record supplied by the data source.
type Row = map[string]any

// Field describes one column. Key must be unique within a field set.
// A nil Visible means visible.
type Field struct {
	Key        string    `json:"key"`
	Label      string    `json:"label"`
	Type       FieldType `json:"type,omitempty"`
	Sortable   bool      `json:"sortable,omitempty"`
	Filterable bool      `json:"filterable,omitempty"`
	Visible    *bool     `json:"visible,omitempty"`
}

// IsVisible reports whether the column takes part in rendering and in the
// header-click sort target set. Hidden columns still participate in search
// and filtering against their underlying value.
func (f Field) IsVisible() bool {
	return f.Visible == nil || *f.Visible
}

// Direction orders a sorted column.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortConfig names the single active sort column. Exactly one sort key is
// active at a time; nil means unsorted.
type SortConfig struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// Query is the transient view state applied to a row set.
type Query struct {
	Search  string            `json:"search,omitempty"`
	Filters map[string]string `json:"filters,omitempty"`
	Sort    *SortConfig       `json:"sort,omitempty"`
}

// Apply runs the pipeline in fixed order: search, column filters, sort.
// Page slicing is deliberately left to the caller (see Page); remotely
// paginated sources pass page/size through as display bookkeeping only.
func Apply(rows []Row, fields []Field, q Query) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)

	if term := strings.TrimSpace(q.Search); term != "" {
		out = searchRows(out, fields, term)
	}
	out = filterRows(out, fields, q.Filters)
	if q.Sort != nil && q.Sort.Key != "" {
		sortRows(out, fieldByKey(fields, q.Sort.Key), *q.Sort)
	}
	return out
}

// VisibleFields projects the columns that should be rendered.
func VisibleFields(fields []Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.IsVisible() {
			out = append(out, f)
		}
	}
	return out
}

// CycleSort advances the sort state for a header click on key:
// asc → desc → none on the same column, reset to asc on a new column.
func CycleSort(current *SortConfig, key string) *SortConfig {
	if key == "" {
		return current
	}
	if current == nil || current.Key != key {
		return &SortConfig{Key: key, Direction: Asc}
	}
	if current.Direction == Asc {
		return &SortConfig{Key: key, Direction: Desc}
	}
	return nil
}

// Page slices a locally-paginated result. Page numbers are 1-based; out of
// range pages yield an empty slice, size <= 0 returns rows unchanged.
func Page(rows []Row, page, size int) []Row {
	if size <= 0 {
		return rows
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(rows) {
		return []Row{}
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// TotalPages is the page count for a locally-paginated result.
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

func searchRows(rows []Row, fields []Field, term string) []Row {
	term = strings.ToLower(term)
	out := rows[:0]
	for _, row := range rows {
		for _, f := range fields {
			v, ok := row[f.Key]
			if !ok || v == nil {
				continue
			}
			if strings.Contains(strings.ToLower(RenderCell(f, v)), term) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

func filterRows(rows []Row, fields []Field, filters map[string]string) []Row {
	active := make(map[string]string, len(filters))
	for k, v := range filters {
		if strings.TrimSpace(v) != "" {
			active[k] = strings.ToLower(v)
		}
	}
	if len(active) == 0 {
		return rows
	}

	out := rows[:0]
	for _, row := range rows {
		keep := true
		for key, want := range active {
			v, ok := row[key]
			if !ok || v == nil {
				keep = false
				break
			}
			f := fieldByKey(fields, key)
			if !strings.Contains(strings.ToLower(RenderCell(f, v)), want) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}

// sortRows orders rows in place. Nil and unparsable values sort after defined
// ones regardless of direction; ties retain their relative order from the
// prior stage.
func sortRows(rows []Row, field Field, cfg SortConfig) {
	desc := cfg.Direction == Desc
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i][cfg.Key], rows[j][cfg.Key]
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}

		cmp, absolute := compare(field.Type, a, b)
		if absolute || !desc {
			return cmp < 0
		}
		return cmp > 0
	})
}

// compare returns <0, 0, >0 for a vs b under the column's type. absolute is
// true when the verdict must not be inverted by a descending sort, which is
// the case whenever a side failed to parse: unparsable values stay last in
// either direction.
func compare(t FieldType, a, b any) (cmp int, absolute bool) {
	switch t {
	case TypeDate:
		ta, aok := format.ParseDate(a)
		tb, bok := format.ParseDate(b)
		if c, decided := nullsLast(aok, bok); decided {
			return c, true
		}
		switch {
		case ta.Before(tb):
			return -1, false
		case ta.After(tb):
			return 1, false
		}
		return 0, false
	case TypeAmount:
		na, aok := format.Amount(a)
		nb, bok := format.Amount(b)
		if c, decided := nullsLast(aok, bok); decided {
			return c, true
		}
		return compareInt64(na, nb), false
	case TypeNumber:
		na, aok := format.Number(a)
		nb, bok := format.Number(b)
		if c, decided := nullsLast(aok, bok); decided {
			return c, true
		}
		switch {
		case na < nb:
			return -1, false
		case na > nb:
			return 1, false
		}
		return 0, false
	default:
		return strings.Compare(defaultString(a), defaultString(b)), false
	}
}

// nullsLast resolves ordering when one or both sides failed to parse.
// An unparsable value loses to a parsable one in either direction.
func nullsLast(aok, bok bool) (int, bool) {
	switch {
	case aok && bok:
		return 0, false
	case aok:
		return -1, true
	case bok:
		return 1, true
	default:
		return 0, true
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func fieldByKey(fields []Field, key string) Field {
	for _, f := range fields {
		if f.Key == key {
			return f
		}
	}
	return Field{Key: key}
}
