package tabular

import (
	"fmt"

	"github.com/catattrans/umkm-api/internal/pkg/format"
)

// FallbackCell is shown when a cell's value cannot be rendered at all.
const FallbackCell = "-"

// RenderCell produces the textual representation of one cell using the
// column's type. A panicking formatter is contained to this cell: the raw
// value's default string form is substituted, and FallbackCell when even that
// fails. One bad cell never takes down the rest of the table.
func RenderCell(f Field, v any) (s string) {
	defer func() {
		if recover() != nil {
			s = safeString(v)
		}
	}()

	if v == nil {
		return FallbackCell
	}
	switch f.Type {
	case TypeDate:
		return format.DateTime(v)
	case TypeAmount:
		if s := format.IDR(v); s != "" {
			return s
		}
		return defaultString(v)
	default:
		return defaultString(v)
	}
}

// RenderRow projects a row onto the visible columns, cell by cell.
func RenderRow(row Row, fields []Field) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if !f.IsVisible() {
			continue
		}
		out[f.Key] = RenderCell(f, row[f.Key])
	}
	return out
}

func defaultString(v any) string {
	return fmt.Sprint(v)
}

func safeString(v any) (s string) {
	defer func() {
		if recover() != nil {
			s = FallbackCell
		}
	}()
	return fmt.Sprint(v)
}
