package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Row is a single record of an artifact table keyed by column name.
type Row map[string]any

// Table is an in-memory columnar artifact loaded from disk or decoded from a
// search response. Columns preserves the on-disk column order.
//
// A nil *Table means the table was never loaded. A non-nil table with zero
// rows was loaded and is empty. Callers branch on the two states separately.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable creates a table with the given columns and rows.
func NewTable(columns []string, rows ...Row) *Table {
	return &Table{
		Columns: columns,
		Rows:    rows,
	}
}

// Len returns the number of rows. A nil table has zero rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table is absent or holds no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// HasColumn reports whether the column exists in the table schema.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// FirstColumn returns the first alias that exists in the table schema.
// Artifact schemas drift between indexer versions ("name" vs "title"), so
// readers probe a short ordered list instead of hard-coding one column.
func (t *Table) FirstColumn(aliases ...string) (string, bool) {
	for _, a := range aliases {
		if t.HasColumn(a) {
			return a, true
		}
	}
	return "", false
}

// Get returns the value stored under column, or nil when the column is
// missing from the row.
func (r Row) Get(column string) any {
	if r == nil {
		return nil
	}
	return r[column]
}

// String returns the column value as a string. ok is false for nil or
// missing values.
func (r Row) String(column string) (string, bool) {
	return AsString(r.Get(column))
}

// AsString converts an artifact value to its string form. ok is false when v
// is nil.
func AsString(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case []byte:
		return string(val), true
	case json.Number:
		return val.String(), true
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) {
			return strconv.FormatInt(int64(val), 10), true
		}
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return AsString(float64(val))
	case fmt.Stringer:
		return val.String(), true
	default:
		return fmt.Sprint(val), true
	}
}

// AsInt converts an artifact value to an integer. Strings are trimmed and
// parsed in base 10, floats must be integral. ok is false for anything else.
func AsInt(v any) (int64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case int:
		return int64(val), true
	case int8:
		return int64(val), true
	case int16:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case uint8:
		return int64(val), true
	case uint16:
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint64:
		if val > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	case float32:
		return AsInt(float64(val))
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) || val != math.Trunc(val) {
			return 0, false
		}
		return int64(val), true
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n, true
		}
		if f, err := val.Float64(); err == nil {
			return AsInt(f)
		}
		return 0, false
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// AsStrings converts a list-valued column (DuckDB LIST, JSON array) to a
// string slice, skipping nil elements.
func AsStrings(v any) []string {
	switch val := v.(type) {
	case nil:
		return []string{}
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := AsString(item); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		if s, ok := AsString(val); ok {
			return []string{s}
		}
		return []string{}
	}
}
