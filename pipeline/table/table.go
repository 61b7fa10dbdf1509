package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aldress/medallion/pkg/errors"
)

// Package-specific error codes for the in-memory table engine.
var (
	ErrColumnNotFound  = errors.MustNewCode("table.column_not_found")
	ErrColumnMismatch  = errors.MustNewCode("table.column_mismatch")
	ErrRowOutOfRange   = errors.MustNewCode("table.row_out_of_range")
	ErrNonNumericValue = errors.MustNewCode("table.non_numeric_value")
)

// Kind identifies the scalar type held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
)

// String returns the lowercase type name used in blob metadata.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int64"
	case KindFloat:
		return "float64"
	case KindString:
		return "string"
	case KindTime:
		return "timestamp"
	default:
		return "null"
	}
}

// Value is a single typed cell. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	t    time.Time
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool wraps a boolean cell.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Int wraps an integer cell.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float wraps a floating-point cell.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// String wraps a text cell.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Time wraps a timestamp cell.
func Time(v time.Time) Value { return Value{kind: KindTime, t: v} }

// Kind returns the value's type tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the cell holds no value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// BoolValue returns the boolean payload (false for non-bool cells).
func (v Value) BoolValue() bool { return v.kind == KindBool && v.b }

// IntValue returns the integer payload (0 for non-int cells).
func (v Value) IntValue() int64 {
	if v.kind == KindInt {
		return v.i
	}
	return 0
}

// StringValue returns the text payload ("" for non-string cells).
func (v Value) StringValue() string {
	if v.kind == KindString {
		return v.s
	}
	return ""
}

// TimeValue returns the timestamp payload (zero time for non-time cells).
func (v Value) TimeValue() time.Time {
	if v.kind == KindTime {
		return v.t
	}
	return time.Time{}
}

// Float64 converts numeric and boolean cells to float64. The second return
// reports whether a numeric interpretation exists.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Equal reports full typed equality, used by row deduplication.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindString:
		return v.s == other.s
	case KindTime:
		return v.t.Equal(other.t)
	}
	return false
}

// Format renders the cell for CSV output. Nulls render as the empty string;
// midnight timestamps render as bare dates.
func (v Value) Format() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindTime:
		if v.t.Hour() == 0 && v.t.Minute() == 0 && v.t.Second() == 0 && v.t.Nanosecond() == 0 {
			return v.t.Format("2006-01-02")
		}
		return v.t.Format("2006-01-02 15:04:05")
	}
	return ""
}

// dedupKey renders a type-tagged form of the cell so that rows can be
// compared via a single string key.
func (v Value) dedupKey() string {
	return fmt.Sprintf("%d\x1f%s", v.kind, v.Format())
}

// Column is a named sequence of typed cells.
type Column struct {
	Name   string
	Values []Value
}

// Table is an ordered set of equal-length named columns. Tables decoded from
// a silver blob carry the originating blob name in Source.
type Table struct {
	Source  string
	cols    []Column
	colIdx  map[string]int
	numRows int
}

// New creates an empty table with the given column names, in order.
func New(columns ...string) *Table {
	t := &Table{colIdx: make(map[string]int, len(columns))}
	for _, name := range columns {
		t.mustAddColumn(name)
	}
	return t
}

func (t *Table) mustAddColumn(name string) {
	if _, exists := t.colIdx[name]; exists {
		return
	}
	t.colIdx[name] = len(t.cols)
	col := Column{Name: name}
	if t.numRows > 0 {
		col.Values = make([]Value, t.numRows)
	}
	t.cols = append(t.cols, col)
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.numRows }

// NumColumns returns the column count.
func (t *Table) NumColumns() int { return len(t.cols) }

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether a column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.colIdx[name]
	return ok
}

// HasAnyColumn reports whether any of the given columns exist.
func (t *Table) HasAnyColumn(names ...string) bool {
	for _, n := range names {
		if t.HasColumn(n) {
			return true
		}
	}
	return false
}

// HasAllColumns reports whether every given column exists.
func (t *Table) HasAllColumns(names ...string) bool {
	for _, n := range names {
		if !t.HasColumn(n) {
			return false
		}
	}
	return true
}

// At returns the cell at (row, column name). Missing columns read as null.
func (t *Table) At(row int, column string) Value {
	idx, ok := t.colIdx[column]
	if !ok || row < 0 || row >= t.numRows {
		return Null()
	}
	return t.cols[idx].Values[row]
}

// AppendRow appends one row given cells for every column, in table order.
func (t *Table) AppendRow(values ...Value) error {
	if len(values) != len(t.cols) {
		return errors.Newf(ErrColumnMismatch, "row has %d values, table has %d columns", len(values), len(t.cols))
	}
	for i := range t.cols {
		t.cols[i].Values = append(t.cols[i].Values, values[i])
	}
	t.numRows++
	return nil
}

// SetColumn adds or replaces a column. The value slice length must match the
// table's row count unless the table is empty.
func (t *Table) SetColumn(name string, values []Value) error {
	if t.numRows > 0 && len(values) != t.numRows {
		return errors.Newf(ErrColumnMismatch, "column %q has %d values, table has %d rows", name, len(values), t.numRows)
	}
	if idx, ok := t.colIdx[name]; ok {
		t.cols[idx].Values = values
		return nil
	}
	t.colIdx[name] = len(t.cols)
	t.cols = append(t.cols, Column{Name: name, Values: values})
	if t.numRows == 0 {
		t.numRows = len(values)
	}
	return nil
}

// Rename renames a column in place. Renaming a missing column is an error.
func (t *Table) Rename(from, to string) error {
	idx, ok := t.colIdx[from]
	if !ok {
		return errors.Newf(ErrColumnNotFound, "column %q not found", from)
	}
	delete(t.colIdx, from)
	t.cols[idx].Name = to
	t.colIdx[to] = idx
	return nil
}

// rowKey builds the dedup key for a full row.
func (t *Table) rowKey(row int) string {
	var sb strings.Builder
	for i := range t.cols {
		if i > 0 {
			sb.WriteByte('\x1e')
		}
		sb.WriteString(t.cols[i].Values[row].dedupKey())
	}
	return sb.String()
}

// DataTypes returns a column→type-name map for blob metadata. The reported
// type is the first non-null kind seen in each column.
func (t *Table) DataTypes() map[string]string {
	types := make(map[string]string, len(t.cols))
	for _, c := range t.cols {
		kind := KindNull
		for _, v := range c.Values {
			if !v.IsNull() {
				kind = v.Kind()
				break
			}
		}
		types[c.Name] = kind.String()
	}
	return types
}
