package table

import (
	"github.com/aldress/medallion/pkg/errors"
)

// Project returns a new table containing only the named columns that are
// actually present, preserving the requested order. Absent columns are
// skipped without error. The result shares no state with the receiver.
func (t *Table) Project(columns ...string) *Table {
	out := &Table{Source: t.Source, colIdx: make(map[string]int)}
	for _, name := range columns {
		idx, ok := t.colIdx[name]
		if !ok {
			continue
		}
		values := make([]Value, t.numRows)
		copy(values, t.cols[idx].Values)
		out.colIdx[name] = len(out.cols)
		out.cols = append(out.cols, Column{Name: name, Values: values})
	}
	out.numRows = t.numRows
	if len(out.cols) == 0 {
		out.numRows = 0
	}
	return out
}

// Filter returns a new table with only the rows for which keep returns true,
// preserving row order.
func (t *Table) Filter(keep func(row int) bool) *Table {
	out := &Table{Source: t.Source, colIdx: make(map[string]int)}
	for _, c := range t.cols {
		out.colIdx[c.Name] = len(out.cols)
		out.cols = append(out.cols, Column{Name: c.Name})
	}
	for row := 0; row < t.numRows; row++ {
		if !keep(row) {
			continue
		}
		for i := range t.cols {
			out.cols[i].Values = append(out.cols[i].Values, t.cols[i].Values[row])
		}
		out.numRows++
	}
	return out
}

// Concat unions tables with schema-union semantics: the output column set is
// the first-seen order of all input columns, rows from tables missing a
// column get null in that column, and every input row is preserved in input
// order. A nil or empty input yields an empty table.
func Concat(tables ...*Table) *Table {
	out := &Table{colIdx: make(map[string]int)}
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.cols {
			if _, ok := out.colIdx[c.Name]; !ok {
				out.mustAddColumn(c.Name)
			}
		}
	}
	for _, t := range tables {
		if t == nil {
			continue
		}
		for row := 0; row < t.numRows; row++ {
			for i := range out.cols {
				out.cols[i].Values = append(out.cols[i].Values, t.At(row, out.cols[i].Name))
			}
			out.numRows++
		}
	}
	return out
}

// DropDuplicates removes rows that are fully equal across all columns,
// keeping the first occurrence and preserving first-seen order.
func (t *Table) DropDuplicates() *Table {
	seen := make(map[string]struct{}, t.numRows)
	return t.Filter(func(row int) bool {
		key := t.rowKey(row)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
}

// AggFunc identifies a group aggregation function.
type AggFunc int

const (
	// AggSum sums numeric cells, ignoring nulls; an all-null group sums to 0.
	AggSum AggFunc = iota
	// AggMean averages numeric and boolean cells, ignoring nulls; a group
	// with no numeric cells yields null.
	AggMean
	// AggCount counts non-null cells.
	AggCount
)

// Aggregation describes one aggregated output column.
type Aggregation struct {
	Column string
	Fn     AggFunc
	As     string
}

// GroupBy groups rows by the key column and computes the given aggregations.
// Groups appear in first-seen row order; rows with a null key are dropped.
// The output holds the key column followed by one column per aggregation.
func (t *Table) GroupBy(key string, aggs ...Aggregation) (*Table, error) {
	if !t.HasColumn(key) {
		return nil, errors.Newf(ErrColumnNotFound, "group key column %q not found", key)
	}

	type group struct {
		key    Value
		sums   []float64
		counts []int64
	}

	index := make(map[string]*group)
	var order []*group
	for row := 0; row < t.numRows; row++ {
		kv := t.At(row, key)
		if kv.IsNull() {
			continue
		}
		gk := kv.dedupKey()
		g, ok := index[gk]
		if !ok {
			g = &group{key: kv, sums: make([]float64, len(aggs)), counts: make([]int64, len(aggs))}
			index[gk] = g
			order = append(order, g)
		}
		for i, agg := range aggs {
			v := t.At(row, agg.Column)
			switch agg.Fn {
			case AggCount:
				if !v.IsNull() {
					g.counts[i]++
				}
			default:
				if f, ok := v.Float64(); ok {
					g.sums[i] += f
					g.counts[i]++
				}
			}
		}
	}

	names := make([]string, 0, len(aggs)+1)
	names = append(names, key)
	for _, agg := range aggs {
		name := agg.As
		if name == "" {
			name = agg.Column
		}
		names = append(names, name)
	}
	out := New(names...)

	for _, g := range order {
		row := make([]Value, 0, len(aggs)+1)
		row = append(row, g.key)
		for i, agg := range aggs {
			switch agg.Fn {
			case AggSum:
				row = append(row, Float(g.sums[i]))
			case AggMean:
				if g.counts[i] == 0 {
					row = append(row, Null())
				} else {
					row = append(row, Float(g.sums[i]/float64(g.counts[i])))
				}
			case AggCount:
				row = append(row, Int(g.counts[i]))
			}
		}
		if err := out.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// LeftJoin joins descriptive columns from right onto the receiver on the
// shared key column. Every left row appears exactly once: the first matching
// right row wins and unmatched lookups fill with nulls, so the result row
// count always equals the left row count.
func (t *Table) LeftJoin(right *Table, on string, rightColumns ...string) (*Table, error) {
	if !t.HasColumn(on) {
		return nil, errors.Newf(ErrColumnNotFound, "join column %q not found in left table", on)
	}
	if !right.HasColumn(on) {
		return nil, errors.Newf(ErrColumnNotFound, "join column %q not found in right table", on)
	}

	lookup := make(map[string]int, right.numRows)
	for row := 0; row < right.numRows; row++ {
		kv := right.At(row, on)
		if kv.IsNull() {
			continue
		}
		key := kv.dedupKey()
		if _, exists := lookup[key]; !exists {
			lookup[key] = row
		}
	}

	out := &Table{Source: t.Source, colIdx: make(map[string]int)}
	for _, c := range t.cols {
		values := make([]Value, t.numRows)
		copy(values, c.Values)
		out.colIdx[c.Name] = len(out.cols)
		out.cols = append(out.cols, Column{Name: c.Name, Values: values})
	}
	out.numRows = t.numRows

	for _, name := range rightColumns {
		if name == on || !right.HasColumn(name) || out.HasColumn(name) {
			continue
		}
		values := make([]Value, t.numRows)
		for row := 0; row < t.numRows; row++ {
			kv := t.At(row, on)
			if kv.IsNull() {
				continue
			}
			if rrow, ok := lookup[kv.dedupKey()]; ok {
				values[row] = right.At(rrow, name)
			}
		}
		out.colIdx[name] = len(out.cols)
		out.cols = append(out.cols, Column{Name: name, Values: values})
	}
	return out, nil
}

// GuardedDiv divides numerator by denominator, yielding null instead of an
// infinity or a division error when either side is non-numeric or the
// denominator is zero.
func GuardedDiv(num, den Value) Value {
	n, ok := num.Float64()
	if !ok {
		return Null()
	}
	d, ok := den.Float64()
	if !ok || d == 0 {
		return Null()
	}
	return Float(n / d)
}
