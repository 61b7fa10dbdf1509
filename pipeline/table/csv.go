package table

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aldress/medallion/pkg/errors"
)

// Package-specific error codes for CSV decoding.
var (
	ErrCSVReadFailed  = errors.MustNewCode("table.csv_read_failed")
	ErrCSVNoHeader    = errors.MustNewCode("table.csv_no_header")
	ErrCSVWriteFailed = errors.MustNewCode("table.csv_write_failed")
)

// Accepted timestamp layouts, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// ReadCSV decodes a UTF-8 CSV stream with a header row into a Table. Each
// cell is parsed into the most specific type that accepts it (int, float,
// bool, timestamp), falling back to text; empty cells become null.
func ReadCSV(r io.Reader, source string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(ErrCSVNoHeader, "csv stream has no header row", nil).AddContext("source", source)
	}
	if err != nil {
		return nil, errors.New(ErrCSVReadFailed, "failed to read csv header", err).AddContext("source", source)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	t := New(header...)
	t.Source = source

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.New(ErrCSVReadFailed, "failed to read csv record", err).
				AddContext("source", source).
				AddContext("row", strconv.Itoa(t.numRows+1))
		}
		row := make([]Value, len(header))
		for i := range header {
			if i < len(record) {
				row[i] = ParseValue(record[i])
			} else {
				row[i] = Null()
			}
		}
		if err := t.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// WriteCSV encodes the table as UTF-8 CSV with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return errors.New(ErrCSVWriteFailed, "failed to write csv header", err)
	}
	record := make([]string, len(t.cols))
	for row := 0; row < t.numRows; row++ {
		for i := range t.cols {
			record[i] = t.cols[i].Values[row].Format()
		}
		if err := cw.Write(record); err != nil {
			return errors.New(ErrCSVWriteFailed, "failed to write csv record", err).
				AddContext("row", strconv.Itoa(row))
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.New(ErrCSVWriteFailed, "failed to flush csv output", err)
	}
	return nil
}

// ParseValue converts raw CSV text into a typed cell.
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Null()
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		// Literal NaN/Inf cells read as missing so they cannot poison sums.
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Null()
		}
		return Float(f)
	}
	switch strings.ToLower(s) {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return Time(ts)
		}
	}
	return String(s)
}

// AsTime interprets a cell as a timestamp: time cells pass through and text
// cells are re-parsed against the accepted layouts. The second return is
// false for nulls and unparseable cells.
func AsTime(v Value) (time.Time, bool) {
	switch v.Kind() {
	case KindTime:
		return v.TimeValue(), true
	case KindString:
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, v.StringValue()); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}
