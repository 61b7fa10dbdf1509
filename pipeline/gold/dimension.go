package gold

import (
	"time"

	"github.com/aldress/medallion/pipeline/table"
	"github.com/aldress/medallion/pkg/errors"
)

// timeDimensionDays is how far back the generated calendar reaches.
const timeDimensionDays = 730

// BuildDimension concatenates the classified extracts for one dimension
// category, removes duplicate rows and appends a dense surrogate key column
// named <category>_key counting from 1.
func BuildDimension(category string, parts []*table.Table) (*table.Table, error) {
	if len(parts) == 0 {
		return nil, errors.Newf(ErrNoCandidates, "no silver data for dimension %q", category)
	}

	dim := table.Concat(parts...).DropDuplicates()

	keys := make([]table.Value, dim.NumRows())
	for i := range keys {
		keys[i] = table.Int(int64(i + 1))
	}
	if err := dim.SetColumn(category+"_key", keys); err != nil {
		return nil, err
	}
	dim.Source = category
	return dim, nil
}

// BuildTimeDimension generates the calendar dimension covering the two years
// up to and including asOf, one row per day.
func BuildTimeDimension(asOf time.Time) *table.Table {
	dim := table.New(
		"date_key", "date", "year", "quarter", "month", "month_name",
		"week", "day_of_year", "day_of_month", "day_of_week", "day_name",
		"is_weekend", "is_holiday", "fiscal_year", "fiscal_quarter",
	)
	dim.Source = "time"

	end := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	for offset := timeDimensionDays; offset >= 0; offset-- {
		d := end.AddDate(0, 0, -offset)
		year, month, day := d.Date()
		quarter := (int(month)-1)/3 + 1
		_, isoWeek := d.ISOWeek()
		// Monday is 0, Sunday is 6.
		weekday := (int(d.Weekday()) + 6) % 7

		dim.AppendRow(
			table.Int(int64(year*10000+int(month)*100+day)),
			table.Time(d),
			table.Int(int64(year)),
			table.Int(int64(quarter)),
			table.Int(int64(month)),
			table.String(month.String()),
			table.Int(int64(isoWeek)),
			table.Int(int64(d.YearDay())),
			table.Int(int64(day)),
			table.Int(int64(weekday)),
			table.String(d.Weekday().String()),
			table.Bool(weekday >= 5),
			table.Bool(false),
			table.Int(int64(year)),
			table.Int(int64(quarter)),
		)
	}
	return dim
}
