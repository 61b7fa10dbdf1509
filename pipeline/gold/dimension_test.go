package gold

import (
	"testing"
	"time"

	"github.com/aldress/medallion/pipeline/table"
	"github.com/aldress/medallion/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDimension_DedupsAndAssignsKeys(t *testing.T) {
	partA := mustTable(t, `customer_id,customer_name
C1,Alice
C2,Bob
`, "orders_jan")
	partB := mustTable(t, `customer_id,customer_name
C2,Bob
C3,Carol
`, "orders_feb")

	dim, err := BuildDimension("customer", []*table.Table{partA, partB})
	require.NoError(t, err)

	require.Equal(t, 3, dim.NumRows())
	assert.Equal(t, []string{"customer_id", "customer_name", "customer_key"}, dim.Columns())

	// Keys are dense, 1..N, in first-seen order.
	for row := 0; row < dim.NumRows(); row++ {
		assert.Equal(t, int64(row+1), dim.At(row, "customer_key").IntValue())
	}
	assert.Equal(t, "C1", dim.At(0, "customer_id").StringValue())
	assert.Equal(t, "C3", dim.At(2, "customer_id").StringValue())
}

func TestBuildDimension_SchemaUnionAcrossParts(t *testing.T) {
	partA := mustTable(t, `city,country
Riyadh,SA
`, "warehouses")
	partB := mustTable(t, `city,latitude
Jeddah,21.5
`, "suppliers")

	dim, err := BuildDimension("geography", []*table.Table{partA, partB})
	require.NoError(t, err)

	assert.Equal(t, []string{"city", "country", "latitude", "geography_key"}, dim.Columns())
	assert.True(t, dim.At(1, "country").IsNull())
}

func TestBuildDimension_NoCandidates(t *testing.T) {
	_, err := BuildDimension("customer", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, ErrNoCandidates))
}

func TestBuildTimeDimension_CoversTwoYears(t *testing.T) {
	asOf := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	dim := BuildTimeDimension(asOf)

	require.Equal(t, timeDimensionDays+1, dim.NumRows())

	first := dim.At(0, "date").TimeValue()
	last := dim.At(dim.NumRows()-1, "date").TimeValue()
	assert.Equal(t, time.Date(2022, 3, 15, 0, 0, 0, 0, time.UTC), first)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), last)
}

func TestBuildTimeDimension_RowAttributes(t *testing.T) {
	// 2024-03-15 is a Friday.
	asOf := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	dim := BuildTimeDimension(asOf)
	row := dim.NumRows() - 1

	assert.Equal(t, int64(20240315), dim.At(row, "date_key").IntValue())
	assert.Equal(t, int64(2024), dim.At(row, "year").IntValue())
	assert.Equal(t, int64(1), dim.At(row, "quarter").IntValue())
	assert.Equal(t, int64(3), dim.At(row, "month").IntValue())
	assert.Equal(t, "March", dim.At(row, "month_name").StringValue())
	assert.Equal(t, int64(15), dim.At(row, "day_of_month").IntValue())
	assert.Equal(t, int64(75), dim.At(row, "day_of_year").IntValue())
	assert.Equal(t, int64(4), dim.At(row, "day_of_week").IntValue())
	assert.Equal(t, "Friday", dim.At(row, "day_name").StringValue())
	assert.False(t, dim.At(row, "is_weekend").BoolValue())
	assert.False(t, dim.At(row, "is_holiday").BoolValue())
	assert.Equal(t, int64(2024), dim.At(row, "fiscal_year").IntValue())
	assert.Equal(t, int64(1), dim.At(row, "fiscal_quarter").IntValue())

	// The day before is a Thursday, two days before a Saturday weekend day.
	assert.Equal(t, "Thursday", dim.At(row-1, "day_name").StringValue())
	saturday := row - 6
	assert.Equal(t, "Saturday", dim.At(saturday, "day_name").StringValue())
	assert.True(t, dim.At(saturday, "is_weekend").BoolValue())
	assert.Equal(t, int64(5), dim.At(saturday, "day_of_week").IntValue())
}
