package gold

import (
	"testing"
	"time"

	"github.com/aldress/medallion/pipeline/table"
	"github.com/aldress/medallion/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyRevenue(t *testing.T) {
	orders := mustTable(t, `order_id,order_date,quantity,unit_price,total_amount
1,2024-01-05,2,10.0,20.0
2,2024-01-05,1,5.0,5.0
3,2024-01-06,4,2.5,10.0
4,not-a-date,1,100.0,100.0
`, "orders")

	kpi, err := DailyRevenue(orders)
	require.NoError(t, err)

	// The unparseable date row is dropped, leaving two days.
	require.Equal(t, 2, kpi.NumRows())
	assert.Equal(t, []string{"date", "daily_revenue", "order_count", "avg_order_value"}, kpi.Columns())

	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), kpi.At(0, "date").TimeValue())
	revenue, _ := kpi.At(0, "daily_revenue").Float64()
	assert.InDelta(t, 25.0, revenue, 1e-9)
	assert.Equal(t, int64(2), kpi.At(0, "order_count").IntValue())
	avg, _ := kpi.At(0, "avg_order_value").Float64()
	assert.InDelta(t, 12.5, avg, 1e-9)
}

func TestDailyRevenue_DerivesMissingTotal(t *testing.T) {
	orders := mustTable(t, `order_id,order_date,quantity,unit_price
1,2024-01-05,2,10.0
`, "orders")

	kpi, err := DailyRevenue(orders)
	require.NoError(t, err)
	revenue, _ := kpi.At(0, "daily_revenue").Float64()
	assert.InDelta(t, 20.0, revenue, 1e-9)
}

func TestDailyRevenue_ZeroWhenNothingComputable(t *testing.T) {
	orders := mustTable(t, `order_id,order_date
1,2024-01-05
`, "orders")

	kpi, err := DailyRevenue(orders)
	require.NoError(t, err)
	revenue, _ := kpi.At(0, "daily_revenue").Float64()
	assert.Zero(t, revenue)
}

func TestDailyRevenue_ZeroAverageWhenCountIsZero(t *testing.T) {
	// Every order_id on the day is missing, so the count aggregates to 0.
	// The average must read 0.0, never null.
	orders := mustTable(t, `order_id,order_date,total_amount
,2024-01-05,20.0
,2024-01-05,5.0
`, "orders")

	kpi, err := DailyRevenue(orders)
	require.NoError(t, err)

	require.Equal(t, 1, kpi.NumRows())
	assert.Equal(t, int64(0), kpi.At(0, "order_count").IntValue())
	revenue, _ := kpi.At(0, "daily_revenue").Float64()
	assert.InDelta(t, 25.0, revenue, 1e-9)

	avg := kpi.At(0, "avg_order_value")
	require.False(t, avg.IsNull())
	value, ok := avg.Float64()
	require.True(t, ok)
	assert.Zero(t, value)
}

func TestDailyRevenue_RequiresDateAndID(t *testing.T) {
	orders := mustTable(t, `order_id,total_amount
1,20.0
`, "orders")

	_, err := DailyRevenue(orders)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, ErrMissingColumn))
}

func TestDailyRevenue_NoValidDates(t *testing.T) {
	orders := mustTable(t, `order_id,order_date,total_amount
1,garbage,20.0
`, "orders")

	_, err := DailyRevenue(orders)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, ErrNoCandidates))
}

func TestMonthlyRevenue(t *testing.T) {
	orders := mustTable(t, `order_id,order_date,total_amount
1,2024-01-05,20.0
2,2024-01-20,30.0
3,2024-02-01,10.0
`, "orders")

	kpi, err := MonthlyRevenue(orders)
	require.NoError(t, err)

	require.Equal(t, 2, kpi.NumRows())
	assert.Equal(t, "2024-01", kpi.At(0, "year_month").StringValue())
	revenue, _ := kpi.At(0, "monthly_revenue").Float64()
	assert.InDelta(t, 50.0, revenue, 1e-9)
	assert.Equal(t, int64(2), kpi.At(0, "order_count").IntValue())
	assert.Equal(t, "2024-02", kpi.At(1, "year_month").StringValue())
}

func TestVehiclePerformance(t *testing.T) {
	perf := mustTable(t, `vehicle_id,date,distance_traveled,fuel_consumed,delivery_time,efficiency_score
V1,2024-01-05,100,10,2.0,0.8
V1,2024-01-06,200,20,4.0,0.6
V2,2024-01-05,50,0,1.0,0.9
`, "performance")

	kpi, err := VehiclePerformance(perf)
	require.NoError(t, err)

	require.Equal(t, 2, kpi.NumRows())
	assert.Equal(t, "V1", kpi.At(0, "vehicle_id").StringValue())

	distance, _ := kpi.At(0, "distance_traveled").Float64()
	assert.InDelta(t, 300.0, distance, 1e-9)
	deliveryTime, _ := kpi.At(0, "delivery_time").Float64()
	assert.InDelta(t, 3.0, deliveryTime, 1e-9)
	efficiency, _ := kpi.At(0, "fuel_efficiency").Float64()
	assert.InDelta(t, 10.0, efficiency, 1e-9)

	// V2 consumed no fuel, so its ratio is undefined rather than infinite.
	assert.True(t, kpi.At(1, "fuel_efficiency").IsNull())
}

func TestVehiclePerformance_MissingColumn(t *testing.T) {
	perf := mustTable(t, `vehicle_id,distance_traveled
V1,100
`, "performance")

	_, err := VehiclePerformance(perf)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, ErrMissingColumn))
}

func TestInventoryTurnover(t *testing.T) {
	inv := mustTable(t, `product_id,quantity_sold,quantity_on_hand
P1,30,10
P1,10,30
P2,5,0
`, "inventory")

	kpi, err := InventoryTurnover(inv)
	require.NoError(t, err)

	require.Equal(t, 2, kpi.NumRows())
	sold, _ := kpi.At(0, "quantity_sold").Float64()
	assert.InDelta(t, 40.0, sold, 1e-9)
	onHand, _ := kpi.At(0, "quantity_on_hand").Float64()
	assert.InDelta(t, 20.0, onHand, 1e-9)
	ratio, _ := kpi.At(0, "turnover_ratio").Float64()
	assert.InDelta(t, 2.0, ratio, 1e-9)

	assert.True(t, kpi.At(1, "turnover_ratio").IsNull())
}

func unionTable(t *testing.T, tables ...*table.Table) *table.Table {
	t.Helper()
	tagged := make([]*table.Table, 0, len(tables))
	for _, tbl := range tables {
		clone := tbl.Project(tbl.Columns()...)
		source := make([]table.Value, clone.NumRows())
		for i := range source {
			source[i] = table.String(tbl.Source)
		}
		require.NoError(t, clone.SetColumn(sourceTableColumn, source))
		tagged = append(tagged, clone)
	}
	return table.Concat(tagged...)
}

func TestOnTimeDelivery(t *testing.T) {
	shipments := mustTable(t, `shipment_id,delivery_date,estimated_delivery
S1,2024-01-05,2024-01-06
S2,2024-01-08,2024-01-06
S3,2024-01-06,2024-01-06
S4,,2024-01-06
`, "shipments")
	other := mustTable(t, `order_id,order_date
1,2024-01-05
`, "orders")

	kpi, err := OnTimeDelivery(unionTable(t, shipments, other))
	require.NoError(t, err)

	// Only the table that records deliveries appears; the row without a
	// delivery date is excluded from its rate.
	require.Equal(t, 1, kpi.NumRows())
	assert.Equal(t, "shipments", kpi.At(0, "table_name").StringValue())
	rate, _ := kpi.At(0, "on_time_delivery_rate").Float64()
	assert.InDelta(t, 2.0/3.0, rate, 1e-9)
}

func TestFulfillmentRate(t *testing.T) {
	orders := mustTable(t, `order_id,order_status
1,fulfilled
2,pending
3,fulfilled
4,fulfilled
`, "orders")

	kpi, err := FulfillmentRate(unionTable(t, orders))
	require.NoError(t, err)

	require.Equal(t, 1, kpi.NumRows())
	assert.Equal(t, "orders", kpi.At(0, "table_name").StringValue())
	rate, _ := kpi.At(0, "fulfillment_rate").Float64()
	assert.InDelta(t, 0.75, rate, 1e-9)
}

func TestCostEfficiency(t *testing.T) {
	fuel := mustTable(t, `vehicle_id,cost,revenue
V1,100,300
V2,50,150
`, "fuel_consumption")
	freeRides := mustTable(t, `trip_id,cost,revenue
T1,0,10
`, "promotions")

	kpi, err := CostEfficiency(unionTable(t, fuel, freeRides))
	require.NoError(t, err)

	require.Equal(t, 2, kpi.NumRows())
	ratio, _ := kpi.At(0, "cost_efficiency_ratio").Float64()
	assert.InDelta(t, 3.0, ratio, 1e-9)

	// A table with zero total cost has no defined ratio.
	assert.Equal(t, "promotions", kpi.At(1, "source_table").StringValue())
	assert.True(t, kpi.At(1, "cost_efficiency_ratio").IsNull())
}
