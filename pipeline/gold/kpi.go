package gold

import (
	"fmt"
	"time"

	"github.com/aldress/medallion/pipeline/table"
	"github.com/aldress/medallion/pkg/errors"
)

// sourceTableColumn tags each row of the all-source union with the silver
// table it came from. Supply-chain KPIs group on it.
const sourceTableColumn = "source_table"

// rowTotal reads a row's total_amount, deriving it from quantity and
// unit_price when the column is absent. Rows where nothing can be computed
// total 0.0 so revenue aggregation never fails outright.
func rowTotal(t *table.Table, row int) table.Value {
	if t.HasColumn("total_amount") {
		if v, ok := t.At(row, "total_amount").Float64(); ok {
			return table.Float(v)
		}
	}
	qty, okQty := t.At(row, "quantity").Float64()
	price, okPrice := t.At(row, "unit_price").Float64()
	if okQty && okPrice {
		return table.Float(qty * price)
	}
	return table.Float(0)
}

// revenueWorkTable projects the orders fact down to the three columns the
// revenue KPIs need. Rows without a parseable order date are dropped.
func revenueWorkTable(orders *table.Table) (*table.Table, error) {
	for _, col := range []string{"order_date", "order_id"} {
		if !orders.HasColumn(col) {
			return nil, errors.Newf(ErrMissingColumn, "revenue KPIs need column %q", col)
		}
	}

	work := table.New("date", "year_month", "total_amount", "order_id")
	for row := 0; row < orders.NumRows(); row++ {
		ts, ok := table.AsTime(orders.At(row, "order_date"))
		if !ok {
			continue
		}
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		work.AppendRow(
			table.Time(day),
			table.String(fmt.Sprintf("%04d-%02d", ts.Year(), int(ts.Month()))),
			rowTotal(orders, row),
			orders.At(row, "order_id"),
		)
	}
	if work.NumRows() == 0 {
		return nil, errors.New(ErrNoCandidates, "orders fact has no rows with a valid order date", nil)
	}
	return work, nil
}

// DailyRevenue aggregates the orders fact into revenue, order count and
// average order value per day.
func DailyRevenue(orders *table.Table) (*table.Table, error) {
	work, err := revenueWorkTable(orders)
	if err != nil {
		return nil, err
	}
	return revenueByKey(work, "date", "daily_revenue")
}

// MonthlyRevenue aggregates the orders fact per calendar month (YYYY-MM).
func MonthlyRevenue(orders *table.Table) (*table.Table, error) {
	work, err := revenueWorkTable(orders)
	if err != nil {
		return nil, err
	}
	return revenueByKey(work, "year_month", "monthly_revenue")
}

func revenueByKey(work *table.Table, key, revenueColumn string) (*table.Table, error) {
	kpi, err := work.GroupBy(key,
		table.Aggregation{Column: "total_amount", Fn: table.AggSum, As: revenueColumn},
		table.Aggregation{Column: "order_id", Fn: table.AggCount, As: "order_count"},
	)
	if err != nil {
		return nil, err
	}

	// Days always have at least one order, but a zero count still must not
	// divide; it reads as 0.0 rather than null.
	avg := make([]table.Value, kpi.NumRows())
	for row := range avg {
		v := table.GuardedDiv(kpi.At(row, revenueColumn), kpi.At(row, "order_count"))
		if v.IsNull() {
			v = table.Float(0)
		}
		avg[row] = v
	}
	if err := kpi.SetColumn("avg_order_value", avg); err != nil {
		return nil, err
	}
	return kpi, nil
}

// VehiclePerformance aggregates the performance fact per vehicle: total
// distance and fuel, mean delivery time and efficiency score, plus a derived
// fuel efficiency ratio. The ratio is null for vehicles with no recorded
// fuel consumption.
func VehiclePerformance(perf *table.Table) (*table.Table, error) {
	required := []string{"vehicle_id", "distance_traveled", "fuel_consumed", "delivery_time", "efficiency_score"}
	for _, col := range required {
		if !perf.HasColumn(col) {
			return nil, errors.Newf(ErrMissingColumn, "vehicle performance KPI needs column %q", col)
		}
	}

	kpi, err := perf.GroupBy("vehicle_id",
		table.Aggregation{Column: "distance_traveled", Fn: table.AggSum},
		table.Aggregation{Column: "fuel_consumed", Fn: table.AggSum},
		table.Aggregation{Column: "delivery_time", Fn: table.AggMean},
		table.Aggregation{Column: "efficiency_score", Fn: table.AggMean},
	)
	if err != nil {
		return nil, err
	}

	ratios := make([]table.Value, kpi.NumRows())
	for row := range ratios {
		ratios[row] = table.GuardedDiv(kpi.At(row, "distance_traveled"), kpi.At(row, "fuel_consumed"))
	}
	if err := kpi.SetColumn("fuel_efficiency", ratios); err != nil {
		return nil, err
	}
	return kpi, nil
}

// InventoryTurnover aggregates the inventory fact per product: total sold
// against mean on-hand stock. The turnover ratio is null when a product's
// mean stock level is zero or unknown.
func InventoryTurnover(inv *table.Table) (*table.Table, error) {
	required := []string{"product_id", "quantity_sold", "quantity_on_hand"}
	for _, col := range required {
		if !inv.HasColumn(col) {
			return nil, errors.Newf(ErrMissingColumn, "inventory turnover KPI needs column %q", col)
		}
	}

	kpi, err := inv.GroupBy("product_id",
		table.Aggregation{Column: "quantity_sold", Fn: table.AggSum},
		table.Aggregation{Column: "quantity_on_hand", Fn: table.AggMean},
	)
	if err != nil {
		return nil, err
	}

	ratios := make([]table.Value, kpi.NumRows())
	for row := range ratios {
		ratios[row] = table.GuardedDiv(kpi.At(row, "quantity_sold"), kpi.At(row, "quantity_on_hand"))
	}
	if err := kpi.SetColumn("turnover_ratio", ratios); err != nil {
		return nil, err
	}
	return kpi, nil
}

// OnTimeDelivery computes the share of on-time deliveries per source table
// over the all-source union. A delivery is on time when its delivery date is
// on or before the estimate. Rows where either date is missing or
// unparseable are excluded, so only tables that actually record deliveries
// appear in the result.
func OnTimeDelivery(combined *table.Table) (*table.Table, error) {
	if !combined.HasAllColumns("delivery_date", "estimated_delivery") {
		return nil, errors.New(ErrMissingColumn, "on-time delivery KPI needs delivery_date and estimated_delivery", nil)
	}

	work := table.New(sourceTableColumn, "on_time")
	for row := 0; row < combined.NumRows(); row++ {
		delivered, okD := table.AsTime(combined.At(row, "delivery_date"))
		estimated, okE := table.AsTime(combined.At(row, "estimated_delivery"))
		if !okD || !okE {
			continue
		}
		work.AppendRow(
			combined.At(row, sourceTableColumn),
			table.Bool(!delivered.After(estimated)),
		)
	}

	kpi, err := work.GroupBy(sourceTableColumn,
		table.Aggregation{Column: "on_time", Fn: table.AggMean, As: "on_time_delivery_rate"},
	)
	if err != nil {
		return nil, err
	}
	if err := kpi.Rename(sourceTableColumn, "table_name"); err != nil {
		return nil, err
	}
	return kpi, nil
}

// FulfillmentRate computes the share of fulfilled orders per source table
// over the all-source union. Rows without an order status are excluded.
func FulfillmentRate(combined *table.Table) (*table.Table, error) {
	if !combined.HasColumn("order_status") {
		return nil, errors.New(ErrMissingColumn, "fulfillment rate KPI needs order_status", nil)
	}

	work := table.New(sourceTableColumn, "fulfilled")
	for row := 0; row < combined.NumRows(); row++ {
		status := combined.At(row, "order_status")
		if status.IsNull() {
			continue
		}
		work.AppendRow(
			combined.At(row, sourceTableColumn),
			table.Bool(status.StringValue() == "fulfilled"),
		)
	}

	kpi, err := work.GroupBy(sourceTableColumn,
		table.Aggregation{Column: "fulfilled", Fn: table.AggMean, As: "fulfillment_rate"},
	)
	if err != nil {
		return nil, err
	}
	if err := kpi.Rename(sourceTableColumn, "table_name"); err != nil {
		return nil, err
	}
	return kpi, nil
}

// CostEfficiency sums cost and revenue per source table over the all-source
// union and derives a revenue-to-cost ratio, null where total cost is zero.
// Rows carrying neither a cost nor a revenue figure are excluded.
func CostEfficiency(combined *table.Table) (*table.Table, error) {
	if !combined.HasAllColumns("cost", "revenue") {
		return nil, errors.New(ErrMissingColumn, "cost efficiency KPI needs cost and revenue", nil)
	}

	work := table.New(sourceTableColumn, "cost", "revenue")
	for row := 0; row < combined.NumRows(); row++ {
		cost := combined.At(row, "cost")
		revenue := combined.At(row, "revenue")
		_, okC := cost.Float64()
		_, okR := revenue.Float64()
		if !okC && !okR {
			continue
		}
		work.AppendRow(combined.At(row, sourceTableColumn), cost, revenue)
	}

	kpi, err := work.GroupBy(sourceTableColumn,
		table.Aggregation{Column: "cost", Fn: table.AggSum},
		table.Aggregation{Column: "revenue", Fn: table.AggSum},
	)
	if err != nil {
		return nil, err
	}

	ratios := make([]table.Value, kpi.NumRows())
	for row := range ratios {
		ratios[row] = table.GuardedDiv(kpi.At(row, "revenue"), kpi.At(row, "cost"))
	}
	if err := kpi.SetColumn("cost_efficiency_ratio", ratios); err != nil {
		return nil, err
	}
	return kpi, nil
}
