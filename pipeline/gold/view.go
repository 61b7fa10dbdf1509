package gold

import (
	"github.com/aldress/medallion/pipeline/table"
)

// RevenueAnalytics enriches the daily revenue KPI with calendar attributes
// from the time dimension, joined on the day.
func RevenueAnalytics(dailyRevenue, dimTime *table.Table) (*table.Table, error) {
	return dailyRevenue.LeftJoin(dimTime, "date",
		"year", "quarter", "month", "month_name", "day_name")
}

// PerformanceAnalytics enriches the vehicle performance KPI with descriptive
// attributes from the vehicle dimension.
func PerformanceAnalytics(vehiclePerformance, dimVehicle *table.Table) (*table.Table, error) {
	return vehiclePerformance.LeftJoin(dimVehicle, "vehicle_id",
		"vehicle_type", "make", "model")
}

// InventoryAnalytics enriches the inventory turnover KPI with descriptive
// attributes from the product dimension.
func InventoryAnalytics(inventoryTurnover, dimProduct *table.Table) (*table.Table, error) {
	return inventoryTurnover.LeftJoin(dimProduct, "product_id",
		"product_name", "product_category")
}
