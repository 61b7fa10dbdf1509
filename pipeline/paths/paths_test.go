package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoldLayout(t *testing.T) {
	assert.Equal(t, "dimensions/dim_customer.csv", DimensionPath("customer"))
	assert.Equal(t, "facts/fact_orders.csv", FactPath("orders"))
	assert.Equal(t, "kpis/daily_revenue.csv", KPIPath("daily_revenue"))
	assert.Equal(t, "analytics/revenue_analytics.csv", AnalyticsPath("revenue_analytics"))
}

func TestSilverNaming(t *testing.T) {
	assert.True(t, IsSilverBlob("orders_2024_silver.csv"))
	assert.False(t, IsSilverBlob("orders_2024.csv"))
	assert.False(t, IsSilverBlob("orders_silver.csv.bak"))
	assert.Equal(t, "orders_2024", SourceTableName("orders_2024_silver.csv"))
}
