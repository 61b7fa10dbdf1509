package gold

import (
	"github.com/aldress/medallion/pipeline/table"
	"github.com/aldress/medallion/pkg/errors"
)

// BuildFact concatenates the classified extracts for one fact category.
// Unlike dimensions, facts keep duplicate rows. The orders fact derives
// total_amount from quantity and unit_price whenever both are present,
// replacing any value carried over from silver.
func BuildFact(category string, parts []*table.Table) (*table.Table, error) {
	if len(parts) == 0 {
		return nil, errors.Newf(ErrNoCandidates, "no silver data for fact %q", category)
	}

	fact := table.Concat(parts...)
	fact.Source = category

	if category == "orders" && fact.HasAllColumns("quantity", "unit_price") {
		if err := deriveTotalAmount(fact); err != nil {
			return nil, err
		}
	}
	return fact, nil
}

// deriveTotalAmount sets total_amount = quantity * unit_price per row. Rows
// where either operand is null or non-numeric get a null total.
func deriveTotalAmount(fact *table.Table) error {
	totals := make([]table.Value, fact.NumRows())
	for row := range totals {
		qty, okQty := fact.At(row, "quantity").Float64()
		price, okPrice := fact.At(row, "unit_price").Float64()
		if !okQty || !okPrice {
			totals[row] = table.Null()
			continue
		}
		totals[row] = table.Float(qty * price)
	}
	return fact.SetColumn("total_amount", totals)
}
