package gold

import (
	"strings"

	"github.com/aldress/medallion/pipeline/table"
)

// TableKind distinguishes the two star-schema table families a silver file
// can contribute to.
type TableKind int

const (
	KindDimension TableKind = iota
	KindFact
)

func (k TableKind) String() string {
	if k == KindFact {
		return "fact"
	}
	return "dimension"
}

// Rule declares one classification of silver files into a gold table.
//
// A file matches when its blob name contains any of the name tokens (all
// files match when the token list is empty) and its table carries at least
// one of the rule's columns. Matching tables contribute their projection
// onto Columns, in that order. Rules are evaluated independently, so one
// file can feed several gold tables.
type Rule struct {
	Category   string
	Kind       TableKind
	NameTokens []string
	Columns    []string
}

// Matches reports whether a silver blob feeds this rule's gold table.
func (r Rule) Matches(blobName string, tbl *table.Table) bool {
	if len(r.NameTokens) > 0 {
		matched := false
		lower := strings.ToLower(blobName)
		for _, token := range r.NameTokens {
			if strings.Contains(lower, token) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return tbl.HasAnyColumn(r.Columns...)
}

// Extract returns the rule's projection of a matching table. Absent columns
// are skipped, so the result carries the intersection with the allow-list in
// allow-list order.
func (r Rule) Extract(tbl *table.Table) *table.Table {
	return tbl.Project(r.Columns...)
}

// ClassifierRules is the full classification vocabulary, dimensions first.
// The supply_chain rule is carried from the upstream schema even though no
// silver producer currently emits a matching filename; the processor logs a
// warning for any rule that matches nothing over a run.
func ClassifierRules() []Rule {
	return []Rule{
		{
			Category:   "customer",
			Kind:       KindDimension,
			NameTokens: []string{"orders", "order_items"},
			Columns:    []string{"customer_id", "customer_name", "customer_email", "customer_phone", "customer_type"},
		},
		{
			Category:   "product",
			Kind:       KindDimension,
			NameTokens: []string{"orders", "order_items"},
			Columns:    []string{"product_id", "product_name", "product_category", "product_price", "product_weight"},
		},
		{
			Category:   "vehicle",
			Kind:       KindDimension,
			NameTokens: []string{"vehicles"},
			Columns:    []string{"vehicle_id", "vehicle_type", "make", "model", "year", "capacity", "fuel_type"},
		},
		{
			Category:   "supplier",
			Kind:       KindDimension,
			NameTokens: []string{"suppliers"},
			Columns:    []string{"supplier_id", "supplier_name", "contact_person", "email", "phone", "rating"},
		},
		{
			Category:   "warehouse",
			Kind:       KindDimension,
			NameTokens: []string{"warehouses"},
			Columns:    []string{"warehouse_id", "warehouse_name", "location", "city", "country", "capacity"},
		},
		{
			// Location data can come from any silver file.
			Category: "geography",
			Kind:     KindDimension,
			Columns:  []string{"city", "country", "latitude", "longitude", "region"},
		},
		{
			Category:   "orders",
			Kind:       KindFact,
			NameTokens: []string{"orders"},
			Columns:    []string{"order_id", "customer_id", "product_id", "order_date", "quantity", "unit_price", "total_amount"},
		},
		{
			Category:   "performance",
			Kind:       KindFact,
			NameTokens: []string{"performance"},
			Columns:    []string{"vehicle_id", "date", "distance_traveled", "fuel_consumed", "delivery_time", "efficiency_score"},
		},
		{
			Category:   "fuel_consumption",
			Kind:       KindFact,
			NameTokens: []string{"fuel"},
			Columns:    []string{"vehicle_id", "date", "fuel_type", "fuel_consumed", "cost", "efficiency"},
		},
		{
			Category:   "inventory",
			Kind:       KindFact,
			NameTokens: []string{"inventory"},
			Columns:    []string{"product_id", "warehouse_id", "date", "quantity_on_hand", "quantity_ordered", "quantity_sold"},
		},
		{
			Category:   "supply_chain",
			Kind:       KindFact,
			NameTokens: []string{"supply_chain_metrics"},
			Columns:    []string{"date", "warehouse_id", "supplier_id", "inventory_turnover", "stock_accuracy", "fulfillment_rate", "delivery_rate", "customer_satisfaction"},
		},
	}
}

// DimensionOrder lists dimension categories in their build order.
func DimensionOrder() []string {
	return []string{"customer", "product", "vehicle", "supplier", "warehouse", "geography"}
}

// FactOrder lists fact categories in their build order.
func FactOrder() []string {
	return []string{"orders", "performance", "fuel_consumption", "inventory", "supply_chain"}
}
