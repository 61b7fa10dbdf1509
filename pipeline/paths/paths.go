// Package paths centralizes the blob naming conventions of the gold layer so
// every stage and the status command agree on one layout.
package paths

import "strings"

// Gold container path prefixes, one per output stage.
const (
	DimensionPrefix = "dimensions/"
	FactPrefix      = "facts/"
	KPIPrefix       = "kpis/"
	AnalyticsPrefix = "analytics/"
)

// SilverSuffix marks blobs produced by the silver layer.
const SilverSuffix = "_silver.csv"

// RunMetadataBlob is the gold-container blob holding per-run bookkeeping.
const RunMetadataBlob = "gold_layer_metadata.json"

// DimensionPath returns the gold blob name for a dimension table.
func DimensionPath(name string) string {
	return DimensionPrefix + "dim_" + name + ".csv"
}

// FactPath returns the gold blob name for a fact table.
func FactPath(name string) string {
	return FactPrefix + "fact_" + name + ".csv"
}

// KPIPath returns the gold blob name for a KPI table.
func KPIPath(name string) string {
	return KPIPrefix + name + ".csv"
}

// AnalyticsPath returns the gold blob name for an analytics view.
func AnalyticsPath(name string) string {
	return AnalyticsPrefix + name + ".csv"
}

// IsSilverBlob reports whether a silver-container blob was produced by the
// silver layer and should feed the gold transformation.
func IsSilverBlob(name string) bool {
	return strings.HasSuffix(name, SilverSuffix)
}

// SourceTableName strips the silver suffix to recover the logical source
// table name used as a grouping key by the supply-chain KPIs.
func SourceTableName(blobName string) string {
	return strings.TrimSuffix(blobName, SilverSuffix)
}
