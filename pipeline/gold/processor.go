package gold

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aldress/medallion/pipeline/blobstore"
	"github.com/aldress/medallion/pipeline/paths"
	"github.com/aldress/medallion/pipeline/table"
	"github.com/aldress/medallion/pkg/errors"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Stats summarizes one silver-to-gold run.
type Stats struct {
	TotalSilverFiles  int `json:"total_silver_files"`
	DimensionsCreated int `json:"dimensions_created"`
	FactsCreated      int `json:"facts_created"`
	KPIsCalculated    int `json:"kpis_calculated"`
	ViewsCreated      int `json:"views_created"`
	FailedOperations  int `json:"failed_operations"`
}

// Status describes the current contents of the silver and gold containers.
type Status struct {
	SilverContainer string        `json:"silver_container"`
	GoldContainer   string        `json:"gold_container"`
	SilverFiles     int           `json:"silver_files"`
	GoldFiles       int           `json:"gold_files"`
	Dimensions      int           `json:"dimensions"`
	Facts           int           `json:"facts"`
	KPIs            int           `json:"kpis"`
	AnalyticsViews  int           `json:"analytics_views"`
	LastProcessing  string        `json:"last_processing"`
	GoldStructure   GoldStructure `json:"gold_structure"`
}

// GoldStructure lists the gold container's blobs per output stage.
type GoldStructure struct {
	Dimensions []string `json:"dimensions"`
	Facts      []string `json:"facts"`
	KPIs       []string `json:"kpis"`
	Analytics  []string `json:"analytics"`
}

// RunMetadata is the bookkeeping record written to the gold container after
// every run.
type RunMetadata struct {
	RunID           string `json:"run_id"`
	SilverContainer string `json:"silver_container"`
	GoldContainer   string `json:"gold_container"`
	StorageEngine   string `json:"storage_engine"`
	StartedAt       string `json:"started_at"`
	CompletedAt     string `json:"completed_at"`
	Stats           Stats  `json:"stats"`
}

// Options restricts a run to a subset of the output stages. Analytics views
// need both dimensions and KPIs, so they are only produced on full runs.
type Options struct {
	DimensionsOnly bool
	FactsOnly      bool
	KPIsOnly       bool
}

func (o Options) full() bool {
	return !o.DimensionsOnly && !o.FactsOnly && !o.KPIsOnly
}

// Processor runs the silver-to-gold transformation against a blob store.
type Processor struct {
	store  blobstore.Store
	silver string
	gold   string
	logger zerolog.Logger

	// now is swappable so tests can pin the calendar.
	now func() time.Time
}

// NewProcessor creates a processor reading silver from one container and
// writing the star schema to another.
func NewProcessor(store blobstore.Store, silverContainer, goldContainer string, logger zerolog.Logger) *Processor {
	return &Processor{
		store:  store,
		silver: silverContainer,
		gold:   goldContainer,
		logger: logger.With().Str("component", "gold-processor").Logger(),
		now:    time.Now,
	}
}

// classified holds everything one scan over the silver container produces.
type classified struct {
	totalBlobs int
	dimensions map[string][]*table.Table
	facts      map[string][]*table.Table
	union      []*table.Table
}

// scanSilver lists the silver container once, decodes every silver CSV and
// routes each table through the classifier. Download or decode failures skip
// the file and count as failed operations.
func (p *Processor) scanSilver(ctx context.Context, stats *Stats) (*classified, error) {
	blobs, err := p.store.List(ctx, p.silver, "")
	if err != nil {
		return nil, errors.New(ErrListFailed, "failed to list silver container", err).
			AddContext("container", p.silver)
	}

	rules := ClassifierRules()
	hits := make(map[string]bool, len(rules))

	out := &classified{
		totalBlobs: len(blobs),
		dimensions: make(map[string][]*table.Table),
		facts:      make(map[string][]*table.Table),
	}

	for _, blob := range blobs {
		if err := ctx.Err(); err != nil {
			return nil, errors.New(ErrRunCanceled, "run canceled while scanning silver container", err)
		}
		if !paths.IsSilverBlob(blob.Name) {
			continue
		}

		data, err := p.store.Get(ctx, p.silver, blob.Name)
		if err != nil {
			p.logger.Error().Err(err).Str("blob", blob.Name).Msg("Failed to download silver blob")
			stats.FailedOperations++
			continue
		}

		sourceName := paths.SourceTableName(blob.Name)
		tbl, err := table.ReadCSV(bytes.NewReader(data), sourceName)
		if err != nil {
			p.logger.Error().Err(err).Str("blob", blob.Name).Msg("Failed to decode silver blob")
			stats.FailedOperations++
			continue
		}
		p.logger.Info().Str("blob", blob.Name).
			Int("rows", tbl.NumRows()).Int("columns", tbl.NumColumns()).
			Msg("Downloaded silver blob")

		for _, rule := range rules {
			if !rule.Matches(blob.Name, tbl) {
				continue
			}
			hits[rule.Category] = true
			extract := rule.Extract(tbl)
			if rule.Kind == KindDimension {
				out.dimensions[rule.Category] = append(out.dimensions[rule.Category], extract)
			} else {
				out.facts[rule.Category] = append(out.facts[rule.Category], extract)
			}
		}

		// The all-source union feeds the supply-chain KPIs.
		tagged := tbl.Project(tbl.Columns()...)
		source := make([]table.Value, tagged.NumRows())
		for i := range source {
			source[i] = table.String(sourceName)
		}
		if err := tagged.SetColumn(sourceTableColumn, source); err == nil {
			out.union = append(out.union, tagged)
		}
	}

	for _, rule := range rules {
		if !hits[rule.Category] {
			p.logger.Warn().Str("category", rule.Category).Str("kind", rule.Kind.String()).
				Msg("Classifier rule matched no silver files")
		}
	}

	return out, nil
}

// Run executes the silver-to-gold transformation: dimensions, facts, KPIs
// and analytics views, in that order. Individual table failures are logged
// and counted; only storage-level failures abort the run.
func (p *Processor) Run(ctx context.Context, opts Options) (*Stats, error) {
	runID := ulid.Make().String()
	logger := p.logger.With().Str("run_id", runID).Logger()
	startedAt := p.now()
	stats := &Stats{}

	if err := p.store.EnsureContainer(ctx, p.gold); err != nil {
		return stats, errors.New(ErrContainerSetup, "failed to ensure gold container", err).
			AddContext("container", p.gold)
	}

	logger.Info().Str("silver", p.silver).Str("gold", p.gold).Msg("Starting gold layer processing")

	scan, err := p.scanSilver(ctx, stats)
	if err != nil {
		return stats, err
	}
	stats.TotalSilverFiles = scan.totalBlobs

	runDimensions := opts.full() || opts.DimensionsOnly
	runFacts := opts.full() || opts.FactsOnly
	runKPIs := opts.full() || opts.KPIsOnly
	runViews := opts.full()

	var dimensions map[string]*table.Table
	if runDimensions || runViews {
		dimensions = p.buildDimensions(logger, scan)
	}
	if runDimensions {
		stats.DimensionsCreated = len(dimensions)
		for _, name := range dimensionNames(dimensions) {
			p.upload(ctx, logger, stats, paths.DimensionPath(name), dimensions[name], "dimension")
		}
	}

	var facts map[string]*table.Table
	if runFacts || runKPIs {
		facts = p.buildFacts(logger, scan)
	}
	if runFacts {
		stats.FactsCreated = len(facts)
		for _, category := range FactOrder() {
			if fact, ok := facts[category]; ok {
				p.upload(ctx, logger, stats, paths.FactPath(category), fact, "fact")
			}
		}
	}

	var kpis map[string]*table.Table
	var kpiOrder []string
	if runKPIs {
		kpis, kpiOrder = p.buildKPIs(logger, facts, scan.union, stats)
		stats.KPIsCalculated = len(kpis)
		for _, name := range kpiOrder {
			p.upload(ctx, logger, stats, paths.KPIPath(name), kpis[name], "kpi")
		}
	}

	if runViews {
		views, viewOrder := p.buildViews(logger, kpis, dimensions, stats)
		stats.ViewsCreated = len(views)
		for _, name := range viewOrder {
			p.upload(ctx, logger, stats, paths.AnalyticsPath(name), views[name], "analytics_view")
		}
	}

	if err := p.writeRunMetadata(ctx, runID, startedAt, stats); err != nil {
		logger.Error().Err(err).Msg("Failed to write run metadata")
		stats.FailedOperations++
	}

	logger.Info().
		Int("silver_files", stats.TotalSilverFiles).
		Int("dimensions", stats.DimensionsCreated).
		Int("facts", stats.FactsCreated).
		Int("kpis", stats.KPIsCalculated).
		Int("views", stats.ViewsCreated).
		Int("failed", stats.FailedOperations).
		Msg("Gold layer processing completed")

	return stats, ctx.Err()
}

func (p *Processor) buildDimensions(logger zerolog.Logger, scan *classified) map[string]*table.Table {
	dimensions := make(map[string]*table.Table)
	for _, category := range DimensionOrder() {
		parts := scan.dimensions[category]
		if len(parts) == 0 {
			continue
		}
		dim, err := BuildDimension(category, parts)
		if err != nil {
			logger.Error().Err(err).Str("dimension", category).Msg("Failed to build dimension")
			continue
		}
		dimensions[category] = dim
		logger.Info().Str("dimension", category).Int("records", dim.NumRows()).Msg("Created dimension")
	}

	timeDim := BuildTimeDimension(p.now())
	dimensions["time"] = timeDim
	logger.Info().Str("dimension", "time").Int("records", timeDim.NumRows()).Msg("Created dimension")
	return dimensions
}

func (p *Processor) buildFacts(logger zerolog.Logger, scan *classified) map[string]*table.Table {
	facts := make(map[string]*table.Table)
	for _, category := range FactOrder() {
		parts := scan.facts[category]
		if len(parts) == 0 {
			continue
		}
		fact, err := BuildFact(category, parts)
		if err != nil {
			logger.Error().Err(err).Str("fact", category).Msg("Failed to build fact")
			continue
		}
		facts[category] = fact
		logger.Info().Str("fact", category).Int("records", fact.NumRows()).Msg("Created fact")
	}
	return facts
}

// kpiSpec binds a KPI name to its computation so each one can fail on its
// own without taking the rest of the stage down.
type kpiSpec struct {
	name    string
	compute func() (*table.Table, error)
}

func (p *Processor) buildKPIs(logger zerolog.Logger, facts map[string]*table.Table, union []*table.Table, stats *Stats) (map[string]*table.Table, []string) {
	var specs []kpiSpec

	if orders, ok := facts["orders"]; ok {
		specs = append(specs,
			kpiSpec{"daily_revenue", func() (*table.Table, error) { return DailyRevenue(orders) }},
			kpiSpec{"monthly_revenue", func() (*table.Table, error) { return MonthlyRevenue(orders) }},
		)
	}
	if perf, ok := facts["performance"]; ok {
		specs = append(specs, kpiSpec{"vehicle_performance", func() (*table.Table, error) { return VehiclePerformance(perf) }})
	}
	if inv, ok := facts["inventory"]; ok {
		specs = append(specs, kpiSpec{"inventory_turnover", func() (*table.Table, error) { return InventoryTurnover(inv) }})
	}

	if len(union) > 0 {
		combined := table.Concat(union...)
		if combined.HasAllColumns("delivery_date", "estimated_delivery") {
			specs = append(specs, kpiSpec{"on_time_delivery", func() (*table.Table, error) { return OnTimeDelivery(combined) }})
		}
		if combined.HasColumn("order_status") {
			specs = append(specs, kpiSpec{"fulfillment_rate", func() (*table.Table, error) { return FulfillmentRate(combined) }})
		}
		if combined.HasAllColumns("cost", "revenue") {
			specs = append(specs, kpiSpec{"cost_efficiency", func() (*table.Table, error) { return CostEfficiency(combined) }})
		}
	}

	kpis := make(map[string]*table.Table)
	var order []string
	for _, spec := range specs {
		kpi, err := spec.compute()
		if err != nil {
			if errors.IsCode(err, ErrNoCandidates) {
				logger.Debug().Str("kpi", spec.name).Msg("Skipping KPI, no usable rows")
				continue
			}
			logger.Error().Err(err).Str("kpi", spec.name).Msg("Failed to calculate KPI")
			stats.FailedOperations++
			continue
		}
		kpis[spec.name] = kpi
		order = append(order, spec.name)
		logger.Info().Str("kpi", spec.name).Int("records", kpi.NumRows()).Msg("Calculated KPI")
	}
	return kpis, order
}

func (p *Processor) buildViews(logger zerolog.Logger, kpis, dimensions map[string]*table.Table, stats *Stats) (map[string]*table.Table, []string) {
	type viewSpec struct {
		name    string
		kpi     string
		dim     string
		compute func(kpi, dim *table.Table) (*table.Table, error)
	}

	specs := []viewSpec{
		{"revenue_analytics", "daily_revenue", "time", RevenueAnalytics},
		{"performance_analytics", "vehicle_performance", "vehicle", PerformanceAnalytics},
		{"inventory_analytics", "inventory_turnover", "product", InventoryAnalytics},
	}

	views := make(map[string]*table.Table)
	var order []string
	for _, spec := range specs {
		kpi, haveKPI := kpis[spec.kpi]
		dim, haveDim := dimensions[spec.dim]
		if !haveKPI || !haveDim {
			continue
		}
		view, err := spec.compute(kpi, dim)
		if err != nil {
			logger.Error().Err(err).Str("view", spec.name).Msg("Failed to create analytics view")
			stats.FailedOperations++
			continue
		}
		views[spec.name] = view
		order = append(order, spec.name)
		logger.Info().Str("view", spec.name).Int("records", view.NumRows()).Msg("Created analytics view")
	}
	return views, order
}

// upload encodes a table as CSV and writes it to the gold container with
// descriptive blob metadata. Failures are logged and counted, never fatal.
func (p *Processor) upload(ctx context.Context, logger zerolog.Logger, stats *Stats, blobName string, tbl *table.Table, tableType string) {
	var buf bytes.Buffer
	if err := tbl.WriteCSV(&buf); err != nil {
		logger.Error().Err(err).Str("blob", blobName).Msg("Failed to encode table")
		stats.FailedOperations++
		return
	}

	metadata := map[string]string{
		"source_silver_blob":   blobName,
		"processing_timestamp": p.now().Format(time.RFC3339),
		"row_count":            strconv.Itoa(tbl.NumRows()),
		"column_count":         strconv.Itoa(tbl.NumColumns()),
		"data_types":           formatDataTypes(tbl.DataTypes()),
		"layer":                "gold",
		"table_type":           tableType,
	}

	if err := p.store.Put(ctx, p.gold, blobName, buf.Bytes(), metadata, true); err != nil {
		logger.Error().Err(err).Str("blob", blobName).Msg("Failed to upload to gold container")
		stats.FailedOperations++
		return
	}
	logger.Info().Str("blob", blobName).Int("rows", tbl.NumRows()).Msg("Uploaded to gold")
}

func (p *Processor) writeRunMetadata(ctx context.Context, runID string, startedAt time.Time, stats *Stats) error {
	record := RunMetadata{
		RunID:           runID,
		SilverContainer: p.silver,
		GoldContainer:   p.gold,
		StorageEngine:   p.store.Type(),
		StartedAt:       startedAt.Format(time.RFC3339),
		CompletedAt:     p.now().Format(time.RFC3339),
		Stats:           *stats,
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return errors.New(ErrMetadataWriteFailed, "failed to marshal run metadata", err)
	}
	if err := p.store.Put(ctx, p.gold, paths.RunMetadataBlob, data, map[string]string{"layer": "gold"}, true); err != nil {
		return errors.New(ErrMetadataWriteFailed, "failed to upload run metadata", err)
	}
	return nil
}

// LastRun reads the bookkeeping record left by the most recent run, if any.
func (p *Processor) LastRun(ctx context.Context) (*RunMetadata, error) {
	data, err := p.store.Get(ctx, p.gold, paths.RunMetadataBlob)
	if err != nil {
		return nil, err
	}
	var record RunMetadata
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.New(ErrMetadataWriteFailed, "failed to parse run metadata", err)
	}
	return &record, nil
}

// Probe checks that the configured containers are reachable. Called once at
// startup so storage misconfiguration fails fast instead of surfacing as a
// skipped run.
func (p *Processor) Probe(ctx context.Context) error {
	if err := p.store.EnsureContainer(ctx, p.silver); err != nil {
		return errors.New(ErrContainerSetup, "silver container is not reachable", err).
			AddContext("container", p.silver)
	}
	if err := p.store.EnsureContainer(ctx, p.gold); err != nil {
		return errors.New(ErrContainerSetup, "gold container is not reachable", err).
			AddContext("container", p.gold)
	}
	return nil
}

// Status reports the contents of both containers without transforming
// anything.
func (p *Processor) Status(ctx context.Context) (*Status, error) {
	silverBlobs, err := p.store.List(ctx, p.silver, "")
	if err != nil {
		return nil, errors.New(ErrListFailed, "failed to list silver container", err)
	}
	goldBlobs, err := p.store.List(ctx, p.gold, "")
	if err != nil {
		return nil, errors.New(ErrListFailed, "failed to list gold container", err)
	}

	status := &Status{
		SilverContainer: p.silver,
		GoldContainer:   p.gold,
		SilverFiles:     len(silverBlobs),
		GoldFiles:       len(goldBlobs),
		LastProcessing:  p.now().Format(time.RFC3339),
	}
	for _, blob := range goldBlobs {
		switch {
		case strings.HasPrefix(blob.Name, paths.DimensionPrefix):
			status.GoldStructure.Dimensions = append(status.GoldStructure.Dimensions, blob.Name)
		case strings.HasPrefix(blob.Name, paths.FactPrefix):
			status.GoldStructure.Facts = append(status.GoldStructure.Facts, blob.Name)
		case strings.HasPrefix(blob.Name, paths.KPIPrefix):
			status.GoldStructure.KPIs = append(status.GoldStructure.KPIs, blob.Name)
		case strings.HasPrefix(blob.Name, paths.AnalyticsPrefix):
			status.GoldStructure.Analytics = append(status.GoldStructure.Analytics, blob.Name)
		}
	}
	status.Dimensions = len(status.GoldStructure.Dimensions)
	status.Facts = len(status.GoldStructure.Facts)
	status.KPIs = len(status.GoldStructure.KPIs)
	status.AnalyticsViews = len(status.GoldStructure.Analytics)
	return status, nil
}

// dimensionNames returns built dimension categories in build order, with the
// generated time dimension last.
func dimensionNames(dimensions map[string]*table.Table) []string {
	var names []string
	for _, category := range DimensionOrder() {
		if _, ok := dimensions[category]; ok {
			names = append(names, category)
		}
	}
	if _, ok := dimensions["time"]; ok {
		names = append(names, "time")
	}
	return names
}

func formatDataTypes(types map[string]string) string {
	keys := make([]string, 0, len(types))
	for k := range types {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(types[k])
	}
	sb.WriteByte('}')
	return sb.String()
}
