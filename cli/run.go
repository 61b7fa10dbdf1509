package cli

import (
	"os/signal"
	"syscall"

	"github.com/aldress/medallion/pipeline/config"
	"github.com/aldress/medallion/pipeline/gold"
	"github.com/spf13/cobra"
)

var (
	runSilverContainer string
	runGoldContainer   string
	runDimensionsOnly  bool
	runFactsOnly       bool
	runKPIsOnly        bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the silver-to-gold transformation once",
	RunE:  runGold,
}

func init() {
	runCmd.Flags().StringVar(&runSilverContainer, "silver-container", "", "override the silver container name")
	runCmd.Flags().StringVar(&runGoldContainer, "gold-container", "", "override the gold container name")
	runCmd.Flags().BoolVar(&runDimensionsOnly, "dimensions-only", false, "only build and upload dimension tables")
	runCmd.Flags().BoolVar(&runFactsOnly, "facts-only", false, "only build and upload fact tables")
	runCmd.Flags().BoolVar(&runKPIsOnly, "kpis-only", false, "only calculate and upload KPI tables")
	runCmd.MarkFlagsMutuallyExclusive("dimensions-only", "facts-only", "kpis-only")
	rootCmd.AddCommand(runCmd)
}

func runGold(cmd *cobra.Command, args []string) error {
	cfg, fromFile, err := loadConfig()
	if err != nil {
		return err
	}
	if runSilverContainer != "" {
		cfg.Pipeline.SilverContainer = runSilverContainer
	}
	if runGoldContainer != "" {
		cfg.Pipeline.GoldContainer = runGoldContainer
	}

	logger, err := config.SetupLogger(cfg)
	if err != nil {
		return err
	}
	if !fromFile {
		logger.Info().Msg("Using default configuration")
	}

	processor, err := newProcessor(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := processor.Probe(ctx); err != nil {
		return err
	}

	stats, err := processor.Run(ctx, gold.Options{
		DimensionsOnly: runDimensionsOnly,
		FactsOnly:      runFactsOnly,
		KPIsOnly:       runKPIsOnly,
	})
	if err != nil {
		return err
	}

	printSummary(cmd, stats)
	return nil
}

func printSummary(cmd *cobra.Command, stats *gold.Stats) {
	divider := "=================================================="
	cmd.Println()
	cmd.Println(divider)
	cmd.Println("GOLD LAYER PROCESSING SUMMARY")
	cmd.Println(divider)
	cmd.Printf("Total silver files: %d\n", stats.TotalSilverFiles)
	cmd.Printf("Dimensions created: %d\n", stats.DimensionsCreated)
	cmd.Printf("Facts created: %d\n", stats.FactsCreated)
	cmd.Printf("KPIs calculated: %d\n", stats.KPIsCalculated)
	cmd.Printf("Analytics views created: %d\n", stats.ViewsCreated)
	cmd.Printf("Failed operations: %d\n", stats.FailedOperations)
	cmd.Println(divider)
}
