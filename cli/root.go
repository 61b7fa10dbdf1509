package cli

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "medallion",
	Short: "Silver-to-gold transformation for the medallion lakehouse",
	Long: `Medallion turns cleaned silver-layer CSV files in object storage into a
gold-layer star schema: dimension tables with surrogate keys, fact tables,
KPI aggregates and denormalized analytics views.`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file")
}
