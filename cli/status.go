package cli

import (
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/aldress/medallion/pipeline/config"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the contents of the silver and gold containers",
	RunE:  showStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func showStatus(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := config.SetupLogger(cfg)
	if err != nil {
		return err
	}

	processor, err := newProcessor(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	status, err := processor.Status(ctx)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))

	if last, err := processor.LastRun(ctx); err == nil {
		cmd.Printf("Last run: %s (completed %s)\n", last.RunID, last.CompletedAt)
	}
	return nil
}
