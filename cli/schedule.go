package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/aldress/medallion/pipeline/config"
	"github.com/aldress/medallion/pipeline/gold"
	"github.com/aldress/medallion/pipeline/schedule"
	"github.com/aldress/medallion/pkg/errors"
	"github.com/spf13/cobra"
)

var scheduleCron string

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the transformation repeatedly on a cron schedule",
	RunE:  runScheduled,
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "", "cron expression overriding the configured schedule")
	rootCmd.AddCommand(scheduleCmd)
}

func runScheduled(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if scheduleCron != "" {
		cfg.Pipeline.Schedule = scheduleCron
	}
	if cfg.Pipeline.Schedule == "" {
		return errors.New(config.ErrScheduleInvalid, "no cron schedule configured, set pipeline.schedule or --cron", nil)
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

	if err := processor.Probe(ctx); err != nil {
		return err
	}

	scheduler := schedule.NewScheduler(logger)
	err = scheduler.Add(cfg.Pipeline.Schedule, "silver-to-gold", func(jobCtx context.Context) {
		stats, err := processor.Run(jobCtx, gold.Options{})
		if err != nil {
			logger.Error().Err(err).Msg("Scheduled run failed")
			return
		}
		logger.Info().
			Int("dimensions", stats.DimensionsCreated).
			Int("facts", stats.FactsCreated).
			Int("kpis", stats.KPIsCalculated).
			Int("views", stats.ViewsCreated).
			Int("failed", stats.FailedOperations).
			Msg("Scheduled run completed")
	})
	if err != nil {
		return err
	}

	scheduler.Start()
	<-ctx.Done()
	scheduler.Stop()
	return nil
}
