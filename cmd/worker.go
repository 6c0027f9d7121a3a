package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Hecoloko/procurement-app-sub000/config"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long:  `Start the background worker to spawn recurring carts and process payment updates from Azure Service Bus`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	deps, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer deps.tracer.Close()
	defer deps.cache.Close()

	// Payment updates arrive over the service bus from the AP system
	if deps.bus != nil {
		g.Go(func() error {
			log.Info().Str("queue", cfg.Azure.PaymentQueueName).Msg("Starting Azure Service Bus processor")
			return deps.bus.ProcessMessages(ctx, deps.billingService.ProcessPaymentMessage)
		})
	} else {
		log.Warn().Msg("Service Bus not configured, queued payment updates will not be processed")
	}

	g.Go(func() error {
		return runRecurrenceScheduler(ctx, cfg, deps)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker error")
		return err
	}

	log.Info().Msg("Worker shutting down gracefully")
	return nil
}

// runRecurrenceScheduler runs the daily template sweep plus a coarser
// interval job that catches anything the daily run missed. Per-template
// idempotency makes the overlap harmless.
func runRecurrenceScheduler(ctx context.Context, cfg config.Config, deps *appDeps) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(
			gocron.NewAtTime(uint(cfg.Worker.RecurrenceHour), 0, 0),
		)),
		gocron.NewTask(func() {
			log.Info().Msg("Running daily template recurrence sweep")
			runRecurrenceSweep(ctx, deps)
		}),
	)
	if err != nil {
		return err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.Worker.FallbackInterval),
		gocron.NewTask(func() {
			log.Info().Msg("Running fallback recurrence sweep to catch any missed templates")
			runRecurrenceSweep(ctx, deps)
		}),
	)
	if err != nil {
		return err
	}

	scheduler.Start()

	<-ctx.Done()

	return scheduler.Shutdown()
}

// runRecurrenceSweep evaluates the templates of every company
func runRecurrenceSweep(ctx context.Context, deps *appDeps) {
	companies, err := deps.referenceRepo.ListCompanies(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list companies for recurrence sweep")
		return
	}

	now := time.Now()
	total := 0
	for _, company := range companies {
		spawned, err := deps.cartService.RunRecurrence(ctx, company.ID, now)
		if err != nil {
			log.Error().Err(err).
				Str("company_id", company.ID.String()).
				Msg("Recurrence run failed for company")
			continue
		}
		total += spawned
	}

	log.Info().Int("companies", len(companies)).Int("spawned", total).Msg("Recurrence sweep finished")
}
