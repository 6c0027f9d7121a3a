package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Hecoloko/procurement-app-sub000/config"
	"github.com/Hecoloko/procurement-app-sub000/internal/api"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long:  `Start the HTTP API server for carts, orders, purchase orders and billing`,
	RunE:  runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
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

	deps, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer deps.tracer.Close()
	defer deps.cache.Close()

	server := api.NewServer(cfg, api.Deps{
		CartService:    deps.cartService,
		OrderService:   deps.orderService,
		BillingService: deps.billingService,
		Billback:       deps.billback,
		Loader:         deps.loader,
		Elastic:        deps.elastic,
		Metrics:        deps.metrics,
		Tracer:         deps.tracer,
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Server error")
		}
	}()

	<-ctx.Done()

	if err := server.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Shutting down API server")
	return nil
}
