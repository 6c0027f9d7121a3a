package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Hecoloko/procurement-app-sub000/config"
	"github.com/Hecoloko/procurement-app-sub000/internal/mapper"
)

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a legacy data export",
	Long:  `Import carts, orders, purchase orders and products from a JSON export of the hosted backend`,
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "path to the JSON export file")
	importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

// legacyExport mirrors the hosted backend's export document
type legacyExport struct {
	Carts          []mapper.CartRecord          `json:"carts"`
	Orders         []mapper.OrderRecord         `json:"orders"`
	PurchaseOrders []mapper.PurchaseOrderRecord `json:"purchase_orders"`
	Products       []mapper.ProductRecord       `json:"products"`
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(importFile)
	if err != nil {
		return errors.Wrap(err, "failed to read export file")
	}

	var export legacyExport
	if err := json.Unmarshal(data, &export); err != nil {
		return errors.Wrap(err, "failed to parse export file")
	}

	deps, err := buildDeps(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	imported := 0

	for _, raw := range export.Products {
		product := mapper.ProductFromRecord(raw)
		if err := deps.catalogRepo.CreateProduct(ctx, &product); err != nil {
			log.Error().Err(err).Str("product_id", raw.ID).Msg("Failed to import product")
			continue
		}
		imported++
	}

	for _, raw := range export.Carts {
		cart := mapper.CartFromRecord(raw)
		if err := deps.cartRepo.Create(ctx, &cart); err != nil {
			log.Error().Err(err).Str("cart_id", raw.ID).Msg("Failed to import cart")
			continue
		}
		imported++
	}

	for _, raw := range export.Orders {
		order := mapper.OrderFromRecord(raw)
		if err := deps.orderRepo.Create(ctx, &order); err != nil {
			log.Error().Err(err).Str("order_id", raw.ID).Msg("Failed to import order")
			continue
		}
		imported++
	}

	for _, raw := range export.PurchaseOrders {
		po := mapper.PurchaseOrderFromRecord(raw)
		if err := deps.poRepo.Create(ctx, &po); err != nil {
			log.Error().Err(err).Str("purchase_order_id", raw.ID).Msg("Failed to import purchase order")
			continue
		}
		imported++
	}

	log.Info().Int("imported", imported).Msg("Legacy import finished")
	return nil
}
