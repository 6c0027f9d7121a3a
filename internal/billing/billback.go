// Package billing converts paid vendor costs into accounts-receivable
// billable items charged onward to the property. Creation is fire-and-
// report: callers treat failures as warnings, never as a reason to roll
// back the payment that triggered them.
package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Hecoloko/procurement-app-sub000/internal/messaging"
	"github.com/Hecoloko/procurement-app-sub000/internal/metrics"
	"github.com/Hecoloko/procurement-app-sub000/internal/models"
)

// Service creates billback lines from paid purchase orders and vendor invoices
type Service interface {
	CreateBillableItemsFromPurchaseOrder(ctx context.Context, poID uuid.UUID) ([]models.BillableItem, error)
	CreateBillableItemsFromVendorInvoice(ctx context.Context, companyID, invoiceID uuid.UUID, description string, amount float64) ([]models.BillableItem, error)
}

// purchaseOrderStore is the slice of the PO repository the service needs
type purchaseOrderStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
}

// orderStore is the slice of the order repository the service needs
type orderStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// billableItemStore is the slice of the billable item repository the service needs
type billableItemStore interface {
	CreateBatch(ctx context.Context, items []models.BillableItem) error
	ExistsForPurchaseOrder(ctx context.Context, poID uuid.UUID) (bool, error)
}

// publisher is the slice of the service bus client the service needs
type publisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// BillbackService implements Service
type BillbackService struct {
	poRepo    purchaseOrderStore
	orderRepo orderStore
	itemRepo  billableItemStore
	bus       publisher
	collector *metrics.Metrics
}

// NewBillbackService creates a new billback service. The bus may be nil
// when messaging is not configured.
func NewBillbackService(poRepo purchaseOrderStore, orderRepo orderStore, itemRepo billableItemStore, bus publisher, collector *metrics.Metrics) *BillbackService {
	return &BillbackService{
		poRepo:    poRepo,
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		bus:       bus,
		collector: collector,
	}
}

// CreateBillableItemsFromPurchaseOrder creates one billback line per
// vendor-matched order item of the purchase order. Re-running for a PO
// that already has billback lines is a no-op.
func (s *BillbackService) CreateBillableItemsFromPurchaseOrder(ctx context.Context, poID uuid.UUID) ([]models.BillableItem, error) {
	exists, err := s.itemRepo.ExistsForPurchaseOrder(ctx, poID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check existing billback lines")
	}
	if exists {
		log.Info().Str("po_id", poID.String()).Msg("Billback lines already exist, skipping")
		return nil, nil
	}

	po, err := s.poRepo.GetByID(ctx, poID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load purchase order")
	}

	order, err := s.orderRepo.GetByID(ctx, po.OrderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load parent order")
	}

	items := make([]models.BillableItem, 0, len(order.Items))
	id := poID
	for _, orderItem := range order.Items {
		if orderItem.VendorID == nil || *orderItem.VendorID != po.VendorID {
			continue
		}
		items = append(items, models.BillableItem{
			ID:              uuid.New(),
			CompanyID:       po.CompanyID,
			PurchaseOrderID: &id,
			PropertyID:      order.PropertyID,
			Description:     fmt.Sprintf("%s (%s x%d)", orderItem.Name, orderItem.SKU, orderItem.Quantity),
			Amount:          orderItem.TotalPrice,
		})
	}

	if len(items) == 0 {
		// Fall back to a single line for the whole PO amount
		items = append(items, models.BillableItem{
			ID:              uuid.New(),
			CompanyID:       po.CompanyID,
			PurchaseOrderID: &id,
			PropertyID:      order.PropertyID,
			Description:     fmt.Sprintf("Vendor bill for order %s", order.WorkOrderID),
			Amount:          po.AmountDue,
		})
	}

	if err := s.itemRepo.CreateBatch(ctx, items); err != nil {
		return nil, errors.Wrap(err, "failed to create billback lines")
	}

	if s.collector != nil {
		s.collector.IncrementCounterBy(metrics.CounterBillbackCreated, int64(len(items)))
	}

	if s.bus != nil {
		if err := s.bus.Publish(ctx, messaging.EventBillbackCreated, map[string]interface{}{
			"purchase_order_id": poID.String(),
			"line_count":        len(items),
		}); err != nil {
			log.Warn().Err(err).Str("po_id", poID.String()).Msg("Failed to publish billback event")
		}
	}

	log.Info().
		Str("po_id", poID.String()).
		Int("lines", len(items)).
		Msg("Billback lines created")

	return items, nil
}

// CreateBillableItemsFromVendorInvoice creates a billback line for a
// standalone vendor invoice not tied to a purchase order
func (s *BillbackService) CreateBillableItemsFromVendorInvoice(ctx context.Context, companyID, invoiceID uuid.UUID, description string, amount float64) ([]models.BillableItem, error) {
	if description == "" {
		description = fmt.Sprintf("Vendor invoice %s", invoiceID.String())
	}

	items := []models.BillableItem{{
		ID:              uuid.New(),
		CompanyID:       companyID,
		VendorInvoiceID: &invoiceID,
		Description:     description,
		Amount:          amount,
	}}

	if err := s.itemRepo.CreateBatch(ctx, items); err != nil {
		return nil, errors.Wrap(err, "failed to create billback line for invoice")
	}

	if s.collector != nil {
		s.collector.IncrementCounter(metrics.CounterBillbackCreated)
	}

	return items, nil
}
