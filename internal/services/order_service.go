package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Hecoloko/procurement-app-sub000/internal/messaging"
	"github.com/Hecoloko/procurement-app-sub000/internal/metrics"
	"github.com/Hecoloko/procurement-app-sub000/internal/models"
)

// orderIndexer indexes submitted orders for search; the Elasticsearch
// client implements it
type orderIndexer interface {
	IndexOrder(ctx context.Context, order *models.Order) error
}

// ItemDecision is one reviewer's verdict on one order item
type ItemDecision struct {
	ItemID          uuid.UUID
	ApprovalStatus  string
	RejectionReason string
}

// OrderService drives the order lifecycle: submission, approval rollup,
// manual status changes and fulfillment-driven rollup
type OrderService struct {
	orders    OrderStore
	carts     CartStore
	pos       PurchaseOrderStore
	indexer   orderIndexer
	bus       messaging.ServiceBusClient
	collector *metrics.Metrics
}

// NewOrderService creates a new order service. indexer and bus may be nil
// when search or messaging are not configured.
func NewOrderService(orders OrderStore, carts CartStore, pos PurchaseOrderStore, indexer orderIndexer, bus messaging.ServiceBusClient, collector *metrics.Metrics) *OrderService {
	return &OrderService{
		orders:    orders,
		carts:     carts,
		pos:       pos,
		indexer:   indexer,
		bus:       bus,
		collector: collector,
	}
}

// Submit turns a draft cart into an order. The order snapshots the cart's
// current items, carries freshly computed totals, groups items into one
// purchase order per vendor, and starts in Pending My Approval.
func (s *OrderService) Submit(ctx context.Context, cartID uuid.UUID) (*models.Order, error) {
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load cart for submission")
	}
	if cart.Status != models.CartStatusDraft {
		return nil, ErrCartNotDraft
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	itemCount, totalCost := RecomputeTotals(cart.Items)
	now := time.Now()

	order := &models.Order{
		ID:          uuid.New(),
		CompanyID:   cart.CompanyID,
		CartID:      cart.ID,
		WorkOrderID: cart.WorkOrderID,
		Name:        cart.Name,
		PropertyID:  cart.PropertyID,
		Status:      models.OrderStatusPendingMyApproval,
		ItemCount:   itemCount,
		TotalCost:   totalCost,
	}

	order.Items = make([]models.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		order.Items = append(order.Items, models.OrderItem{
			ID:             uuid.New(),
			OrderID:        order.ID,
			ProductID:      item.ProductID,
			SKU:            item.SKU,
			Name:           item.Name,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			TotalPrice:     EffectiveLineTotal(item),
			VendorID:       item.VendorID,
			Note:           item.Note,
			ApprovalStatus: models.ApprovalPending,
		})
	}

	order.StatusHistory = []models.OrderStatusEvent{{
		ID:      uuid.New(),
		OrderID: order.ID,
		Status:  order.Status,
		Date:    now,
	}}

	order.PurchaseOrders = buildPurchaseOrders(order)

	if err := s.orders.SubmitCart(ctx, order); err != nil {
		return nil, errors.Wrap(err, "failed to submit cart")
	}

	if s.collector != nil {
		s.collector.IncrementCounter(metrics.CounterOrdersSubmitted)
	}

	if s.indexer != nil {
		if err := s.indexer.IndexOrder(ctx, order); err != nil {
			log.Warn().Err(err).Str("order_id", order.ID.String()).Msg("Failed to index submitted order")
		}
	}

	s.publishStatusChange(ctx, order.ID, order.Status)

	log.Info().
		Str("order_id", order.ID.String()).
		Str("work_order_id", order.WorkOrderID).
		Int("item_count", order.ItemCount).
		Msg("Cart submitted as order")

	return order, nil
}

// buildPurchaseOrders groups the order's items into one purchase order
// per vendor. Items without a vendor are skipped; they stay on the order
// itself.
func buildPurchaseOrders(order *models.Order) []models.PurchaseOrder {
	totals := make(map[uuid.UUID]float64)
	var vendorOrder []uuid.UUID
	for _, item := range order.Items {
		if item.VendorID == nil {
			continue
		}
		if _, seen := totals[*item.VendorID]; !seen {
			vendorOrder = append(vendorOrder, *item.VendorID)
		}
		totals[*item.VendorID] += item.TotalPrice
	}

	pos := make([]models.PurchaseOrder, 0, len(vendorOrder))
	for _, vendorID := range vendorOrder {
		pos = append(pos, models.PurchaseOrder{
			ID:            uuid.New(),
			CompanyID:     order.CompanyID,
			OrderID:       order.ID,
			VendorID:      vendorID,
			Status:        models.POStatusProcessing,
			PaymentStatus: models.PaymentUnbilled,
			AmountDue:     totals[vendorID],
		})
	}
	return pos
}

// ApplyApprovalDecision persists per-item approval verdicts, then rolls
// the order status up: all approved moves the order to Approved, any
// rejection with no items left pending moves it to Needs Revision, and a
// review still in progress leaves the status untouched.
func (s *OrderService) ApplyApprovalDecision(ctx context.Context, orderID uuid.UUID, decisions []ItemDecision) (*models.Order, error) {
	for _, decision := range decisions {
		if err := s.orders.UpdateItemApproval(ctx, decision.ItemID, decision.ApprovalStatus, decision.RejectionReason); err != nil {
			return nil, errors.Wrap(err, "failed to persist approval decision")
		}
	}

	items, err := s.orders.GetItems(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reload order items")
	}

	allApproved := len(items) > 0
	anyRejected := false
	anyPending := false
	for _, item := range items {
		switch item.ApprovalStatus {
		case models.ApprovalApproved:
		case models.ApprovalRejected:
			allApproved = false
			anyRejected = true
		default:
			allApproved = false
			anyPending = true
		}
	}

	switch {
	case allApproved:
		if err := s.setStatus(ctx, orderID, models.OrderStatusApproved); err != nil {
			return nil, err
		}
	case anyRejected && !anyPending:
		if err := s.setStatus(ctx, orderID, models.OrderStatusNeedsRevision); err != nil {
			return nil, err
		}
	}

	return s.orders.GetByID(ctx, orderID)
}

// GetOrder returns an order with items, status history and purchase orders
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

// SetOrderStatus manually moves an order to a new status, appending to
// the status history, and returns the reloaded order
func (s *OrderService) SetOrderStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, error) {
	if err := s.setStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, orderID)
}

// UpdateFulfillment updates a purchase order's fulfillment fields, then
// reconciles the parent order's status from its purchase orders
func (s *OrderService) UpdateFulfillment(ctx context.Context, poID uuid.UUID, fields map[string]interface{}) (*models.PurchaseOrder, error) {
	po, err := s.pos.GetByID(ctx, poID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load purchase order")
	}

	if err := s.pos.UpdateFulfillment(ctx, poID, fields); err != nil {
		return nil, err
	}

	if err := s.ReconcileOrderStatusFromPOs(ctx, po.OrderID); err != nil {
		return nil, err
	}

	return s.pos.GetByID(ctx, poID)
}

// ReconcileOrderStatusFromPOs rolls the fulfillment state of an order's
// purchase orders up into the order status. All POs received completes
// the order; all POs at least in transit marks it shipped. Only the first
// matching rule fires, and re-running on a settled order is a no-op.
func (s *OrderService) ReconcileOrderStatusFromPOs(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return errors.Wrap(err, "failed to load order for rollup")
	}

	pos, err := s.pos.ListByOrder(ctx, orderID)
	if err != nil {
		return errors.Wrap(err, "failed to list purchase orders for rollup")
	}
	if len(pos) == 0 {
		return nil
	}

	allReceived := true
	allShipped := true
	for _, po := range pos {
		if po.Status != models.POStatusReceived {
			allReceived = false
		}
		if po.Status != models.POStatusReceived && po.Status != models.POStatusInTransit {
			allShipped = false
		}
	}

	switch {
	case allReceived:
		if order.Status != models.OrderStatusCompleted {
			return s.setStatus(ctx, orderID, models.OrderStatusCompleted)
		}
	case allShipped:
		if order.Status != models.OrderStatusCompleted && order.Status != models.OrderStatusShipped {
			return s.setStatus(ctx, orderID, models.OrderStatusShipped)
		}
	}

	return nil
}

func (s *OrderService) setStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	if err := s.orders.SetStatus(ctx, orderID, status, time.Now()); err != nil {
		return errors.Wrap(err, "failed to set order status")
	}

	s.publishStatusChange(ctx, orderID, status)

	log.Info().
		Str("order_id", orderID.String()).
		Str("status", status).
		Msg("Order status changed")

	return nil
}

func (s *OrderService) publishStatusChange(ctx context.Context, orderID uuid.UUID, status string) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(ctx, messaging.EventOrderStatusChanged, map[string]interface{}{
		"order_id": orderID.String(),
		"status":   status,
	})
	if err != nil {
		log.Warn().Err(err).Str("order_id", orderID.String()).Msg("Failed to publish order status event")
	}
}
