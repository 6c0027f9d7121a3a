package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Hecoloko/procurement-app-sub000/internal/models"
)

// OrderRepository provides access to order data
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create creates a new order together with its item snapshot and history
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return errors.Wrap(err, "failed to create order")
	}
	return nil
}

// SubmitCart atomically marks the source cart submitted and creates the
// order with its item snapshot, seeded history and purchase orders
func (r *OrderRepository) SubmitCart(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Cart{}).
			Where("id = ?", order.CartID).
			Update("status", models.CartStatusSubmitted)
		if result.Error != nil {
			return errors.Wrap(result.Error, "failed to mark cart submitted")
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		if err := tx.Create(order).Error; err != nil {
			return errors.Wrap(err, "failed to create order from cart")
		}
		return nil
	})
}

// GetByID gets an order with its items, history and purchase orders
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory").
		Preload("PurchaseOrders").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get order by ID")
	}
	return &order, nil
}

// ListByCompany gets the most recent orders for a company
func (r *OrderRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory").
		Preload("PurchaseOrders").
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}
	return orders, nil
}

// SetStatus updates an order's status and appends a history entry
func (r *OrderRepository) SetStatus(ctx context.Context, id uuid.UUID, status string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Order{}).Where("id = ?", id).Update("status", status)
		if result.Error != nil {
			return errors.Wrap(result.Error, "failed to update order status")
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		event := models.OrderStatusEvent{
			ID:      uuid.New(),
			OrderID: id,
			Status:  status,
			Date:    at,
		}
		if err := tx.Create(&event).Error; err != nil {
			return errors.Wrap(err, "failed to append status history")
		}
		return nil
	})
}

// UpdateItemApproval persists an approval decision on one order item
func (r *OrderRepository) UpdateItemApproval(ctx context.Context, itemID uuid.UUID, status, reason string) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"approval_status":  status,
			"rejection_reason": reason,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update item approval")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetItems gets the item snapshot of an order
func (r *OrderRepository) GetItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get order items")
	}
	return items, nil
}
