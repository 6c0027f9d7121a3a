package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Hecoloko/procurement-app-sub000/internal/models"
)

// CartRepository provides access to cart and cart item data
type CartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// Create creates a new cart together with its items. The work order ID
// carries a unique index; a collision surfaces as ErrDuplicateKey.
func (r *CartRepository) Create(ctx context.Context, cart *models.Cart) error {
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return errors.Wrap(err, "failed to create cart")
	}
	return nil
}

// GetByID gets a cart with its items
func (r *CartRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).Preload("Items").First(&cart, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get cart by ID")
	}
	return &cart, nil
}

// ListByCompany gets the most recent carts for a company
func (r *CartRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, limit int) ([]models.Cart, error) {
	var carts []models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Limit(limit).
		Find(&carts).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list carts")
	}
	return carts, nil
}

// ListTemplates gets the scheduled and recurring template carts for a company
func (r *CartRepository) ListTemplates(ctx context.Context, companyID uuid.UUID) ([]models.Cart, error) {
	var carts []models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("company_id = ? AND type <> ?", companyID, models.CartTypeStandard).
		Find(&carts).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list template carts")
	}
	return carts, nil
}

// UpdateTotals writes the recomputed item count and total cost back to the cart
func (r *CartRepository) UpdateTotals(ctx context.Context, id uuid.UUID, itemCount int, totalCost float64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"item_count": itemCount, "total_cost": totalCost})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update cart totals")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus updates a cart's status
func (r *CartRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update cart status")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// StampLastRun records the date a template cart last spawned a child
func (r *CartRepository) StampLastRun(ctx context.Context, id uuid.UUID, runDate time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", id).
		Update("last_run_at", runDate)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to stamp template last run")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a cart and cascades removal of its items
func (r *CartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return errors.Wrap(err, "failed to delete cart items")
		}
		if err := tx.Delete(&models.Cart{}, "id = ?", id).Error; err != nil {
			return errors.Wrap(err, "failed to delete cart")
		}
		return nil
	})
}

// AddItem adds a line item to a cart
func (r *CartRepository) AddItem(ctx context.Context, item *models.CartItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return errors.Wrap(err, "failed to add cart item")
	}
	return nil
}

// UpdateItem saves changes to a line item
func (r *CartRepository) UpdateItem(ctx context.Context, item *models.CartItem) error {
	result := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"quantity":    item.Quantity,
			"unit_price":  item.UnitPrice,
			"total_price": item.TotalPrice,
			"note":        item.Note,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update cart item")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteItem removes a line item from a cart
func (r *CartRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", itemID)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete cart item")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetItems gets the current line items of a cart
func (r *CartRepository) GetItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Find(&items).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get cart items")
	}
	return items, nil
}

// WorkOrderIDExists reports whether a work order ID is already taken
func (r *CartRepository) WorkOrderIDExists(ctx context.Context, workOrderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("work_order_id = ?", workOrderID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check work order ID")
	}
	return count > 0, nil
}
