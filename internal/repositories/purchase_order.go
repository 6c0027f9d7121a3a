package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Hecoloko/procurement-app-sub000/internal/models"
)

// PurchaseOrderRepository provides access to purchase order data
type PurchaseOrderRepository struct {
	db *gorm.DB
}

// NewPurchaseOrderRepository creates a new purchase order repository
func NewPurchaseOrderRepository(db *gorm.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db}
}

// Create creates a new purchase order
func (r *PurchaseOrderRepository) Create(ctx context.Context, po *models.PurchaseOrder) error {
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		return errors.Wrap(err, "failed to create purchase order")
	}
	return nil
}

// GetByID gets a purchase order
func (r *PurchaseOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := r.db.WithContext(ctx).First(&po, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get purchase order by ID")
	}
	return &po, nil
}

// ListByOrder gets the purchase orders belonging to one order
func (r *PurchaseOrderRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.PurchaseOrder, error) {
	var pos []models.PurchaseOrder
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&pos).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list purchase orders")
	}
	return pos, nil
}

// ListByCompany gets the purchase orders for a company
func (r *PurchaseOrderRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, limit int) ([]models.PurchaseOrder, error) {
	var pos []models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Limit(limit).
		Find(&pos).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list purchase orders")
	}
	return pos, nil
}

// UpdateFulfillment updates the fulfillment fields of a purchase order.
// Vendor association is immutable and never part of the update set.
func (r *PurchaseOrderRepository) UpdateFulfillment(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.update(ctx, id, fields, "failed to update purchase order fulfillment")
}

// UpdatePayment updates the billing fields of a purchase order
func (r *PurchaseOrderRepository) UpdatePayment(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.update(ctx, id, fields, "failed to update purchase order payment")
}

func (r *PurchaseOrderRepository) update(ctx context.Context, id uuid.UUID, fields map[string]interface{}, msg string) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return errors.Wrap(result.Error, msg)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
