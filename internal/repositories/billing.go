package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Hecoloko/procurement-app-sub000/internal/models"
)

// BillableItemRepository provides access to accounts-receivable billback lines
type BillableItemRepository struct {
	db *gorm.DB
}

// NewBillableItemRepository creates a new billable item repository
func NewBillableItemRepository(db *gorm.DB) *BillableItemRepository {
	return &BillableItemRepository{db: db}
}

// CreateBatch creates a set of billable items
func (r *BillableItemRepository) CreateBatch(ctx context.Context, items []models.BillableItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return errors.Wrap(err, "failed to create billable items")
	}
	return nil
}

// ListByPurchaseOrder gets the billback lines keyed by a purchase order
func (r *BillableItemRepository) ListByPurchaseOrder(ctx context.Context, poID uuid.UUID) ([]models.BillableItem, error) {
	var items []models.BillableItem
	err := r.db.WithContext(ctx).Where("purchase_order_id = ?", poID).Find(&items).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list billable items")
	}
	return items, nil
}

// ExistsForPurchaseOrder reports whether billback lines were already
// created for a purchase order
func (r *BillableItemRepository) ExistsForPurchaseOrder(ctx context.Context, poID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BillableItem{}).
		Where("purchase_order_id = ?", poID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check billable items")
	}
	return count > 0, nil
}

// ListByCompany gets billable items for a company
func (r *BillableItemRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, limit int) ([]models.BillableItem, error) {
	var items []models.BillableItem
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list billable items")
	}
	return items, nil
}
