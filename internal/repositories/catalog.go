package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Hecoloko/procurement-app-sub000/internal/models"
)

// CatalogRepository provides access to vendor and product catalog data
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListProducts gets the products for a company with their vendor options
func (r *CatalogRepository) ListProducts(ctx context.Context, companyID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("VendorOptions").
		Where("company_id = ?", companyID).
		Find(&products).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}
	return products, nil
}

// CreateProduct inserts a product with its vendor options
func (r *CatalogRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return errors.Wrap(err, "failed to create product")
	}
	return nil
}

// ListVendors gets the vendors for a company
func (r *CatalogRepository) ListVendors(ctx context.Context, companyID uuid.UUID) ([]models.Vendor, error) {
	var vendors []models.Vendor
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Find(&vendors).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list vendors")
	}
	return vendors, nil
}

// GetVendor gets a vendor by ID
func (r *CatalogRepository) GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	err := r.db.WithContext(ctx).First(&vendor, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get vendor by ID")
	}
	return &vendor, nil
}
