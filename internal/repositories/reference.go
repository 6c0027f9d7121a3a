package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Hecoloko/procurement-app-sub000/internal/models"
)

// ReferenceRepository provides access to company-scoped master data
type ReferenceRepository struct {
	db *gorm.DB
}

// NewReferenceRepository creates a new reference data repository
func NewReferenceRepository(db *gorm.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// GetCompany gets a company by ID
func (r *ReferenceRepository) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get company by ID")
	}
	return &company, nil
}

// ListCompanies gets all companies
func (r *ReferenceRepository) ListCompanies(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	err := r.db.WithContext(ctx).Find(&companies).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list companies")
	}
	return companies, nil
}

// ListProperties gets the properties for a company with their units
func (r *ReferenceRepository) ListProperties(ctx context.Context, companyID uuid.UUID) ([]models.Property, error) {
	var properties []models.Property
	err := r.db.WithContext(ctx).
		Preload("Units").
		Where("company_id = ?", companyID).
		Find(&properties).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list properties")
	}
	return properties, nil
}

// ListAccounts gets the accounts for a company
func (r *ReferenceRepository) ListAccounts(ctx context.Context, companyID uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Find(&accounts).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list accounts")
	}
	return accounts, nil
}

// ListCustomers gets the customers for a company
func (r *ReferenceRepository) ListCustomers(ctx context.Context, companyID uuid.UUID) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Find(&customers).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list customers")
	}
	return customers, nil
}

// ListAdminUsers gets the admin users for a company
func (r *ReferenceRepository) ListAdminUsers(ctx context.Context, companyID uuid.UUID) ([]models.AdminUser, error) {
	var users []models.AdminUser
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Find(&users).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list admin users")
	}
	return users, nil
}

// ListRoles gets the roles for a company
func (r *ReferenceRepository) ListRoles(ctx context.Context, companyID uuid.UUID) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Find(&roles).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list roles")
	}
	return roles, nil
}
