package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Hecoloko/procurement-app-sub000/internal/models"
)

// CartStore is the persistence surface the cart service depends on,
// implemented by repositories.CartRepository
type CartStore interface {
	Create(ctx context.Context, cart *models.Cart) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit int) ([]models.Cart, error)
	ListTemplates(ctx context.Context, companyID uuid.UUID) ([]models.Cart, error)
	UpdateTotals(ctx context.Context, id uuid.UUID, itemCount int, totalCost float64) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	StampLastRun(ctx context.Context, id uuid.UUID, runDate time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddItem(ctx context.Context, item *models.CartItem) error
	UpdateItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	GetItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
	WorkOrderIDExists(ctx context.Context, workOrderID string) (bool, error)
}

// OrderStore is the persistence surface the order service depends on,
// implemented by repositories.OrderRepository
type OrderStore interface {
	SubmitCart(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit int) ([]models.Order, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string, at time.Time) error
	UpdateItemApproval(ctx context.Context, itemID uuid.UUID, status, reason string) error
	GetItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
}

// PurchaseOrderStore is the persistence surface for purchase orders,
// implemented by repositories.PurchaseOrderRepository
type PurchaseOrderStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.PurchaseOrder, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit int) ([]models.PurchaseOrder, error)
	UpdateFulfillment(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	UpdatePayment(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}

// CatalogStore is the persistence surface for catalog data
type CatalogStore interface {
	ListProducts(ctx context.Context, companyID uuid.UUID) ([]models.Product, error)
	ListVendors(ctx context.Context, companyID uuid.UUID) ([]models.Vendor, error)
}

// ReferenceStore is the persistence surface for master data
type ReferenceStore interface {
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	ListProperties(ctx context.Context, companyID uuid.UUID) ([]models.Property, error)
	ListAccounts(ctx context.Context, companyID uuid.UUID) ([]models.Account, error)
	ListCustomers(ctx context.Context, companyID uuid.UUID) ([]models.Customer, error)
	ListAdminUsers(ctx context.Context, companyID uuid.UUID) ([]models.AdminUser, error)
	ListRoles(ctx context.Context, companyID uuid.UUID) ([]models.Role, error)
}

// BillableItemStore is the persistence surface for billback lines
type BillableItemStore interface {
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit int) ([]models.BillableItem, error)
}
