package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Cart types
const (
	CartTypeStandard  = "Standard"
	CartTypeScheduled = "Scheduled"
	CartTypeRecurring = "Recurring"
)

// Cart frequencies
const (
	FrequencyWeekly    = "Weekly"
	FrequencyBiWeekly  = "Bi-weekly"
	FrequencyMonthly   = "Monthly"
	FrequencyQuarterly = "Quarterly"
)

// Cart statuses
const (
	CartStatusDraft     = "Draft"
	CartStatusSubmitted = "Submitted"
)

// Order statuses
const (
	OrderStatusDraft             = "Draft"
	OrderStatusSubmitted         = "Submitted"
	OrderStatusPendingMyApproval = "Pending My Approval"
	OrderStatusPendingOthers     = "Pending Others"
	OrderStatusApproved          = "Approved"
	OrderStatusNeedsRevision     = "Needs Revision"
	OrderStatusProcessing        = "Processing"
	OrderStatusShipped           = "Shipped"
	OrderStatusCompleted         = "Completed"
	OrderStatusRejected          = "Rejected"
	OrderStatusCancelled         = "Cancelled"
)

// Item approval statuses
const (
	ApprovalPending  = "Pending"
	ApprovalApproved = "Approved"
	ApprovalRejected = "Rejected"
)

// Purchase order fulfillment statuses
const (
	POStatusProcessing = "Processing"
	POStatusInTransit  = "In Transit"
	POStatusReceived   = "Received"
)

// Purchase order payment statuses
const (
	PaymentUnbilled = "Unbilled"
	PaymentBilled   = "Billed"
	PaymentPaid     = "Paid"
)

// Company is the tenant root; every other entity is scoped to a company
type Company struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"not null" json:"name"`
}

// Cart is a container of line items, either a one-off Standard cart or a
// Scheduled/Recurring template that spawns Standard carts on a cadence
type Cart struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	CompanyID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	WorkOrderID   string         `gorm:"not null;uniqueIndex" json:"work_order_id"`
	Name          string         `gorm:"not null" json:"name"`
	Type          string         `gorm:"not null;default:'Standard'" json:"type"`
	Status        string         `gorm:"not null;default:'Draft'" json:"status"`
	PropertyID    *uuid.UUID     `gorm:"type:uuid" json:"property_id"`
	ItemCount     int            `gorm:"not null;default:0" json:"item_count"`
	TotalCost     float64        `gorm:"not null;default:0" json:"total_cost"`
	ScheduledDate *time.Time     `json:"scheduled_date"`
	Frequency     *string        `json:"frequency"`
	StartDate     *time.Time     `json:"start_date"`
	DayOfWeek     *int           `json:"day_of_week"`
	DayOfMonth    *int           `json:"day_of_month"`
	LastRunAt     *time.Time     `json:"last_run_at"`
	Items         []CartItem     `gorm:"foreignKey:CartID" json:"items"`
	Company       Company        `gorm:"foreignKey:CompanyID" json:"-"`
}

// CartItem is a line item owned exclusively by its cart
type CartItem struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	CartID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"cart_id"`
	ProductID       *uuid.UUID     `gorm:"type:uuid" json:"product_id"`
	SKU             string         `gorm:"not null" json:"sku"`
	Name            string         `gorm:"not null" json:"name"`
	Quantity        int            `gorm:"not null;default:1" json:"quantity"`
	UnitPrice       float64        `gorm:"not null;default:0" json:"unit_price"`
	TotalPrice      float64        `gorm:"not null;default:0" json:"total_price"`
	VendorID        *uuid.UUID     `gorm:"type:uuid" json:"vendor_id"`
	Note            string         `json:"note"`
	ApprovalStatus  string         `gorm:"not null;default:'Pending'" json:"approval_status"`
	RejectionReason string         `json:"rejection_reason"`
}

// Order is a submitted cart: an immutable snapshot of the cart's items at
// submission time plus a mutable status and an append-only status history
type Order struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt    `gorm:"index" json:"-"`
	CompanyID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"company_id"`
	CartID         uuid.UUID         `gorm:"type:uuid;not null" json:"cart_id"`
	WorkOrderID    string            `gorm:"not null;index" json:"work_order_id"`
	Name           string            `gorm:"not null" json:"name"`
	PropertyID     *uuid.UUID        `gorm:"type:uuid" json:"property_id"`
	Status         string            `gorm:"not null;default:'Submitted'" json:"status"`
	ItemCount      int               `gorm:"not null;default:0" json:"item_count"`
	TotalCost      float64           `gorm:"not null;default:0" json:"total_cost"`
	Items          []OrderItem       `gorm:"foreignKey:OrderID" json:"items"`
	StatusHistory  []OrderStatusEvent `gorm:"foreignKey:OrderID" json:"status_history"`
	PurchaseOrders []PurchaseOrder   `gorm:"foreignKey:OrderID" json:"purchase_orders"`
}

// OrderItem is an item snapshot carried by an order
type OrderItem struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	OrderID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID       *uuid.UUID     `gorm:"type:uuid" json:"product_id"`
	SKU             string         `gorm:"not null" json:"sku"`
	Name            string         `gorm:"not null" json:"name"`
	Quantity        int            `gorm:"not null;default:1" json:"quantity"`
	UnitPrice       float64        `gorm:"not null;default:0" json:"unit_price"`
	TotalPrice      float64        `gorm:"not null;default:0" json:"total_price"`
	VendorID        *uuid.UUID     `gorm:"type:uuid" json:"vendor_id"`
	Note            string         `json:"note"`
	ApprovalStatus  string         `gorm:"not null;default:'Pending'" json:"approval_status"`
	RejectionReason string         `json:"rejection_reason"`
}

// OrderStatusEvent is one append-only entry in an order's status history
type OrderStatusEvent struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	Status  string    `gorm:"not null" json:"status"`
	Date    time.Time `gorm:"not null" json:"date"`
}

// PurchaseOrder is the subset of an order's items belonging to one vendor.
// Vendor association is immutable after creation.
type PurchaseOrder struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
	CompanyID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	OrderID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"order_id"`
	VendorID         uuid.UUID      `gorm:"type:uuid;not null" json:"vendor_id"`
	Status           string         `gorm:"not null;default:'Processing'" json:"status"`
	ETA              *time.Time     `json:"eta"`
	Carrier          string         `json:"carrier"`
	TrackingNumber   string         `json:"tracking_number"`
	DeliveryProofURL string         `json:"delivery_proof_url"`
	PaymentStatus    string         `gorm:"not null;default:'Unbilled'" json:"payment_status"`
	InvoiceNumber    string         `json:"invoice_number"`
	InvoiceDate      *time.Time     `json:"invoice_date"`
	InvoiceURL       string         `json:"invoice_url"`
	DueDate          *time.Time     `json:"due_date"`
	AmountDue        float64        `gorm:"not null;default:0" json:"amount_due"`
	PaymentDate      *time.Time     `json:"payment_date"`
	PaymentMethod    string         `json:"payment_method"`
	Vendor           Vendor         `gorm:"foreignKey:VendorID" json:"-"`
}

// BillableItem is an accounts-receivable billback line created when a
// purchase order's vendor bill is marked paid
type BillableItem struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	CompanyID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	PurchaseOrderID *uuid.UUID     `gorm:"type:uuid;index" json:"purchase_order_id"`
	VendorInvoiceID *uuid.UUID     `gorm:"type:uuid" json:"vendor_invoice_id"`
	PropertyID      *uuid.UUID     `gorm:"type:uuid" json:"property_id"`
	Description     string         `gorm:"not null" json:"description"`
	Amount          float64        `gorm:"not null;default:0" json:"amount"`
	Billed          bool           `gorm:"not null;default:false" json:"billed"`
}

// Vendor is company-scoped reference data
type Vendor struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CompanyID uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
}

// Product is company-scoped catalog data
type Product struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	CompanyID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	SKU           string         `gorm:"not null;index" json:"sku"`
	Name          string         `gorm:"not null" json:"name"`
	Category      string         `json:"category"`
	ImageURL      string         `json:"image_url"`
	VendorOptions []VendorOption `gorm:"foreignKey:ProductID" json:"vendor_options"`
}

// VendorOption is a vendor's price for a product
type VendorOption struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	ProductID uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	VendorID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"vendor_id"`
	UnitPrice float64        `gorm:"not null;default:0" json:"unit_price"`
	Vendor    Vendor         `gorm:"foreignKey:VendorID" json:"-"`
}

// Property is company-scoped reference data
type Property struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CompanyID uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	Name      string         `gorm:"not null" json:"name"`
	Address   string         `json:"address"`
	Units     []Unit         `gorm:"foreignKey:PropertyID" json:"units"`
}

// Unit belongs to a property
type Unit struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	PropertyID uuid.UUID      `gorm:"type:uuid;not null;index" json:"property_id"`
	Name       string         `gorm:"not null" json:"name"`
}

// Account is company-scoped accounting reference data
type Account struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CompanyID uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	Name      string         `gorm:"not null" json:"name"`
	Code      string         `json:"code"`
}

// Customer is company-scoped receivables reference data
type Customer struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CompanyID uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `json:"email"`
}

// AdminUser is a company-scoped application user
type AdminUser struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CompanyID uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"not null;uniqueIndex" json:"email"`
	RoleID    *uuid.UUID     `gorm:"type:uuid" json:"role_id"`
}

// Role is company-scoped reference data
type Role struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CompanyID uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	Name      string         `gorm:"not null" json:"name"`
}

// SetupModels configures GORM models and runs migrations
func SetupModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Company{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&OrderStatusEvent{},
		&PurchaseOrder{},
		&BillableItem{},
		&Vendor{},
		&Product{},
		&VendorOption{},
		&Property{},
		&Unit{},
		&Account{},
		&Customer{},
		&AdminUser{},
		&Role{},
	)

	if err != nil {
		return errors.Wrap(err, "failed to run auto migrations")
	}

	return nil
}
