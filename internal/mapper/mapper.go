// Package mapper translates between the hosted backend's raw record shape
// (snake_case keys, nullable and loosely typed fields) and the in-memory
// domain models. Translation never fails: missing or malformed fields
// degrade to defaults at this single boundary.
package mapper

import (
	"time"

	"github.com/google/uuid"

	"github.com/Hecoloko/procurement-app-sub000/internal/models"
)

// CartRecord is the raw persistence shape of a cart
type CartRecord struct {
	ID            string           `json:"id"`
	CompanyID     string           `json:"company_id"`
	WorkOrderID   string           `json:"work_order_id"`
	Name          string           `json:"name"`
	Type          string           `json:"type"`
	Status        string           `json:"status"`
	PropertyID    *string          `json:"property_id"`
	ItemCount     interface{}      `json:"item_count"`
	TotalCost     interface{}      `json:"total_cost"`
	ScheduledDate *string          `json:"scheduled_date"`
	Frequency     *string          `json:"frequency"`
	StartDate     *string          `json:"start_date"`
	DayOfWeek     interface{}      `json:"day_of_week"`
	DayOfMonth    interface{}      `json:"day_of_month"`
	LastRunAt     *string          `json:"last_run_at"`
	CreatedAt     *string          `json:"created_at"`
	Items         []CartItemRecord `json:"cart_items"`
}

// CartItemRecord is the raw persistence shape of a cart line item
type CartItemRecord struct {
	ID              string      `json:"id"`
	CartID          string      `json:"cart_id"`
	ProductID       *string     `json:"product_id"`
	SKU             string      `json:"sku"`
	Name            string      `json:"name"`
	Quantity        interface{} `json:"quantity"`
	UnitPrice       interface{} `json:"unit_price"`
	TotalPrice      interface{} `json:"total_price"`
	VendorID        *string     `json:"vendor_id"`
	Note            *string     `json:"note"`
	ApprovalStatus  *string     `json:"approval_status"`
	RejectionReason *string     `json:"rejection_reason"`
}

// OrderRecord is the raw persistence shape of an order
type OrderRecord struct {
	ID            string              `json:"id"`
	CompanyID     string              `json:"company_id"`
	CartID        string              `json:"cart_id"`
	WorkOrderID   string              `json:"work_order_id"`
	Name          string              `json:"name"`
	PropertyID    *string             `json:"property_id"`
	Status        string              `json:"status"`
	ItemCount     interface{}         `json:"item_count"`
	TotalCost     interface{}         `json:"total_cost"`
	CreatedAt     *string             `json:"created_at"`
	Items         []CartItemRecord    `json:"order_items"`
	StatusHistory []StatusEventRecord `json:"status_history"`
}

// StatusEventRecord is the raw shape of one status history entry
type StatusEventRecord struct {
	Status string  `json:"status"`
	Date   *string `json:"date"`
}

// PurchaseOrderRecord is the raw persistence shape of a purchase order
type PurchaseOrderRecord struct {
	ID               string      `json:"id"`
	CompanyID        string      `json:"company_id"`
	OrderID          string      `json:"order_id"`
	VendorID         string      `json:"vendor_id"`
	Status           string      `json:"status"`
	ETA              *string     `json:"eta"`
	Carrier          *string     `json:"carrier"`
	TrackingNumber   *string     `json:"tracking_number"`
	DeliveryProofURL *string     `json:"delivery_proof_url"`
	PaymentStatus    *string     `json:"payment_status"`
	InvoiceNumber    *string     `json:"invoice_number"`
	InvoiceDate      *string     `json:"invoice_date"`
	InvoiceURL       *string     `json:"invoice_url"`
	DueDate          *string     `json:"due_date"`
	AmountDue        interface{} `json:"amount_due"`
	PaymentDate      *string     `json:"payment_date"`
	PaymentMethod    *string     `json:"payment_method"`
}

// ProductRecord is the raw persistence shape of a catalog product
type ProductRecord struct {
	ID            string               `json:"id"`
	CompanyID     string               `json:"company_id"`
	SKU           string               `json:"sku"`
	Name          string               `json:"name"`
	Category      *string              `json:"category"`
	ImageURL      *string              `json:"image_url"`
	VendorOptions []VendorOptionRecord `json:"vendor_options"`
}

// VendorOptionRecord is the raw shape of a vendor's price for a product
type VendorOptionRecord struct {
	ID        string      `json:"id"`
	ProductID string      `json:"product_id"`
	VendorID  string      `json:"vendor_id"`
	UnitPrice interface{} `json:"unit_price"`
}

// CartFromRecord maps a raw cart record to the domain model
func CartFromRecord(raw CartRecord) models.Cart {
	cart := models.Cart{
		ID:            safeUUID(raw.ID),
		CompanyID:     safeUUID(raw.CompanyID),
		WorkOrderID:   raw.WorkOrderID,
		Name:          defaultString(raw.Name, "Untitled"),
		Type:          defaultString(raw.Type, models.CartTypeStandard),
		Status:        defaultString(raw.Status, models.CartStatusDraft),
		PropertyID:    safeUUIDPtr(raw.PropertyID),
		ItemCount:     SafeInt(raw.ItemCount),
		TotalCost:     SafeNumber(raw.TotalCost),
		ScheduledDate: safeTimePtr(raw.ScheduledDate),
		Frequency:     raw.Frequency,
		StartDate:     safeTimePtr(raw.StartDate),
		DayOfWeek:     safeIntPtr(raw.DayOfWeek),
		DayOfMonth:    safeIntPtr(raw.DayOfMonth),
		LastRunAt:     safeTimePtr(raw.LastRunAt),
		CreatedAt:     safeTime(raw.CreatedAt),
	}

	cart.Items = make([]models.CartItem, 0, len(raw.Items))
	for _, item := range raw.Items {
		cart.Items = append(cart.Items, CartItemFromRecord(item))
	}

	return cart
}

// CartToRecord maps a domain cart back to its raw persistence shape
func CartToRecord(cart models.Cart) CartRecord {
	record := CartRecord{
		ID:            cart.ID.String(),
		CompanyID:     cart.CompanyID.String(),
		WorkOrderID:   cart.WorkOrderID,
		Name:          cart.Name,
		Type:          cart.Type,
		Status:        cart.Status,
		PropertyID:    uuidPtrToString(cart.PropertyID),
		ItemCount:     cart.ItemCount,
		TotalCost:     cart.TotalCost,
		ScheduledDate: timePtrToString(cart.ScheduledDate),
		Frequency:     cart.Frequency,
		StartDate:     timePtrToString(cart.StartDate),
		DayOfWeek:     intPtrOrNil(cart.DayOfWeek),
		DayOfMonth:    intPtrOrNil(cart.DayOfMonth),
		LastRunAt:     timePtrToString(cart.LastRunAt),
	}

	record.Items = make([]CartItemRecord, 0, len(cart.Items))
	for _, item := range cart.Items {
		record.Items = append(record.Items, CartItemToRecord(item))
	}

	return record
}

// CartItemFromRecord maps a raw line item to the domain model. A stored
// total of zero with a positive quantity and unit price is recomputed
// rather than trusted.
func CartItemFromRecord(raw CartItemRecord) models.CartItem {
	quantity := SafeInt(raw.Quantity)
	unitPrice := SafeNumber(raw.UnitPrice)
	totalPrice := SafeNumber(raw.TotalPrice)

	if totalPrice == 0 && quantity > 0 && unitPrice > 0 {
		totalPrice = float64(quantity) * unitPrice
	}

	// A line item with a missing or malformed id gets a fresh one so a
	// later insert never collides on the zero UUID
	id := safeUUID(raw.ID)
	if id == uuid.Nil {
		id = uuid.New()
	}

	return models.CartItem{
		ID:              id,
		CartID:          safeUUID(raw.CartID),
		ProductID:       safeUUIDPtr(raw.ProductID),
		SKU:             raw.SKU,
		Name:            defaultString(raw.Name, "Untitled"),
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		TotalPrice:      totalPrice,
		VendorID:        safeUUIDPtr(raw.VendorID),
		Note:            derefString(raw.Note),
		ApprovalStatus:  defaultString(derefString(raw.ApprovalStatus), models.ApprovalPending),
		RejectionReason: derefString(raw.RejectionReason),
	}
}

// CartItemToRecord maps a domain line item back to its raw shape
func CartItemToRecord(item models.CartItem) CartItemRecord {
	return CartItemRecord{
		ID:              item.ID.String(),
		CartID:          item.CartID.String(),
		ProductID:       uuidPtrToString(item.ProductID),
		SKU:             item.SKU,
		Name:            item.Name,
		Quantity:        item.Quantity,
		UnitPrice:       item.UnitPrice,
		TotalPrice:      item.TotalPrice,
		VendorID:        uuidPtrToString(item.VendorID),
		Note:            &item.Note,
		ApprovalStatus:  &item.ApprovalStatus,
		RejectionReason: &item.RejectionReason,
	}
}

// OrderFromRecord maps a raw order record to the domain model. The total
// is recomputed from item totals when items are present and nonzero,
// otherwise the persisted raw value is kept.
func OrderFromRecord(raw OrderRecord) models.Order {
	order := models.Order{
		ID:          safeUUID(raw.ID),
		CompanyID:   safeUUID(raw.CompanyID),
		CartID:      safeUUID(raw.CartID),
		WorkOrderID: raw.WorkOrderID,
		Name:        defaultString(raw.Name, "Untitled"),
		PropertyID:  safeUUIDPtr(raw.PropertyID),
		Status:      defaultString(raw.Status, models.OrderStatusSubmitted),
		ItemCount:   SafeInt(raw.ItemCount),
		TotalCost:   SafeNumber(raw.TotalCost),
		CreatedAt:   safeTime(raw.CreatedAt),
	}

	order.Items = make([]models.OrderItem, 0, len(raw.Items))
	var itemTotal float64
	for _, rawItem := range raw.Items {
		item := CartItemFromRecord(rawItem)
		itemTotal += item.TotalPrice
		order.Items = append(order.Items, models.OrderItem{
			ID:              item.ID,
			OrderID:         order.ID,
			ProductID:       item.ProductID,
			SKU:             item.SKU,
			Name:            item.Name,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TotalPrice:      item.TotalPrice,
			VendorID:        item.VendorID,
			Note:            item.Note,
			ApprovalStatus:  item.ApprovalStatus,
			RejectionReason: item.RejectionReason,
		})
	}

	if len(order.Items) > 0 && itemTotal > 0 {
		order.TotalCost = itemTotal
	}

	order.StatusHistory = make([]models.OrderStatusEvent, 0, len(raw.StatusHistory))
	for _, event := range raw.StatusHistory {
		// History entries never round-trip an identity; each row gets a
		// fresh id so inserts cannot collide
		order.StatusHistory = append(order.StatusHistory, models.OrderStatusEvent{
			ID:      uuid.New(),
			OrderID: order.ID,
			Status:  event.Status,
			Date:    safeTime(event.Date),
		})
	}

	return order
}

// PurchaseOrderFromRecord maps a raw purchase order record to the domain model
func PurchaseOrderFromRecord(raw PurchaseOrderRecord) models.PurchaseOrder {
	return models.PurchaseOrder{
		ID:               safeUUID(raw.ID),
		CompanyID:        safeUUID(raw.CompanyID),
		OrderID:          safeUUID(raw.OrderID),
		VendorID:         safeUUID(raw.VendorID),
		Status:           defaultString(raw.Status, models.POStatusProcessing),
		ETA:              safeTimePtr(raw.ETA),
		Carrier:          derefString(raw.Carrier),
		TrackingNumber:   derefString(raw.TrackingNumber),
		DeliveryProofURL: derefString(raw.DeliveryProofURL),
		PaymentStatus:    defaultString(derefString(raw.PaymentStatus), models.PaymentUnbilled),
		InvoiceNumber:    derefString(raw.InvoiceNumber),
		InvoiceDate:      safeTimePtr(raw.InvoiceDate),
		InvoiceURL:       derefString(raw.InvoiceURL),
		DueDate:          safeTimePtr(raw.DueDate),
		AmountDue:        SafeNumber(raw.AmountDue),
		PaymentDate:      safeTimePtr(raw.PaymentDate),
		PaymentMethod:    derefString(raw.PaymentMethod),
	}
}

// ProductFromRecord maps a raw catalog product to the domain model
func ProductFromRecord(raw ProductRecord) models.Product {
	product := models.Product{
		ID:        safeUUID(raw.ID),
		CompanyID: safeUUID(raw.CompanyID),
		SKU:       raw.SKU,
		Name:      defaultString(raw.Name, "Untitled"),
		Category:  derefString(raw.Category),
		ImageURL:  derefString(raw.ImageURL),
	}

	product.VendorOptions = make([]models.VendorOption, 0, len(raw.VendorOptions))
	for _, option := range raw.VendorOptions {
		product.VendorOptions = append(product.VendorOptions, models.VendorOption{
			ID:        safeUUID(option.ID),
			ProductID: product.ID,
			VendorID:  safeUUID(option.VendorID),
			UnitPrice: SafeNumber(option.UnitPrice),
		})
	}

	return product
}

func safeUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func safeUUIDPtr(s *string) *uuid.UUID {
	if s == nil {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}

func uuidPtrToString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func safeTime(s *string) time.Time {
	if parsed := safeTimePtr(s); parsed != nil {
		return *parsed
	}
	return time.Now()
}

func safeTimePtr(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, *s); err == nil {
			return &parsed
		}
	}
	return nil
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func intPtrOrNil(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func safeIntPtr(v interface{}) *int {
	if v == nil {
		return nil
	}
	n := SafeInt(v)
	return &n
}
