package billing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Hecoloko/procurement-app-sub000/internal/models"
)

type MockPurchaseOrderStore struct {
	mock.Mock
}

func (m *MockPurchaseOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseOrder), args.Error(1)
}

type MockOrderStore struct {
	mock.Mock
}

func (m *MockOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

type MockBillableItemStore struct {
	mock.Mock
}

func (m *MockBillableItemStore) CreateBatch(ctx context.Context, items []models.BillableItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockBillableItemStore) ExistsForPurchaseOrder(ctx context.Context, poID uuid.UUID) (bool, error) {
	args := m.Called(ctx, poID)
	return args.Bool(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	args := m.Called(ctx, eventType, data)
	return args.Error(0)
}

func vendorPtr(id uuid.UUID) *uuid.UUID {
	return &id
}

func TestCreateBillableItemsSkipsWhenLinesExist(t *testing.T) {
	poID := uuid.New()

	poRepo := new(MockPurchaseOrderStore)
	orderRepo := new(MockOrderStore)
	itemRepo := new(MockBillableItemStore)
	itemRepo.On("ExistsForPurchaseOrder", mock.Anything, poID).Return(true, nil)

	service := NewBillbackService(poRepo, orderRepo, itemRepo, nil, nil)

	items, err := service.CreateBillableItemsFromPurchaseOrder(context.Background(), poID)
	require.NoError(t, err)
	require.Nil(t, items)
	itemRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	poRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestCreateBillableItemsOneLinePerVendorMatchedItem(t *testing.T) {
	poID := uuid.New()
	orderID := uuid.New()
	companyID := uuid.New()
	vendorID := uuid.New()
	otherVendor := uuid.New()
	propertyID := uuid.New()

	poRepo := new(MockPurchaseOrderStore)
	poRepo.On("GetByID", mock.Anything, poID).Return(&models.PurchaseOrder{
		ID:        poID,
		OrderID:   orderID,
		CompanyID: companyID,
		VendorID:  vendorID,
		AmountDue: 99.0,
	}, nil)

	orderRepo := new(MockOrderStore)
	orderRepo.On("GetByID", mock.Anything, orderID).Return(&models.Order{
		ID:         orderID,
		PropertyID: &propertyID,
		Items: []models.OrderItem{
			{Name: "Mop Heads", SKU: "MOP-1", Quantity: 4, TotalPrice: 20.0, VendorID: vendorPtr(vendorID)},
			{Name: "Bleach", SKU: "BLC-2", Quantity: 2, TotalPrice: 8.0, VendorID: vendorPtr(vendorID)},
			{Name: "Lightbulbs", SKU: "LB-9", Quantity: 6, TotalPrice: 30.0, VendorID: vendorPtr(otherVendor)},
			{Name: "Unsourced", SKU: "UN-0", Quantity: 1, TotalPrice: 5.0},
		},
	}, nil)

	itemRepo := new(MockBillableItemStore)
	itemRepo.On("ExistsForPurchaseOrder", mock.Anything, poID).Return(false, nil)
	itemRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]models.BillableItem")).Return(nil)

	service := NewBillbackService(poRepo, orderRepo, itemRepo, nil, nil)

	items, err := service.CreateBillableItemsFromPurchaseOrder(context.Background(), poID)
	require.NoError(t, err)
	require.Len(t, items, 2, "only the PO vendor's items become billback lines")

	require.Equal(t, "Mop Heads (MOP-1 x4)", items[0].Description)
	require.Equal(t, 20.0, items[0].Amount)
	require.Equal(t, companyID, items[0].CompanyID)
	require.Equal(t, poID, *items[0].PurchaseOrderID)
	require.Equal(t, propertyID, *items[0].PropertyID)

	require.Equal(t, "Bleach (BLC-2 x2)", items[1].Description)
	require.Equal(t, 8.0, items[1].Amount)
}

func TestCreateBillableItemsFallsBackToSinglePOLine(t *testing.T) {
	poID := uuid.New()
	orderID := uuid.New()
	vendorID := uuid.New()

	poRepo := new(MockPurchaseOrderStore)
	poRepo.On("GetByID", mock.Anything, poID).Return(&models.PurchaseOrder{
		ID:        poID,
		OrderID:   orderID,
		VendorID:  vendorID,
		AmountDue: 142.50,
	}, nil)

	orderRepo := new(MockOrderStore)
	orderRepo.On("GetByID", mock.Anything, orderID).Return(&models.Order{
		ID:          orderID,
		WorkOrderID: "WO-20240318-0042",
		Items: []models.OrderItem{
			{Name: "Lightbulbs", SKU: "LB-9", TotalPrice: 30.0, VendorID: vendorPtr(uuid.New())},
		},
	}, nil)

	itemRepo := new(MockBillableItemStore)
	itemRepo.On("ExistsForPurchaseOrder", mock.Anything, poID).Return(false, nil)
	itemRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]models.BillableItem")).Return(nil)

	service := NewBillbackService(poRepo, orderRepo, itemRepo, nil, nil)

	items, err := service.CreateBillableItemsFromPurchaseOrder(context.Background(), poID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Vendor bill for order WO-20240318-0042", items[0].Description)
	require.Equal(t, 142.50, items[0].Amount)
}

func TestCreateBillableItemsPublishFailureIsNonFatal(t *testing.T) {
	poID := uuid.New()
	orderID := uuid.New()

	poRepo := new(MockPurchaseOrderStore)
	poRepo.On("GetByID", mock.Anything, poID).Return(&models.PurchaseOrder{
		ID: poID, OrderID: orderID, AmountDue: 10.0,
	}, nil)

	orderRepo := new(MockOrderStore)
	orderRepo.On("GetByID", mock.Anything, orderID).Return(&models.Order{ID: orderID}, nil)

	itemRepo := new(MockBillableItemStore)
	itemRepo.On("ExistsForPurchaseOrder", mock.Anything, poID).Return(false, nil)
	itemRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)

	bus := new(MockPublisher)
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker unavailable"))

	service := NewBillbackService(poRepo, orderRepo, itemRepo, bus, nil)

	items, err := service.CreateBillableItemsFromPurchaseOrder(context.Background(), poID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	bus.AssertExpectations(t)
}

func TestCreateBillableItemsCreateBatchFailure(t *testing.T) {
	poID := uuid.New()
	orderID := uuid.New()

	poRepo := new(MockPurchaseOrderStore)
	poRepo.On("GetByID", mock.Anything, poID).Return(&models.PurchaseOrder{
		ID: poID, OrderID: orderID,
	}, nil)

	orderRepo := new(MockOrderStore)
	orderRepo.On("GetByID", mock.Anything, orderID).Return(&models.Order{ID: orderID}, nil)

	itemRepo := new(MockBillableItemStore)
	itemRepo.On("ExistsForPurchaseOrder", mock.Anything, poID).Return(false, nil)
	itemRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	service := NewBillbackService(poRepo, orderRepo, itemRepo, nil, nil)

	_, err := service.CreateBillableItemsFromPurchaseOrder(context.Background(), poID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to create billback lines")
}

func TestCreateBillableItemsFromVendorInvoice(t *testing.T) {
	companyID := uuid.New()
	invoiceID := uuid.New()

	itemRepo := new(MockBillableItemStore)
	itemRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]models.BillableItem")).Return(nil)

	service := NewBillbackService(nil, nil, itemRepo, nil, nil)

	items, err := service.CreateBillableItemsFromVendorInvoice(context.Background(), companyID, invoiceID, "Emergency plumbing", 315.0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Emergency plumbing", items[0].Description)
	require.Equal(t, 315.0, items[0].Amount)
	require.Equal(t, invoiceID, *items[0].VendorInvoiceID)
	require.Nil(t, items[0].PurchaseOrderID)
}

func TestCreateBillableItemsFromVendorInvoiceDefaultDescription(t *testing.T) {
	invoiceID := uuid.New()

	itemRepo := new(MockBillableItemStore)
	itemRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)

	service := NewBillbackService(nil, nil, itemRepo, nil, nil)

	items, err := service.CreateBillableItemsFromVendorInvoice(context.Background(), uuid.New(), invoiceID, "", 50.0)
	require.NoError(t, err)
	require.Contains(t, items[0].Description, invoiceID.String())
}
