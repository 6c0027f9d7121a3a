package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Hecoloko/procurement-app-sub000/internal/models"
)

type loaderFixture struct {
	carts     *MockCartStore
	orders    *MockOrderStore
	pos       *MockPurchaseOrderStore
	catalog   *MockCatalogStore
	refs      *MockReferenceStore
	billables *MockBillableItemStore
	session   *Session
	loader    *Loader
}

func newLoaderFixture(timeout time.Duration) *loaderFixture {
	f := &loaderFixture{
		carts:     new(MockCartStore),
		orders:    new(MockOrderStore),
		pos:       new(MockPurchaseOrderStore),
		catalog:   new(MockCatalogStore),
		refs:      new(MockReferenceStore),
		billables: new(MockBillableItemStore),
		session:   NewSession(),
	}
	cartSvc := NewCartService(f.carts, nil, nil, nil)
	f.loader = NewLoader(f.carts, f.orders, f.pos, f.catalog, f.refs, f.billables,
		cartSvc, nil, f.session, nil, timeout)
	return f
}

// stubEmptyCollections wires every collection fetch to succeed with
// empty results for the given company
func (f *loaderFixture) stubEmptyCollections(companyID uuid.UUID) {
	f.carts.On("ListByCompany", mock.Anything, companyID, collectionLimit).Return([]models.Cart{}, nil)
	f.carts.On("ListTemplates", mock.Anything, companyID).Return([]models.Cart{}, nil)
	f.orders.On("ListByCompany", mock.Anything, companyID, collectionLimit).Return([]models.Order{}, nil)
	f.pos.On("ListByCompany", mock.Anything, companyID, collectionLimit).Return([]models.PurchaseOrder{}, nil)
	f.catalog.On("ListProducts", mock.Anything, companyID).Return([]models.Product{}, nil)
	f.catalog.On("ListVendors", mock.Anything, companyID).Return([]models.Vendor{}, nil)
	f.refs.On("ListProperties", mock.Anything, companyID).Return([]models.Property{}, nil)
	f.refs.On("ListAccounts", mock.Anything, companyID).Return([]models.Account{}, nil)
	f.refs.On("ListCustomers", mock.Anything, companyID).Return([]models.Customer{}, nil)
	f.refs.On("ListAdminUsers", mock.Anything, companyID).Return([]models.AdminUser{}, nil)
	f.refs.On("ListRoles", mock.Anything, companyID).Return([]models.Role{}, nil)
	f.billables.On("ListByCompany", mock.Anything, companyID, collectionLimit).Return([]models.BillableItem{}, nil)
}

func TestLoadCompanyDataComposesGraph(t *testing.T) {
	companyID := uuid.New()
	orderID := uuid.New()
	vendorID := uuid.New()
	productID := uuid.New()

	f := newLoaderFixture(30 * time.Second)
	f.refs.On("GetCompany", mock.Anything, companyID).Return(&models.Company{ID: companyID, Name: "Acme Property Co"}, nil)
	f.carts.On("ListByCompany", mock.Anything, companyID, collectionLimit).Return([]models.Cart{}, nil)
	f.carts.On("ListTemplates", mock.Anything, companyID).Return([]models.Cart{}, nil)
	f.orders.On("ListByCompany", mock.Anything, companyID, collectionLimit).Return([]models.Order{
		{ID: orderID, CompanyID: companyID, Name: "March Supplies"},
	}, nil)
	f.pos.On("ListByCompany", mock.Anything, companyID, collectionLimit).Return([]models.PurchaseOrder{
		{ID: uuid.New(), OrderID: orderID, VendorID: vendorID},
		{ID: uuid.New(), OrderID: uuid.New(), VendorID: vendorID}, // belongs to an order outside the window
	}, nil)
	f.catalog.On("ListProducts", mock.Anything, companyID).Return([]models.Product{
		{ID: productID, VendorOptions: []models.VendorOption{{ProductID: productID, VendorID: vendorID}}},
	}, nil)
	f.catalog.On("ListVendors", mock.Anything, companyID).Return([]models.Vendor{
		{ID: vendorID, Name: "CleanCo"},
	}, nil)
	f.refs.On("ListProperties", mock.Anything, companyID).Return([]models.Property{}, nil)
	f.refs.On("ListAccounts", mock.Anything, companyID).Return([]models.Account{}, nil)
	f.refs.On("ListCustomers", mock.Anything, companyID).Return([]models.Customer{}, nil)
	f.refs.On("ListAdminUsers", mock.Anything, companyID).Return([]models.AdminUser{}, nil)
	f.refs.On("ListRoles", mock.Anything, companyID).Return([]models.Role{}, nil)
	f.billables.On("ListByCompany", mock.Anything, companyID, collectionLimit).Return([]models.BillableItem{}, nil)

	graph, err := f.loader.LoadCompanyData(context.Background(), companyID)
	require.NoError(t, err)
	require.Equal(t, "Acme Property Co", graph.Company.Name)
	require.Zero(t, graph.SpawnedCarts)

	require.Len(t, graph.Orders, 1)
	require.Len(t, graph.Orders[0].PurchaseOrders, 1, "only the PO belonging to the fetched order is attached")

	require.Len(t, graph.Products, 1)
	require.Equal(t, "CleanCo", graph.Products[0].VendorOptions[0].Vendor.Name)
	require.False(t, graph.LoadedAt.IsZero())
}

func TestLoadCompanyDataRefetchesCartsAfterSpawning(t *testing.T) {
	companyID := uuid.New()
	today := time.Now()
	freq := models.FrequencyWeekly
	weekday := int(today.Weekday())
	template := models.Cart{
		ID:        uuid.New(),
		CompanyID: companyID,
		Name:      "Weekly",
		Type:      models.CartTypeRecurring,
		Frequency: &freq,
		DayOfWeek: &weekday,
	}

	f := newLoaderFixture(30 * time.Second)
	f.refs.On("GetCompany", mock.Anything, companyID).Return(&models.Company{ID: companyID}, nil)
	f.carts.On("ListTemplates", mock.Anything, companyID).Return([]models.Cart{template}, nil)
	f.carts.On("WorkOrderIDExists", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
	f.carts.On("Create", mock.Anything, mock.AnythingOfType("*models.Cart")).Return(nil)
	f.carts.On("StampLastRun", mock.Anything, template.ID, mock.AnythingOfType("time.Time")).Return(nil)
	f.carts.On("ListByCompany", mock.Anything, companyID, collectionLimit).Return([]models.Cart{template}, nil)
	f.orders.On("ListByCompany", mock.Anything, companyID, collectionLimit).Return([]models.Order{}, nil)
	f.pos.On("ListByCompany", mock.Anything, companyID, collectionLimit).Return([]models.PurchaseOrder{}, nil)
	f.catalog.On("ListProducts", mock.Anything, companyID).Return([]models.Product{}, nil)
	f.catalog.On("ListVendors", mock.Anything, companyID).Return([]models.Vendor{}, nil)
	f.refs.On("ListProperties", mock.Anything, companyID).Return([]models.Property{}, nil)
	f.refs.On("ListAccounts", mock.Anything, companyID).Return([]models.Account{}, nil)
	f.refs.On("ListCustomers", mock.Anything, companyID).Return([]models.Customer{}, nil)
	f.refs.On("ListAdminUsers", mock.Anything, companyID).Return([]models.AdminUser{}, nil)
	f.refs.On("ListRoles", mock.Anything, companyID).Return([]models.Role{}, nil)
	f.billables.On("ListByCompany", mock.Anything, companyID, collectionLimit).Return([]models.BillableItem{}, nil)

	graph, err := f.loader.LoadCompanyData(context.Background(), companyID)
	require.NoError(t, err)
	require.Equal(t, 1, graph.SpawnedCarts)

	// Initial fetch plus the re-fetch after spawning
	f.carts.AssertNumberOfCalls(t, "ListByCompany", 2)
}

func TestLoadCompanyDataSupersededByCompanySwitch(t *testing.T) {
	companyID := uuid.New()
	otherCompany := uuid.New()

	f := newLoaderFixture(30 * time.Second)
	f.refs.On("GetCompany", mock.Anything, companyID).Run(func(args mock.Arguments) {
		// A newer load for a different company arrives mid-flight
		f.loader.setActiveCompany(otherCompany)
	}).Return(&models.Company{ID: companyID}, nil)
	f.stubEmptyCollections(companyID)

	graph, err := f.loader.LoadCompanyData(context.Background(), companyID)
	require.ErrorIs(t, err, ErrLoadSuperseded)
	require.Nil(t, graph, "stale results are discarded, not applied")
}

func TestLoadCompanyDataMapsDeadlineToTimeout(t *testing.T) {
	companyID := uuid.New()

	f := newLoaderFixture(30 * time.Second)
	f.refs.On("GetCompany", mock.Anything, companyID).Return(nil, context.DeadlineExceeded)

	_, err := f.loader.LoadCompanyData(context.Background(), companyID)
	require.ErrorIs(t, err, ErrLoadTimeout)
}

func TestLoadCompanyDataClearsSessionOnAuthError(t *testing.T) {
	companyID := uuid.New()

	f := newLoaderFixture(30 * time.Second)
	f.session.SetToken("stale-token")
	f.refs.On("GetCompany", mock.Anything, companyID).Return(nil, errors.New("request rejected: invalid token"))

	_, err := f.loader.LoadCompanyData(context.Background(), companyID)
	require.Error(t, err)
	require.Empty(t, f.session.Token(), "auth failures force-clear the session")
}

func TestLoadCompanyDataKeepsSessionOnOtherErrors(t *testing.T) {
	companyID := uuid.New()

	f := newLoaderFixture(30 * time.Second)
	f.session.SetToken("good-token")
	f.refs.On("GetCompany", mock.Anything, companyID).Return(nil, errors.New("connection refused"))

	_, err := f.loader.LoadCompanyData(context.Background(), companyID)
	require.Error(t, err)
	require.Equal(t, "good-token", f.session.Token())
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"jwt", errors.New("JWT signature mismatch"), true},
		{"not authenticated", errors.New("user not authenticated"), true},
		{"invalid token", errors.New("Invalid Token supplied"), true},
		{"session expired", errors.New("session expired, sign in again"), true},
		{"status code", errors.New("unexpected status 401"), true},
		{"plain db error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, isAuthError(tt.err))
		})
	}
}
