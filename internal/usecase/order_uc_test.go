package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alxcrm/crmd/internal/adapters/repo/memstore"
	"github.com/alxcrm/crmd/internal/domain"
)

type crmFixture struct {
	customers *CustomerUC
	products  *ProductUC
	orders    *OrderUC
	stats     *StatsUC
}

func newCRMFixture() *crmFixture {
	s := memstore.New()
	customers, products, orders := s.Customers(), s.Products(), s.Orders()
	return &crmFixture{
		customers: &CustomerUC{Customers: customers},
		products:  &ProductUC{Products: products},
		orders:    &OrderUC{Orders: orders, Customers: customers, Products: products},
		stats:     &StatsUC{Customers: customers, Orders: orders},
	}
}

func (f *crmFixture) seed(t *testing.T) (alice *domain.Customer, laptop, mouse *domain.Product) {
	t.Helper()
	ctx := context.Background()
	alice, err := f.customers.Create(ctx, CreateCustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	laptop, err = f.products.Create(ctx, CreateProductInput{Name: "Laptop", Price: "999.99", Stock: intp(5)})
	require.NoError(t, err)
	mouse, err = f.products.Create(ctx, CreateProductInput{Name: "Mouse", Price: "25.50", Stock: intp(100)})
	require.NoError(t, err)
	return alice, laptop, mouse
}

func TestOrderCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("TotalIsExactDecimalSum", func(t *testing.T) {
		f := newCRMFixture()
		alice, laptop, mouse := f.seed(t)
		o, err := f.orders.Create(ctx, CreateOrderInput{
			CustomerID: alice.ID.String(),
			ProductIDs: []string{laptop.ID.String(), mouse.ID.String()},
		})
		require.NoError(t, err)
		assert.Equal(t, "1025.49", o.TotalAmount.String())
		assert.Equal(t, alice.ID, o.CustomerID)
		assert.Equal(t, domain.OrderStatusPending, o.Status)
		assert.Len(t, o.Products, 2)
		assert.WithinDuration(t, time.Now(), o.OrderDate, 5*time.Second)
	})

	t.Run("ExplicitOrderDate", func(t *testing.T) {
		f := newCRMFixture()
		alice, laptop, _ := f.seed(t)
		o, err := f.orders.Create(ctx, CreateOrderInput{
			CustomerID: alice.ID.String(),
			ProductIDs: []string{laptop.ID.String()},
			OrderDate:  "2025-03-15T10:00:00Z",
		})
		require.NoError(t, err)
		assert.Equal(t, 2025, o.OrderDate.Year())
		assert.Equal(t, time.March, o.OrderDate.Month())
	})

	t.Run("DuplicateProductIDsCountOnce", func(t *testing.T) {
		f := newCRMFixture()
		alice, laptop, _ := f.seed(t)
		o, err := f.orders.Create(ctx, CreateOrderInput{
			CustomerID: alice.ID.String(),
			ProductIDs: []string{laptop.ID.String(), laptop.ID.String()},
		})
		require.NoError(t, err)
		assert.Equal(t, "999.99", o.TotalAmount.String())
		assert.Len(t, o.Products, 1)
	})

	t.Run("UnknownCustomerFailsFast", func(t *testing.T) {
		f := newCRMFixture()
		_, laptop, _ := f.seed(t)
		_, err := f.orders.Create(ctx, CreateOrderInput{
			CustomerID: uuid.NewString(),
			ProductIDs: []string{laptop.ID.String()},
		})
		var nfe *domain.NotFoundError
		require.ErrorAs(t, err, &nfe)
		assert.Equal(t, "customer", nfe.Entity)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		n, err := f.stats.OrdersCount(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 0, n)
	})

	t.Run("AnyMissingProductAbortsWholeOrder", func(t *testing.T) {
		f := newCRMFixture()
		alice, laptop, _ := f.seed(t)
		ghost := uuid.NewString()
		_, err := f.orders.Create(ctx, CreateOrderInput{
			CustomerID: alice.ID.String(),
			ProductIDs: []string{laptop.ID.String(), ghost},
		})
		var nfe *domain.NotFoundError
		require.ErrorAs(t, err, &nfe)
		assert.Equal(t, "product", nfe.Entity)
		assert.Contains(t, nfe.ID, ghost)

		n, err := f.stats.OrdersCount(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 0, n, "no order persists with a subset of products")
	})

	t.Run("EmptyProductListRejected", func(t *testing.T) {
		f := newCRMFixture()
		alice, _, _ := f.seed(t)
		_, err := f.orders.Create(ctx, CreateOrderInput{CustomerID: alice.ID.String()})
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Reasons, "at least one product must be selected")
	})
}

func TestOrderList(t *testing.T) {
	ctx := context.Background()
	f := newCRMFixture()
	alice, laptop, mouse := f.seed(t)
	bob, err := f.customers.Create(ctx, CreateCustomerInput{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	_, err = f.orders.Create(ctx, CreateOrderInput{
		CustomerID: alice.ID.String(),
		ProductIDs: []string{laptop.ID.String(), mouse.ID.String()},
	})
	require.NoError(t, err)
	_, err = f.orders.Create(ctx, CreateOrderInput{
		CustomerID: bob.ID.String(),
		ProductIDs: []string{mouse.ID.String()},
	})
	require.NoError(t, err)

	t.Run("FilterByCustomerName", func(t *testing.T) {
		list, err := f.orders.List(ctx, map[string]any{"customerName": "alice"}, "")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, alice.ID, list[0].CustomerID)
	})

	t.Run("MultiProductMatchAppearsOnce", func(t *testing.T) {
		// both products of the first order contain an "o"; the order must
		// still come back exactly once
		list, err := f.orders.List(ctx, map[string]any{
			"customerName": "alice",
			"productName":  "o",
		}, "")
		require.NoError(t, err)
		require.Len(t, list, 1)
	})

	t.Run("FilterByProductID", func(t *testing.T) {
		list, err := f.orders.List(ctx, map[string]any{"productId": mouse.ID.String()}, "")
		require.NoError(t, err)
		assert.Len(t, list, 2)

		list, err = f.orders.List(ctx, map[string]any{"productId": laptop.ID.String()}, "")
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("OrderByTotalDescending", func(t *testing.T) {
		list, err := f.orders.List(ctx, nil, "-total_amount")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.True(t, list[0].TotalAmount.GreaterThan(list[1].TotalAmount))
	})
}

func TestStats(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyStoreRevenueIsZero", func(t *testing.T) {
		f := newCRMFixture()
		rev, err := f.stats.OrdersRevenue(ctx)
		require.NoError(t, err)
		assert.True(t, rev.IsZero())

		n, err := f.stats.OrdersCount(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 0, n)
	})

	t.Run("RevenueSumsOrderTotals", func(t *testing.T) {
		f := newCRMFixture()
		alice, laptop, mouse := f.seed(t)
		_, err := f.orders.Create(ctx, CreateOrderInput{
			CustomerID: alice.ID.String(),
			ProductIDs: []string{laptop.ID.String(), mouse.ID.String()},
		})
		require.NoError(t, err)
		_, err = f.orders.Create(ctx, CreateOrderInput{
			CustomerID: alice.ID.String(),
			ProductIDs: []string{mouse.ID.String()},
		})
		require.NoError(t, err)

		rev, err := f.stats.OrdersRevenue(ctx)
		require.NoError(t, err)
		assert.Equal(t, "1050.99", rev.String())

		customers, err := f.stats.CustomersCount(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, customers)
	})
}
