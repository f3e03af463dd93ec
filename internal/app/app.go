package app

import (
	"context"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/alxcrm/crmd/internal/adapters/httpserver"
	"github.com/alxcrm/crmd/internal/adapters/repo/memstore"
	"github.com/alxcrm/crmd/internal/adapters/repo/postgres"
	"github.com/alxcrm/crmd/internal/domain"
	"github.com/alxcrm/crmd/internal/usecase"
)

type App struct {
	DB        *gorm.DB
	Customers *usecase.CustomerUC
	Products  *usecase.ProductUC
	Orders    *usecase.OrderUC
	Stats     *usecase.StatsUC
}

func New(db *gorm.DB) *App {
	a := wire(
		postgres.NewCustomerRepo(db),
		postgres.NewProductRepo(db),
		postgres.NewOrderRepo(db),
	)
	a.DB = db
	return a
}

// NewInMemory wires the app against the in-process store. Used by the
// CRM_DB=memory demo mode; nothing survives a restart.
func NewInMemory() *App {
	s := memstore.New()
	return wire(s.Customers(), s.Products(), s.Orders())
}

func wire(customers domain.CustomerRepo, products domain.ProductRepo, orders domain.OrderRepo) *App {
	return &App{
		Customers: &usecase.CustomerUC{Customers: customers},
		Products:  &usecase.ProductUC{Products: products},
		Orders:    &usecase.OrderUC{Orders: orders, Customers: customers, Products: products},
		Stats:     &usecase.StatsUC{Customers: customers, Orders: orders},
	}
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.Customers, a.Products, a.Orders, a.Stats)
}

func (a *App) Migrate() error {
	if a.DB == nil {
		return nil
	}
	if err := a.DB.AutoMigrate(&domain.Customer{}, &domain.Product{}, &domain.Order{}); err != nil {
		return err
	}
	for _, ddl := range hardenDDL {
		if err := a.DB.Exec(ddl).Error; err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// hardenDDL backs the check-then-act email validation with a hard
// case-insensitive constraint; without it a concurrent duplicate submit
// can slip through, so a failure to create it must abort startup.
var hardenDDL = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_email_lower ON customers (LOWER(email))",
	"CREATE INDEX IF NOT EXISTS idx_order_products_product_id ON order_products(product_id)",
}

// Seed populates a minimal data set once: two customers, two products and
// one order. Safe to re-run; an already-populated store is left alone.
func (a *App) Seed(ctx context.Context) error {
	if n, err := a.Stats.CustomersCount(ctx); err != nil || n > 0 {
		return err
	}

	alice, err := a.Customers.Create(ctx, usecase.CreateCustomerInput{
		Name: "Alice", Email: "alice@example.com", Phone: "+1234567890",
	})
	if err != nil {
		return err
	}
	if _, err := a.Customers.Create(ctx, usecase.CreateCustomerInput{
		Name: "Bob", Email: "bob@example.com", Phone: "123-456-7890",
	}); err != nil {
		return err
	}

	five, hundred := 5, 100
	laptop, err := a.Products.Create(ctx, usecase.CreateProductInput{Name: "Laptop", Price: "999.99", Stock: &five})
	if err != nil {
		return err
	}
	mouse, err := a.Products.Create(ctx, usecase.CreateProductInput{Name: "Mouse", Price: "25.50", Stock: &hundred})
	if err != nil {
		return err
	}

	_, err = a.Orders.Create(ctx, usecase.CreateOrderInput{
		CustomerID: alice.ID.String(),
		ProductIDs: []string{laptop.ID.String(), mouse.ID.String()},
	})
	return err
}
