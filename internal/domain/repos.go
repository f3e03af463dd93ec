package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerRepo is the customer side of the entity store. Filter scans the
// collection and keeps the records the predicate accepts, in natural
// (creation) order.
type CustomerRepo interface {
	Create(ctx context.Context, c *Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	Filter(ctx context.Context, keep func(Customer) bool) ([]Customer, error)
	Count(ctx context.Context) (int64, error)
	// InTx runs fn against a transaction-scoped view of the repo. Reads
	// inside fn observe writes made earlier in the same transaction, and
	// a nested call scopes to a savepoint where the store supports one.
	InTx(ctx context.Context, fn func(CustomerRepo) error) error
}

type ProductRepo interface {
	Create(ctx context.Context, p *Product) error
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	Filter(ctx context.Context, keep func(Product) bool) ([]Product, error)
	// RestockBelow bumps the stock of every product strictly below
	// threshold by incrementBy, atomically, and returns the updated rows.
	RestockBelow(ctx context.Context, threshold, incrementBy int) ([]Product, error)
}

// OrderRepo persists orders. Create writes the order, its product
// associations and its total as one atomic unit; Filter returns orders
// with Customer and Products populated.
type OrderRepo interface {
	Create(ctx context.Context, o *Order) error
	Filter(ctx context.Context, keep func(Order) bool) ([]Order, error)
	Count(ctx context.Context) (int64, error)
	Revenue(ctx context.Context) (decimal.Decimal, error)
}
