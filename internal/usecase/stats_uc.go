package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/alxcrm/crmd/internal/domain"
)

// StatsUC answers the derived scalar queries.
type StatsUC struct {
	Customers domain.CustomerRepo
	Orders    domain.OrderRepo
}

func (uc *StatsUC) CustomersCount(ctx context.Context) (int64, error) {
	return uc.Customers.Count(ctx)
}

func (uc *StatsUC) OrdersCount(ctx context.Context) (int64, error) {
	return uc.Orders.Count(ctx)
}

// OrdersRevenue sums every order total; an empty store yields 0.
func (uc *StatsUC) OrdersRevenue(ctx context.Context) (decimal.Decimal, error) {
	return uc.Orders.Revenue(ctx)
}
