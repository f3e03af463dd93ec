package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alxcrm/crmd/internal/domain"
	"github.com/alxcrm/crmd/internal/query"
)

type CreateOrderInput struct {
	CustomerID string   `json:"customerId"`
	ProductIDs []string `json:"productIds"`
	OrderDate  string   `json:"orderDate"`
}

type OrderUC struct {
	Orders    domain.OrderRepo
	Customers domain.CustomerRepo
	Products  domain.ProductRepo
}

func (uc *OrderUC) List(ctx context.Context, opts map[string]any, orderBy string) ([]domain.Order, error) {
	flt, err := query.Compile(query.OrderOptions, opts)
	if err != nil {
		return nil, err
	}
	cmp, err := query.CompileOrdering(query.OrderSortFields, orderBy)
	if err != nil {
		return nil, err
	}
	list, err := uc.Orders.Filter(ctx, flt.Match)
	if err != nil {
		return nil, err
	}
	// filters that traverse the products relation must not surface the
	// same order twice
	if flt.RequiresDistinct() {
		list = query.DedupeByID(list, func(o domain.Order) string { return o.ID.String() })
	}
	query.Sort(list, cmp)
	return list, nil
}

// Create resolves the customer and every requested product, then persists
// the order, its associations and its computed total as one atomic unit.
// Any missing reference fails the whole creation; nothing partial is left
// behind.
func (uc *OrderUC) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	customerID, err := uuid.Parse(strings.TrimSpace(in.CustomerID))
	if err != nil {
		return nil, &domain.NotFoundError{Entity: "customer", ID: in.CustomerID}
	}
	customer, err := uc.Customers.FindByID(ctx, customerID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.NotFoundError{Entity: "customer", ID: in.CustomerID}
	} else if err != nil {
		return nil, err
	}

	if len(in.ProductIDs) == 0 {
		return nil, &domain.ValidationError{Reasons: []string{"at least one product must be selected"}}
	}
	ids, missing := parseDistinctIDs(in.ProductIDs)
	products, err := uc.Products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(products) != len(ids) {
		resolved := make(map[uuid.UUID]struct{}, len(products))
		for _, p := range products {
			resolved[p.ID] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := resolved[id]; !ok {
				missing = append(missing, id.String())
			}
		}
	}
	if len(missing) > 0 {
		return nil, &domain.NotFoundError{Entity: "product", ID: strings.Join(missing, ", ")}
	}

	orderDate := time.Now()
	if strings.TrimSpace(in.OrderDate) != "" {
		orderDate, err = dateparse.ParseAny(in.OrderDate)
		if err != nil {
			return nil, &domain.ValidationError{Reasons: []string{"invalid order date"}}
		}
	}

	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price)
	}
	order := &domain.Order{
		ID:          uuid.New(),
		CustomerID:  customer.ID,
		Customer:    *customer,
		Products:    products,
		OrderDate:   orderDate,
		TotalAmount: total,
		Status:      domain.OrderStatusPending,
	}
	if err := uc.Orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// parseDistinctIDs keeps the distinct parseable ids and reports the rest
// as unresolvable.
func parseDistinctIDs(raw []string) ([]uuid.UUID, []string) {
	var ids []uuid.UUID
	var bad []string
	seen := make(map[uuid.UUID]struct{}, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			bad = append(bad, s)
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, bad
}
