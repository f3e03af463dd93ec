package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alxcrm/crmd/internal/domain"
	"github.com/alxcrm/crmd/internal/query"
)

type CreateProductInput struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock *int   `json:"stock"`
}

// RestockResult reports a low-stock maintenance pass.
type RestockResult struct {
	UpdatedCount int              `json:"updatedCount"`
	Updated      []domain.Product `json:"updated"`
}

type ProductUC struct {
	Products domain.ProductRepo
}

func (uc *ProductUC) List(ctx context.Context, opts map[string]any, orderBy string) ([]domain.Product, error) {
	flt, err := query.Compile(query.ProductOptions, opts)
	if err != nil {
		return nil, err
	}
	cmp, err := query.CompileOrdering(query.ProductSortFields, orderBy)
	if err != nil {
		return nil, err
	}
	list, err := uc.Products.Filter(ctx, flt.Match)
	if err != nil {
		return nil, err
	}
	query.Sort(list, cmp)
	return list, nil
}

func (uc *ProductUC) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	p, reasons := validateProduct(in)
	if len(reasons) > 0 {
		return nil, &domain.ValidationError{Reasons: reasons}
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	if err := uc.Products.Create(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// RestockLowStock increments every product with stock strictly below
// threshold by incrementBy. Re-running it is safe; only the cumulative
// stock effect accumulates.
func (uc *ProductUC) RestockLowStock(ctx context.Context, incrementBy, threshold int) (*RestockResult, error) {
	if incrementBy <= 0 {
		return nil, &domain.ValidationError{Reasons: []string{"incrementBy must be positive"}}
	}
	updated, err := uc.Products.RestockBelow(ctx, threshold, incrementBy)
	if err != nil {
		return nil, err
	}
	return &RestockResult{UpdatedCount: len(updated), Updated: updated}, nil
}
