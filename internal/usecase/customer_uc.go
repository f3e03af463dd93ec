package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alxcrm/crmd/internal/domain"
	"github.com/alxcrm/crmd/internal/query"
)

type CreateCustomerInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// BulkCreateResult reports a partial-failure batch: both slices are
// meaningful at once, and an entry in Errors never suppressed later
// creations.
type BulkCreateResult struct {
	Created []domain.Customer `json:"created"`
	Errors  []string          `json:"errors"`
}

type CustomerUC struct {
	Customers domain.CustomerRepo
}

func (uc *CustomerUC) List(ctx context.Context, opts map[string]any, orderBy string) ([]domain.Customer, error) {
	flt, err := query.Compile(query.CustomerOptions, opts)
	if err != nil {
		return nil, err
	}
	cmp, err := query.CompileOrdering(query.CustomerSortFields, orderBy)
	if err != nil {
		return nil, err
	}
	list, err := uc.Customers.Filter(ctx, flt.Match)
	if err != nil {
		return nil, err
	}
	query.Sort(list, cmp)
	return list, nil
}

func (uc *CustomerUC) Create(ctx context.Context, in CreateCustomerInput) (*domain.Customer, error) {
	return createCustomer(ctx, uc.Customers, in)
}

// BulkCreate processes the batch inside one store transaction. Each
// element is validated and created independently: a failed element is
// recorded as "index N: reason" and the loop moves on, so later valid
// records are still created and their uniqueness checks see earlier
// successes from the same batch.
func (uc *CustomerUC) BulkCreate(ctx context.Context, inputs []CreateCustomerInput) (*BulkCreateResult, error) {
	res := &BulkCreateResult{Errors: []string{}}
	err := uc.Customers.InTx(ctx, func(repo domain.CustomerRepo) error {
		for i, in := range inputs {
			var c *domain.Customer
			// each element gets its own nested scope (a savepoint on
			// gorm): a storage-level conflict rolls back that element
			// alone and the surrounding transaction stays usable
			err := repo.InTx(ctx, func(el domain.CustomerRepo) error {
				created, err := createCustomer(ctx, el, in)
				if err != nil {
					return err
				}
				c = created
				return nil
			})
			if err != nil {
				var ve *domain.ValidationError
				var ce *domain.ConflictError
				if errors.As(err, &ve) || errors.As(err, &ce) {
					res.Errors = append(res.Errors, fmt.Sprintf("index %d: %s", i, err))
					continue
				}
				return err
			}
			res.Created = append(res.Created, *c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func createCustomer(ctx context.Context, repo domain.CustomerRepo, in CreateCustomerInput) (*domain.Customer, error) {
	c, reasons := validateCustomer(in)
	if len(reasons) > 0 {
		return nil, &domain.ValidationError{Reasons: reasons}
	}
	if _, err := repo.FindByEmail(ctx, c.Email); err == nil {
		return nil, &domain.ConflictError{Reason: "email already exists: " + c.Email}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	if err := repo.Create(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
