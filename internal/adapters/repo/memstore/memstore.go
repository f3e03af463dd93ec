// Package memstore is an in-process entity store with the same contracts
// as the postgres adapter. It backs the test suite and the CRM_DB=memory
// demo mode; it is not meant for production data.
package memstore

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alxcrm/crmd/internal/domain"
)

type Store struct {
	mu        sync.Mutex
	customers []domain.Customer
	products  []domain.Product
	orders    []domain.Order
}

func New() *Store { return &Store{} }

func (s *Store) Customers() domain.CustomerRepo { return customerRepo{s} }
func (s *Store) Products() domain.ProductRepo   { return productRepo{s} }
func (s *Store) Orders() domain.OrderRepo       { return orderRepo{s} }

type customerRepo struct{ s *Store }

func (r customerRepo) Create(_ context.Context, c *domain.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.Email = strings.ToLower(c.Email)
	for _, have := range r.s.customers {
		if strings.EqualFold(have.Email, c.Email) {
			return &domain.ConflictError{Reason: "email already exists: " + c.Email}
		}
	}
	r.s.customers = append(r.s.customers, *c)
	return nil
}

func (r customerRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.customers {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r customerRepo) FindByEmail(_ context.Context, email string) (*domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.customers {
		if strings.EqualFold(c.Email, email) {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r customerRepo) Filter(_ context.Context, keep func(domain.Customer) bool) ([]domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Customer{}
	for _, c := range r.s.customers {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r customerRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.customers)), nil
}

// InTx approximates the transactional scope: operations inside fn hit the
// live store, so reads observe earlier writes from the same batch.
func (r customerRepo) InTx(_ context.Context, fn func(domain.CustomerRepo) error) error {
	return fn(r)
}

type productRepo struct{ s *Store }

func (r productRepo) Create(_ context.Context, p *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products = append(r.s.products, *p)
	return nil
}

func (r productRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Product
	for _, id := range ids {
		for _, p := range r.s.products {
			if p.ID == id {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (r productRepo) Filter(_ context.Context, keep func(domain.Product) bool) ([]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Product{}
	for _, p := range r.s.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r productRepo) RestockBelow(_ context.Context, threshold, incrementBy int) ([]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	updated := []domain.Product{}
	for i := range r.s.products {
		if r.s.products[i].Stock < threshold {
			r.s.products[i].Stock += incrementBy
			updated = append(updated, r.s.products[i])
		}
	}
	return updated, nil
}

type orderRepo struct{ s *Store }

func (r orderRepo) Create(_ context.Context, o *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orders = append(r.s.orders, *o)
	return nil
}

func (r orderRepo) Filter(_ context.Context, keep func(domain.Order) bool) ([]domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Order{}
	for _, o := range r.s.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r orderRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.orders)), nil
}

func (r orderRepo) Revenue(_ context.Context) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, o := range r.s.orders {
		total = total.Add(o.TotalAmount)
	}
	return total, nil
}
