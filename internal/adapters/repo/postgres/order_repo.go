package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alxcrm/crmd/internal/domain"
)

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

// Create persists the order, its join rows and its total in one
// transaction. The customer and product rows themselves are left alone;
// only the associations are written.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Customer", "Products.*").Create(o).Error
	})
}

func (r *OrderRepo) Filter(ctx context.Context, keep func(domain.Order) bool) ([]domain.Order, error) {
	out := []domain.Order{}
	var batch []domain.Order
	res := r.db.WithContext(ctx).
		Preload("Customer").Preload("Products").
		FindInBatches(&batch, 200, func(_ *gorm.DB, _ int) error {
			for _, o := range batch {
				if keep(o) {
					out = append(out, o)
				}
			}
			return nil
		})
	sortByCreation(out, func(o domain.Order) time.Time { return o.CreatedAt })
	return out, res.Error
}

func (r *OrderRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Order{}).Count(&n).Error
	return n, err
}

func (r *OrderRepo) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&total).Error
	return total, err
}
