package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alxcrm/crmd/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProductRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []domain.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ProductRepo) Filter(ctx context.Context, keep func(domain.Product) bool) ([]domain.Product, error) {
	out := []domain.Product{}
	var batch []domain.Product
	res := r.db.WithContext(ctx).FindInBatches(&batch, 500, func(_ *gorm.DB, _ int) error {
		for _, p := range batch {
			if keep(p) {
				out = append(out, p)
			}
		}
		return nil
	})
	sortByCreation(out, func(p domain.Product) time.Time { return p.CreatedAt })
	return out, res.Error
}

func (r *ProductRepo) RestockBelow(ctx context.Context, threshold, incrementBy int) ([]domain.Product, error) {
	var updated []domain.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("stock < ?", threshold).Order("created_at asc").Find(&updated).Error; err != nil {
			return err
		}
		if len(updated) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, len(updated))
		for i, p := range updated {
			ids[i] = p.ID
		}
		if err := tx.Model(&domain.Product{}).Where("id IN ?", ids).
			UpdateColumn("stock", gorm.Expr("COALESCE(stock,0) + ?", incrementBy)).Error; err != nil {
			return err
		}
		for i := range updated {
			updated[i].Stock += incrementBy
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
