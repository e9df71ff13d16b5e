package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *GormRepo) AddVariants(ctx context.Context, productID uint, variants []models.ProductVariant) error {
	if len(variants) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range variants {
			variants[i].ProductID = productID
		}
		return tx.Omit(clause.Associations).Create(&variants).Error
	})
}

func (r *GormRepo) GetVariant(ctx context.Context, id uint) (*models.ProductVariant, error) {
	return getByID[models.ProductVariant](ctx, r.DB, id)
}

func (r *GormRepo) GetVariants(ctx context.Context, offset, limit int) (int64, []models.ProductVariant, error) {
	return list[models.ProductVariant](ctx, r.DB, offset, limit)
}

func (r *GormRepo) CreateVariant(ctx context.Context, v *models.ProductVariant) error {
	return create(ctx, r.DB, v)
}

func (r *GormRepo) PatchVariant(ctx context.Context, id uint, apply func(tx *gorm.DB, v *models.ProductVariant) error) (*models.ProductVariant, error) {
	return patch(ctx, r.DB, id, apply)
}

func (r *GormRepo) DeleteVariant(ctx context.Context, id uint) error {
	return deleteByID[models.ProductVariant](ctx, r.DB, id)
}
