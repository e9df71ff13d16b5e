package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm"
)

// AttachImages inserts images for a product in one transaction. Unless the
// caller already decided on a primary, the first image becomes primary when
// the product had no images before this call.
func (r *GormRepo) AttachImages(ctx context.Context, productID uint, images []models.ProductImage, explicitPrimary bool) error {
	if len(images) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.ProductImage{}).Where("product_id = ?", productID).Count(&existing).Error; err != nil {
			return err
		}
		for i := range images {
			images[i].ProductID = productID
		}
		if !explicitPrimary && existing == 0 {
			images[0].IsPrimary = 1
		}
		return tx.Create(&images).Error
	})
}

func (r *GormRepo) CountImages(ctx context.Context, productID uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.ProductImage{}).Where("product_id = ?", productID).Count(&n).Error
	return n, err
}

func (r *GormRepo) GetImage(ctx context.Context, id uint) (*models.ProductImage, error) {
	return getByID[models.ProductImage](ctx, r.DB, id)
}

func (r *GormRepo) GetImages(ctx context.Context, offset, limit int) (int64, []models.ProductImage, error) {
	return list[models.ProductImage](ctx, r.DB, offset, limit)
}

func (r *GormRepo) CreateImage(ctx context.Context, img *models.ProductImage) error {
	return create(ctx, r.DB, img)
}

func (r *GormRepo) PatchImage(ctx context.Context, id uint, apply func(tx *gorm.DB, img *models.ProductImage) error) (*models.ProductImage, error) {
	return patch(ctx, r.DB, id, apply)
}

func (r *GormRepo) DeleteImage(ctx context.Context, id uint) error {
	return deleteByID[models.ProductImage](ctx, r.DB, id)
}
