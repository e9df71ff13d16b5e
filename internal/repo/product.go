package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func preloadProduct(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := preloadProduct(r.DB.WithContext(ctx)).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := preloadProduct(r.DB.WithContext(ctx)).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) ProductExists(ctx context.Context, id uint) (bool, error) {
	return exists[models.Product](ctx, r.DB, "id = ?", id)
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return create(ctx, r.DB, prod)
}

// CreateProductAggregate inserts the product and its children as one unit.
func (r *GormRepo) CreateProductAggregate(ctx context.Context, prod *models.Product, images []models.ProductImage, variants []models.ProductVariant) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(prod).Error; err != nil {
			return err
		}
		for i := range images {
			images[i].ProductID = prod.ID
		}
		for i := range variants {
			variants[i].ProductID = prod.ID
		}
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return err
			}
		}
		if len(variants) > 0 {
			if err := tx.Omit(clause.Associations).Create(&variants).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormRepo) PatchProduct(ctx context.Context, id uint, apply func(tx *gorm.DB, p *models.Product) error) (*models.Product, error) {
	return patch(ctx, r.DB, id, apply)
}

// DeleteProductCascade removes images, variants and the product itself and
// returns the storage paths of the removed images.
func (r *GormRepo) DeleteProductCascade(ctx context.Context, id uint) ([]string, error) {
	var paths []string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prod models.Product
		if err := tx.Select("id").First(&prod, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ProductImage{}).Where("product_id = ?", id).Order("id ASC").Pluck("image_path", &paths).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
