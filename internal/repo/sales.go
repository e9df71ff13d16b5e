package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *GormRepo) CouponCodeTaken(ctx context.Context, code string, exceptID uint) (bool, error) {
	return CouponCodeTakenIn(ctx, r.DB, code, exceptID)
}

func CouponCodeTakenIn(ctx context.Context, db *gorm.DB, code string, exceptID uint) (bool, error) {
	return exists[models.Coupon](ctx, db, "code = ? AND id <> ?", code, exceptID)
}

func (r *GormRepo) GetCoupon(ctx context.Context, id uint) (*models.Coupon, error) {
	return getByID[models.Coupon](ctx, r.DB, id)
}

func (r *GormRepo) GetCoupons(ctx context.Context, offset, limit int) (int64, []models.Coupon, error) {
	return list[models.Coupon](ctx, r.DB, offset, limit)
}

func (r *GormRepo) CreateCoupon(ctx context.Context, c *models.Coupon) error {
	return create(ctx, r.DB, c)
}

func (r *GormRepo) PatchCoupon(ctx context.Context, id uint, apply func(tx *gorm.DB, c *models.Coupon) error) (*models.Coupon, error) {
	return patch(ctx, r.DB, id, apply)
}

func (r *GormRepo) DeleteCoupon(ctx context.Context, id uint) error {
	return deleteByID[models.Coupon](ctx, r.DB, id)
}

func (r *GormRepo) GetCouponUsers(ctx context.Context, offset, limit int) (int64, []models.CouponUser, error) {
	return list[models.CouponUser](ctx, r.DB, offset, limit)
}

func (r *GormRepo) CreateCouponUser(ctx context.Context, cu *models.CouponUser) error {
	return create(ctx, r.DB, cu)
}

func (r *GormRepo) DeleteCouponUser(ctx context.Context, id uint) error {
	return deleteByID[models.CouponUser](ctx, r.DB, id)
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	return getByID[models.Order](ctx, r.DB, id)
}

func (r *GormRepo) GetOrders(ctx context.Context, offset, limit int) (int64, []models.Order, error) {
	return list[models.Order](ctx, r.DB, offset, limit)
}

func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return create(ctx, r.DB, o)
}

func (r *GormRepo) PatchOrder(ctx context.Context, id uint, apply func(tx *gorm.DB, o *models.Order) error) (*models.Order, error) {
	return patch(ctx, r.DB, id, apply)
}

func (r *GormRepo) DeleteOrder(ctx context.Context, id uint) error {
	return deleteByID[models.Order](ctx, r.DB, id)
}

func (r *GormRepo) GetOrderItem(ctx context.Context, id uint) (*models.OrderItem, error) {
	return getByID[models.OrderItem](ctx, r.DB, id)
}

func (r *GormRepo) GetOrderItems(ctx context.Context, offset, limit int) (int64, []models.OrderItem, error) {
	return list[models.OrderItem](ctx, r.DB, offset, limit)
}

func (r *GormRepo) CreateOrderItem(ctx context.Context, oi *models.OrderItem) error {
	return create(ctx, r.DB, oi)
}

func (r *GormRepo) PatchOrderItem(ctx context.Context, id uint, apply func(tx *gorm.DB, oi *models.OrderItem) error) (*models.OrderItem, error) {
	return patch(ctx, r.DB, id, apply)
}

func (r *GormRepo) DeleteOrderItem(ctx context.Context, id uint) error {
	return deleteByID[models.OrderItem](ctx, r.DB, id)
}

func preloadPromotion(db *gorm.DB) *gorm.DB {
	return db.Preload("Products").Preload("Categories")
}

func (r *GormRepo) GetPromotion(ctx context.Context, id uint) (*models.Promotion, error) {
	var p models.Promotion
	if err := preloadPromotion(r.DB.WithContext(ctx)).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) GetPromotions(ctx context.Context, offset, limit int) (int64, []models.Promotion, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Promotion{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	items := make([]models.Promotion, 0, limit)
	if err := preloadPromotion(r.DB.WithContext(ctx)).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// CreatePromotion stores the promotion and its product/category targets together.
func (r *GormRepo) CreatePromotion(ctx context.Context, p *models.Promotion, productIDs, categoryIDs []uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return err
		}
		return replaceTargets(tx, p, productIDs, categoryIDs)
	})
}

// PatchPromotion replaces a target list only when the corresponding slice is non-nil.
func (r *GormRepo) PatchPromotion(ctx context.Context, id uint, apply func(tx *gorm.DB, p *models.Promotion) error, productIDs, categoryIDs []uint) (*models.Promotion, error) {
	var p models.Promotion
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return err
		}
		if err := apply(tx, &p); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(&p).Error; err != nil {
			return err
		}
		if productIDs != nil {
			if err := tx.Where("promotion_id = ?", id).Delete(&models.PromotionProduct{}).Error; err != nil {
				return err
			}
		}
		if categoryIDs != nil {
			if err := tx.Where("promotion_id = ?", id).Delete(&models.PromotionCategory{}).Error; err != nil {
				return err
			}
		}
		return replaceTargets(tx, &p, productIDs, categoryIDs)
	})
	if err != nil {
		return nil, err
	}
	return r.GetPromotion(ctx, id)
}

func replaceTargets(tx *gorm.DB, p *models.Promotion, productIDs, categoryIDs []uint) error {
	if len(productIDs) > 0 {
		rows := make([]models.PromotionProduct, 0, len(productIDs))
		for _, pid := range productIDs {
			rows = append(rows, models.PromotionProduct{PromotionID: p.ID, ProductID: pid})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		p.Products = rows
	}
	if len(categoryIDs) > 0 {
		rows := make([]models.PromotionCategory, 0, len(categoryIDs))
		for _, cid := range categoryIDs {
			rows = append(rows, models.PromotionCategory{PromotionID: p.ID, CategoryID: cid})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		p.Categories = rows
	}
	return nil
}

func (r *GormRepo) DeletePromotion(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promotion_id = ?", id).Delete(&models.PromotionProduct{}).Error; err != nil {
			return err
		}
		if err := tx.Where("promotion_id = ?", id).Delete(&models.PromotionCategory{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Promotion{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
