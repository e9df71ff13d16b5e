package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func preloadCart(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("CartItems", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("CartItems.ProductVariant").
		Preload("CartItems.ProductVariant.Product")
}

// GetCartDetailByUser loads cart -> user and cart -> items -> variant -> product.
func (r *GormRepo) GetCartDetailByUser(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := preloadCart(r.DB.WithContext(ctx)).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) GetCartDetail(ctx context.Context, id uint) (*models.Cart, error) {
	var cart models.Cart
	if err := preloadCart(r.DB.WithContext(ctx)).First(&cart, id).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) GetCarts(ctx context.Context, offset, limit int) (int64, []models.Cart, error) {
	return list[models.Cart](ctx, r.DB, offset, limit)
}

// CreateCart refuses a second cart for the same user with gorm.ErrDuplicatedKey.
func (r *GormRepo) CreateCart(ctx context.Context, cart *models.Cart) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Cart{}).Where("user_id = ?", cart.UserID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return gorm.ErrDuplicatedKey
		}
		return tx.Omit(clause.Associations).Create(cart).Error
	})
}

func (r *GormRepo) PatchCart(ctx context.Context, id uint, apply func(tx *gorm.DB, c *models.Cart) error) (*models.Cart, error) {
	return patch(ctx, r.DB, id, apply)
}

func (r *GormRepo) PatchCartByUser(ctx context.Context, userID uint, apply func(tx *gorm.DB, c *models.Cart) error) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			return err
		}
		if err := apply(tx, &cart); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&cart).Error
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// DeleteCartAndItems deletes the items explicitly before the cart. It returns
// the owner so callers can drop cached views.
func (r *GormRepo) DeleteCartAndItems(ctx context.Context, id uint) (uint, error) {
	return r.deleteCartWhere(ctx, "id = ?", id)
}

func (r *GormRepo) DeleteCartByUser(ctx context.Context, userID uint) (uint, error) {
	return r.deleteCartWhere(ctx, "user_id = ?", userID)
}

func (r *GormRepo) deleteCartWhere(ctx context.Context, query string, arg any) (uint, error) {
	var cart models.Cart
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(query, arg).First(&cart).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Cart{}, cart.ID).Error
	})
	if err != nil {
		return 0, err
	}
	return cart.UserID, nil
}

func (r *GormRepo) CartOwner(ctx context.Context, cartID uint) (uint, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).Select("id", "user_id").First(&cart, cartID).Error; err != nil {
		return 0, err
	}
	return cart.UserID, nil
}

func (r *GormRepo) GetCartItem(ctx context.Context, id uint) (*models.CartItem, error) {
	return getByID[models.CartItem](ctx, r.DB, id)
}

func (r *GormRepo) GetCartItems(ctx context.Context, offset, limit int) (int64, []models.CartItem, error) {
	return list[models.CartItem](ctx, r.DB, offset, limit)
}

func (r *GormRepo) CreateCartItem(ctx context.Context, item *models.CartItem) error {
	return create(ctx, r.DB, item)
}

func (r *GormRepo) PatchCartItem(ctx context.Context, id uint, apply func(tx *gorm.DB, item *models.CartItem) error) (*models.CartItem, error) {
	return patch(ctx, r.DB, id, apply)
}

// DeleteCartItem returns the removed row.
func (r *GormRepo) DeleteCartItem(ctx context.Context, id uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.CartItem{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}
