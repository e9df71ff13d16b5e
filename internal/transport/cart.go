package transport

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

// CartRequest serves create and patch; only set fields are written.
type CartRequest struct {
	UserID               *uint            `json:"user_id"`
	CouponActive         *int             `json:"coupon_active"`
	CouponID             *uint            `json:"coupon_id"`
	CouponCode           *string          `json:"coupon_code"`
	CouponDiscount       *decimal.Decimal `json:"coupon_discount"`
	DiscountedTotalPrice *decimal.Decimal `json:"discounted_total_price"`
	ActualAmount         *decimal.Decimal `json:"actual_amount"`
}

// Apply never touches UserID: the owner is fixed at creation.
func (r CartRequest) Apply(c *models.Cart) error {
	if r.CouponActive != nil {
		if err := flag("coupon_active", *r.CouponActive); err != nil {
			return err
		}
		c.CouponActive = *r.CouponActive
	}
	if r.CouponID != nil {
		c.CouponID = r.CouponID
	}
	if r.CouponCode != nil {
		c.CouponCode = r.CouponCode
	}
	for _, m := range []struct {
		name string
		src  *decimal.Decimal
		dst  *decimal.Decimal
	}{
		{"coupon_discount", r.CouponDiscount, &c.CouponDiscount},
		{"discounted_total_price", r.DiscountedTotalPrice, &c.DiscountedTotalPrice},
		{"actual_amount", r.ActualAmount, &c.ActualAmount},
	} {
		if m.src == nil {
			continue
		}
		if err := nonNegative(m.name, *m.src); err != nil {
			return err
		}
		*m.dst = m.src.Round(2)
	}
	return nil
}

// NewCart builds a cart for userID with every money field defaulting to zero.
func (r CartRequest) NewCart(userID uint) (*models.Cart, error) {
	if userID == 0 {
		return nil, domain.Invalid("user_id is required")
	}
	c := &models.Cart{UserID: userID}
	if err := r.Apply(c); err != nil {
		return nil, err
	}
	return c, nil
}

type CreateCartItemRequest struct {
	CartID                uint             `json:"cart_id"`
	ProductVariantID      uint             `json:"product_variant_id"`
	Quantity              int              `json:"quantity"`
	ProductActualPrice    *decimal.Decimal `json:"product_actual_price"`
	ApplicablePromotionID *uint            `json:"applicable_promotion_id"`
	PromotionDiscount     *decimal.Decimal `json:"promotion_discount"`
	AfterDiscountedTotal  *decimal.Decimal `json:"after_discounted_total"`
}

func (r CreateCartItemRequest) ToModel() (*models.CartItem, error) {
	if r.CartID == 0 || r.ProductVariantID == 0 {
		return nil, domain.Invalid("cart_id and product_variant_id are required")
	}
	if r.ProductActualPrice == nil {
		return nil, domain.Invalid("product_actual_price is required")
	}
	item := &models.CartItem{CartID: r.CartID, ProductVariantID: r.ProductVariantID}
	patch := PatchCartItemRequest{
		Quantity:              &r.Quantity,
		ProductActualPrice:    r.ProductActualPrice,
		ApplicablePromotionID: r.ApplicablePromotionID,
		PromotionDiscount:     r.PromotionDiscount,
		AfterDiscountedTotal:  r.AfterDiscountedTotal,
	}
	if err := patch.Apply(item); err != nil {
		return nil, err
	}
	return item, nil
}

type PatchCartItemRequest struct {
	Quantity              *int             `json:"quantity"`
	ProductActualPrice    *decimal.Decimal `json:"product_actual_price"`
	ApplicablePromotionID *uint            `json:"applicable_promotion_id"`
	PromotionDiscount     *decimal.Decimal `json:"promotion_discount"`
	AfterDiscountedTotal  *decimal.Decimal `json:"after_discounted_total"`
}

func (r PatchCartItemRequest) Apply(item *models.CartItem) error {
	if r.Quantity != nil {
		if *r.Quantity < 1 {
			return domain.Invalid("quantity must be at least 1")
		}
		item.Quantity = *r.Quantity
	}
	if r.ApplicablePromotionID != nil {
		item.ApplicablePromotionID = r.ApplicablePromotionID
	}
	for _, m := range []struct {
		name string
		src  *decimal.Decimal
		dst  *decimal.Decimal
	}{
		{"product_actual_price", r.ProductActualPrice, &item.ProductActualPrice},
		{"promotion_discount", r.PromotionDiscount, &item.PromotionDiscount},
		{"after_discounted_total", r.AfterDiscountedTotal, &item.AfterDiscountedTotal},
	} {
		if m.src == nil {
			continue
		}
		if err := nonNegative(m.name, *m.src); err != nil {
			return err
		}
		*m.dst = m.src.Round(2)
	}
	return nil
}
