package transport

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

// discountType is free text stored as-is; nothing evaluates it.
func discountType(v string) error {
	if err := required("discount_type", v); err != nil {
		return err
	}
	if len(v) > 10 {
		return domain.Invalid("discount_type must be at most 10 characters")
	}
	return nil
}

type CreateCouponRequest struct {
	Code           string    `json:"code"`
	DiscountType   string    `json:"discount_type"`
	DiscountValues int       `json:"discount_values"`
	MinOrderValue  int       `json:"min_order_value"`
	UsageLimit     *int      `json:"usage_limit"`
	UsedCount      int       `json:"used_count"`
	StartDate      Timestamp `json:"start_date"`
	EndDate        Timestamp `json:"end_date"`
	IsActive       *int      `json:"is_active"`
}

func (r CreateCouponRequest) ToModel() (*models.Coupon, error) {
	if err := required("code", r.Code); err != nil {
		return nil, err
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return nil, domain.Invalid("start_date and end_date are required")
	}
	c := &models.Coupon{IsActive: 1}
	patch := PatchCouponRequest{
		Code:           &r.Code,
		DiscountType:   &r.DiscountType,
		DiscountValues: &r.DiscountValues,
		MinOrderValue:  &r.MinOrderValue,
		UsageLimit:     r.UsageLimit,
		UsedCount:      &r.UsedCount,
		StartDate:      &r.StartDate,
		EndDate:        &r.EndDate,
		IsActive:       r.IsActive,
	}
	if err := patch.Apply(c); err != nil {
		return nil, err
	}
	return c, nil
}

type PatchCouponRequest struct {
	Code           *string    `json:"code"`
	DiscountType   *string    `json:"discount_type"`
	DiscountValues *int       `json:"discount_values"`
	MinOrderValue  *int       `json:"min_order_value"`
	UsageLimit     *int       `json:"usage_limit"`
	UsedCount      *int       `json:"used_count"`
	StartDate      *Timestamp `json:"start_date"`
	EndDate        *Timestamp `json:"end_date"`
	IsActive       *int       `json:"is_active"`
}

func (r PatchCouponRequest) Apply(c *models.Coupon) error {
	if r.Code != nil {
		if err := required("code", *r.Code); err != nil {
			return err
		}
		c.Code = strings.TrimSpace(*r.Code)
	}
	if r.DiscountType != nil {
		if err := discountType(*r.DiscountType); err != nil {
			return err
		}
		c.DiscountType = *r.DiscountType
	}
	if r.DiscountValues != nil {
		c.DiscountValues = *r.DiscountValues
	}
	if r.MinOrderValue != nil {
		c.MinOrderValue = *r.MinOrderValue
	}
	if r.UsageLimit != nil {
		c.UsageLimit = r.UsageLimit
	}
	if r.UsedCount != nil {
		c.UsedCount = *r.UsedCount
	}
	if r.StartDate != nil {
		c.StartDate = r.StartDate.Time
	}
	if r.EndDate != nil {
		c.EndDate = r.EndDate.Time
	}
	if r.IsActive != nil {
		if err := flag("is_active", *r.IsActive); err != nil {
			return err
		}
		c.IsActive = *r.IsActive
	}
	if c.EndDate.Before(c.StartDate) {
		return domain.Invalid("end_date must not be before start_date")
	}
	return nil
}

type CreateCouponUserRequest struct {
	CouponID uint `json:"coupon_id"`
	UserID   uint `json:"user_id"`
}

func (r CreateCouponUserRequest) ToModel() (*models.CouponUser, error) {
	if r.CouponID == 0 || r.UserID == 0 {
		return nil, domain.Invalid("coupon_id and user_id are required")
	}
	return &models.CouponUser{CouponID: r.CouponID, UserID: r.UserID}, nil
}

type CreateOrderRequest struct {
	UserID          uint             `json:"user_id"`
	AddressID       uint             `json:"address_id"`
	ActualAmount    *decimal.Decimal `json:"actual_amount"`
	SubTotal        *decimal.Decimal `json:"sub_total"`
	PaymentStatus   *string          `json:"payment_status"`
	OrderStatus     *string          `json:"order_status"`
	StripePaymentID *string          `json:"stripe_payment_id"`
	DiscountSource  *string          `json:"discount_source"`
	DiscountAmount  *decimal.Decimal `json:"discount_amount"`
}

func (r CreateOrderRequest) ToModel() (*models.Order, error) {
	if r.UserID == 0 || r.AddressID == 0 {
		return nil, domain.Invalid("user_id and address_id are required")
	}
	if r.ActualAmount == nil || r.SubTotal == nil {
		return nil, domain.Invalid("actual_amount and sub_total are required")
	}
	o := &models.Order{
		UserID:        r.UserID,
		AddressID:     r.AddressID,
		PaymentStatus: models.PaymentPending,
		OrderStatus:   models.OrderPending,
	}
	patch := PatchOrderRequest{
		ActualAmount:    r.ActualAmount,
		SubTotal:        r.SubTotal,
		PaymentStatus:   r.PaymentStatus,
		OrderStatus:     r.OrderStatus,
		StripePaymentID: r.StripePaymentID,
		DiscountSource:  r.DiscountSource,
		DiscountAmount:  r.DiscountAmount,
	}
	if err := patch.Apply(o); err != nil {
		return nil, err
	}
	return o, nil
}

type PatchOrderRequest struct {
	UserID          *uint            `json:"user_id"`
	AddressID       *uint            `json:"address_id"`
	ActualAmount    *decimal.Decimal `json:"actual_amount"`
	SubTotal        *decimal.Decimal `json:"sub_total"`
	PaymentStatus   *string          `json:"payment_status"`
	OrderStatus     *string          `json:"order_status"`
	StripePaymentID *string          `json:"stripe_payment_id"`
	DiscountSource  *string          `json:"discount_source"`
	DiscountAmount  *decimal.Decimal `json:"discount_amount"`
}

func (r PatchOrderRequest) Apply(o *models.Order) error {
	if r.UserID != nil {
		o.UserID = *r.UserID
	}
	if r.AddressID != nil {
		o.AddressID = *r.AddressID
	}
	if r.PaymentStatus != nil {
		s := models.PaymentStatus(*r.PaymentStatus)
		if !s.Valid() {
			return domain.Invalid("payment_status must be one of pending, paid, failed")
		}
		o.PaymentStatus = s
	}
	if r.OrderStatus != nil {
		s := models.OrderStatus(*r.OrderStatus)
		if !s.Valid() {
			return domain.Invalid("order_status must be one of pending, confirmed, out_for_delivery, delivered, cancelled")
		}
		o.OrderStatus = s
	}
	if r.StripePaymentID != nil {
		o.StripePaymentID = r.StripePaymentID
	}
	if r.DiscountSource != nil {
		o.DiscountSource = r.DiscountSource
	}
	for _, m := range []struct {
		name string
		src  *decimal.Decimal
		dst  *decimal.Decimal
	}{
		{"actual_amount", r.ActualAmount, &o.ActualAmount},
		{"sub_total", r.SubTotal, &o.SubTotal},
		{"discount_amount", r.DiscountAmount, &o.DiscountAmount},
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

type CreateOrderItemRequest struct {
	OrderID          uint             `json:"order_id"`
	ProductID        uint             `json:"product_id"`
	ProductVariantID uint             `json:"product_variant_id"`
	Quantity         int              `json:"quantity"`
	Price            *decimal.Decimal `json:"price"`
}

func (r CreateOrderItemRequest) ToModel() (*models.OrderItem, error) {
	if r.OrderID == 0 || r.ProductID == 0 || r.ProductVariantID == 0 {
		return nil, domain.Invalid("order_id, product_id and product_variant_id are required")
	}
	if r.Price == nil {
		return nil, domain.Invalid("price is required")
	}
	oi := &models.OrderItem{OrderID: r.OrderID, ProductID: r.ProductID, ProductVariantID: r.ProductVariantID}
	if err := (PatchOrderItemRequest{Quantity: &r.Quantity, Price: r.Price}).Apply(oi); err != nil {
		return nil, err
	}
	return oi, nil
}

type PatchOrderItemRequest struct {
	Quantity *int             `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
}

func (r PatchOrderItemRequest) Apply(oi *models.OrderItem) error {
	if r.Quantity != nil {
		if *r.Quantity < 1 {
			return domain.Invalid("quantity must be at least 1")
		}
		oi.Quantity = *r.Quantity
	}
	if r.Price != nil {
		if err := nonNegative("price", *r.Price); err != nil {
			return err
		}
		oi.Price = r.Price.Round(2)
	}
	return nil
}

type CreatePromotionRequest struct {
	Title         string    `json:"title"`
	PromotionType string    `json:"promotion_type"`
	DiscountType  string    `json:"discount_type"`
	Description   *string   `json:"description"`
	DiscountValue int       `json:"discount_value"`
	MinOrderValue int       `json:"min_order_value"`
	Active        *int      `json:"active"`
	StartDate     Timestamp `json:"start_date"`
	EndDate       Timestamp `json:"end_date"`
	ProductIDs    []uint    `json:"product_ids"`
	CategoryIDs   []uint    `json:"category_ids"`
}

func (r CreatePromotionRequest) ToModel() (*models.Promotion, error) {
	if err := required("title", r.Title); err != nil {
		return nil, err
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return nil, domain.Invalid("start_date and end_date are required")
	}
	p := &models.Promotion{Active: 1}
	patch := PatchPromotionRequest{
		Title:         &r.Title,
		PromotionType: &r.PromotionType,
		DiscountType:  &r.DiscountType,
		Description:   r.Description,
		DiscountValue: &r.DiscountValue,
		MinOrderValue: &r.MinOrderValue,
		Active:        r.Active,
		StartDate:     &r.StartDate,
		EndDate:       &r.EndDate,
	}
	if err := patch.Apply(p); err != nil {
		return nil, err
	}
	return p, nil
}

// PatchPromotionRequest replaces a target list only when it is present in the body.
type PatchPromotionRequest struct {
	Title         *string    `json:"title"`
	PromotionType *string    `json:"promotion_type"`
	DiscountType  *string    `json:"discount_type"`
	Description   *string    `json:"description"`
	DiscountValue *int       `json:"discount_value"`
	MinOrderValue *int       `json:"min_order_value"`
	Active        *int       `json:"active"`
	StartDate     *Timestamp `json:"start_date"`
	EndDate       *Timestamp `json:"end_date"`
	ProductIDs    []uint     `json:"product_ids"`
	CategoryIDs   []uint     `json:"category_ids"`
}

func (r PatchPromotionRequest) Apply(p *models.Promotion) error {
	if r.Title != nil {
		if err := required("title", *r.Title); err != nil {
			return err
		}
		p.Title = *r.Title
	}
	if r.PromotionType != nil {
		t := models.PromotionType(*r.PromotionType)
		if !t.Valid() {
			return domain.Invalid("promotion_type must be product or category")
		}
		p.PromotionType = t
	}
	if r.DiscountType != nil {
		if err := discountType(*r.DiscountType); err != nil {
			return err
		}
		p.DiscountType = *r.DiscountType
	}
	if r.Description != nil {
		p.Description = r.Description
	}
	if r.DiscountValue != nil {
		p.DiscountValue = *r.DiscountValue
	}
	if r.MinOrderValue != nil {
		p.MinOrderValue = *r.MinOrderValue
	}
	if r.Active != nil {
		if err := flag("active", *r.Active); err != nil {
			return err
		}
		p.Active = *r.Active
	}
	if r.StartDate != nil {
		p.StartDate = r.StartDate.Time
	}
	if r.EndDate != nil {
		p.EndDate = r.EndDate.Time
	}
	if p.EndDate.Before(p.StartDate) {
		return domain.Invalid("end_date must not be before start_date")
	}
	return nil
}
