package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"     json:"id"`
	FirstName    string    `gorm:"size:250;not null"            json:"first_name"`
	LastName     string    `gorm:"size:250;not null"            json:"last_name"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null"            json:"-"`
	Phone        *int64    `                                    json:"phone"`
	Role         Role      `gorm:"size:20;not null"             json:"role"`
	CreatedAt    time.Time `                                    json:"created_at"`
}

type Address struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint   `gorm:"index;not null"           json:"user_id"`
	FullName     string `gorm:"size:500;not null"        json:"full_name"`
	Phone        string `gorm:"size:11;not null"         json:"phone"`
	Email        string `gorm:"size:100;not null"        json:"email"`
	AddressLine1 string `gorm:"type:text;not null"       json:"address_line1"`
	City         string `gorm:"size:45;not null"         json:"city"`
	Pincode      string `gorm:"size:45;not null"         json:"pincode"`
	IsDefault    int    `gorm:"not null"                 json:"is_default"`
}

type Category struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Name        string    `gorm:"size:150;uniqueIndex;not null" json:"name"`
	Description *string   `gorm:"type:text"                     json:"description"`
	CreatedAt   time.Time `                                     json:"created_at"`
}

type Product struct {
	ID            uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string           `gorm:"size:250;not null"        json:"name"`
	Description   *string          `gorm:"type:text"                json:"description"`
	CategoryID    uint             `gorm:"index;not null"           json:"category_id"`
	Category      *Category        `gorm:"foreignKey:CategoryID"    json:"category,omitempty"`
	IsActive      int              `gorm:"not null"                 json:"is_active"`
	CreatedAt     time.Time        `                                json:"created_at"`
	UpdatedAt     time.Time        `                                json:"updated_at"`
	StockQuantity int              `gorm:"not null"                 json:"stock_quantity"`
	StockUnit     StockUnit        `gorm:"size:10;not null"         json:"stock_unit"`
	Images        []ProductImage   `gorm:"foreignKey:ProductID"     json:"images,omitempty"`
	Variants      []ProductVariant `gorm:"foreignKey:ProductID"     json:"variants,omitempty"`
}

type ProductImage struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint    `gorm:"index;not null"           json:"product_id"`
	ImagePath string  `gorm:"type:text;not null"       json:"image_path"`
	AltText   *string `gorm:"type:text"                json:"alt_text"`
	IsPrimary int     `gorm:"not null"                 json:"is_primary"`
}

type ProductVariant struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"     json:"id"`
	ProductID     uint            `gorm:"index;not null"               json:"product_id"`
	Product       *Product        `gorm:"foreignKey:ProductID"         json:"product,omitempty"`
	VariantName   string          `gorm:"type:text;not null"           json:"variant_name"`
	VariantPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"  json:"variant_price"`
	StockQuantity int             `gorm:"not null"                     json:"stock_quantity"`
	QuantityUnit  *string         `gorm:"size:55"                      json:"quantity_unit"`
}

// Cart.UserID carries a unique index: one cart per user is enforced by the store as well.
type Cart struct {
	ID                   uint            `gorm:"primaryKey;autoIncrement"  json:"id"`
	UserID               uint            `gorm:"uniqueIndex;not null"      json:"user_id"`
	User                 *User           `gorm:"foreignKey:UserID"         json:"user,omitempty"`
	CouponActive         int             `gorm:"not null"                  json:"coupon_active"`
	CouponID             *uint           `                                 json:"coupon_id"`
	CouponCode           *string         `gorm:"type:text"                 json:"coupon_code"`
	CouponDiscount       decimal.Decimal `gorm:"type:decimal(10,2)"        json:"coupon_discount"`
	DiscountedTotalPrice decimal.Decimal `gorm:"type:decimal(10,2)"        json:"discounted_total_price"`
	ActualAmount         decimal.Decimal `gorm:"type:decimal(10,2)"        json:"actual_amount"`
	UpdatedAt            time.Time       `                                 json:"updated_at"`
	CartItems            []CartItem      `gorm:"foreignKey:CartID"         json:"cart_items,omitempty"`
}

type CartItem struct {
	ID                    uint            `gorm:"primaryKey;autoIncrement"   json:"id"`
	CartID                uint            `gorm:"index;not null"             json:"cart_id"`
	ProductVariantID      uint            `gorm:"index;not null"             json:"product_variant_id"`
	ProductVariant        *ProductVariant `gorm:"foreignKey:ProductVariantID" json:"product_variant,omitempty"`
	Quantity              int             `gorm:"not null"                   json:"quantity"`
	ProductActualPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"product_actual_price"`
	ApplicablePromotionID *uint           `                                  json:"applicable_promotion_id"`
	PromotionDiscount     decimal.Decimal `gorm:"type:decimal(10,2)"         json:"promotion_discount"`
	AfterDiscountedTotal  decimal.Decimal `gorm:"type:decimal(10,2)"         json:"after_discounted_total"`
	UpdatedAt             time.Time       `                                  json:"updated_at"`
}

type Coupon struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Code           string    `gorm:"size:191;uniqueIndex;not null" json:"code"`
	DiscountType   string    `gorm:"size:10;not null"              json:"discount_type"`
	DiscountValues int       `gorm:"not null"                      json:"discount_values"`
	MinOrderValue  int       `gorm:"not null"                      json:"min_order_value"`
	UsageLimit     *int      `                                     json:"usage_limit"`
	UsedCount      int       `gorm:"not null"                      json:"used_count"`
	StartDate      time.Time `gorm:"not null"                      json:"start_date"`
	EndDate        time.Time `gorm:"not null"                      json:"end_date"`
	IsActive       int       `gorm:"not null"                      json:"is_active"`
}

type CouponUser struct {
	ID       uint `gorm:"primaryKey;autoIncrement" json:"id"`
	CouponID uint `gorm:"index;not null"           json:"coupon_id"`
	UserID   uint `gorm:"index;not null"           json:"user_id"`
}

type Order struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID          uint            `gorm:"index;not null"              json:"user_id"`
	AddressID       uint            `gorm:"index;not null"              json:"address_id"`
	ActualAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"actual_amount"`
	PaymentStatus   PaymentStatus   `gorm:"size:10;not null"            json:"payment_status"`
	OrderStatus     OrderStatus     `gorm:"size:20;not null"            json:"order_status"`
	StripePaymentID *string         `gorm:"size:255"                    json:"stripe_payment_id"`
	CreatedAt       time.Time       `                                   json:"created_at"`
	DiscountSource  *string         `gorm:"size:50"                     json:"discount_source"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(10,2)"          json:"discount_amount"`
	SubTotal        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"sub_total"`
}

type OrderItem struct {
	ID               uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID          uint            `gorm:"index;not null"              json:"order_id"`
	ProductID        uint            `gorm:"index;not null"              json:"product_id"`
	ProductVariantID uint            `gorm:"index;not null"              json:"product_variant_id"`
	Quantity         int             `gorm:"not null"                    json:"quantity"`
	Price            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

type Promotion struct {
	ID            uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	Title         string              `gorm:"type:text;not null"       json:"title"`
	PromotionType PromotionType       `gorm:"size:20;not null"         json:"promotion_type"`
	DiscountType  string              `gorm:"size:10;not null"         json:"discount_type"`
	Description   *string             `gorm:"type:text"                json:"description"`
	DiscountValue int                 `gorm:"not null"                 json:"discount_value"`
	MinOrderValue int                 `gorm:"not null"                 json:"min_order_value"`
	Active        int                 `gorm:"not null"                 json:"active"`
	CreatedAt     time.Time           `                                json:"created_at"`
	StartDate     time.Time           `gorm:"not null"                 json:"start_date"`
	EndDate       time.Time           `gorm:"not null"                 json:"end_date"`
	Products      []PromotionProduct  `gorm:"foreignKey:PromotionID"   json:"-"`
	Categories    []PromotionCategory `gorm:"foreignKey:PromotionID"   json:"-"`
}

type PromotionProduct struct {
	ID          uint `gorm:"primaryKey;autoIncrement" json:"id"`
	PromotionID uint `gorm:"index;not null"           json:"promotion_id"`
	ProductID   uint `gorm:"index;not null"           json:"product_id"`
}

type PromotionCategory struct {
	ID          uint `gorm:"primaryKey;autoIncrement" json:"id"`
	PromotionID uint `gorm:"index;not null"           json:"promotion_id"`
	CategoryID  uint `gorm:"index;not null"           json:"category_id"`
}

// All lists every table for AutoMigrate, parents before children.
func All() []any {
	return []any{
		&User{}, &Address{}, &Category{}, &Product{}, &ProductImage{}, &ProductVariant{},
		&Coupon{}, &CouponUser{}, &Cart{}, &CartItem{}, &Order{}, &OrderItem{},
		&Promotion{}, &PromotionProduct{}, &PromotionCategory{},
	}
}
