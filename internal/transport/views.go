package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

func init() {
	// money is written as a JSON number holding the exact decimal text
	decimal.MarshalJSONWithoutQuotes = true
}

// URLFunc derives a public URL from a stored object path.
type URLFunc func(path string) string

type CategoryView struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type ImageView struct {
	ID        uint    `json:"id"`
	ProductID uint    `json:"product_id"`
	ImagePath string  `json:"image_path"`
	ImageURL  string  `json:"image_url"`
	AltText   *string `json:"alt_text"`
	IsPrimary int     `json:"is_primary"`
}

type VariantView struct {
	ID            uint            `json:"id"`
	ProductID     uint            `json:"product_id"`
	VariantName   string          `json:"variant_name"`
	VariantPrice  decimal.Decimal `json:"variant_price"`
	StockQuantity int             `json:"stock_quantity"`
	QuantityUnit  *string         `json:"quantity_unit"`
}

type ProductView struct {
	ID            uint          `json:"id"`
	Name          string        `json:"name"`
	Description   *string       `json:"description"`
	CategoryID    uint          `json:"category_id"`
	IsActive      int           `json:"is_active"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	StockQuantity int           `json:"stock_quantity"`
	StockUnit     string        `json:"stock_unit"`
	Category      *CategoryView `json:"category"`
	Images        []ImageView   `json:"images"`
	Variants      []VariantView `json:"variants"`
}

func NewCategoryView(c *models.Category) *CategoryView {
	if c == nil {
		return nil
	}
	return &CategoryView{ID: c.ID, Name: c.Name, Description: c.Description}
}

func NewImageView(img models.ProductImage, urlFor URLFunc) ImageView {
	v := ImageView{
		ID:        img.ID,
		ProductID: img.ProductID,
		ImagePath: img.ImagePath,
		AltText:   img.AltText,
		IsPrimary: img.IsPrimary,
	}
	if urlFor != nil && img.ImagePath != "" {
		v.ImageURL = urlFor(img.ImagePath)
	}
	return v
}

func NewVariantView(v models.ProductVariant) VariantView {
	return VariantView{
		ID:            v.ID,
		ProductID:     v.ProductID,
		VariantName:   v.VariantName,
		VariantPrice:  v.VariantPrice,
		StockQuantity: v.StockQuantity,
		QuantityUnit:  v.QuantityUnit,
	}
}

func NewProductView(p *models.Product, urlFor URLFunc) ProductView {
	v := ProductView{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		CategoryID:    p.CategoryID,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		StockQuantity: p.StockQuantity,
		StockUnit:     string(p.StockUnit),
		Category:      NewCategoryView(p.Category),
		Images:        make([]ImageView, 0, len(p.Images)),
		Variants:      make([]VariantView, 0, len(p.Variants)),
	}
	for _, img := range p.Images {
		v.Images = append(v.Images, NewImageView(img, urlFor))
	}
	for _, pv := range p.Variants {
		v.Variants = append(v.Variants, NewVariantView(pv))
	}
	return v
}

func NewProductViews(items []models.Product, urlFor URLFunc) []ProductView {
	out := make([]ProductView, 0, len(items))
	for i := range items {
		out = append(out, NewProductView(&items[i], urlFor))
	}
	return out
}

type CartUserView struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type CartProductView struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type CartVariantView struct {
	ID           uint             `json:"id"`
	VariantName  string           `json:"variant_name"`
	VariantPrice decimal.Decimal  `json:"variant_price"`
	Product      *CartProductView `json:"product"`
}

type CartItemView struct {
	ID                    uint             `json:"id"`
	CartID                uint             `json:"cart_id"`
	ProductVariantID      uint             `json:"product_variant_id"`
	Quantity              int              `json:"quantity"`
	ProductActualPrice    decimal.Decimal  `json:"product_actual_price"`
	ApplicablePromotionID *uint            `json:"applicable_promotion_id"`
	PromotionDiscount     decimal.Decimal  `json:"promotion_discount"`
	AfterDiscountedTotal  decimal.Decimal  `json:"after_discounted_total"`
	UpdatedAt             time.Time        `json:"updated_at"`
	ProductVariant        *CartVariantView `json:"product_variant"`
}

type CartDetailView struct {
	ID                   uint            `json:"id"`
	UserID               uint            `json:"user_id"`
	CouponActive         int             `json:"coupon_active"`
	CouponID             *uint           `json:"coupon_id"`
	CouponCode           *string         `json:"coupon_code"`
	CouponDiscount       decimal.Decimal `json:"coupon_discount"`
	DiscountedTotalPrice decimal.Decimal `json:"discounted_total_price"`
	ActualAmount         decimal.Decimal `json:"actual_amount"`
	UpdatedAt            time.Time       `json:"updated_at"`
	CartItems            []CartItemView  `json:"cart_items"`
	User                 *CartUserView   `json:"user"`
}

func NewCartItemView(it models.CartItem) CartItemView {
	v := CartItemView{
		ID:                    it.ID,
		CartID:                it.CartID,
		ProductVariantID:      it.ProductVariantID,
		Quantity:              it.Quantity,
		ProductActualPrice:    it.ProductActualPrice,
		ApplicablePromotionID: it.ApplicablePromotionID,
		PromotionDiscount:     it.PromotionDiscount,
		AfterDiscountedTotal:  it.AfterDiscountedTotal,
		UpdatedAt:             it.UpdatedAt,
	}
	if pv := it.ProductVariant; pv != nil {
		v.ProductVariant = &CartVariantView{ID: pv.ID, VariantName: pv.VariantName, VariantPrice: pv.VariantPrice}
		if p := pv.Product; p != nil {
			v.ProductVariant.Product = &CartProductView{ID: p.ID, Name: p.Name, Description: p.Description}
		}
	}
	return v
}

func NewCartDetailView(c *models.Cart) CartDetailView {
	v := CartDetailView{
		ID:                   c.ID,
		UserID:               c.UserID,
		CouponActive:         c.CouponActive,
		CouponID:             c.CouponID,
		CouponCode:           c.CouponCode,
		CouponDiscount:       c.CouponDiscount,
		DiscountedTotalPrice: c.DiscountedTotalPrice,
		ActualAmount:         c.ActualAmount,
		UpdatedAt:            c.UpdatedAt,
		CartItems:            make([]CartItemView, 0, len(c.CartItems)),
	}
	for _, it := range c.CartItems {
		v.CartItems = append(v.CartItems, NewCartItemView(it))
	}
	if u := c.User; u != nil {
		v.User = &CartUserView{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
	}
	return v
}

type PromotionView struct {
	models.Promotion
	ProductIDs  []uint `json:"product_ids"`
	CategoryIDs []uint `json:"category_ids"`
}

func NewPromotionView(p *models.Promotion) PromotionView {
	v := PromotionView{
		Promotion:   *p,
		ProductIDs:  make([]uint, 0, len(p.Products)),
		CategoryIDs: make([]uint, 0, len(p.Categories)),
	}
	for _, pp := range p.Products {
		v.ProductIDs = append(v.ProductIDs, pp.ProductID)
	}
	for _, pc := range p.Categories {
		v.CategoryIDs = append(v.CategoryIDs, pc.CategoryID)
	}
	return v
}

func NewPromotionViews(items []models.Promotion) []PromotionView {
	out := make([]PromotionView, 0, len(items))
	for i := range items {
		out = append(out, NewPromotionView(&items[i]))
	}
	return out
}
