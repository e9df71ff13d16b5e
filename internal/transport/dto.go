package transport

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

// Timestamp accepts RFC3339 as well as the zone-less "2006-01-02T15:04:05" form (read as UTC).
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q", s)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("datetime must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func flag(name string, v int) error {
	if v != 0 && v != 1 {
		return domain.Invalid("%s must be 0 or 1", name)
	}
	return nil
}

func nonNegative(name string, d decimal.Decimal) error {
	if d.IsNegative() {
		return domain.Invalid("%s cannot be negative", name)
	}
	return nil
}

func required(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return domain.Invalid("%s is required", name)
	}
	return nil
}

func stockUnit(v string) (models.StockUnit, error) {
	u := models.StockUnit(v)
	if !u.Valid() {
		return "", domain.Invalid("stock_unit must be one of Kg, gm, L, ml, other")
	}
	return u, nil
}

type CreateCategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (r CreateCategoryRequest) ToModel() (*models.Category, error) {
	if err := required("name", r.Name); err != nil {
		return nil, err
	}
	return &models.Category{Name: strings.TrimSpace(r.Name), Description: r.Description}, nil
}

type PatchCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (r PatchCategoryRequest) Apply(c *models.Category) error {
	if r.Name != nil {
		if err := required("name", *r.Name); err != nil {
			return err
		}
		c.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		c.Description = r.Description
	}
	return nil
}

type CreateProductRequest struct {
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	CategoryID    uint    `json:"category_id"`
	IsActive      *int    `json:"is_active"`
	StockQuantity *int    `json:"stock_quantity"`
	StockUnit     *string `json:"stock_unit"`
}

func (r CreateProductRequest) ToModel() (*models.Product, error) {
	if err := required("Product name", r.Name); err != nil {
		return nil, err
	}
	if r.CategoryID == 0 {
		return nil, domain.Invalid("Category ID is required")
	}
	p := &models.Product{
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		CategoryID:  r.CategoryID,
		IsActive:    1,
		StockUnit:   models.StockUnitOther,
	}
	return p, PatchProductRequest{IsActive: r.IsActive, StockQuantity: r.StockQuantity, StockUnit: r.StockUnit}.Apply(p)
}

type PatchProductRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	CategoryID    *uint   `json:"category_id"`
	IsActive      *int    `json:"is_active"`
	StockQuantity *int    `json:"stock_quantity"`
	StockUnit     *string `json:"stock_unit"`
}

func (r PatchProductRequest) Empty() bool {
	return r == PatchProductRequest{}
}

// Apply copies the set fields onto p. Category existence is checked by the caller.
func (r PatchProductRequest) Apply(p *models.Product) error {
	if r.Name != nil {
		if err := required("Product name", *r.Name); err != nil {
			return err
		}
		p.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		p.Description = r.Description
	}
	if r.CategoryID != nil {
		if *r.CategoryID == 0 {
			return domain.Invalid("category_id must be positive")
		}
		p.CategoryID = *r.CategoryID
	}
	if r.IsActive != nil {
		if err := flag("is_active", *r.IsActive); err != nil {
			return err
		}
		p.IsActive = *r.IsActive
	}
	if r.StockQuantity != nil {
		if *r.StockQuantity < 0 {
			return domain.Invalid("stock_quantity cannot be negative")
		}
		p.StockQuantity = *r.StockQuantity
	}
	if r.StockUnit != nil {
		u, err := stockUnit(*r.StockUnit)
		if err != nil {
			return err
		}
		p.StockUnit = u
	}
	return nil
}

type CreateImageRequest struct {
	ProductID uint    `json:"product_id"`
	ImagePath string  `json:"image_path"`
	AltText   *string `json:"alt_text"`
	IsPrimary int     `json:"is_primary"`
}

func (r CreateImageRequest) ToModel() (*models.ProductImage, error) {
	if r.ProductID == 0 {
		return nil, domain.Invalid("product_id is required")
	}
	if err := required("image_path", r.ImagePath); err != nil {
		return nil, err
	}
	if err := flag("is_primary", r.IsPrimary); err != nil {
		return nil, err
	}
	return &models.ProductImage{ProductID: r.ProductID, ImagePath: r.ImagePath, AltText: r.AltText, IsPrimary: r.IsPrimary}, nil
}

type PatchImageRequest struct {
	ProductID *uint   `json:"product_id"`
	ImagePath *string `json:"image_path"`
	AltText   *string `json:"alt_text"`
	IsPrimary *int    `json:"is_primary"`
}

func (r PatchImageRequest) Apply(img *models.ProductImage) error {
	if r.ProductID != nil {
		img.ProductID = *r.ProductID
	}
	if r.ImagePath != nil {
		if err := required("image_path", *r.ImagePath); err != nil {
			return err
		}
		img.ImagePath = *r.ImagePath
	}
	if r.AltText != nil {
		img.AltText = r.AltText
	}
	if r.IsPrimary != nil {
		if err := flag("is_primary", *r.IsPrimary); err != nil {
			return err
		}
		img.IsPrimary = *r.IsPrimary
	}
	return nil
}

// VariantInput is the single shape every variant source is reduced to.
type VariantInput struct {
	VariantName   string           `json:"variant_name"`
	VariantPrice  *decimal.Decimal `json:"variant_price"`
	StockQuantity int              `json:"stock_quantity"`
	QuantityUnit  *string          `json:"quantity_unit"`
}

// Complete reports whether the entry carries both a name and a price.
func (v VariantInput) Complete() bool {
	return strings.TrimSpace(v.VariantName) != "" && v.VariantPrice != nil
}

func (v VariantInput) ToModel(productID uint) models.ProductVariant {
	return models.ProductVariant{
		ProductID:     productID,
		VariantName:   v.VariantName,
		VariantPrice:  v.VariantPrice.Round(2),
		StockQuantity: v.StockQuantity,
		QuantityUnit:  v.QuantityUnit,
	}
}

type AddVariantsRequest struct {
	Variants []VariantInput `json:"variants"`
}

// UnmarshalJSON decodes every entry on its own so one badly typed entry is
// skipped instead of failing the whole request.
func (r *AddVariantsRequest) UnmarshalJSON(data []byte) error {
	var aux struct {
		Variants []json.RawMessage `json:"variants"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Variants = decodeVariants(aux.Variants)
	return nil
}

// CompleteProductRequest is the JSON body the composite create accepts when no
// files are sent.
type CompleteProductRequest struct {
	CreateProductRequest
	Variants []VariantInput
}

func (r *CompleteProductRequest) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &r.CreateProductRequest); err != nil {
		return err
	}
	var vs AddVariantsRequest
	if err := json.Unmarshal(data, &vs); err != nil {
		return err
	}
	r.Variants = vs.Variants
	return nil
}

func (r CompleteProductRequest) ToInput() (CompleteProductInput, error) {
	p, err := r.CreateProductRequest.ToModel()
	if err != nil {
		return CompleteProductInput{}, err
	}
	return CompleteProductInput{Product: *p, Variants: r.Variants}, nil
}

type variantJSON struct {
	VariantName   string           `json:"variant_name"`
	VariantPrice  *decimal.Decimal `json:"variant_price"`
	StockQuantity json.RawMessage  `json:"stock_quantity"`
	QuantityUnit  *string          `json:"quantity_unit"`
}

func decodeVariants(entries []json.RawMessage) []VariantInput {
	out := make([]VariantInput, 0, len(entries))
	for _, raw := range entries {
		v, err := decodeVariant(raw)
		if err != nil {
			v = VariantInput{}
		}
		out = append(out, v)
	}
	return out
}

func decodeVariant(raw json.RawMessage) (VariantInput, error) {
	var aux variantJSON
	if err := json.Unmarshal(raw, &aux); err != nil {
		return VariantInput{}, err
	}
	stock, err := looseInt(aux.StockQuantity)
	if err != nil {
		return VariantInput{}, err
	}
	return VariantInput{
		VariantName:   aux.VariantName,
		VariantPrice:  aux.VariantPrice,
		StockQuantity: stock,
		QuantityUnit:  aux.QuantityUnit,
	}, nil
}

// looseInt accepts a JSON number or a numeric string. Fractions are truncated.
func looseInt(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var num json.Number
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
		num = json.Number(s)
	} else if err := json.Unmarshal(raw, &num); err != nil {
		return 0, err
	}
	if n, err := num.Int64(); err == nil {
		return int(n), nil
	}
	f, err := num.Float64()
	if err != nil {
		return 0, fmt.Errorf("stock_quantity %q is not a number", num.String())
	}
	return int(f), nil
}

type CreateVariantRequest struct {
	ProductID uint `json:"product_id"`
	VariantInput
}

func (r CreateVariantRequest) ToModel() (*models.ProductVariant, error) {
	if r.ProductID == 0 {
		return nil, domain.Invalid("product_id is required")
	}
	if !r.Complete() {
		return nil, domain.Invalid("variant_name and variant_price are required")
	}
	if err := nonNegative("variant_price", *r.VariantPrice); err != nil {
		return nil, err
	}
	v := r.VariantInput.ToModel(r.ProductID)
	return &v, nil
}

type PatchVariantRequest struct {
	ProductID     *uint            `json:"product_id"`
	VariantName   *string          `json:"variant_name"`
	VariantPrice  *decimal.Decimal `json:"variant_price"`
	StockQuantity *int             `json:"stock_quantity"`
	QuantityUnit  *string          `json:"quantity_unit"`
}

func (r PatchVariantRequest) Apply(v *models.ProductVariant) error {
	if r.ProductID != nil {
		v.ProductID = *r.ProductID
	}
	if r.VariantName != nil {
		if err := required("variant_name", *r.VariantName); err != nil {
			return err
		}
		v.VariantName = *r.VariantName
	}
	if r.VariantPrice != nil {
		if err := nonNegative("variant_price", *r.VariantPrice); err != nil {
			return err
		}
		v.VariantPrice = r.VariantPrice.Round(2)
	}
	if r.StockQuantity != nil {
		v.StockQuantity = *r.StockQuantity
	}
	if r.QuantityUnit != nil {
		v.QuantityUnit = r.QuantityUnit
	}
	return nil
}
