package transport

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

// ImageFile is one uploaded file with the metadata sent alongside it at the same position.
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
	AltText     *string
	IsPrimary   *int
}

type CompleteProductInput struct {
	Product  models.Product
	Images   []ImageFile
	Variants []VariantInput
}

// ParseProductForm reads the scalar fields of the composite create form.
func ParseProductForm(form url.Values) (*models.Product, error) {
	name := strings.TrimSpace(form.Get("name"))
	if name == "" {
		return nil, domain.Invalid("Product name is required")
	}

	rawCategory := strings.TrimSpace(form.Get("category_id"))
	if rawCategory == "" {
		return nil, domain.Invalid("Category ID is required")
	}
	categoryID, err := strconv.ParseUint(rawCategory, 10, 64)
	if err != nil || categoryID == 0 {
		return nil, domain.Invalid("Category ID must be an integer")
	}

	p := &models.Product{
		Name:       name,
		CategoryID: uint(categoryID),
		IsActive:   1,
		StockUnit:  models.StockUnitOther,
	}
	if form.Has("description") {
		d := form.Get("description")
		p.Description = &d
	}

	var patch PatchProductRequest
	if patch.IsActive, err = optionalInt(form, "is_active"); err != nil {
		return nil, err
	}
	if patch.StockQuantity, err = optionalInt(form, "stock_quantity"); err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(form.Get("stock_unit")); v != "" {
		patch.StockUnit = &v
	}
	if err := patch.Apply(p); err != nil {
		return nil, err
	}
	return p, nil
}

func optionalInt(form url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(form.Get(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, domain.Invalid("%s must be an integer", key)
	}
	return &n, nil
}

// ParseVariantForm reduces both accepted variant shapes to one list. A non-empty
// JSON array in "variants" wins; otherwise the parallel variant_* arrays are read.
// When the JSON blob is malformed the parallel arrays are used and jsonErr reports why.
// Entries are returned as sent; incomplete ones are filtered by the caller, and an
// array entry that cannot be decoded comes back empty so it is counted as skipped.
func ParseVariantForm(form url.Values) (variants []VariantInput, jsonErr error) {
	if raw := strings.TrimSpace(form.Get("variants")); raw != "" {
		var entries []json.RawMessage
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			jsonErr = err
		} else if len(entries) > 0 {
			return decodeVariants(entries), nil
		}
	}

	names := FormList(form, "variant_name")
	prices := FormList(form, "variant_price")
	stocks := FormList(form, "variant_stock_quantity")
	units := FormList(form, "variant_quantity_unit")

	variants = make([]VariantInput, 0, len(names))
	for i, name := range names {
		v := VariantInput{VariantName: strings.TrimSpace(name)}
		if i < len(prices) {
			if d, err := decimal.NewFromString(strings.TrimSpace(prices[i])); err == nil {
				v.VariantPrice = &d
			}
		}
		if i < len(stocks) {
			if n, err := strconv.Atoi(strings.TrimSpace(stocks[i])); err == nil {
				v.StockQuantity = n
			}
		}
		if i < len(units) && units[i] != "" {
			u := units[i]
			v.QuantityUnit = &u
		}
		variants = append(variants, v)
	}
	return variants, jsonErr
}

// FormList prefers the bracketed key ("name[]") and falls back to the plain one.
func FormList(form url.Values, key string) []string {
	if v := form[key+"[]"]; len(v) > 0 {
		return v
	}
	return form[key]
}

// ApplyImageMeta pairs alt_text and is_primary values with files by position.
func ApplyImageMeta(images []ImageFile, altTexts, primaryFlags []string) error {
	for i := range images {
		if i < len(altTexts) && altTexts[i] != "" {
			alt := altTexts[i]
			images[i].AltText = &alt
		}
		if i < len(primaryFlags) && strings.TrimSpace(primaryFlags[i]) != "" {
			n, err := strconv.Atoi(strings.TrimSpace(primaryFlags[i]))
			if err != nil {
				return domain.Invalid("is_primary must be 0 or 1")
			}
			if err := flag("is_primary", n); err != nil {
				return err
			}
			images[i].IsPrimary = &n
		}
	}
	return nil
}
