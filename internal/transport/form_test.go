package transport

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

func TestParseProductForm_Defaults(t *testing.T) {
	t.Parallel()

	p, err := ParseProductForm(url.Values{"name": {" Milk "}, "category_id": {"3"}})
	require.NoError(t, err)
	assert.Equal(t, "Milk", p.Name)
	assert.EqualValues(t, 3, p.CategoryID)
	assert.Equal(t, 1, p.IsActive)
	assert.Equal(t, 0, p.StockQuantity)
	assert.Equal(t, models.StockUnitOther, p.StockUnit)
	assert.Nil(t, p.Description)
}

func TestParseProductForm_Fields(t *testing.T) {
	t.Parallel()

	p, err := ParseProductForm(url.Values{
		"name":           {"Milk"},
		"category_id":    {"3"},
		"description":    {"fresh"},
		"is_active":      {"0"},
		"stock_quantity": {"12"},
		"stock_unit":     {"L"},
	})
	require.NoError(t, err)
	require.NotNil(t, p.Description)
	assert.Equal(t, "fresh", *p.Description)
	assert.Equal(t, 0, p.IsActive)
	assert.Equal(t, 12, p.StockQuantity)
	assert.Equal(t, models.StockUnitL, p.StockUnit)
}

func TestParseProductForm_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]url.Values{
		"missing name":     {"category_id": {"1"}},
		"missing category": {"name": {"x"}},
		"bad category":     {"name": {"x"}, "category_id": {"abc"}},
		"bad is_active":    {"name": {"x"}, "category_id": {"1"}, "is_active": {"2"}},
		"bad stock int":    {"name": {"x"}, "category_id": {"1"}, "stock_quantity": {"lots"}},
		"bad unit":         {"name": {"x"}, "category_id": {"1"}, "stock_unit": {"tons"}},
	}
	for name, form := range cases {
		_, err := ParseProductForm(form)
		assert.ErrorIs(t, err, domain.ErrValidation, name)
	}
}

func TestParseVariantForm_JSONWins(t *testing.T) {
	t.Parallel()

	form := url.Values{
		"variants":       {`[{"variant_name":"Small","variant_price":19.99,"stock_quantity":5,"quantity_unit":"pcs"},{"variant_name":"NoPrice"}]`},
		"variant_name[]": {"ignored"},
	}
	vs, jsonErr := ParseVariantForm(form)
	require.NoError(t, jsonErr)
	require.Len(t, vs, 2)
	assert.Equal(t, "Small", vs[0].VariantName)
	require.NotNil(t, vs[0].VariantPrice)
	assert.Equal(t, "19.99", vs[0].VariantPrice.StringFixed(2))
	assert.Equal(t, 5, vs[0].StockQuantity)
	assert.True(t, vs[0].Complete())
	assert.False(t, vs[1].Complete())
}

func TestParseVariantForm_BadEntryOnlySkipsItself(t *testing.T) {
	t.Parallel()

	form := url.Values{"variants": {`[
		{"variant_name":"A","variant_price":1},
		{"variant_name":"B","variant_price":"abc"},
		{"variant_name":"Small","variant_price":19.99,"stock_quantity":"50"},
		"not an object"
	]`}}
	vs, jsonErr := ParseVariantForm(form)
	require.NoError(t, jsonErr)
	require.Len(t, vs, 4)

	assert.True(t, vs[0].Complete())
	assert.Equal(t, "A", vs[0].VariantName)

	assert.False(t, vs[1].Complete(), "bad price empties the entry")

	assert.True(t, vs[2].Complete())
	assert.Equal(t, 50, vs[2].StockQuantity)
	assert.Equal(t, "19.99", vs[2].VariantPrice.StringFixed(2))

	assert.False(t, vs[3].Complete())
}

func TestAddVariantsRequest_DecodesEntriesSeparately(t *testing.T) {
	t.Parallel()

	var req AddVariantsRequest
	err := json.Unmarshal([]byte(`{"variants":[{"variant_name":"S","variant_price":"2.5","stock_quantity":"7"},{"variant_name":"M","variant_price":3,"stock_quantity":"lots"}]}`), &req)
	require.NoError(t, err)
	require.Len(t, req.Variants, 2)
	assert.True(t, req.Variants[0].Complete())
	assert.Equal(t, 7, req.Variants[0].StockQuantity)
	assert.False(t, req.Variants[1].Complete())
}

func TestParseVariantForm_ParallelArrays(t *testing.T) {
	t.Parallel()

	form := url.Values{
		"variant_name[]":           {"S", "M", ""},
		"variant_price[]":          {"1.50", "oops", "3"},
		"variant_stock_quantity[]": {"4"},
		"variant_quantity_unit[]":  {"", "box"},
	}
	vs, jsonErr := ParseVariantForm(form)
	require.NoError(t, jsonErr)
	require.Len(t, vs, 3)

	assert.True(t, vs[0].Complete())
	assert.Equal(t, 4, vs[0].StockQuantity)
	assert.Nil(t, vs[0].QuantityUnit)

	assert.False(t, vs[1].Complete(), "unparsable price counts as missing")
	require.NotNil(t, vs[1].QuantityUnit)
	assert.Equal(t, "box", *vs[1].QuantityUnit)

	assert.False(t, vs[2].Complete(), "empty name")
}

func TestParseVariantForm_UnbracketedAndEmptyJSON(t *testing.T) {
	t.Parallel()

	vs, jsonErr := ParseVariantForm(url.Values{"variants": {"[]"}, "variant_name": {"S"}, "variant_price": {"2"}})
	require.NoError(t, jsonErr)
	require.Len(t, vs, 1)
	assert.True(t, vs[0].Complete())
}

func TestParseVariantForm_MalformedJSONFallsBack(t *testing.T) {
	t.Parallel()

	vs, jsonErr := ParseVariantForm(url.Values{"variants": {"{not json"}, "variant_name": {"S"}, "variant_price": {"2"}})
	assert.Error(t, jsonErr)
	require.Len(t, vs, 1)
	assert.Equal(t, "S", vs[0].VariantName)
}

func TestApplyImageMeta(t *testing.T) {
	t.Parallel()

	imgs := []ImageFile{{Filename: "a.png"}, {Filename: "b.png"}, {Filename: "c.png"}}
	require.NoError(t, ApplyImageMeta(imgs, []string{"first", ""}, []string{"0", "1"}))

	require.NotNil(t, imgs[0].AltText)
	assert.Equal(t, "first", *imgs[0].AltText)
	assert.Nil(t, imgs[1].AltText)
	require.NotNil(t, imgs[1].IsPrimary)
	assert.Equal(t, 1, *imgs[1].IsPrimary)
	assert.Nil(t, imgs[2].IsPrimary)

	err := ApplyImageMeta([]ImageFile{{Filename: "a.png"}}, nil, []string{"yes"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
