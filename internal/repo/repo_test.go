package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/testdb"
)

func newRepo(t *testing.T) *GormRepo {
	t.Helper()
	return &GormRepo{DB: testdb.Open(t)}
}

func seedCategory(t *testing.T, r *GormRepo, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name}
	require.NoError(t, r.CreateCategory(context.Background(), c))
	return c
}

func TestCreateProductAggregate_AndPreload(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, r, "dairy")

	prod := &models.Product{Name: "milk", CategoryID: cat.ID, IsActive: 1, StockUnit: models.StockUnitL}
	images := []models.ProductImage{{ImagePath: "products/a.png", IsPrimary: 1}, {ImagePath: "products/b.png"}}
	variants := []models.ProductVariant{{VariantName: "1L", VariantPrice: decimal.RequireFromString("1.99")}}

	require.NoError(t, r.CreateProductAggregate(ctx, prod, images, variants))
	require.NotZero(t, prod.ID)

	got, err := r.GetProduct(ctx, prod.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Category)
	assert.Equal(t, "dairy", got.Category.Name)
	require.Len(t, got.Images, 2)
	assert.Equal(t, "products/a.png", got.Images[0].ImagePath)
	assert.Equal(t, 1, got.Images[0].IsPrimary)
	require.Len(t, got.Variants, 1)
	assert.True(t, decimal.RequireFromString("1.99").Equal(got.Variants[0].VariantPrice))
}

func TestCreateProductAggregate_RollsBackOnChildFailure(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, r, "dairy")

	boom := errors.New("boom")
	require.NoError(t, r.DB.Callback().Create().Before("gorm:create").Register("test:fail_images", func(tx *gorm.DB) {
		if tx.Statement.Table == "product_images" {
			_ = tx.AddError(boom)
		}
	}))

	prod := &models.Product{Name: "milk", CategoryID: cat.ID, StockUnit: models.StockUnitOther}
	err := r.CreateProductAggregate(ctx, prod, []models.ProductImage{{ImagePath: "products/a.png"}}, nil)
	require.ErrorIs(t, err, boom)

	var n int64
	require.NoError(t, r.DB.Model(&models.Product{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestAttachImages_PrimaryOnlyWhenEmpty(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, r, "c")
	prod := &models.Product{Name: "p", CategoryID: cat.ID, StockUnit: models.StockUnitOther}
	require.NoError(t, r.CreateProduct(ctx, prod))

	first := []models.ProductImage{{ImagePath: "a"}, {ImagePath: "b"}}
	require.NoError(t, r.AttachImages(ctx, prod.ID, first, false))
	assert.Equal(t, 1, first[0].IsPrimary)
	assert.Equal(t, 0, first[1].IsPrimary)

	second := []models.ProductImage{{ImagePath: "c"}}
	require.NoError(t, r.AttachImages(ctx, prod.ID, second, false))
	assert.Equal(t, 0, second[0].IsPrimary)

	n, err := r.CountImages(ctx, prod.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestDeleteProductCascade(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, r, "c")

	prod := &models.Product{Name: "p", CategoryID: cat.ID, StockUnit: models.StockUnitOther}
	require.NoError(t, r.CreateProductAggregate(ctx, prod,
		[]models.ProductImage{{ImagePath: "products/x.png"}},
		[]models.ProductVariant{{VariantName: "v", VariantPrice: decimal.NewFromInt(3)}},
	))

	paths, err := r.DeleteProductCascade(ctx, prod.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"products/x.png"}, paths)

	var imgs, vars int64
	require.NoError(t, r.DB.Model(&models.ProductImage{}).Where("product_id = ?", prod.ID).Count(&imgs).Error)
	require.NoError(t, r.DB.Model(&models.ProductVariant{}).Where("product_id = ?", prod.ID).Count(&vars).Error)
	assert.Zero(t, imgs)
	assert.Zero(t, vars)

	_, err = r.DeleteProductCascade(ctx, prod.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartLifecycle(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, r, "c")

	user := &models.User{FirstName: "Ada", LastName: "L", Email: "ada@example.com", PasswordHash: "x", Role: models.RoleCustomer}
	require.NoError(t, r.CreateUser(ctx, user))

	prod := &models.Product{Name: "tea", CategoryID: cat.ID, StockUnit: models.StockUnitGm}
	variant := models.ProductVariant{VariantName: "250g", VariantPrice: decimal.RequireFromString("4.50")}
	require.NoError(t, r.CreateProductAggregate(ctx, prod, nil, []models.ProductVariant{variant}))
	got, err := r.GetProduct(ctx, prod.ID)
	require.NoError(t, err)

	cart := &models.Cart{UserID: user.ID}
	require.NoError(t, r.CreateCart(ctx, cart))
	assert.ErrorIs(t, r.CreateCart(ctx, &models.Cart{UserID: user.ID}), gorm.ErrDuplicatedKey)

	require.NoError(t, r.CreateCartItem(ctx, &models.CartItem{
		CartID: cart.ID, ProductVariantID: got.Variants[0].ID, Quantity: 2,
		ProductActualPrice: decimal.RequireFromString("4.50"),
	}))

	detail, err := r.GetCartDetailByUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.User)
	assert.Equal(t, "ada@example.com", detail.User.Email)
	require.Len(t, detail.CartItems, 1)
	require.NotNil(t, detail.CartItems[0].ProductVariant)
	require.NotNil(t, detail.CartItems[0].ProductVariant.Product)
	assert.Equal(t, "tea", detail.CartItems[0].ProductVariant.Product.Name)

	owner, err := r.DeleteCartByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, owner)

	var items int64
	require.NoError(t, r.DB.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&items).Error)
	assert.Zero(t, items)

	_, err = r.GetCartDetailByUser(ctx, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPatch_LeavesOtherFieldsUntouched(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	desc := "hot drinks"
	c := &models.Category{Name: "tea", Description: &desc}
	require.NoError(t, r.CreateCategory(ctx, c))

	got, err := r.PatchCategory(ctx, c.ID, func(_ *gorm.DB, v *models.Category) error {
		v.Name = "tea & coffee"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "tea & coffee", got.Name)
	require.NotNil(t, got.Description)
	assert.Equal(t, "hot drinks", *got.Description)

	_, err = r.PatchCategory(ctx, 999, func(_ *gorm.DB, _ *models.Category) error { return nil })
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteByID_NotFound(t *testing.T) {
	r := newRepo(t)
	assert.ErrorIs(t, r.DeleteCoupon(context.Background(), 42), gorm.ErrRecordNotFound)
}

func TestPromotionTargets(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	p := &models.Promotion{Title: "summer", PromotionType: models.PromotionForProduct, DiscountType: "percent", DiscountValue: 10}
	require.NoError(t, r.CreatePromotion(ctx, p, []uint{1, 2}, nil))

	got, err := r.GetPromotion(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Products, 2)
	assert.Empty(t, got.Categories)

	got, err = r.PatchPromotion(ctx, p.ID, func(_ *gorm.DB, v *models.Promotion) error { return nil }, []uint{3}, []uint{7})
	require.NoError(t, err)
	require.Len(t, got.Products, 1)
	assert.EqualValues(t, 3, got.Products[0].ProductID)
	require.Len(t, got.Categories, 1)

	require.NoError(t, r.DeletePromotion(ctx, p.ID))
	var n int64
	require.NoError(t, r.DB.Model(&models.PromotionProduct{}).Count(&n).Error)
	assert.Zero(t, n)
}
