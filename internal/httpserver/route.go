package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
)

type Deps struct {
	Catalog *CatalogHTTP
	Carts   *CartHTTP
	Users   *UserHTTP
	Sales   *service.SalesService

	JWTSecret       []byte
	AdminOnlyWrites bool
	// CSRF turns on the double-submit check for cookie-authenticated requests.
	CSRF bool
	// MediaDir is served under /media when objects are stored locally.
	MediaDir string
	Ready    func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.MediaDir != "" {
		e.Static("/media", d.MediaDir)
	}

	authMW := middleware.NewAuthMiddleware(d.JWTSecret)
	var write []echo.MiddlewareFunc
	if d.AdminOnlyWrites {
		write = append(write, authMW.RequireAdmin)
	}

	api := e.Group("/api")
	if d.CSRF {
		api.Use(csrf.Middleware(csrf.Config{
			Secure:    d.Users.SecureCookie,
			SkipPaths: []string{"/api/login"},
		}))
	}
	api.POST("/login", d.Users.Login)
	api.GET("/me", d.Users.Me, authMW.RequireAuth)

	products := api.Group("/products")
	if d.Catalog.Search != nil {
		products.GET("/search", d.Catalog.SearchProducts)
	}
	products.GET("", d.Catalog.GetProducts)
	products.GET("/:id", d.Catalog.GetProduct)
	products.POST("", d.Catalog.CreateProduct, write...)
	products.POST("/create", d.Catalog.CreateCompleteProduct, write...)
	products.PATCH("/:id", d.Catalog.PatchProduct, write...)
	products.DELETE("/:id", d.Catalog.DeleteProduct, write...)
	products.PATCH("/:id/update", d.Catalog.UpdateProduct, write...)
	products.DELETE("/:id/update", d.Catalog.DeleteCompleteProduct, write...)
	products.POST("/:id/images", d.Catalog.UploadImages, write...)
	products.POST("/:id/variants", d.Catalog.AddVariants, write...)
	api.DELETE("/images/:id", d.Catalog.DeleteImage, write...)

	userCarts := api.Group("/user/:user_id/carts")
	userCarts.GET("", d.Carts.GetUserCart)
	userCarts.POST("", d.Carts.CreateUserCart)
	userCarts.PATCH("", d.Carts.UpdateUserCart)
	userCarts.DELETE("", d.Carts.DeleteUserCart)

	cat := d.Catalog.Svc
	resource[*models.Category, models.Category, transport.CreateCategoryRequest, transport.PatchCategoryRequest]{
		name: "category", get: cat.GetCategory, list: cat.GetCategories,
		create: cat.CreateCategory, patch: cat.PatchCategory, remove: cat.DeleteCategory,
	}.mount(api, "/categories", write...)

	resource[*transport.ImageView, transport.ImageView, transport.CreateImageRequest, transport.PatchImageRequest]{
		name: "product_image", get: cat.GetImage, list: cat.GetImages,
		create: cat.CreateImage, patch: cat.PatchImage, remove: cat.RemoveImageRecord,
	}.mount(api, "/product-images", write...)

	resource[*transport.VariantView, transport.VariantView, transport.CreateVariantRequest, transport.PatchVariantRequest]{
		name: "product_variant", get: cat.GetVariant, list: cat.GetVariants,
		create: cat.CreateVariant, patch: cat.PatchVariant, remove: cat.DeleteVariant,
	}.mount(api, "/product-variants", write...)

	carts := d.Carts.Svc
	resource[*models.Cart, models.Cart, transport.CartRequest, transport.CartRequest]{
		name: "cart", get: carts.GetCart, list: carts.GetCarts,
		create: carts.CreateCart, patch: carts.PatchCart, remove: carts.DeleteCart,
	}.mount(api, "/carts")

	resource[*models.CartItem, models.CartItem, transport.CreateCartItemRequest, transport.PatchCartItemRequest]{
		name: "cart_item", get: carts.GetCartItem, list: carts.GetCartItems,
		create: carts.CreateCartItem, patch: carts.PatchCartItem, remove: carts.DeleteCartItem,
	}.mount(api, "/cart-items")

	users := d.Users.Svc
	userRes := resource[*models.User, models.User, transport.CreateUserRequest, transport.PatchUserRequest]{
		name: "user", get: users.GetUser, list: users.GetUsers,
		patch: users.PatchUser, remove: users.DeleteUser,
	}
	userRes.mount(api, "/users", write...)
	// sign-up stays open; it always creates a customer
	signup := userRes
	signup.create = users.CreateUser
	api.POST("/users", signup.Create)

	resource[*models.Address, models.Address, transport.CreateAddressRequest, transport.PatchAddressRequest]{
		name: "address", get: users.GetAddress, list: users.GetAddresses,
		create: users.CreateAddress, patch: users.PatchAddress, remove: users.DeleteAddress,
	}.mount(api, "/addresses")

	sales := d.Sales
	resource[*models.Coupon, models.Coupon, transport.CreateCouponRequest, transport.PatchCouponRequest]{
		name: "coupon", get: sales.GetCoupon, list: sales.GetCoupons,
		create: sales.CreateCoupon, patch: sales.PatchCoupon, remove: sales.DeleteCoupon,
	}.mount(api, "/coupons", write...)

	resource[*models.CouponUser, models.CouponUser, transport.CreateCouponUserRequest, struct{}]{
		name: "coupon_user", list: sales.GetCouponUsers,
		create: sales.CreateCouponUser, remove: sales.DeleteCouponUser,
	}.mount(api, "/coupon-users", write...)

	resource[*models.Order, models.Order, transport.CreateOrderRequest, transport.PatchOrderRequest]{
		name: "order", get: sales.GetOrder, list: sales.GetOrders,
		create: sales.CreateOrder, patch: sales.PatchOrder, remove: sales.DeleteOrder,
	}.mount(api, "/orders", write...)

	resource[*models.OrderItem, models.OrderItem, transport.CreateOrderItemRequest, transport.PatchOrderItemRequest]{
		name: "order_item", get: sales.GetOrderItem, list: sales.GetOrderItems,
		create: sales.CreateOrderItem, patch: sales.PatchOrderItem, remove: sales.DeleteOrderItem,
	}.mount(api, "/order-items", write...)

	resource[*transport.PromotionView, transport.PromotionView, transport.CreatePromotionRequest, transport.PatchPromotionRequest]{
		name: "promotion", get: sales.GetPromotion, list: sales.GetPromotions,
		create: sales.CreatePromotion, patch: sales.PatchPromotion, remove: sales.DeletePromotion,
	}.mount(api, "/promotions", write...)
}
