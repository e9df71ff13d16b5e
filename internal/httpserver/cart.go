package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetUserCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_user_cart")

	userID, err := parseID(c, "user_id")
	if err != nil {
		return failure(l, "get_cart_error", err)
	}
	cart, err := h.Svc.GetCartByUser(ctx, userID)
	if err != nil {
		return failure(l, "get_cart_error", err)
	}

	l.Info("get_cart_success", "user_id", userID)
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) CreateUserCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.create_user_cart")

	userID, err := parseID(c, "user_id")
	if err != nil {
		return failure(l, "create_cart_error", err)
	}
	var req transport.CartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_cart_error", "Invalid request body", err)
	}
	cart, err := h.Svc.CreateCartForUser(ctx, userID, req)
	if err != nil {
		return failure(l, "create_cart_error", err)
	}

	l.Info("create_cart_success", "user_id", userID, "cart_id", cart.ID)
	return c.JSON(http.StatusCreated, cart)
}

func (h *CartHTTP) UpdateUserCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_user_cart")

	userID, err := parseID(c, "user_id")
	if err != nil {
		return failure(l, "update_cart_error", err)
	}
	var req transport.CartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_cart_error", "Invalid request body", err)
	}
	cart, err := h.Svc.UpdateCartByUser(ctx, userID, req)
	if err != nil {
		return failure(l, "update_cart_error", err)
	}

	l.Info("update_cart_success", "user_id", userID)
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) DeleteUserCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.delete_user_cart")

	userID, err := parseID(c, "user_id")
	if err != nil {
		return failure(l, "delete_cart_error", err)
	}
	if err := h.Svc.DeleteCartByUser(ctx, userID); err != nil {
		return failure(l, "delete_cart_error", err)
	}

	l.Info("delete_cart_success", "user_id", userID)
	return c.JSON(http.StatusOK, statusMessage{
		Success: true,
		Message: fmt.Sprintf("Cart and all items deleted for user_id %d", userID),
	})
}
