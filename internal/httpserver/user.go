package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type UserHTTP struct {
	Svc          *service.UserService
	SecureCookie bool
}

func accessCookie(value string, exp time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.AccessCookie,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *UserHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_failed", "Invalid request body", err)
	}
	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return failure(l, "login_failed", err)
	}

	c.SetCookie(accessCookie(res.AccessToken, res.ExpiresAt, h.SecureCookie))
	l.Info("login_successful", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, map[string]any{
		"message":      "Login successful",
		"user_id":      res.User.ID,
		"role":         res.User.Role,
		"access_token": res.AccessToken,
	})
}

func (h *UserHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	subject, _ := c.Get("user_id").(string)
	user, err := h.Svc.Me(ctx, subject)
	if err != nil {
		return failure(l, "me_failed", err)
	}

	l.Info("me_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, user)
}
