package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/util"
)

// failure logs err under event and turns it into the HTTP error the client
// sees. Unexpected errors never leak their text.
func failure(l *slog.Logger, event string, err error) *echo.HTTPError {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrDeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	msg, ok := domain.Message(err)
	if !ok || status == http.StatusInternalServerError {
		msg = "Internal server error"
	}

	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "reason", msg, "error", err)
	} else {
		l.Warn(event, "status", status, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(status, msg)
}

func badRequest(l *slog.Logger, event, msg string, err error) *echo.HTTPError {
	l.Warn(event, "status", http.StatusBadRequest, "reason", msg, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.Invalid("%s must be a positive integer", name)
	}
	return uint(id), nil
}

func page(c echo.Context) (pageNum, offset, limit int) {
	pageNum = util.ParseIntDefault(c.QueryParam("page"), 1)
	if pageNum < 1 {
		pageNum = 1
	}
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit = util.Calculate(pageNum, size)
	return pageNum, offset, limit
}

func listJSON[T any](c echo.Context, pageNum, offset, limit int, total int64, items []T) error {
	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": util.NewMeta(pageNum, offset, limit, total),
	})
}

type statusMessage struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
