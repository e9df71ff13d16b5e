package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

// resource holds the thin list/get/create/patch/delete handlers of one
// entity. A nil func leaves its route out.
type resource[V, L, C, P any] struct {
	name   string
	get    func(ctx context.Context, id uint) (V, error)
	list   func(ctx context.Context, offset, limit int) (int64, []L, error)
	create func(ctx context.Context, req C) (V, error)
	patch  func(ctx context.Context, id uint, req P) (V, error)
	remove func(ctx context.Context, id uint) error
}

// mount registers the routes under g; writes get the extra middleware.
func (r resource[V, L, C, P]) mount(g *echo.Group, path string, write ...echo.MiddlewareFunc) {
	if r.list != nil {
		g.GET(path, r.List)
	}
	if r.get != nil {
		g.GET(path+"/:id", r.Get)
	}
	if r.create != nil {
		g.POST(path, r.Create, write...)
	}
	if r.patch != nil {
		g.PATCH(path+"/:id", r.Patch, write...)
	}
	if r.remove != nil {
		g.DELETE(path+"/:id", r.Delete, write...)
	}
}

func (r resource[V, L, C, P]) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", r.name+".list")

	pageNum, offset, limit := page(c)
	total, items, err := r.list(ctx, offset, limit)
	if err != nil {
		return failure(l, r.name+"_list_error", err)
	}

	l.Info(r.name + "_list_success")
	return listJSON(c, pageNum, offset, limit, total, items)
}

func (r resource[V, L, C, P]) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", r.name+".get")

	id, err := parseID(c, "id")
	if err != nil {
		return failure(l, r.name+"_get_error", err)
	}
	v, err := r.get(ctx, id)
	if err != nil {
		return failure(l, r.name+"_get_error", err)
	}

	l.Info(r.name + "_get_success")
	return c.JSON(http.StatusOK, v)
}

func (r resource[V, L, C, P]) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", r.name+".create")

	var req C
	if err := c.Bind(&req); err != nil {
		return badRequest(l, r.name+"_create_error", "Invalid request body", err)
	}
	v, err := r.create(ctx, req)
	if err != nil {
		return failure(l, r.name+"_create_error", err)
	}

	l.Info(r.name + "_create_success")
	return c.JSON(http.StatusCreated, v)
}

func (r resource[V, L, C, P]) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", r.name+".patch")

	id, err := parseID(c, "id")
	if err != nil {
		return failure(l, r.name+"_patch_error", err)
	}
	var req P
	if err := c.Bind(&req); err != nil {
		return badRequest(l, r.name+"_patch_error", "Invalid request body", err)
	}
	v, err := r.patch(ctx, id, req)
	if err != nil {
		return failure(l, r.name+"_patch_error", err)
	}

	l.Info(r.name + "_patch_success")
	return c.JSON(http.StatusOK, v)
}

func (r resource[V, L, C, P]) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", r.name+".delete")

	id, err := parseID(c, "id")
	if err != nil {
		return failure(l, r.name+"_delete_error", err)
	}
	if err := r.remove(ctx, id); err != nil {
		return failure(l, r.name+"_delete_error", err)
	}

	l.Info(r.name + "_delete_success")
	return c.NoContent(http.StatusNoContent)
}
