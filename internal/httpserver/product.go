package httpserver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type Searcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []search.Document, error)
}

type CatalogHTTP struct {
	Svc    *service.CatalogService
	Search Searcher
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	pageNum, offset, limit := page(c)
	total, items, err := h.Svc.GetProducts(ctx, offset, limit)
	if err != nil {
		return failure(l, "get_products_error", err)
	}

	l.Info("get_products_success")
	return listJSON(c, pageNum, offset, limit, total, items)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := parseID(c, "id")
	if err != nil {
		return failure(l, "get_product_error", err)
	}
	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return failure(l, "get_product_error", err)
	}

	l.Info("get_product_success")
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_create_error", "Invalid request body", err)
	}
	product, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return failure(l, "product_create_error", err)
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, product)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch_product")

	id, req, err := h.bindPatch(c)
	if err != nil {
		return failure(l, "product_patch_error", err)
	}
	product, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		return failure(l, "product_patch_error", err)
	}

	l.Info("patch_product_success", "product_id", id)
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_product")

	id, req, err := h.bindPatch(c)
	if err != nil {
		return failure(l, "product_update_error", err)
	}
	product, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		return failure(l, "product_update_error", err)
	}

	l.Info("update_product_success", "product_id", id)
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Product updated successfully",
		"product": product,
	})
}

func (h *CatalogHTTP) bindPatch(c echo.Context) (uint, transport.PatchProductRequest, error) {
	var req transport.PatchProductRequest
	id, err := parseID(c, "id")
	if err != nil {
		return 0, req, err
	}
	if err := c.Bind(&req); err != nil {
		return 0, req, domain.Invalid("Invalid request body")
	}
	return id, req, nil
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := parseID(c, "id")
	if err != nil {
		return failure(l, "product_delete_error", err)
	}
	if _, err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return failure(l, "product_delete_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) DeleteCompleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_complete_product")

	id, err := parseID(c, "id")
	if err != nil {
		return failure(l, "product_delete_error", err)
	}
	removed, err := h.Svc.DeleteProduct(ctx, id)
	if err != nil {
		return failure(l, "product_delete_error", err)
	}

	l.Info("delete_complete_product_success", "product_id", id, "images_removed", removed)
	return c.JSON(http.StatusOK, statusMessage{
		Success: true,
		Message: fmt.Sprintf("Product %d and all related data deleted successfully", id),
	})
}

type completeProductResponse struct {
	statusMessage
	*service.CompleteProductResult
}

func (h *CatalogHTTP) CreateCompleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_complete_product")

	var in transport.CompleteProductInput
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return badRequest(l, "create_complete_product_error", "Invalid multipart form", err)
		}
		if in, err = completeFromForm(l, form); err != nil {
			return failure(l, "create_complete_product_error", err)
		}
	} else {
		var req transport.CompleteProductRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(l, "create_complete_product_error", "Invalid request body", err)
		}
		var err error
		if in, err = req.ToInput(); err != nil {
			return failure(l, "create_complete_product_error", err)
		}
	}

	res, err := h.Svc.CreateCompleteProduct(ctx, in)
	if err != nil {
		return failure(l, "create_complete_product_error", err)
	}

	l.Info("create_complete_product_success",
		"product_id", res.Product.ID,
		"images_uploaded", res.ImagesUploaded,
		"images_skipped", res.ImagesSkipped,
		"variants_created", res.VariantsCreated,
		"variants_skipped", res.VariantsSkipped,
	)
	return c.JSON(http.StatusCreated, completeProductResponse{
		statusMessage:         statusMessage{Success: true, Message: "Product created successfully"},
		CompleteProductResult: res,
	})
}

func completeFromForm(l *slog.Logger, form *multipart.Form) (transport.CompleteProductInput, error) {
	product, err := transport.ParseProductForm(form.Value)
	if err != nil {
		return transport.CompleteProductInput{}, err
	}
	variants, jsonErr := transport.ParseVariantForm(form.Value)
	if jsonErr != nil {
		l.Warn("variants_json_ignored", "reason", "malformed variants field, using parallel arrays", "error", jsonErr)
	}
	images, err := readImages(form, "images")
	if err != nil {
		return transport.CompleteProductInput{}, err
	}
	if err := transport.ApplyImageMeta(images, transport.FormList(form.Value, "alt_text"), transport.FormList(form.Value, "is_primary")); err != nil {
		return transport.CompleteProductInput{}, err
	}
	return transport.CompleteProductInput{Product: *product, Images: images, Variants: variants}, nil
}

type uploadStats struct {
	Total    int `json:"total"`
	Uploaded int `json:"uploaded"`
	Failed   int `json:"failed"`
}

func (h *CatalogHTTP) UploadImages(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.upload_images")

	id, err := parseID(c, "id")
	if err != nil {
		return failure(l, "upload_images_error", err)
	}
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(l, "upload_images_error", "Invalid multipart form", err)
	}
	images, err := readImages(form, "images")
	if err != nil {
		return failure(l, "upload_images_error", err)
	}
	if err := transport.ApplyImageMeta(images, transport.FormList(form.Value, "alt_text"), transport.FormList(form.Value, "is_primary")); err != nil {
		return failure(l, "upload_images_error", err)
	}

	res, err := h.Svc.UploadImages(ctx, id, images)
	if err != nil {
		return failure(l, "upload_images_error", err)
	}

	l.Info("upload_images_success", "product_id", id, "uploaded", res.Uploaded, "failed", res.Failed)
	return c.JSON(http.StatusCreated, map[string]any{
		"success":      true,
		"message":      fmt.Sprintf("Uploaded %d of %d images", res.Uploaded, res.Total),
		"images":       res.Images,
		"upload_stats": uploadStats{Total: res.Total, Uploaded: res.Uploaded, Failed: res.Failed},
		"errors":       res.Errors,
	})
}

func (h *CatalogHTTP) DeleteImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_image")

	id, err := parseID(c, "id")
	if err != nil {
		return failure(l, "delete_image_error", err)
	}
	if err := h.Svc.DeleteImage(ctx, id); err != nil {
		return failure(l, "delete_image_error", err)
	}

	l.Info("delete_image_success", "image_id", id)
	return c.JSON(http.StatusOK, statusMessage{Success: true, Message: "Image deleted successfully"})
}

func (h *CatalogHTTP) AddVariants(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.add_variants")

	id, err := parseID(c, "id")
	if err != nil {
		return failure(l, "add_variants_error", err)
	}
	var req transport.AddVariantsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_variants_error", "Invalid request body", err)
	}

	res, err := h.Svc.AddVariants(ctx, id, req.Variants)
	if err != nil {
		return failure(l, "add_variants_error", err)
	}

	l.Info("add_variants_success", "product_id", id, "created", len(res.Variants), "skipped", res.Skipped)
	return c.JSON(http.StatusCreated, map[string]any{
		"success":          true,
		"message":          fmt.Sprintf("Added %d variants", len(res.Variants)),
		"variants":         res.Variants,
		"variants_skipped": res.Skipped,
	})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	q := c.QueryParam("q")
	if q == "" {
		return badRequest(l, "search_products_error", "Query parameter q is required", nil)
	}
	pageNum, offset, limit := page(c)
	total, docs, err := h.Search.Search(ctx, q, offset, limit)
	if err != nil {
		return failure(l, "search_products_error", err)
	}

	l.Info("search_products_success", "hits", total)
	return listJSON(c, pageNum, offset, limit, total, docs)
}

// readImages loads every file sent under field (or field[]) into memory.
// The request size is already capped by the body limit middleware.
func readImages(form *multipart.Form, field string) ([]transport.ImageFile, error) {
	headers := form.File[field+"[]"]
	if len(headers) == 0 {
		headers = form.File[field]
	}
	out := make([]transport.ImageFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readFile(fh)
		if err != nil {
			return nil, domain.Invalid("Cannot read file %s", fh.Filename)
		}
		out = append(out, transport.ImageFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Data:        data,
		})
	}
	return out, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
