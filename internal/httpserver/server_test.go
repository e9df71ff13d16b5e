package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/internal/testdb"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

var testSecret = []byte("test-secret")

type testServer struct {
	e     *echo.Echo
	store *storage.LocalStore
}

func newTestServer(t *testing.T, opts ...func(*Deps)) *testServer {
	t.Helper()

	r := &repo.GormRepo{DB: testdb.Open(t)}
	store, err := storage.NewLocalStore(t.TempDir(), "http://localhost/media")
	require.NoError(t, err)

	d := &Deps{
		Catalog: &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Storage: store}},
		Carts:   &CartHTTP{Svc: &service.CartService{Repo: r}},
		Users:   &UserHTTP{Svc: &service.UserService{Repo: r, JWTSecret: testSecret}},
		Sales:   &service.SalesService{Repo: r},

		JWTSecret: testSecret,
		Ready:     func(ctx context.Context) error { return nil },
	}
	for _, o := range opts {
		o(d)
	}
	e := echo.New()
	Register(e, d)
	return &testServer{e: e, store: store}
}

func (s *testServer) do(t *testing.T, method, target string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, rec)["message"].(string)
}

func (s *testServer) category(t *testing.T, name string) uint {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/categories", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return uint(decode[map[string]any](t, rec)["id"].(float64))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/live", nil).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/ready", nil).Code)

	e := echo.New()
	Register(e, &Deps{
		Catalog: &CatalogHTTP{Svc: &service.CatalogService{}},
		Carts:   &CartHTTP{Svc: &service.CartService{}},
		Users:   &UserHTTP{Svc: &service.UserService{}},
		Sales:   &service.SalesService{},
		Ready:   func(context.Context) error { return errors.New("db down") },
	})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCategoryResource(t *testing.T) {
	s := newTestServer(t)

	id := s.category(t, "Fruit")
	s.category(t, "Dairy")

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/api/categories/%d", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Fruit", decode[map[string]any](t, rec)["name"])

	rec = s.do(t, http.MethodGet, "/api/categories?page=1&size=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Data []map[string]any `json:"data"`
		Meta struct {
			Total   int64 `json:"total"`
			HasNext bool  `json:"has_next"`
		} `json:"meta"`
	}](t, rec)
	assert.Len(t, list.Data, 1)
	assert.Equal(t, int64(2), list.Meta.Total)
	assert.True(t, list.Meta.HasNext)

	rec = s.do(t, http.MethodPatch, fmt.Sprintf("/api/categories/%d", id), map[string]any{"name": "Dairy"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Category with name Dairy already exists", message(t, rec))

	rec = s.do(t, http.MethodPatch, fmt.Sprintf("/api/categories/%d", id), map[string]any{"description": "fresh"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Fruit", decode[map[string]any](t, rec)["name"])

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/categories/%d", id), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/categories/%d", id), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, fmt.Sprintf("Category with id %d not found", id), message(t, rec))
}

func TestInvalidID(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/products/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "id must be a positive integer", message(t, rec))
}

type part struct {
	field, filename string
	data            []byte
}

func multipartRequest(t *testing.T, target string, values [][2]string, files []part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, kv := range values {
		require.NoError(t, w.WriteField(kv[0], kv[1]))
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestCreateCompleteProduct(t *testing.T) {
	s := newTestServer(t)
	catID := s.category(t, "Fruit")

	req := multipartRequest(t, "/api/products/create",
		[][2]string{
			{"name", "Apple"},
			{"category_id", fmt.Sprint(catID)},
			{"stock_unit", "Kg"},
			{"alt_text[]", "front"},
			{"alt_text[]", "notes"},
			{"variant_name[]", "1 kg"},
			{"variant_price[]", "3.50"},
			{"variant_name[]", "no price"},
		},
		[]part{
			{"images[]", "apple.png", []byte("png")},
			{"images[]", "notes.txt", []byte("txt")},
		},
	)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	res := decode[struct {
		Success         bool   `json:"success"`
		Message         string `json:"message"`
		ImagesUploaded  int    `json:"images_uploaded"`
		ImagesSkipped   int    `json:"images_skipped"`
		VariantsCreated int    `json:"variants_created"`
		VariantsSkipped int    `json:"variants_skipped"`
		Product         struct {
			ID        uint   `json:"id"`
			Name      string `json:"name"`
			StockUnit string `json:"stock_unit"`
			IsActive  int    `json:"is_active"`
			Images    []struct {
				ImageURL  string `json:"image_url"`
				AltText   string `json:"alt_text"`
				IsPrimary int    `json:"is_primary"`
			} `json:"images"`
			Variants []struct {
				VariantName  string  `json:"variant_name"`
				VariantPrice float64 `json:"variant_price"`
			} `json:"variants"`
		} `json:"product"`
	}](t, rec)

	assert.True(t, res.Success)
	assert.Equal(t, "Product created successfully", res.Message)
	assert.Equal(t, 1, res.ImagesUploaded)
	assert.Equal(t, 1, res.ImagesSkipped)
	assert.Equal(t, 1, res.VariantsCreated)
	assert.Equal(t, 1, res.VariantsSkipped)

	assert.Equal(t, "Apple", res.Product.Name)
	assert.Equal(t, "Kg", res.Product.StockUnit)
	assert.Equal(t, 1, res.Product.IsActive)
	require.Len(t, res.Product.Images, 1)
	assert.True(t, strings.HasPrefix(res.Product.Images[0].ImageURL, "http://localhost/media/products/"))
	assert.Equal(t, "front", res.Product.Images[0].AltText)
	assert.Equal(t, 1, res.Product.Images[0].IsPrimary)
	require.Len(t, res.Product.Variants, 1)
	assert.Equal(t, 3.5, res.Product.Variants[0].VariantPrice)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/products/%d", res.Product.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/products/%d/update", res.Product.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fmt.Sprintf("Product %d and all related data deleted successfully", res.Product.ID), message(t, rec))

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/products/%d", res.Product.ID), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateCompleteProductFromJSON(t *testing.T) {
	s := newTestServer(t)
	catID := s.category(t, "Fruit")

	rec := s.do(t, http.MethodPost, "/api/products/create", map[string]any{
		"name": "Mango", "description": "ripe", "category_id": catID,
		"variants": []any{
			map[string]any{"variant_name": "Small", "variant_price": 19.99, "stock_quantity": "50"},
			map[string]any{"variant_name": "Large", "variant_price": "abc"},
			map[string]any{"variant_name": "Box", "variant_price": "30"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, float64(0), body["images_uploaded"])
	assert.Equal(t, float64(2), body["variants_created"])
	assert.Equal(t, float64(1), body["variants_skipped"])
	product := body["product"].(map[string]any)
	assert.Equal(t, "Mango", product["name"])
	assert.Equal(t, "ripe", product["description"])

	rec = s.do(t, http.MethodPost, "/api/products/create", map[string]any{"category_id": catID})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Product name is required", message(t, rec))
}

func TestCreateCompleteProductRejects(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name   string
		values [][2]string
		status int
		msg    string
	}{
		{"missing name", [][2]string{{"category_id", "1"}}, http.StatusBadRequest, "Product name is required"},
		{"missing category", [][2]string{{"name", "Apple"}}, http.StatusBadRequest, "Category ID is required"},
		{"unknown category", [][2]string{{"name", "Apple"}, {"category_id", "99"}}, http.StatusNotFound, "Category with id 99 not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.e.ServeHTTP(rec, multipartRequest(t, "/api/products/create", tc.values, nil))
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.msg, message(t, rec))
		})
	}
}

func TestUploadImagesAndDelete(t *testing.T) {
	s := newTestServer(t)
	catID := s.category(t, "Fruit")

	rec := s.do(t, http.MethodPost, "/api/products", map[string]any{"name": "Pear", "category_id": catID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	productID := uint(decode[map[string]any](t, rec)["id"].(float64))

	req := multipartRequest(t, fmt.Sprintf("/api/products/%d/images", productID), nil, []part{
		{"images", "a.jpg", []byte("one")},
		{"images", "b.exe", []byte("two")},
	})
	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	res := decode[struct {
		Message string `json:"message"`
		Images  []struct {
			ID        uint `json:"id"`
			IsPrimary int  `json:"is_primary"`
		} `json:"images"`
		Stats struct {
			Total    int `json:"total"`
			Uploaded int `json:"uploaded"`
			Failed   int `json:"failed"`
		} `json:"upload_stats"`
		Errors []string `json:"errors"`
	}](t, rec)
	assert.Equal(t, "Uploaded 1 of 1 images", res.Message)
	require.Len(t, res.Images, 1)
	assert.Equal(t, 1, res.Images[0].IsPrimary)
	assert.Equal(t, []string{"File b.exe has invalid extension"}, res.Errors)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/images/%d", res.Images[0].ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Image deleted successfully", message(t, rec))

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/images/%d", res.Images[0].ID), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddVariants(t *testing.T) {
	s := newTestServer(t)
	catID := s.category(t, "Fruit")
	rec := s.do(t, http.MethodPost, "/api/products", map[string]any{"name": "Plum", "category_id": catID})
	require.Equal(t, http.StatusCreated, rec.Code)
	productID := uint(decode[map[string]any](t, rec)["id"].(float64))

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/products/%d/variants", productID), map[string]any{
		"variants": []map[string]any{
			{"variant_name": "500 g", "variant_price": "2.00"},
			{"variant_name": "500 g", "variant_price": "2.10"},
			{"variant_name": "broken"},
			{"variant_name": "1 kg", "variant_price": "abc"},
			{"variant_name": "2 kg", "variant_price": 7, "stock_quantity": "12"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Added 3 variants", body["message"])
	assert.Equal(t, float64(2), body["variants_skipped"])

	rec = s.do(t, http.MethodPost, "/api/products/999/variants", map[string]any{
		"variants": []map[string]any{{"variant_name": "x", "variant_price": "1"}},
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserCartRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/users", map[string]any{
		"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com", "password": "secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	userID := uint(decode[map[string]any](t, rec)["id"].(float64))
	path := fmt.Sprintf("/api/user/%d/carts", userID)

	rec = s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, path, map[string]any{"coupon_active": 0})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, path, map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPatch, path, map[string]any{"coupon_code": "SPRING"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "SPRING", decode[map[string]any](t, rec)["coupon_code"])

	rec = s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[map[string]any](t, rec)
	assert.Equal(t, "ada@example.com", cart["user"].(map[string]any)["email"])

	rec = s.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fmt.Sprintf("Cart and all items deleted for user_id %d", userID), message(t, rec))

	rec = s.do(t, http.MethodPost, "/api/user/999/carts", map[string]any{})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User with id 999 not found", message(t, rec))
}

func TestLoginAndMe(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/users", map[string]any{
		"first_name": "Grace", "last_name": "Hopper", "email": "grace@example.com", "password": "cobol", "role": "admin",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(t, http.MethodPost, "/api/login", map[string]any{"email": "grace@example.com", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", message(t, rec))

	rec = s.do(t, http.MethodPost, "/api/login", map[string]any{"email": "Grace@Example.com", "password": "cobol"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Login successful", body["message"])
	assert.Equal(t, "customer", body["role"], "role in the sign-up body is ignored")
	assert.NotEmpty(t, body["access_token"])

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.AccessCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	rec = s.do(t, http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/me", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "grace@example.com", decode[map[string]any](t, rec)["email"])
}

func TestAdminOnlyWrites(t *testing.T) {
	s := newTestServer(t, func(d *Deps) { d.AdminOnlyWrites = true })

	rec := s.do(t, http.MethodPost, "/api/categories", map[string]any{"name": "Fruit"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/users", map[string]any{
		"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com", "password": "secret", "role": "admin",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, "customer", created["role"])
	userPath := fmt.Sprintf("/api/users/%d", uint(created["id"].(float64)))

	rec = s.do(t, http.MethodPost, "/api/login", map[string]any{"email": "ada@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "customer", body["role"])
	token := body["access_token"].(string)

	withToken := func(method, target, payload string) int {
		req := httptest.NewRequest(method, target, strings.NewReader(payload))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		out := httptest.NewRecorder()
		s.e.ServeHTTP(out, req)
		return out.Code
	}
	require.Equal(t, http.StatusForbidden, withToken(http.MethodPost, "/api/categories", `{"name":"Fruit"}`))

	rec = s.do(t, http.MethodPatch, userPath, map[string]any{"role": "admin"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, http.StatusForbidden, withToken(http.MethodPatch, userPath, `{"role":"admin"}`))
	require.Equal(t, http.StatusForbidden, withToken(http.MethodDelete, userPath, ""))

	rec = s.do(t, http.MethodGet, userPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "customer", decode[map[string]any](t, rec)["role"])
}

func TestSalesResources(t *testing.T) {
	s := newTestServer(t)

	coupon := map[string]any{
		"code": "SPRING", "discount_type": "flat", "discount_values": 10, "min_order_value": 100,
		"start_date": "2026-03-01T00:00:00", "end_date": "2026-04-01T00:00:00Z",
	}
	rec := s.do(t, http.MethodPost, "/api/coupons", coupon)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/coupons", coupon)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Coupon with code SPRING already exists", message(t, rec))

	rec = s.do(t, http.MethodPatch, "/api/coupon-users/1", map[string]any{})
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCSRF(t *testing.T) {
	s := newTestServer(t, func(d *Deps) { d.CSRF = true })

	rec := s.do(t, http.MethodPost, "/api/categories", map[string]any{"name": "Fruit"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)

	req := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"Fruit"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("X-CSRF-Token", token)
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: token})
	out := httptest.NewRecorder()
	s.e.ServeHTTP(out, req)
	require.Equal(t, http.StatusCreated, out.Code, out.Body.String())

	rec = s.do(t, http.MethodPost, "/api/login", map[string]any{"email": "nobody@example.com", "password": "x"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
