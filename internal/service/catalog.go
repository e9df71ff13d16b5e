package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogService struct {
	Repo    *repo.GormRepo
	Storage storage.Storage
	Folder  string
	Effects
}

func (s *CatalogService) URLFor(path string) string {
	if s.Storage == nil {
		return ""
	}
	return s.Storage.URLFor(path)
}

func (s *CatalogService) folder() string {
	if s.Folder == "" {
		return storage.DefaultFolder
	}
	return s.Folder
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*transport.ProductView, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, storeErr(err, withID("Product", id))
	}
	v := transport.NewProductView(p, s.URLFor)
	return &v, nil
}

func (s *CatalogService) GetProducts(ctx context.Context, offset, limit int) (int64, []transport.ProductView, error) {
	total, items, err := s.Repo.GetProducts(ctx, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list products: %w", err)
	}
	return total, transport.NewProductViews(items, s.URLFor), nil
}

func (s *CatalogService) requireCategory(ctx context.Context, db *gorm.DB, id uint) error {
	ok, err := repo.CategoryExistsIn(ctx, db, id)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !ok {
		return domain.NotFound("Category with id %d not found", id)
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*transport.ProductView, error) {
	prod, err := req.ToModel()
	if err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, s.Repo.DB, prod.CategoryID); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, storeErr(err, "Product")
	}
	return s.afterProductWrite(ctx, prod.ID, "product_created")
}

// PatchProduct applies the set fields and re-validates the category when it changes.
func (s *CatalogService) PatchProduct(ctx context.Context, id uint, req transport.PatchProductRequest) (*transport.ProductView, error) {
	if req.Empty() {
		return nil, domain.Invalid("No fields to update")
	}
	_, err := s.Repo.PatchProduct(ctx, id, func(tx *gorm.DB, p *models.Product) error {
		if err := req.Apply(p); err != nil {
			return err
		}
		if req.CategoryID != nil {
			return s.requireCategory(ctx, tx, p.CategoryID)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err, withID("Product", id))
	}
	s.dropAllCarts(ctx)
	return s.afterProductWrite(ctx, id, "product_updated")
}

func (s *CatalogService) afterProductWrite(ctx context.Context, id uint, event string) (*transport.ProductView, error) {
	full, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, storeErr(err, withID("Product", id))
	}
	s.reindex(ctx, full)
	s.publish(ctx, TopicProducts, event, full.ID, map[string]any{"product_id": full.ID, "name": full.Name})
	v := transport.NewProductView(full, s.URLFor)
	return &v, nil
}

// DeleteProduct removes the product with its images and variants, then
// drops the stored image objects. It returns the number of objects removed.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) (int, error) {
	paths, err := s.Repo.DeleteProductCascade(ctx, id)
	if err != nil {
		return 0, storeErr(err, withID("Product", id))
	}
	removed := s.removeObjects(ctx, paths)
	s.unindex(ctx, id)
	s.dropAllCarts(ctx)
	s.publish(ctx, TopicProducts, "product_deleted", id, map[string]any{"product_id": id, "images_removed": removed})
	return removed, nil
}

func (s *CatalogService) removeObjects(ctx context.Context, paths []string) int {
	if s.Storage == nil {
		return 0
	}
	ctx = context.WithoutCancel(ctx)
	n := 0
	for _, p := range paths {
		if s.Storage.Delete(ctx, p) {
			n++
		}
	}
	return n
}

type CompleteProductResult struct {
	Product         transport.ProductView `json:"product"`
	ImagesUploaded  int                   `json:"images_uploaded"`
	ImagesSkipped   int                   `json:"images_skipped"`
	VariantsCreated int                   `json:"variants_created"`
	VariantsSkipped int                   `json:"variants_skipped"`
}

type upload struct {
	file transport.ImageFile
	obj  *storage.Object
}

func uploadedPaths(ups []upload) []string {
	out := make([]string, 0, len(ups))
	for _, u := range ups {
		out = append(out, u.obj.Path)
	}
	return out
}

// imageRows builds rows for the uploaded files. explicit reports whether any
// file carried its own is_primary flag.
func imageRows(ups []upload) (rows []models.ProductImage, explicit bool) {
	for _, u := range ups {
		if u.file.IsPrimary != nil {
			explicit = true
			break
		}
	}
	rows = make([]models.ProductImage, len(ups))
	for i, u := range ups {
		rows[i] = models.ProductImage{ImagePath: u.obj.Path, AltText: u.file.AltText}
		if u.file.IsPrimary != nil {
			rows[i].IsPrimary = *u.file.IsPrimary
		}
	}
	return rows, explicit
}

// CreateCompleteProduct uploads the images first and then writes the product,
// its images and its variants in one transaction. Uploaded objects are
// deleted again when the transaction fails.
func (s *CatalogService) CreateCompleteProduct(ctx context.Context, in transport.CompleteProductInput) (*CompleteProductResult, error) {
	l := logging.FromContext(ctx).With("op", "catalog.create_complete_product")

	prod := in.Product
	if prod.Name == "" {
		return nil, domain.Invalid("Product name is required")
	}
	if prod.CategoryID == 0 {
		return nil, domain.Invalid("Category ID is required")
	}
	if prod.StockUnit == "" {
		prod.StockUnit = models.StockUnitOther
	}
	if !prod.StockUnit.Valid() {
		return nil, domain.Invalid("Invalid stock_unit %q", prod.StockUnit)
	}
	if err := s.requireCategory(ctx, s.Repo.DB, prod.CategoryID); err != nil {
		return nil, err
	}

	res := &CompleteProductResult{}
	valid := make([]transport.ImageFile, 0, len(in.Images))
	for _, f := range in.Images {
		if f.Filename == "" || !storage.AllowedFile(f.Filename) {
			res.ImagesSkipped++
			continue
		}
		valid = append(valid, f)
	}
	variants := make([]models.ProductVariant, 0, len(in.Variants))
	for _, v := range in.Variants {
		if !v.Complete() || v.VariantPrice.IsNegative() {
			res.VariantsSkipped++
			continue
		}
		variants = append(variants, v.ToModel(0))
	}

	ups := make([]upload, 0, len(valid))
	for _, f := range valid {
		obj, err := s.Storage.Upload(ctx, f.Data, f.ContentType, s.folder(), f.Filename)
		if err != nil {
			s.removeObjects(ctx, uploadedPaths(ups))
			l.Error("image_upload_failed", "filename", f.Filename, "compensated", len(ups), "error", err)
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, domain.Deadline("Upload of %s timed out", f.Filename)
			}
			return nil, fmt.Errorf("upload %s: %w", f.Filename, err)
		}
		ups = append(ups, upload{file: f, obj: obj})
	}

	images, explicit := imageRows(ups)
	if !explicit && len(images) > 0 {
		images[0].IsPrimary = 1
	}

	if err := s.Repo.CreateProductAggregate(ctx, &prod, images, variants); err != nil {
		removed := s.removeObjects(ctx, uploadedPaths(ups))
		l.Error("create_product_tx_failed", "uploaded", len(ups), "compensated", removed, "error", err)
		return nil, fmt.Errorf("create product: %w", err)
	}

	view, err := s.afterProductWrite(ctx, prod.ID, "product_created")
	if err != nil {
		return nil, err
	}
	res.Product = *view
	res.ImagesUploaded = len(images)
	res.VariantsCreated = len(variants)
	return res, nil
}

type UploadedImage struct {
	transport.ImageView
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

type UploadImagesResult struct {
	Images   []UploadedImage `json:"images"`
	Errors   []string        `json:"errors"`
	Total    int             `json:"-"`
	Uploaded int             `json:"-"`
	Failed   int             `json:"-"`
}

// UploadImages attaches new images to an existing product. Files that fail to
// upload are reported in Errors while the rest are still attached.
func (s *CatalogService) UploadImages(ctx context.Context, productID uint, files []transport.ImageFile) (*UploadImagesResult, error) {
	l := logging.FromContext(ctx).With("op", "catalog.upload_images")

	ok, err := s.Repo.ProductExists(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	if !ok {
		return nil, domain.NotFound("Product with id %d not found", productID)
	}
	if len(files) == 0 {
		return nil, domain.Invalid("No images provided")
	}

	res := &UploadImagesResult{Images: []UploadedImage{}, Errors: []string{}}
	valid := make([]transport.ImageFile, 0, len(files))
	for _, f := range files {
		if f.Filename == "" || !storage.AllowedFile(f.Filename) {
			res.Errors = append(res.Errors, fmt.Sprintf("File %s has invalid extension", f.Filename))
			continue
		}
		valid = append(valid, f)
	}
	if len(valid) == 0 {
		return nil, domain.Invalid("No valid image files provided. Allowed: png, jpg, jpeg, gif, webp")
	}
	res.Total = len(valid)

	ups := make([]upload, 0, len(valid))
	timedOut := false
	for _, f := range valid {
		obj, err := s.Storage.Upload(ctx, f.Data, f.ContentType, s.folder(), f.Filename)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				timedOut = true
			}
			l.Warn("image_upload_failed", "filename", f.Filename, "error", err)
			res.Errors = append(res.Errors, fmt.Sprintf("Failed to upload %s: %v", f.Filename, err))
			continue
		}
		ups = append(ups, upload{file: f, obj: obj})
	}
	res.Uploaded = len(ups)
	res.Failed = len(valid) - len(ups)

	if len(ups) == 0 {
		if timedOut {
			return nil, domain.Deadline("Image upload timed out")
		}
		return res, nil
	}

	rows, explicit := imageRows(ups)
	if err := s.Repo.AttachImages(ctx, productID, rows, explicit); err != nil {
		removed := s.removeObjects(ctx, uploadedPaths(ups))
		l.Error("attach_images_tx_failed", "uploaded", len(ups), "compensated", removed, "error", err)
		return nil, fmt.Errorf("attach images: %w", err)
	}

	for i, row := range rows {
		res.Images = append(res.Images, UploadedImage{
			ImageView:   transport.NewImageView(row, s.URLFor),
			Size:        ups[i].obj.Size,
			ContentType: ups[i].obj.ContentType,
		})
	}
	s.publish(ctx, TopicProducts, "product_images_added", productID, map[string]any{"product_id": productID, "count": len(rows)})
	return res, nil
}

// DeleteImage drops the stored object before the row. A storage failure is
// logged by the backend and does not stop the row delete.
func (s *CatalogService) DeleteImage(ctx context.Context, id uint) error {
	img, err := s.Repo.GetImage(ctx, id)
	if err != nil {
		return storeErr(err, withID("Image", id))
	}
	s.removeObjects(ctx, []string{img.ImagePath})
	if err := s.Repo.DeleteImage(ctx, id); err != nil {
		return storeErr(err, withID("Image", id))
	}
	s.publish(ctx, TopicProducts, "product_image_deleted", img.ProductID, map[string]any{"product_id": img.ProductID, "image_id": id})
	return nil
}

type AddVariantsResult struct {
	Variants []transport.VariantView `json:"variants"`
	Skipped  int                     `json:"variants_skipped"`
}

func (s *CatalogService) AddVariants(ctx context.Context, productID uint, in []transport.VariantInput) (*AddVariantsResult, error) {
	ok, err := s.Repo.ProductExists(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	if !ok {
		return nil, domain.NotFound("Product with id %d not found", productID)
	}
	if len(in) == 0 {
		return nil, domain.Invalid("No variants provided")
	}

	res := &AddVariantsResult{Variants: []transport.VariantView{}}
	rows := make([]models.ProductVariant, 0, len(in))
	for _, v := range in {
		if !v.Complete() || v.VariantPrice.IsNegative() {
			res.Skipped++
			continue
		}
		rows = append(rows, v.ToModel(productID))
	}
	if len(rows) == 0 {
		return nil, domain.Invalid("No valid variants provided. Each variant needs variant_name and variant_price")
	}

	if err := s.Repo.AddVariants(ctx, productID, rows); err != nil {
		return nil, storeErr(err, "Product variants")
	}
	for _, r := range rows {
		res.Variants = append(res.Variants, transport.NewVariantView(r))
	}
	s.publish(ctx, TopicProducts, "product_variants_added", productID, map[string]any{"product_id": productID, "count": len(rows)})
	return res, nil
}
