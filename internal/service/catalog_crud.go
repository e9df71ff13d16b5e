package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func (s *CatalogService) GetImage(ctx context.Context, id uint) (*transport.ImageView, error) {
	img, err := s.Repo.GetImage(ctx, id)
	if err != nil {
		return nil, storeErr(err, withID("Image", id))
	}
	v := transport.NewImageView(*img, s.URLFor)
	return &v, nil
}

func (s *CatalogService) GetImages(ctx context.Context, offset, limit int) (int64, []transport.ImageView, error) {
	total, items, err := s.Repo.GetImages(ctx, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list images: %w", err)
	}
	out := make([]transport.ImageView, 0, len(items))
	for _, img := range items {
		out = append(out, transport.NewImageView(img, s.URLFor))
	}
	return total, out, nil
}

// CreateImage records an already stored object; nothing is uploaded.
func (s *CatalogService) CreateImage(ctx context.Context, req transport.CreateImageRequest) (*transport.ImageView, error) {
	img, err := req.ToModel()
	if err != nil {
		return nil, err
	}
	if err := s.Repo.CreateImage(ctx, img); err != nil {
		return nil, storeErr(err, "Image")
	}
	v := transport.NewImageView(*img, s.URLFor)
	return &v, nil
}

func (s *CatalogService) PatchImage(ctx context.Context, id uint, req transport.PatchImageRequest) (*transport.ImageView, error) {
	img, err := s.Repo.PatchImage(ctx, id, func(_ *gorm.DB, img *models.ProductImage) error {
		return req.Apply(img)
	})
	if err != nil {
		return nil, storeErr(err, withID("Image", id))
	}
	v := transport.NewImageView(*img, s.URLFor)
	return &v, nil
}

// RemoveImageRecord deletes only the row and leaves the stored object alone.
func (s *CatalogService) RemoveImageRecord(ctx context.Context, id uint) error {
	return storeErr(s.Repo.DeleteImage(ctx, id), withID("Image", id))
}

func (s *CatalogService) GetVariant(ctx context.Context, id uint) (*transport.VariantView, error) {
	pv, err := s.Repo.GetVariant(ctx, id)
	if err != nil {
		return nil, storeErr(err, withID("Variant", id))
	}
	v := transport.NewVariantView(*pv)
	return &v, nil
}

func (s *CatalogService) GetVariants(ctx context.Context, offset, limit int) (int64, []transport.VariantView, error) {
	total, items, err := s.Repo.GetVariants(ctx, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list variants: %w", err)
	}
	out := make([]transport.VariantView, 0, len(items))
	for _, pv := range items {
		out = append(out, transport.NewVariantView(pv))
	}
	return total, out, nil
}

func (s *CatalogService) CreateVariant(ctx context.Context, req transport.CreateVariantRequest) (*transport.VariantView, error) {
	pv, err := req.ToModel()
	if err != nil {
		return nil, err
	}
	if err := s.Repo.CreateVariant(ctx, pv); err != nil {
		return nil, storeErr(err, "Variant")
	}
	v := transport.NewVariantView(*pv)
	return &v, nil
}

func (s *CatalogService) PatchVariant(ctx context.Context, id uint, req transport.PatchVariantRequest) (*transport.VariantView, error) {
	pv, err := s.Repo.PatchVariant(ctx, id, func(_ *gorm.DB, pv *models.ProductVariant) error {
		return req.Apply(pv)
	})
	if err != nil {
		return nil, storeErr(err, withID("Variant", id))
	}
	s.dropAllCarts(ctx)
	v := transport.NewVariantView(*pv)
	return &v, nil
}

func (s *CatalogService) DeleteVariant(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteVariant(ctx, id); err != nil {
		return storeErr(err, withID("Variant", id))
	}
	s.dropAllCarts(ctx)
	return nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	c, err := s.Repo.GetCategory(ctx, id)
	return c, storeErr(err, withID("Category", id))
}

func (s *CatalogService) GetCategories(ctx context.Context, offset, limit int) (int64, []models.Category, error) {
	total, items, err := s.Repo.GetCategories(ctx, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list categories: %w", err)
	}
	return total, items, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (*models.Category, error) {
	c, err := req.ToModel()
	if err != nil {
		return nil, err
	}
	taken, err := s.Repo.CategoryNameTaken(ctx, c.Name, 0)
	if err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if taken {
		return nil, domain.Conflict("Category with name %s already exists", c.Name)
	}
	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		return nil, storeErr(err, "Category "+c.Name)
	}
	return c, nil
}

func (s *CatalogService) PatchCategory(ctx context.Context, id uint, req transport.PatchCategoryRequest) (*models.Category, error) {
	c, err := s.Repo.PatchCategory(ctx, id, func(tx *gorm.DB, c *models.Category) error {
		if err := req.Apply(c); err != nil {
			return err
		}
		if req.Name == nil {
			return nil
		}
		taken, err := repo.CategoryNameTakenIn(ctx, tx, c.Name, c.ID)
		if err != nil {
			return err
		}
		if taken {
			return domain.Conflict("Category with name %s already exists", c.Name)
		}
		return nil
	})
	return c, storeErr(err, withID("Category", id))
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	return storeErr(s.Repo.DeleteCategory(ctx, id), withID("Category", id))
}
