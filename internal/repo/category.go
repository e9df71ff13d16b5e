package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm"
)

func (r *GormRepo) CategoryExists(ctx context.Context, id uint) (bool, error) {
	return CategoryExistsIn(ctx, r.DB, id)
}

// CategoryExistsIn runs the check on db, which may be an open transaction.
func CategoryExistsIn(ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	return exists[models.Category](ctx, db, "id = ?", id)
}

func (r *GormRepo) CategoryNameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	return CategoryNameTakenIn(ctx, r.DB, name, exceptID)
}

func CategoryNameTakenIn(ctx context.Context, db *gorm.DB, name string, exceptID uint) (bool, error) {
	return exists[models.Category](ctx, db, "name = ? AND id <> ?", name, exceptID)
}

func (r *GormRepo) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	return getByID[models.Category](ctx, r.DB, id)
}

func (r *GormRepo) GetCategories(ctx context.Context, offset, limit int) (int64, []models.Category, error) {
	return list[models.Category](ctx, r.DB, offset, limit)
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return create(ctx, r.DB, c)
}

func (r *GormRepo) PatchCategory(ctx context.Context, id uint, apply func(tx *gorm.DB, c *models.Category) error) (*models.Category, error) {
	return patch(ctx, r.DB, id, apply)
}

func (r *GormRepo) DeleteCategory(ctx context.Context, id uint) error {
	return deleteByID[models.Category](ctx, r.DB, id)
}
