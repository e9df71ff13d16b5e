package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm"
)

func (r *GormRepo) UserExists(ctx context.Context, id uint) (bool, error) {
	return exists[models.User](ctx, r.DB, "id = ?", id)
}

func (r *GormRepo) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	return EmailTakenIn(ctx, r.DB, email, exceptID)
}

func EmailTakenIn(ctx context.Context, db *gorm.DB, email string, exceptID uint) (bool, error) {
	return exists[models.User](ctx, db, "email = ? AND id <> ?", email, exceptID)
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return getByID[models.User](ctx, r.DB, id)
}

func (r *GormRepo) GetUsers(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	return list[models.User](ctx, r.DB, offset, limit)
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return create(ctx, r.DB, u)
}

func (r *GormRepo) PatchUser(ctx context.Context, id uint, apply func(tx *gorm.DB, u *models.User) error) (*models.User, error) {
	return patch(ctx, r.DB, id, apply)
}

func (r *GormRepo) DeleteUser(ctx context.Context, id uint) error {
	return deleteByID[models.User](ctx, r.DB, id)
}

func (r *GormRepo) GetAddress(ctx context.Context, id uint) (*models.Address, error) {
	return getByID[models.Address](ctx, r.DB, id)
}

func (r *GormRepo) GetAddresses(ctx context.Context, offset, limit int) (int64, []models.Address, error) {
	return list[models.Address](ctx, r.DB, offset, limit)
}

func (r *GormRepo) CreateAddress(ctx context.Context, a *models.Address) error {
	return create(ctx, r.DB, a)
}

func (r *GormRepo) PatchAddress(ctx context.Context, id uint, apply func(tx *gorm.DB, a *models.Address) error) (*models.Address, error) {
	return patch(ctx, r.DB, id, apply)
}

func (r *GormRepo) DeleteAddress(ctx context.Context, id uint) error {
	return deleteByID[models.Address](ctx, r.DB, id)
}
