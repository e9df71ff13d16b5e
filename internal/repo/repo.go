package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormRepo struct {
	DB *gorm.DB
}

func getByID[T any](ctx context.Context, db *gorm.DB, id uint) (*T, error) {
	var v T
	if err := db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func list[T any](ctx context.Context, db *gorm.DB, offset, limit int) (int64, []T, error) {
	var total int64
	if err := db.WithContext(ctx).Model(new(T)).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]T, 0, limit)
	if err := db.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func create[T any](ctx context.Context, db *gorm.DB, v *T) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(v).Error
}

// patch loads the row, lets apply mutate it and saves it, all in one transaction.
// apply may return an error to abort without writing.
func patch[T any](ctx context.Context, db *gorm.DB, id uint, apply func(tx *gorm.DB, v *T) error) (*T, error) {
	var v T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&v, id).Error; err != nil {
			return err
		}
		if err := apply(tx, &v); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&v).Error
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func deleteByID[T any](ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func exists[T any](ctx context.Context, db *gorm.DB, query string, args ...any) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(new(T)).Where(query, args...).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
