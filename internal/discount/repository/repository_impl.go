package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/voltshop/internal/discount/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, code *domain.DiscountCode) error {
	return db.WithContext(ctx).Create(code).Error
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.DiscountCode, error) {
	var item domain.DiscountCode
	err := db.WithContext(ctx).
		Where("code = ?", code).
		Limit(1).
		Find(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]*domain.DiscountCode, error) {
	var items []*domain.DiscountCode
	stmt := db.WithContext(ctx).Model(&domain.DiscountCode{})
	if activeOnly {
		stmt = stmt.Where("active = ?", true)
	}
	if err := stmt.Order("created_at desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Deactivate(ctx context.Context, db *gorm.DB, code string, at time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.DiscountCode{}).
		Where("code = ?", code).
		Updates(map[string]any{"active": false, "updated_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
