package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, code *DiscountCode) error
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*DiscountCode, error)
	List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]*DiscountCode, error)
	Deactivate(ctx context.Context, db *gorm.DB, code string, at time.Time) (bool, error)
}
