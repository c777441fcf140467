package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, key *Key) error
	FindByKeyID(ctx context.Context, db *gorm.DB, keyID string) (*Key, error)
	List(ctx context.Context, db *gorm.DB) ([]Key, error)
	Revoke(ctx context.Context, db *gorm.DB, keyID string, at time.Time) (bool, error)
	TouchLastUsed(ctx context.Context, db *gorm.DB, keyID string, at time.Time) error
}
