package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/voltshop/internal/staff/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, key *domain.Key) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO staff_keys (id, key_id, name, role, secret_hash, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		key.ID,
		key.KeyID,
		key.Name,
		key.Role,
		key.SecretHash,
		key.IsActive,
		key.CreatedAt,
		key.UpdatedAt,
	).Error
}

func (r *repo) FindByKeyID(ctx context.Context, db *gorm.DB, keyID string) (*domain.Key, error) {
	var key domain.Key
	err := db.WithContext(ctx).Raw(
		`SELECT id, key_id, name, role, secret_hash, is_active, created_at, updated_at, last_used_at, revoked_at
		 FROM staff_keys WHERE key_id = ?`,
		keyID,
	).Scan(&key).Error
	if err != nil {
		return nil, err
	}
	if key.ID == 0 {
		return nil, nil
	}
	return &key, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Key, error) {
	var keys []domain.Key
	err := db.WithContext(ctx).Raw(
		`SELECT id, key_id, name, role, secret_hash, is_active, created_at, updated_at, last_used_at, revoked_at
		 FROM staff_keys ORDER BY created_at DESC`,
	).Scan(&keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *repo) Revoke(ctx context.Context, db *gorm.DB, keyID string, at time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE staff_keys SET is_active = ?, revoked_at = ?, updated_at = ?
		 WHERE key_id = ? AND is_active = ?`,
		false,
		at,
		at,
		keyID,
		true,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) TouchLastUsed(ctx context.Context, db *gorm.DB, keyID string, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE staff_keys SET last_used_at = ? WHERE key_id = ?`,
		at,
		keyID,
	).Error
}
