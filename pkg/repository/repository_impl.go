package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/voltshop/pkg/db/option"
	"gorm.io/gorm"
)

type store[T any] struct {
	db *gorm.DB
}

func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (s *store[T]) scoped(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(new(T))
}

func (s *store[T]) Create(ctx context.Context, resource *T) error {
	return s.db.WithContext(ctx).Create(resource).Error
}

func (s *store[T]) Find(ctx context.Context, filter *T, opts ...option.QueryOption) ([]*T, error) {
	q := s.scoped(ctx).Where(filter)
	for _, opt := range opts {
		q = opt.Apply(q)
	}
	rows := make([]*T, 0)
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *store[T]) FindOne(ctx context.Context, filter *T, opts ...option.QueryOption) (*T, error) {
	q := s.scoped(ctx).Where(filter)
	for _, opt := range opts {
		q = opt.Apply(q)
	}
	row := new(T)
	err := q.Take(row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return row, nil
}

func (s *store[T]) Update(ctx context.Context, id any, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := s.scoped(ctx).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoRows
	}
	return nil
}

func (s *store[T]) Count(ctx context.Context, filter *T) (int64, error) {
	var n int64
	err := s.scoped(ctx).Where(filter).Count(&n).Error
	return n, err
}
