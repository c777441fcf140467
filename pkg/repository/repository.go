// Package repository is a small generic GORM store for append-mostly tables
// that need plain CRUD with query options and no hand-written SQL.
package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/voltshop/pkg/db/option"
)

// ErrNoRows is returned by Update when no row has the given id.
var ErrNoRows = errors.New("no_rows")

type Repository[T any] interface {
	Create(ctx context.Context, resource *T) error
	// Find returns rows matching the non-zero fields of filter.
	Find(ctx context.Context, filter *T, opts ...option.QueryOption) ([]*T, error)
	// FindOne returns nil, nil when nothing matches.
	FindOne(ctx context.Context, filter *T, opts ...option.QueryOption) (*T, error)
	// Update applies fields to the row with primary key id. Zero values in
	// fields are written.
	Update(ctx context.Context, id any, fields map[string]any) error
	Count(ctx context.Context, filter *T) (int64, error)
}
