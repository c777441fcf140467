package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltshop/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Segment Segment
	Email   string
}

// OrderStats aggregates orders placed under one email.
type OrderStats struct {
	OrderCount    int64
	LifetimeSpend int64
	LastOrderAt   *time.Time
}

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, customer *Customer) error
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Customer, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]Customer, error)
	OrderStats(ctx context.Context, db *gorm.DB, emails []string) (map[string]OrderStats, error)
	SegmentEmails(ctx context.Context, db *gorm.DB, segment Segment) ([]string, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
