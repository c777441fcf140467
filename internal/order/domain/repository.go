package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltshop/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	FulfillmentStatus FulfillmentStatus
	Email             string
}

type Repository interface {
	FindBySessionID(ctx context.Context, db *gorm.DB, sessionID string) (*Order, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]Order, error)
	ListItems(ctx context.Context, db *gorm.DB, orderIDs []snowflake.ID) (map[snowflake.ID][]OrderItem, error)
	ListPendingConfirmations(ctx context.Context, db *gorm.DB, limit int) ([]Order, error)

	NextOrderNumber(ctx context.Context, tx *gorm.DB) (int64, error)
	// Insert is a no-op returning false when an order for the session already exists.
	Insert(ctx context.Context, tx *gorm.DB, order *Order) (bool, error)
	InsertItems(ctx context.Context, tx *gorm.DB, items []OrderItem) error

	MarkConfirmationSent(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error)
	MarkShipped(ctx context.Context, db *gorm.DB, id snowflake.ID, trackingNumber, carrier string, at time.Time) error
	MarkDispatchEmailSent(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	MarkDelivered(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error)

	Stats(ctx context.Context, db *gorm.DB) (Stats, error)
}
