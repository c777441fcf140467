package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltshop/internal/customer/domain"
	"github.com/smallbiznis/voltshop/pkg/db/option"
	"github.com/smallbiznis/voltshop/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	hasOrdersClause = "EXISTS (SELECT 1 FROM orders o WHERE o.customer_email = customers.email)"
	noOrdersClause  = "NOT EXISTS (SELECT 1 FROM orders o WHERE o.customer_email = customers.email)"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "phone", "address_line1", "address_line2",
				"city", "state", "postal_code", "country", "updated_at",
			}),
		}).
		Create(customer).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Exec(
		`UPDATE customers
		 SET name = ?, phone = ?, address_line1 = ?, address_line2 = ?,
			city = ?, state = ?, postal_code = ?, country = ?, updated_at = ?
		 WHERE id = ?`,
		customer.Name,
		customer.Phone,
		customer.AddressLine1,
		customer.AddressLine2,
		customer.City,
		customer.State,
		customer.PostalCode,
		customer.Country,
		customer.UpdatedAt,
		customer.ID,
	).Error
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Customer, error) {
	var item domain.Customer
	err := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("email = ?", email).
		Limit(1).
		Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	var item domain.Customer
	err := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("id = ?", id).
		Limit(1).
		Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]domain.Customer, error) {
	var items []domain.Customer
	stmt := db.WithContext(ctx).Model(&domain.Customer{})
	stmt = applySegment(stmt, filter.Segment)
	if filter.Email != "" {
		stmt = stmt.Where("email = ?", filter.Email)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	if err := stmt.Order("created_at desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// OrderStats reads the raw order rows and folds them in memory so the
// timestamp column keeps its driver type across dialects.
func (r *repo) OrderStats(ctx context.Context, db *gorm.DB, emails []string) (map[string]domain.OrderStats, error) {
	out := make(map[string]domain.OrderStats, len(emails))
	if len(emails) == 0 {
		return out, nil
	}

	var rows []struct {
		CustomerEmail string
		TotalAmount   int64
		CreatedAt     time.Time
	}
	err := db.WithContext(ctx).
		Table("orders").
		Select("customer_email, total_amount, created_at").
		Where("customer_email IN ?", emails).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		stats := out[row.CustomerEmail]
		stats.OrderCount++
		stats.LifetimeSpend += row.TotalAmount
		if stats.LastOrderAt == nil || row.CreatedAt.After(*stats.LastOrderAt) {
			at := row.CreatedAt
			stats.LastOrderAt = &at
		}
		out[row.CustomerEmail] = stats
	}
	return out, nil
}

func (r *repo) SegmentEmails(ctx context.Context, db *gorm.DB, segment domain.Segment) ([]string, error) {
	var emails []string
	stmt := db.WithContext(ctx).Model(&domain.Customer{})
	stmt = applySegment(stmt, segment)
	err := stmt.Order("email asc").Pluck("email", &emails).Error
	if err != nil {
		return nil, err
	}
	return emails, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Customer{}).Count(&count).Error
	return count, err
}

func applySegment(stmt *gorm.DB, segment domain.Segment) *gorm.DB {
	switch segment {
	case domain.SegmentHasOrders:
		return stmt.Where(hasOrdersClause)
	case domain.SegmentNoOrders:
		return stmt.Where(noOrdersClause)
	default:
		return stmt
	}
}
