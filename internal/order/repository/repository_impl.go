package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltshop/internal/order/domain"
	"github.com/smallbiznis/voltshop/pkg/db/option"
	"github.com/smallbiznis/voltshop/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindBySessionID(ctx context.Context, db *gorm.DB, sessionID string) (*domain.Order, error) {
	var item domain.Order
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("stripe_session_id = ?", sessionID).
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

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var item domain.Order
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
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

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]domain.Order, error) {
	var items []domain.Order
	stmt := db.WithContext(ctx).Model(&domain.Order{})
	if filter.FulfillmentStatus != "" {
		stmt = stmt.Where("fulfillment_status = ?", filter.FulfillmentStatus)
	}
	if filter.Email != "" {
		stmt = stmt.Where("customer_email = ?", filter.Email)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	if err := stmt.Order("created_at desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, orderIDs []snowflake.ID) (map[snowflake.ID][]domain.OrderItem, error) {
	out := make(map[snowflake.ID][]domain.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	var items []domain.OrderItem
	err := db.WithContext(ctx).
		Model(&domain.OrderItem{}).
		Where("order_id IN ?", orderIDs).
		Order("order_id asc, position asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		out[item.OrderID] = append(out[item.OrderID], item)
	}
	return out, nil
}

func (r *repo) ListPendingConfirmations(ctx context.Context, db *gorm.DB, limit int) ([]domain.Order, error) {
	var items []domain.Order
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("confirmation_email_sent_at IS NULL AND payment_status IN ?",
			[]domain.PaymentStatus{domain.PaymentStatusPaid, domain.PaymentStatusNoPaymentRequired}).
		Order("created_at asc, id asc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) NextOrderNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	var next int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(order_number), ?) + 1 FROM orders`,
		domain.FirstOrderNumber-1,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, order *domain.Order) (bool, error) {
	result := tx.WithContext(ctx).Exec(
		`INSERT INTO orders (
			id, order_number, stripe_session_id, payment_intent_id,
			customer_email, customer_name, customer_phone,
			shipping_name, shipping_line1, shipping_line2, shipping_city,
			shipping_state, shipping_postal_code, shipping_country,
			currency, subtotal_amount, shipping_amount, total_amount,
			discount_code, discount_amount,
			payment_status, status, fulfillment_status,
			metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (stripe_session_id) DO NOTHING`,
		order.ID,
		order.OrderNumber,
		order.StripeSessionID,
		order.PaymentIntentID,
		order.CustomerEmail,
		order.CustomerName,
		order.CustomerPhone,
		order.ShippingName,
		order.ShippingLine1,
		order.ShippingLine2,
		order.ShippingCity,
		order.ShippingState,
		order.ShippingPostalCode,
		order.ShippingCountry,
		order.Currency,
		order.SubtotalAmount,
		order.ShippingAmount,
		order.TotalAmount,
		order.DiscountCode,
		order.DiscountAmount,
		order.PaymentStatus,
		order.Status,
		order.FulfillmentStatus,
		order.Metadata,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) InsertItems(ctx context.Context, tx *gorm.DB, items []domain.OrderItem) error {
	for _, item := range items {
		err := tx.WithContext(ctx).Exec(
			`INSERT INTO order_items (
				id, order_id, position, name, quantity, unit_price,
				line_total, variant_id, product_slug, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID,
			item.OrderID,
			item.Position,
			item.Name,
			item.Quantity,
			item.UnitPrice,
			item.LineTotal,
			item.VariantID,
			item.ProductSlug,
			item.CreatedAt,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) MarkConfirmationSent(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET confirmation_email_sent_at = ?, updated_at = ?
		 WHERE id = ? AND confirmation_email_sent_at IS NULL`,
		at,
		at,
		id,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) MarkShipped(ctx context.Context, db *gorm.DB, id snowflake.ID, trackingNumber, carrier string, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET fulfillment_status = ?, tracking_number = ?, carrier = ?,
			shipped_at = ?, updated_at = ?
		 WHERE id = ?`,
		domain.FulfillmentShipped,
		trackingNumber,
		carrier,
		at,
		at,
		id,
	).Error
}

func (r *repo) MarkDispatchEmailSent(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders SET dispatch_email_sent_at = ?, updated_at = ? WHERE id = ?`,
		at,
		at,
		id,
	).Error
}

func (r *repo) MarkDelivered(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET fulfillment_status = ?, delivered_at = ?, updated_at = ?
		 WHERE id = ? AND fulfillment_status = ?`,
		domain.FulfillmentDelivered,
		at,
		at,
		id,
		domain.FulfillmentShipped,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB) (domain.Stats, error) {
	var stats domain.Stats
	err := db.WithContext(ctx).Raw(
		`SELECT
			COUNT(*) AS order_count,
			COALESCE(SUM(total_amount), 0) AS revenue,
			COALESCE(SUM(CASE WHEN fulfillment_status = ? THEN 1 ELSE 0 END), 0) AS unfulfilled,
			COALESCE(SUM(CASE WHEN confirmation_email_sent_at IS NULL THEN 1 ELSE 0 END), 0) AS pending_confirmations
		 FROM orders`,
		domain.FulfillmentUnfulfilled,
	).Scan(&stats).Error
	return stats, err
}
