package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/voltshop/internal/config"
	discountdomain "github.com/smallbiznis/voltshop/internal/discount/domain"
	staffdomain "github.com/smallbiznis/voltshop/internal/staff/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnsureBootstrapKey registers the operator-supplied staff key on first boot.
// An unset key is not an error; the admin API simply stays locked.
func EnsureBootstrapKey(ctx context.Context, staff staffdomain.Service, cfg config.AdminConfig, log *zap.Logger) error {
	if staff == nil {
		return errors.New("seed staff service is required")
	}
	if cfg.BootstrapKey == "" {
		if log != nil {
			log.Warn("ADMIN_BOOTSTRAP_KEY not set; admin API has no credentials until a key is created")
		}
		return nil
	}
	_, err := staff.EnsureBootstrap(ctx, cfg.BootstrapKey, cfg.BootstrapRole)
	return err
}

// StarterDiscounts are the codes seeded into non-production databases.
func StarterDiscounts(now time.Time, node *snowflake.Node) []discountdomain.DiscountCode {
	return []discountdomain.DiscountCode{
		{
			ID:          node.Generate(),
			Code:        "WELCOME10",
			Kind:        discountdomain.KindPercentage,
			PercentOff:  decimal.NewFromInt(10),
			Active:      true,
			Description: "10% off a first order",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          node.Generate(),
			Code:        "FIVEOFF",
			Kind:        discountdomain.KindFixed,
			AmountOff:   500,
			MinSubtotal: 3000,
			Active:      true,
			Description: "$5 off orders over $30",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

// EnsureStarterDiscounts inserts the starter codes, leaving existing ones untouched.
func EnsureStarterDiscounts(ctx context.Context, db *gorm.DB, node *snowflake.Node) error {
	if db == nil || node == nil {
		return errors.New("seed database handle and id node are required")
	}

	codes := StarterDiscounts(time.Now().UTC(), node)
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&codes).Error
}
