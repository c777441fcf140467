package migration

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltshop/internal/config"
	"github.com/smallbiznis/voltshop/internal/seed"
	staffdomain "github.com/smallbiznis/voltshop/internal/staff/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	GenID  *snowflake.Node
	Config config.Config
	Log    *zap.Logger
	Staff  staffdomain.Service
}

var Module = fx.Module("migrations",
	fx.Invoke(func(p Params) error {
		if err := Migrate(p.DB); err != nil {
			return err
		}

		ctx := context.Background()
		if err := seed.EnsureBootstrapKey(ctx, p.Staff, p.Config.Admin, p.Log); err != nil {
			return err
		}
		if !p.Config.IsProduction() {
			return seed.EnsureStarterDiscounts(ctx, p.DB, p.GenID)
		}
		return nil
	}),
)
