// Command voltshop runs every surface in one process: storefront, Stripe
// webhook, admin and the in-process confirmation sweep.
package main

import (
	"github.com/smallbiznis/voltshop/internal/clock"
	"github.com/smallbiznis/voltshop/internal/config"
	"github.com/smallbiznis/voltshop/internal/migration"
	"github.com/smallbiznis/voltshop/internal/observability"
	"github.com/smallbiznis/voltshop/internal/scheduler"
	"github.com/smallbiznis/voltshop/internal/server"
	"github.com/smallbiznis/voltshop/pkg/db"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		config.Module,
		config.SnowflakeModule(config.NodeMonolith),
		observability.Module,
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,

		scheduler.Module,
		fx.Invoke(scheduler.StartLoop),

		fx.Invoke(func(s *server.Server) {
			s.RegisterStorefrontRoutes()
			s.RegisterWebhookRoutes()
			s.RegisterAdminRoutes()
		}),
	).Run()
}
