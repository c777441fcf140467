package main

import (
	"github.com/smallbiznis/voltshop/internal/clock"
	"github.com/smallbiznis/voltshop/internal/config"
	"github.com/smallbiznis/voltshop/internal/migration"
	"github.com/smallbiznis/voltshop/internal/observability"
	"github.com/smallbiznis/voltshop/internal/server"
	"github.com/smallbiznis/voltshop/pkg/db"
	"go.uber.org/fx"
)

// admin serves the staff API: orders, dispatch, discounts, campaigns,
// customers, staff keys and the dashboard. It owns schema migrations and
// the bootstrap staff key.
func main() {
	fx.New(
		config.Module,
		config.SnowflakeModule(config.NodeAdmin),
		observability.Module,
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,

		fx.Invoke(func(s *server.Server) {
			s.RegisterAdminRoutes()
		}),
	).Run()
}
