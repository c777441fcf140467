package main

import (
	"github.com/smallbiznis/voltshop/internal/clock"
	"github.com/smallbiznis/voltshop/internal/config"
	"github.com/smallbiznis/voltshop/internal/observability"
	"github.com/smallbiznis/voltshop/internal/server"
	"github.com/smallbiznis/voltshop/pkg/db"
	"go.uber.org/fx"
)

// storefront serves checkout, discount preview and the Stripe webhook. It
// never migrates; run admin or the monolith first.
func main() {
	fx.New(
		config.Module,
		config.SnowflakeModule(config.NodeStorefront),
		observability.Module,
		db.Module,
		clock.Module,
		server.Module,

		fx.Invoke(func(s *server.Server) {
			s.RegisterStorefrontRoutes()
			s.RegisterWebhookRoutes()
		}),
	).Run()
}
