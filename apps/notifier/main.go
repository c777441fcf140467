package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/voltshop/internal/clock"
	"github.com/smallbiznis/voltshop/internal/config"
	"github.com/smallbiznis/voltshop/internal/customer"
	"github.com/smallbiznis/voltshop/internal/events"
	"github.com/smallbiznis/voltshop/internal/metricspush"
	"github.com/smallbiznis/voltshop/internal/notification"
	"github.com/smallbiznis/voltshop/internal/observability"
	"github.com/smallbiznis/voltshop/internal/order"
	"github.com/smallbiznis/voltshop/internal/payment"
	"github.com/smallbiznis/voltshop/internal/providers"
	"github.com/smallbiznis/voltshop/internal/ratelimit"
	"github.com/smallbiznis/voltshop/internal/scheduler"
	"github.com/smallbiznis/voltshop/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// notifier runs one confirmation sweep and exits. Meant for cron.
func main() {
	app := fx.New(
		config.Module,
		config.SnowflakeModule(config.NodeNotifier),
		observability.Module,
		db.Module,
		clock.Module,

		ratelimit.Module, // sweep lock
		events.Module,
		providers.Module,
		notification.Module,
		customer.Module,
		order.Module,
		payment.Module, // the order service depends on the payment gateway

		scheduler.Module,
		metricspush.Module, // nobody scrapes a cron job
		fx.Invoke(RunSweep),
	)
	app.Run()
}

type sweepParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Scheduler  *scheduler.Scheduler
	Pusher     metricspush.Pusher
	Log        *zap.Logger
}

func RunSweep(p sweepParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				exitCode := 0
				result, err := p.Scheduler.RunOnce(context.Background())
				if err != nil {
					p.Log.Error("confirmation sweep failed", zap.Error(err))
					exitCode = 1
				} else {
					p.Log.Info("confirmation sweep finished",
						zap.Int("attempted", result.Attempted),
						zap.Int("sent", result.Sent),
						zap.Int("failed", result.Failed),
					)
				}
				if p.Pusher != nil {
					if err := p.Pusher.Push(context.Background(), prometheus.DefaultGatherer); err != nil {
						p.Log.Warn("metrics push failed", zap.Error(err))
					}
				}
				if err := p.Shutdowner.Shutdown(fx.ExitCode(exitCode)); err != nil {
					p.Log.Error("shutdown failed", zap.Error(err))
				}
			}()
			return nil
		},
	})
}
