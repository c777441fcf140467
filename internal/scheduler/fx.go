package scheduler

import (
	"context"

	"github.com/smallbiznis/voltshop/internal/ratelimit"
	"go.uber.org/fx"
)

// Module provides the sweep scheduler without starting it. Binaries choose
// between StartLoop and a one-shot RunOnce.
var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(provideLocker),
	fx.Provide(New),
)

func provideLocker(l *ratelimit.Locker) Locker {
	return l
}

// StartLoop runs the sweep in the background for the life of the app.
func StartLoop(lc fx.Lifecycle, sched *Scheduler) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go sched.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
