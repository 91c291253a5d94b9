package scheduler

import (
	"context"

	"go.uber.org/fx"
)

var NewSchedulerModule = fx.Options(
	fx.Provide(NewScheduler),
	fx.Invoke(RegisterScheduler),
)

// RegisterScheduler ties the loops to the application lifecycle.
func RegisterScheduler(lc fx.Lifecycle, s *Scheduler) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.Start(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
