package main

import (
	"go.uber.org/fx"

	"github.com/daubit/tracy-web/internal/application"
	"github.com/daubit/tracy-web/internal/bootstrap"
	"github.com/daubit/tracy-web/internal/database"
	"github.com/daubit/tracy-web/internal/module/pool"
	"github.com/daubit/tracy-web/internal/module/query"
	"github.com/daubit/tracy-web/internal/module/scheduler"
	"github.com/daubit/tracy-web/internal/module/shared"
	"github.com/daubit/tracy-web/internal/router"
	fxzerolog "github.com/efectn/fx-zerolog"
	_ "go.uber.org/automaxprocs"
)

func main() {
	fx.New(
		// basic
		shared.NewSharedModule,
		query.NewQueryModule,
		// application
		fx.Provide(application.NewApplication),
		// database
		fx.Provide(database.NewDatabase),
		// router
		fx.Provide(router.NewRouter),
		/* provide modules */
		pool.NewPoolModule,
		// start application; connects redis before the scheduler starts
		fx.Invoke(bootstrap.Start),
		scheduler.NewSchedulerModule,
		// define logger
		fx.WithLogger(fxzerolog.Init()),
	).Run()
}
