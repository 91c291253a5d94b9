package bootstrap

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/daubit/tracy-web/internal/application"
	"github.com/daubit/tracy-web/internal/database"
	"github.com/daubit/tracy-web/internal/module/shared"
	"github.com/daubit/tracy-web/internal/router"
	"github.com/daubit/tracy-web/utils/config"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// function to start webserver
func Start(
	lifecycle fx.Lifecycle,
	cfg *koanf.Koanf,
	log zerolog.Logger,
	app *application.Application,
	router *router.Router,
	database *database.Database,
	redis *shared.RedisClient,
) {
	lifecycle.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				if _, err := config.ReadAndParseConfig("config/default.yaml", true); err != nil {
					return fmt.Errorf("config/default.yaml: %w", err)
				}
				settings, err := config.Load(cfg)
				if err == nil {
					err = settings.Validate()
				}
				if err != nil {
					return fmt.Errorf("invalid configuration: %w", err)
				}

				redis.Connect()
				log.Info().Bool("enabled", redis.Enabled()).Msg("1- Redis ready")

				database.ConnectDatabase()
				migrate := flag.Bool("migrate", false, "migrate the database")
				flag.Parse()
				if *migrate {
					database.MigrateModels()
				}
				log.Info().Bool("enabled", database.Enabled()).Msg("2- Database ready")

				router.Register()

				log.Info().Msg(app.AppName + " is running at " + app.Address())

				if !cfg.Bool("app.production") {
					prefork := "Enabled"
					procs := runtime.GOMAXPROCS(0)
					if !app.Prefork {
						procs = 1
						prefork = "Disabled"
					}

					log.Debug().Msgf("Backend: %s", cfg.String("backend.url"))
					log.Debug().Msgf("Hostname: %s", app.Hostname)
					log.Debug().Msgf("Port: %s", app.Port)
					log.Debug().Msgf("Prefork: %s", prefork)
					log.Debug().Msgf("Processes: %d", procs)
					log.Debug().Msgf("PID: %d", os.Getpid())
				}

				if app.EnablePrintRoutes {
					routes := app.Routes()
					methods := make([]string, 0, len(routes))
					for method := range routes {
						methods = append(methods, method)
					}
					sort.Strings(methods)
					for _, method := range methods {
						for _, path := range routes[method] {
							log.Info().Msgf("%-7s %s", method, path)
						}
					}
				}

				go func() {
					if err := app.Run(); err != nil {
						log.Error().Err(err).Msg("An unknown error occurred when to run server!")
					}
				}()

				return nil
			},
			OnStop: func(ctx context.Context) error {
				log.Info().Msg("Running cleanup tasks...")
				log.Info().Msg("1- Shutdown the server")
				if err := app.Shutdown(); err != nil {
					log.Error().Err(err).Msg("Failed to shutdown the server")
				}

				log.Info().Msg("2- Shutdown the Database")
				database.ShutdownDatabase()

				log.Info().Msg("3- Shutdown the Redis")
				if err := redis.Close(); err != nil {
					log.Error().Err(err).Msg("Failed to close redis")
				}

				log.Info().Msgf("%s was successful shutdown.", app.AppName)
				return nil
			},
		},
	)
}
