package pool

import (
	"github.com/daubit/tracy-web/internal/application"
	"github.com/daubit/tracy-web/internal/module/pool/controller"
	"github.com/daubit/tracy-web/internal/module/pool/middleware"
	"github.com/daubit/tracy-web/internal/module/pool/repository"
	"github.com/daubit/tracy-web/internal/module/pool/service"
	"github.com/daubit/tracy-web/internal/module/pool/view"
	"github.com/daubit/tracy-web/internal/module/shared"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"go.uber.org/fx"
)

type PoolRouter struct {
	App                  *application.Application
	Controller           *controller.Controller
	RateLimiterService   service.RateLimiterService
	RequestLogRepository repository.RequestLogRepository
	Metrics              *shared.Metrics
	Cfg                  *koanf.Koanf
	Logger               zerolog.Logger
}

var NewPoolModule = fx.Options(
	fx.Provide(repository.NewRequestLogRepository),

	fx.Provide(service.NewBackendService),
	fx.Provide(service.NewPoolQueryService),
	fx.Provide(service.NewRateLimiterService),

	fx.Provide(view.NewRenderer),
	fx.Provide(controller.NewController),

	fx.Provide(NewPoolRouter),
)

func NewPoolRouter(
	app *application.Application,
	controller *controller.Controller,
	rateLimiterService service.RateLimiterService,
	requestLogRepository repository.RequestLogRepository,
	metrics *shared.Metrics,
	cfg *koanf.Koanf,
	logger zerolog.Logger) *PoolRouter {
	return &PoolRouter{
		App:                  app,
		Controller:           controller,
		RateLimiterService:   rateLimiterService,
		RequestLogRepository: requestLogRepository,
		Metrics:              metrics,
		Cfg:                  cfg,
		Logger:               logger,
	}
}

func (_i *PoolRouter) RegisterDashboardRoutes() {
	dashboardController := _i.Controller.Dashboard
	logged := middleware.RequestLogMiddleware(_i.RequestLogRepository)

	_i.App.Router.GET("/", logged(dashboardController.Pools))
	_i.App.Router.GET("/pools", logged(dashboardController.Pools))
	_i.App.Router.GET("/swap", logged(dashboardController.Swap))
}

func (_i *PoolRouter) RegisterApiRoutes() {
	apiController := _i.Controller.Api
	logged := middleware.RequestLogMiddleware(_i.RequestLogRepository)
	limited := middleware.CorsMiddleware
	if _i.Cfg.Bool("ratelimit.enable") {
		limited = middleware.RateLimitMiddleware(_i.RateLimiterService, _i.Logger)
	}
	api := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return logged(limited(h))
	}

	group := _i.App.Router.Group("/api")
	group.GET("/pools", api(apiController.GetPools))
	group.GET("/pools_for_denom/{denom:*}", api(apiController.GetPoolsForDenom))
	group.GET("/pools_for_denoms/{denom1}/{denom2}", api(apiController.GetPoolsForDenoms))
	group.GET("/pool/{address}", api(apiController.GetPool))
	group.GET("/quote/{token_in}/{token_out}/{amount}", api(apiController.GetQuote))
	group.POST("/cache/invalidate", api(apiController.InvalidateCache))
	group.OPTIONS("/{path:*}", middleware.Preflight)
}

func (_i *PoolRouter) RegisterOpsRoutes() {
	_i.App.Router.GET("/k8s/healthz", _i.Controller.Api.CheckHealthz)
	_i.App.Router.GET("/metrics", _i.Metrics.Handler())
}
