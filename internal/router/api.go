package router

import (
	"github.com/daubit/tracy-web/internal/module/pool"
)

type Router struct {
	PoolRouter *pool.PoolRouter
}

func NewRouter(poolRouter *pool.PoolRouter) *Router {
	return &Router{
		PoolRouter: poolRouter,
	}
}

// Register routes
func (r *Router) Register() {
	r.PoolRouter.RegisterDashboardRoutes()
	r.PoolRouter.RegisterApiRoutes()
	r.PoolRouter.RegisterOpsRoutes()
}
