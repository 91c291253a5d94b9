package application

import (
	"time"

	"github.com/daubit/tracy-web/utils/config"
	"github.com/fasthttp/router"
	"github.com/knadh/koanf/v2"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/prefork"
)

type Application struct {
	AppName           string
	Network           string
	Hostname          string
	Port              string
	Prefork           bool
	IdleTimeout       time.Duration
	EnablePrintRoutes bool
	Router            *router.Router
	s                 *fasthttp.Server
}

func NewApplication(cfg *koanf.Koanf) *Application {
	var network string
	if cfg.Get("app.network") != nil {
		network = cfg.String("app.network")
	}
	hostname, port := config.ParseAddress(cfg.String("app.host"))
	if hostname == "" {
		if network == "tcp6" {
			hostname = "[::1]"
		} else {
			hostname = "0.0.0.0"
		}
	}
	return &Application{
		Network:           network,
		Hostname:          hostname,
		Port:              port,
		AppName:           cfg.String("app.name"),
		Prefork:           cfg.Bool("app.prefork"),
		IdleTimeout:       cfg.Duration("app.idle-timeout"),
		EnablePrintRoutes: cfg.Bool("app.print-routes"),
		Router:            router.New(),
	}
}

func (a *Application) Address() string {
	return a.Hostname + ":" + a.Port
}

// Routes lists registered routes by method.
func (a *Application) Routes() map[string][]string {
	return a.Router.List()
}

func (a *Application) Run() error {
	a.s = &fasthttp.Server{
		Name:            a.AppName,
		Handler:         a.Router.Handler,
		IdleTimeout:     a.IdleTimeout,
		ReadBufferSize:  4096 * 20,
		WriteBufferSize: 4096 * 20,
	}
	if a.Prefork {
		return prefork.New(a.s).ListenAndServe(a.Address())
	}
	return a.s.ListenAndServe(a.Address())
}

func (a *Application) Shutdown() error {
	if a.s == nil {
		return nil
	}
	return a.s.Shutdown()
}
