package application_test

import (
	"testing"
	"time"

	"github.com/daubit/tracy-web/internal/application"
	"github.com/daubit/tracy-web/internal/module/shared"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func TestNewApplication(t *testing.T) {
	cfg := shared.SetupCfg(map[string]interface{}{"app.host": ":4000"})

	app := application.NewApplication(cfg)

	assert.Equal(t, "0.0.0.0:4000", app.Address())
	assert.Equal(t, "tracy-web", app.AppName)
	assert.Equal(t, 50*time.Second, app.IdleTimeout)
	assert.NoError(t, app.Shutdown())
}

func TestRoutes(t *testing.T) {
	app := application.NewApplication(shared.SetupCfg(nil))
	app.Router.GET("/pools", func(*fasthttp.RequestCtx) {})

	assert.Equal(t, []string{"/pools"}, app.Routes()[fasthttp.MethodGet])
}
