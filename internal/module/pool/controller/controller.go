package controller

import (
	"encoding/json"

	"github.com/daubit/tracy-web/internal/module/pool/service"
	"github.com/daubit/tracy-web/internal/module/pool/view"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

type Controller struct {
	Dashboard DashboardController
	Api       ApiController
}

func NewController(
	cfg *koanf.Koanf,
	poolQueryService service.PoolQueryService,
	renderer *view.Renderer,
	logger zerolog.Logger) *Controller {
	return &Controller{
		Dashboard: NewDashboardController(cfg, poolQueryService, renderer, logger),
		Api:       NewApiController(cfg, poolQueryService, logger),
	}
}

func respond(ctx *fasthttp.RequestCtx, code int, data interface{}, message string) {
	response := map[string]interface{}{
		"code":    code,
		"data":    data,
		"message": message,
	}

	responseBody, err := json.Marshal(response)
	if err != nil {
		ctx.Error("failed to serialize response", fasthttp.StatusInternalServerError)
		return
	}
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetBody(responseBody)
	ctx.Response.SetStatusCode(fasthttp.StatusOK)
}

func param(ctx *fasthttp.RequestCtx, name string) string {
	v, _ := ctx.UserValue(name).(string)
	return v
}
