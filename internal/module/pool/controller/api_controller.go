package controller

import (
	"context"
	"strings"
	"time"

	"github.com/daubit/tracy-web/internal/module/pool/service"
	"github.com/daubit/tracy-web/internal/module/pool/view"
	"github.com/daubit/tracy-web/internal/module/query"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const (
	codeBadRequest  = 400
	codeBadGateway  = 502
	codeTimeout     = 504
	messageSuccess  = "Request successful"
	messageTimedOut = "Request timed out"
)

type ApiController interface {
	GetPools(ctx *fasthttp.RequestCtx)
	GetPoolsForDenom(ctx *fasthttp.RequestCtx)
	GetPoolsForDenoms(ctx *fasthttp.RequestCtx)
	GetPool(ctx *fasthttp.RequestCtx)
	GetQuote(ctx *fasthttp.RequestCtx)
	InvalidateCache(ctx *fasthttp.RequestCtx)
	CheckHealthz(ctx *fasthttp.RequestCtx)
}

type apiController struct {
	poolQueryService service.PoolQueryService
	wait             time.Duration
	logger           zerolog.Logger
}

func NewApiController(cfg *koanf.Koanf, poolQueryService service.PoolQueryService, logger zerolog.Logger) ApiController {
	return &apiController{
		poolQueryService: poolQueryService,
		wait:             cfg.Duration("dashboard.api-wait"),
		logger:           logger,
	}
}

func (c *apiController) GetPools(ctx *fasthttp.RequestCtx) {
	wait, cancel := context.WithTimeout(context.Background(), c.wait)
	defer cancel()
	respondState(ctx, c.logger, c.poolQueryService.AwaitPools(wait))
}

func (c *apiController) GetPoolsForDenom(ctx *fasthttp.RequestCtx) {
	denom := param(ctx, "denom")
	if denom == "" {
		respond(ctx, codeBadRequest, nil, "denom is required")
		return
	}
	wait, cancel := context.WithTimeout(context.Background(), c.wait)
	defer cancel()
	respondState(ctx, c.logger, c.poolQueryService.AwaitPoolsForDenom(wait, denom))
}

func (c *apiController) GetPoolsForDenoms(ctx *fasthttp.RequestCtx) {
	wait, cancel := context.WithTimeout(context.Background(), c.wait)
	defer cancel()
	respondState(ctx, c.logger, c.poolQueryService.AwaitPoolsForDenoms(wait, param(ctx, "denom1"), param(ctx, "denom2")))
}

func (c *apiController) GetPool(ctx *fasthttp.RequestCtx) {
	wait, cancel := context.WithTimeout(context.Background(), c.wait)
	defer cancel()
	respondState(ctx, c.logger, c.poolQueryService.AwaitPool(wait, param(ctx, "address")))
}

func (c *apiController) GetQuote(ctx *fasthttp.RequestCtx) {
	form := view.NewQuoteForm(param(ctx, "token_in"), param(ctx, "token_out"), param(ctx, "amount"))
	if msg := form.Validate(); msg != "" {
		respond(ctx, codeBadRequest, nil, msg)
		return
	}

	wait, cancel := context.WithTimeout(context.Background(), c.wait)
	defer cancel()
	state := c.poolQueryService.AwaitQuote(wait, form.TokenIn, form.TokenOut, form.Amount)
	respondState(ctx, c.logger, state)
}

// InvalidateCache takes the key prefix as ?key=a,b; no key invalidates
// everything.
func (c *apiController) InvalidateCache(ctx *fasthttp.RequestCtx) {
	var prefix query.Key
	if raw := strings.TrimSpace(string(ctx.QueryArgs().Peek("key"))); raw != "" {
		prefix = query.NewKey(strings.Split(raw, ",")...)
	}
	n := c.poolQueryService.Invalidate(context.Background(), prefix)
	c.logger.Info().Str("prefix", prefix.String()).Int("entries", n).Msg("query cache invalidated")
	respond(ctx, 0, map[string]interface{}{"invalidated": n}, "Cache invalidated")
}

func (c *apiController) CheckHealthz(ctx *fasthttp.RequestCtx) {
	respond(ctx, 0, nil, "Successfully checked service status")
}

// respondState maps a query state onto the response envelope. Data from a
// failed refresh is still returned, with the error as message.
func respondState[T any](ctx *fasthttp.RequestCtx, logger zerolog.Logger, s query.State[T]) {
	switch {
	case s.IsLoading:
		respond(ctx, codeTimeout, nil, messageTimedOut)
	case s.Err != nil && !s.HasData:
		logger.Err(s.Err).Str("path", string(ctx.Path())).Msg("backend query failed")
		respond(ctx, codeBadGateway, nil, s.Err.Error())
	case s.Err != nil:
		respond(ctx, 0, s.Data, "stale: "+s.Err.Error())
	default:
		respond(ctx, 0, s.Data, messageSuccess)
	}
}
