package controller

import (
	"context"
	"strings"
	"time"

	"github.com/daubit/tracy-web/internal/module/pool/model"
	"github.com/daubit/tracy-web/internal/module/pool/service"
	"github.com/daubit/tracy-web/internal/module/pool/view"
	"github.com/daubit/tracy-web/internal/module/query"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

type DashboardController interface {
	Pools(ctx *fasthttp.RequestCtx)
	Swap(ctx *fasthttp.RequestCtx)
}

type dashboardController struct {
	poolQueryService service.PoolQueryService
	renderer         *view.Renderer
	filterMode       view.FilterMode
	defaultChains    []string
	renderWait       time.Duration
	logger           zerolog.Logger
}

func NewDashboardController(cfg *koanf.Koanf, poolQueryService service.PoolQueryService, renderer *view.Renderer, logger zerolog.Logger) DashboardController {
	defaultChains := cfg.Strings("dashboard.default-chains")
	if len(defaultChains) == 0 && cfg.String("dashboard.default-chains") != "" {
		// a single env value such as tracy_web_dashboard__default_chains=juno
		defaultChains = []string{cfg.String("dashboard.default-chains")}
	}
	return &dashboardController{
		poolQueryService: poolQueryService,
		renderer:         renderer,
		filterMode:       view.ParseFilterMode(cfg.String("dashboard.chain-filter-mode")),
		defaultChains:    defaultChains,
		renderWait:       cfg.Duration("dashboard.render-wait"),
		logger:           logger,
	}
}

// Pools renders the pools table. Query args: chains (repeated or comma
// separated), denom, open (pool address of the detail overlay).
func (c *dashboardController) Pools(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()

	chains := c.defaultChains
	if args.Has("chains") {
		chains = nil
		for _, v := range args.PeekMulti("chains") {
			chains = append(chains, string(v))
		}
	}
	filter := view.NewChainFilter(c.filterMode, chains)
	denom := strings.TrimSpace(string(args.Peek("denom")))

	wait, cancel := context.WithTimeout(context.Background(), c.renderWait)
	defer cancel()

	var state query.State[model.PoolList]
	if denom != "" {
		state = c.poolQueryService.AwaitPoolsForDenom(wait, denom)
	} else {
		state = c.poolQueryService.AwaitPools(wait)
	}

	table := view.BuildTable(state, filter, view.ParseOpen(string(args.Peek("open"))))
	q := view.PageQuery{Chains: filter.Values(), Denom: denom}
	page := view.NewPoolsPage(string(ctx.Path()), q, filter, table)

	ctx.SetContentType("text/html; charset=utf-8")
	if err := c.renderer.Pools(ctx, page); err != nil {
		c.logger.Err(err).Msg("failed to render pools page")
		ctx.Error("failed to render page", fasthttp.StatusInternalServerError)
	}
}

// Swap renders the quote form and, once submitted, the quotes of every pool
// trading the pair.
func (c *dashboardController) Swap(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	form := view.NewQuoteForm(string(args.Peek("token_in")), string(args.Peek("token_out")), string(args.Peek("amount")))

	var formError string
	var quotes view.QuoteTable
	if !form.Empty() {
		formError = form.Validate()
	}
	if !form.Empty() && formError == "" {
		wait, cancel := context.WithTimeout(context.Background(), c.renderWait)
		defer cancel()
		quotes = view.BuildQuotes(c.poolQueryService.AwaitQuote(wait, form.TokenIn, form.TokenOut, form.Amount))
	}

	ctx.SetContentType("text/html; charset=utf-8")
	if err := c.renderer.Swap(ctx, view.NewSwapPage(form, formError, quotes)); err != nil {
		c.logger.Err(err).Msg("failed to render swap page")
		ctx.Error("failed to render page", fasthttp.StatusInternalServerError)
	}
}
