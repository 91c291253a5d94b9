package middleware

import (
	"context"
	"strings"

	"github.com/daubit/tracy-web/internal/module/pool/service"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

func RateLimitMiddleware(rateLimiterService service.RateLimiterService, logger zerolog.Logger) func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			if string(ctx.Method()) == fasthttp.MethodOptions {
				handleCors(ctx)
				ctx.SetStatusCode(fasthttp.StatusNoContent)
				return
			}

			allowed, err := rateLimiterService.Allow(context.Background(), ClientIP(ctx))
			if err != nil {
				logger.Error().Err(err).Msg("Failed to check rate limiter")
				ctx.SetStatusCode(fasthttp.StatusInternalServerError)
				ctx.SetBodyString("Rate limiter unavailable")
				return
			}

			if !allowed {
				ctx.SetStatusCode(fasthttp.StatusTooManyRequests)
				ctx.SetBodyString("Too Many Requests")
				return
			}

			handleCors(ctx)
			next(ctx)
		}
	}
}

// ClientIP prefers the first X-Forwarded-For hop set by the ingress.
func ClientIP(ctx *fasthttp.RequestCtx) string {
	if fwd := string(ctx.Request.Header.Peek("X-Forwarded-For")); fwd != "" {
		if ip := strings.TrimSpace(strings.Split(fwd, ",")[0]); ip != "" {
			return ip
		}
	}
	return ctx.RemoteIP().String()
}

func handleCors(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	ctx.Response.Header.Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept")
	ctx.Response.Header.Set("Access-Control-Max-Age", "86400")
}

// CorsMiddleware only sets the CORS headers. It stands in for the rate limiter
// when limiting is disabled.
func CorsMiddleware(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		handleCors(ctx)
		next(ctx)
	}
}

// Preflight answers OPTIONS requests for the API.
func Preflight(ctx *fasthttp.RequestCtx) {
	handleCors(ctx)
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}
