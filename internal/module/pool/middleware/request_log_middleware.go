package middleware

import (
	"context"
	"time"

	"github.com/daubit/tracy-web/internal/database/schema"
	"github.com/daubit/tracy-web/internal/module/pool/repository"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

const RequestIDHeader = "X-Request-Id"

// RequestLogMiddleware tags every response with a request id and records the
// request once the handler returns.
func RequestLogMiddleware(requestLogRepo repository.RequestLogRepository) func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			requestID := string(ctx.Request.Header.Peek(RequestIDHeader))
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}
			ctx.SetUserValue("request_id", requestID)
			ctx.Response.Header.Set(RequestIDHeader, requestID)

			next(ctx)

			params := schema.JSONMap{}
			ctx.QueryArgs().VisitAll(func(key, value []byte) {
				params[string(key)] = string(value)
			})
			requestLogRepo.InsertLog(context.Background(), schema.RequestLog{
				RequestID:     requestID,
				IPAddress:     ClientIP(ctx),
				Method:        string(ctx.Method()),
				Endpoint:      string(ctx.Path()),
				RequestParams: params,
				Status:        ctx.Response.StatusCode(),
				ExecutionTime: time.Since(start).Milliseconds(),
			})
		}
	}
}
