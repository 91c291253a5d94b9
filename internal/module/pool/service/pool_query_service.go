package service

import (
	"context"

	"github.com/daubit/tracy-web/internal/module/pool/model"
	"github.com/daubit/tracy-web/internal/module/query"
)

func PoolsKey() query.Key {
	return query.NewKey("pools")
}

func PoolsForDenomKey(denom string) query.Key {
	return query.NewKey("pools_for_denom", denom)
}

func PoolsForDenomsKey(denom1, denom2 string) query.Key {
	return query.NewKey("pools_for_denoms", denom1, denom2)
}

func PoolKey(address string) query.Key {
	return query.NewKey("pool", address)
}

func QuoteKey(tokenIn, tokenOut, amount string) query.Key {
	return query.NewKey("quote", tokenIn, tokenOut, amount)
}

// PoolQueryService serves backend data through the shared query cache. The
// Use methods never block; the Await methods wait for a running fetch or ctx.
type PoolQueryService interface {
	UsePools() query.State[model.PoolList]
	UsePoolsForDenom(denom string) query.State[model.PoolList]
	UsePoolsForDenoms(denom1, denom2 string) query.State[model.PoolList]
	UsePool(address string) query.State[model.PoolBox]
	UseQuote(tokenIn, tokenOut, amount string) query.State[model.QuoteList]

	AwaitPools(ctx context.Context) query.State[model.PoolList]
	AwaitPoolsForDenom(ctx context.Context, denom string) query.State[model.PoolList]
	AwaitPoolsForDenoms(ctx context.Context, denom1, denom2 string) query.State[model.PoolList]
	AwaitPool(ctx context.Context, address string) query.State[model.PoolBox]
	AwaitQuote(ctx context.Context, tokenIn, tokenOut, amount string) query.State[model.QuoteList]

	Invalidate(ctx context.Context, prefix query.Key) int
}

type poolQueryService struct {
	cache   *query.Cache
	backend BackendService
}

func NewPoolQueryService(cache *query.Cache, backend BackendService) PoolQueryService {
	return &poolQueryService{
		cache:   cache,
		backend: backend,
	}
}

func (s *poolQueryService) UsePools() query.State[model.PoolList] {
	return query.Use(s.cache, PoolsKey(), s.backend.GetPools)
}

func (s *poolQueryService) UsePoolsForDenom(denom string) query.State[model.PoolList] {
	return query.Use(s.cache, PoolsForDenomKey(denom), s.poolsForDenom(denom))
}

func (s *poolQueryService) UsePoolsForDenoms(denom1, denom2 string) query.State[model.PoolList] {
	return query.Use(s.cache, PoolsForDenomsKey(denom1, denom2), s.poolsForDenoms(denom1, denom2))
}

func (s *poolQueryService) UsePool(address string) query.State[model.PoolBox] {
	return query.Use(s.cache, PoolKey(address), s.pool(address))
}

func (s *poolQueryService) UseQuote(tokenIn, tokenOut, amount string) query.State[model.QuoteList] {
	return query.Use(s.cache, QuoteKey(tokenIn, tokenOut, amount), s.quote(tokenIn, tokenOut, amount))
}

func (s *poolQueryService) AwaitPools(ctx context.Context) query.State[model.PoolList] {
	return query.Await(ctx, s.cache, PoolsKey(), s.backend.GetPools)
}

func (s *poolQueryService) AwaitPoolsForDenom(ctx context.Context, denom string) query.State[model.PoolList] {
	return query.Await(ctx, s.cache, PoolsForDenomKey(denom), s.poolsForDenom(denom))
}

func (s *poolQueryService) AwaitPoolsForDenoms(ctx context.Context, denom1, denom2 string) query.State[model.PoolList] {
	return query.Await(ctx, s.cache, PoolsForDenomsKey(denom1, denom2), s.poolsForDenoms(denom1, denom2))
}

func (s *poolQueryService) AwaitPool(ctx context.Context, address string) query.State[model.PoolBox] {
	return query.Await(ctx, s.cache, PoolKey(address), s.pool(address))
}

func (s *poolQueryService) AwaitQuote(ctx context.Context, tokenIn, tokenOut, amount string) query.State[model.QuoteList] {
	return query.Await(ctx, s.cache, QuoteKey(tokenIn, tokenOut, amount), s.quote(tokenIn, tokenOut, amount))
}

func (s *poolQueryService) Invalidate(ctx context.Context, prefix query.Key) int {
	return s.cache.Invalidate(ctx, prefix)
}

func (s *poolQueryService) poolsForDenom(denom string) func(context.Context) (model.PoolList, error) {
	return func(ctx context.Context) (model.PoolList, error) {
		return s.backend.GetPoolsForDenom(ctx, denom)
	}
}

func (s *poolQueryService) poolsForDenoms(denom1, denom2 string) func(context.Context) (model.PoolList, error) {
	return func(ctx context.Context) (model.PoolList, error) {
		return s.backend.GetPoolsForDenoms(ctx, denom1, denom2)
	}
}

func (s *poolQueryService) pool(address string) func(context.Context) (model.PoolBox, error) {
	return func(ctx context.Context) (model.PoolBox, error) {
		p, err := s.backend.GetPool(ctx, address)
		if err != nil {
			return model.PoolBox{}, err
		}
		return model.PoolBox{Pool: p}, nil
	}
}

func (s *poolQueryService) quote(tokenIn, tokenOut, amount string) func(context.Context) (model.QuoteList, error) {
	return func(ctx context.Context) (model.QuoteList, error) {
		return s.backend.GetQuotes(ctx, tokenIn, tokenOut, amount)
	}
}
