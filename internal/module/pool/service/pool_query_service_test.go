package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/daubit/tracy-web/internal/module/pool/model"
	"github.com/daubit/tracy-web/internal/module/pool/service"
	"github.com/daubit/tracy-web/internal/module/query"
	"github.com/daubit/tracy-web/internal/module/shared"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu     sync.Mutex
	calls  map[string]int
	pools  model.PoolList
	err    error
	quotes func(in, out, amount string) model.QuoteList
}

func newFakeBackend(pools model.PoolList) *fakeBackend {
	return &fakeBackend{calls: map[string]int{}, pools: pools}
}

func (b *fakeBackend) record(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[name]++
	return b.err
}

func (b *fakeBackend) Calls(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[name]
}

func (b *fakeBackend) GetPools(context.Context) (model.PoolList, error) {
	if err := b.record("pools"); err != nil {
		return nil, err
	}
	return b.pools, nil
}

func (b *fakeBackend) GetPoolsForDenom(_ context.Context, denom string) (model.PoolList, error) {
	if err := b.record("pools_for_denom/" + denom); err != nil {
		return nil, err
	}
	return b.pools, nil
}

func (b *fakeBackend) GetPoolsForDenoms(_ context.Context, denom1, denom2 string) (model.PoolList, error) {
	if err := b.record("pools_for_denoms/" + denom1 + "/" + denom2); err != nil {
		return nil, err
	}
	return b.pools, nil
}

func (b *fakeBackend) GetPool(_ context.Context, address string) (model.Pool, error) {
	if err := b.record("pool/" + address); err != nil {
		return nil, err
	}
	for _, p := range b.pools {
		if p.Address() == address {
			return p, nil
		}
	}
	return nil, service.ErrBackendReported
}

func (b *fakeBackend) GetQuotes(_ context.Context, in, out, amount string) (model.QuoteList, error) {
	if err := b.record("quote/" + in + "/" + out + "/" + amount); err != nil {
		return nil, err
	}
	if b.quotes != nil {
		return b.quotes(in, out, amount), nil
	}
	return model.QuoteList{}, nil
}

func str(s string) *string { return &s }

func junoPool(address, sym1, sym2 string) *model.JunoPool {
	return &model.JunoPool{PairPool: model.PairPool{
		PoolAddress: str(address),
		Token1:      &model.Token{Symbol: str(sym1)},
		Token2:      &model.Token{Symbol: str(sym2)},
	}}
}

func newQueryService(backend service.BackendService) service.PoolQueryService {
	cfg := shared.SetupCfg(map[string]interface{}{
		"query.retry":       0,
		"query.retry-delay": time.Millisecond,
	})
	cache := query.NewCache(cfg, zerolog.Nop(), nil, nil)
	return service.NewPoolQueryService(cache, backend)
}

func TestQuoteFetchedOncePerTriple(t *testing.T) {
	backend := newFakeBackend(nil)
	svc := newQueryService(backend)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		svc.AwaitQuote(ctx, "ujuno", "uosmo", "100")
	}
	svc.AwaitQuote(ctx, "ujuno", "uosmo", "1000")
	svc.AwaitQuote(ctx, "uosmo", "ujuno", "100")

	assert.Equal(t, 1, backend.Calls("quote/ujuno/uosmo/100"))
	assert.Equal(t, 1, backend.Calls("quote/ujuno/uosmo/1000"))
	assert.Equal(t, 1, backend.Calls("quote/uosmo/ujuno/100"))
}

func TestUsePoolsStartsWithLoading(t *testing.T) {
	backend := newFakeBackend(model.PoolList{junoPool("juno1a", "A", "B")})
	svc := newQueryService(backend)

	s := svc.UsePools()
	if !s.HasData {
		assert.True(t, s.IsLoading)
	}

	s = svc.AwaitPools(context.Background())
	require.True(t, s.HasData)
	assert.Len(t, s.Data, 1)
	assert.Equal(t, 1, backend.Calls("pools"))
}

func TestAwaitPool(t *testing.T) {
	backend := newFakeBackend(model.PoolList{junoPool("juno1a", "A", "B")})
	svc := newQueryService(backend)

	s := svc.AwaitPool(context.Background(), "juno1a")
	require.NoError(t, s.Err)
	assert.Equal(t, "juno1a", s.Data.Pool.Address())

	s = svc.AwaitPool(context.Background(), "juno1missing")
	assert.ErrorIs(t, s.Err, service.ErrBackendReported)
}

func TestAwaitPoolsForDenomKeysByDenom(t *testing.T) {
	backend := newFakeBackend(model.PoolList{})
	svc := newQueryService(backend)
	ctx := context.Background()

	svc.AwaitPoolsForDenom(ctx, "ujuno")
	svc.AwaitPoolsForDenom(ctx, "ujuno")
	svc.AwaitPoolsForDenom(ctx, "uosmo")
	svc.AwaitPoolsForDenoms(ctx, "ujuno", "uosmo")

	assert.Equal(t, 1, backend.Calls("pools_for_denom/ujuno"))
	assert.Equal(t, 1, backend.Calls("pools_for_denom/uosmo"))
	assert.Equal(t, 1, backend.Calls("pools_for_denoms/ujuno/uosmo"))
}

func TestInvalidateRefetchesOnce(t *testing.T) {
	backend := newFakeBackend(model.PoolList{})
	svc := newQueryService(backend)
	ctx := context.Background()

	svc.AwaitPools(ctx)
	assert.Equal(t, 1, svc.Invalidate(ctx, service.PoolsKey()))
	svc.AwaitPools(ctx)
	svc.AwaitPools(ctx)

	assert.Equal(t, 2, backend.Calls("pools"))
}

func TestBackendErrorSurfaces(t *testing.T) {
	backend := newFakeBackend(nil)
	backend.err = errors.New("connection refused")
	svc := newQueryService(backend)

	s := svc.AwaitPools(context.Background())
	assert.Error(t, s.Err)
	assert.False(t, s.HasData)
	assert.Equal(t, query.StatusError, s.Status)
}
