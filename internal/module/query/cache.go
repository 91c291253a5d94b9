package query

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/daubit/tracy-web/internal/module/shared"
	"github.com/google/uuid"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

const maxRetryDelay = 30 * time.Second

// Store shares results between dashboard instances. *shared.RedisClient
// implements it.
type Store interface {
	GetQuery(ctx context.Context, key string) ([]byte, bool, error)
	SetQuery(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteQueries(ctx context.Context, exact string, prefix string) error
	PublishInvalidation(ctx context.Context, payload string) error
	SubscribeInvalidations(ctx context.Context, handler func(payload string)) error
}

type Options struct {
	// StaleTime is how long a result is served without refetching.
	StaleTime time.Duration
	// CacheTime is how long an unused entry is kept before Sweep drops it.
	CacheTime  time.Duration
	Retry      int
	RetryDelay time.Duration
}

// Cache memoizes backend results per Key. One Cache is created at startup and
// shared by every consumer.
type Cache struct {
	id      string
	mu      sync.Mutex
	entries map[string]*entry
	opts    Options
	store   Store
	logger  zerolog.Logger
	metrics *shared.Metrics
	now     func() time.Time
}

type entry struct {
	key       Key
	data      any
	hasData   bool
	err       error
	updatedAt time.Time
	fetchedAt time.Time
	lastUsed  time.Time
	invalid   bool
	fetching  bool
	done      chan struct{}
}

type invalidation struct {
	Origin string `json:"origin"`
	Key    Key    `json:"key"`
}

func NewCache(cfg *koanf.Koanf, logger zerolog.Logger, store Store, metrics *shared.Metrics) *Cache {
	return New(Options{
		StaleTime:  cfg.Duration("query.stale-time"),
		CacheTime:  cfg.Duration("query.cache-time"),
		Retry:      cfg.Int("query.retry"),
		RetryDelay: cfg.Duration("query.retry-delay"),
	}, logger, store, metrics)
}

func New(opts Options, logger zerolog.Logger, store Store, metrics *shared.Metrics) *Cache {
	return &Cache{
		id:      uuid.NewString(),
		entries: make(map[string]*entry),
		opts:    opts,
		store:   store,
		logger:  logger.With().Str("component", "query-cache").Logger(),
		metrics: metrics,
		now:     time.Now,
	}
}

// Use returns the current state of key without blocking. It starts a
// background fetch when the entry is missing, stale or invalidated and no
// fetch is already running.
func Use[T any](c *Cache, key Key, fetch func(context.Context) (T, error)) State[T] {
	e, start := c.acquire(key)
	if start {
		go c.run(e, erase(fetch), decoder[T]())
	}
	return snapshot[T](c, e)
}

// Await is Use followed by waiting for the running fetch or ctx.
func Await[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) State[T] {
	e, start := c.acquire(key)
	if start {
		go c.run(e, erase(fetch), decoder[T]())
	}

	c.mu.Lock()
	fetching, done := e.fetching, e.done
	c.mu.Unlock()

	if fetching {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
	return snapshot[T](c, e)
}

// Prefetch fills key and reports the fetch error, if any.
func Prefetch[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) error {
	s := Await(ctx, c, key, fetch)
	if s.IsFetching && ctx.Err() != nil {
		return ctx.Err()
	}
	return s.Err
}

func erase[T any](fetch func(context.Context) (T, error)) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}
}

func decoder[T any]() func([]byte) (any, error) {
	return func(raw []byte) (any, error) {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func (c *Cache) acquire(key Key) (*entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := key.String()
	e, ok := c.entries[id]
	if !ok {
		e = &entry{key: key}
		c.entries[id] = e
		c.metrics.SetEntries(len(c.entries))
	}

	now := c.now()
	e.lastUsed = now
	if e.fetching {
		return e, false
	}
	if !e.invalid && !e.fetchedAt.IsZero() && now.Sub(e.fetchedAt) < c.opts.StaleTime {
		if e.hasData {
			c.metrics.CacheHit("memory")
		}
		return e, false
	}

	c.metrics.CacheMiss()
	e.fetching = true
	e.invalid = false
	e.done = make(chan struct{})
	return e, true
}

func (c *Cache) run(e *entry, fetch func(context.Context) (any, error), decode func([]byte) (any, error)) {
	ctx := context.Background()
	data, err := c.load(ctx, e.key, fetch, decode)

	c.mu.Lock()
	defer c.mu.Unlock()
	e.fetching = false
	e.fetchedAt = c.now()
	if err != nil {
		e.err = err
		c.logger.Warn().Err(err).Str("key", e.key.String()).Msg("query failed")
	} else {
		e.data = data
		e.hasData = true
		e.err = nil
		e.updatedAt = e.fetchedAt
	}
	close(e.done)
}

func (c *Cache) load(ctx context.Context, key Key, fetch func(context.Context) (any, error), decode func([]byte) (any, error)) (any, error) {
	id := key.String()
	if c.store != nil {
		raw, ok, err := c.store.GetQuery(ctx, id)
		if err != nil {
			c.logger.Warn().Err(err).Str("key", id).Msg("failed to read shared query cache")
		} else if ok {
			v, err := decode(raw)
			if err == nil {
				c.metrics.CacheHit("store")
				return v, nil
			}
			c.logger.Warn().Err(err).Str("key", id).Msg("discarding undecodable shared query result")
		}
	}

	started := time.Now()
	v, err := withRetry(ctx, c.opts.Retry, c.opts.RetryDelay, maxRetryDelay, fetch)
	c.metrics.ObserveFetch(key.Name(), time.Since(started), err)
	c.logger.Debug().Str("key", id).Dur("took", time.Since(started)).Err(err).Msg("query fetched")
	if err != nil {
		return nil, err
	}

	if c.store != nil && c.opts.StaleTime > 0 {
		raw, err := json.Marshal(v)
		if err == nil {
			err = c.store.SetQuery(ctx, id, raw, c.opts.StaleTime)
		}
		if err != nil {
			c.logger.Warn().Err(err).Str("key", id).Msg("failed to write shared query cache")
		}
	}
	return v, nil
}

func snapshot[T any](c *Cache, e *entry) State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State[T]{
		IsFetching: e.fetching,
		Err:        e.err,
		UpdatedAt:  e.updatedAt,
	}
	if e.hasData {
		s.Data, s.HasData = e.data.(T)
	}
	s.IsLoading = e.fetching && !s.HasData

	switch {
	case s.IsLoading:
		s.Status = StatusLoading
	case s.Err != nil:
		s.Status = StatusError
	case s.HasData:
		s.Status = StatusSuccess
	default:
		s.Status = StatusIdle
	}
	return s
}

// Invalidate marks every entry under prefix stale so the next read refetches
// it. An empty prefix matches everything. Shared results are dropped and other
// instances are told to do the same.
func (c *Cache) Invalidate(ctx context.Context, prefix Key) int {
	n := c.markInvalid(prefix)
	if c.store == nil {
		return n
	}

	storePrefix := prefix.storePrefix()
	if len(prefix) == 0 {
		storePrefix = "["
	}
	if err := c.store.DeleteQueries(ctx, prefix.String(), storePrefix); err != nil {
		c.logger.Warn().Err(err).Str("prefix", prefix.String()).Msg("failed to delete shared query results")
	}

	payload, _ := json.Marshal(invalidation{Origin: c.id, Key: prefix})
	if err := c.store.PublishInvalidation(ctx, string(payload)); err != nil {
		c.logger.Warn().Err(err).Msg("failed to publish invalidation")
	}
	return n
}

func (c *Cache) markInvalid(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			e.invalid = true
			n++
		}
	}
	return n
}

// ListenInvalidations applies invalidations published by other instances
// until ctx is done.
func (c *Cache) ListenInvalidations(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	return c.store.SubscribeInvalidations(ctx, func(payload string) {
		var msg invalidation
		if err := json.Unmarshal([]byte(payload), &msg); err != nil {
			c.logger.Warn().Err(err).Msg("ignoring malformed invalidation")
			return
		}
		if msg.Origin == c.id {
			return
		}
		n := c.markInvalid(msg.Key)
		c.logger.Debug().Str("prefix", msg.Key.String()).Int("entries", n).Msg("remote invalidation applied")
	})
}

// Sweep drops entries nobody read for CacheTime.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for id, e := range c.entries {
		if !e.fetching && now.Sub(e.lastUsed) >= c.opts.CacheTime {
			delete(c.entries, id)
			n++
		}
	}
	c.metrics.SetEntries(len(c.entries))
	return n
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
