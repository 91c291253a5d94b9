package scheduler

import (
	"context"
	"time"

	"github.com/daubit/tracy-web/internal/module/pool/repository"
	"github.com/daubit/tracy-web/internal/module/pool/service"
	"github.com/daubit/tracy-web/internal/module/query"
	"github.com/daubit/tracy-web/internal/module/shared"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	warmLockKey  = "scheduler:warm_pools_lock"
	flushLockKey = "scheduler:flush_request_logs_lock"
	warmTimeout  = 30 * time.Second
)

// Scheduler runs the background loops: cache warming, cache sweeping,
// request log flushing and remote invalidations.
type Scheduler struct {
	Cache                *query.Cache
	PoolQueryService     service.PoolQueryService
	RateLimiterService   service.RateLimiterService
	RequestLogRepository repository.RequestLogRepository
	redisClient          *shared.RedisClient
	Logger               zerolog.Logger

	warmInterval  time.Duration
	sweepInterval time.Duration
	flushInterval time.Duration
}

func NewScheduler(
	cfg *koanf.Koanf,
	cache *query.Cache,
	poolQueryService service.PoolQueryService,
	rateLimiterService service.RateLimiterService,
	requestLogRepository repository.RequestLogRepository,
	redisClient *shared.RedisClient,
	logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cache:                cache,
		PoolQueryService:     poolQueryService,
		RateLimiterService:   rateLimiterService,
		RequestLogRepository: requestLogRepository,
		redisClient:          redisClient,
		Logger:               logger.With().Str("component", "scheduler").Logger(),
		warmInterval:         cfg.Duration("scheduler.warm-interval"),
		sweepInterval:        cfg.Duration("scheduler.sweep-interval"),
		flushInterval:        cfg.Duration("scheduler.flush-interval"),
	}
}

// Start launches every loop; they stop when ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	go s.every(ctx, s.warmInterval, s.WarmPools)
	go s.every(ctx, s.sweepInterval, s.Sweep)
	go s.every(ctx, s.flushInterval, s.FlushRequestLogs)
	go s.ListenInvalidations(ctx)
}

func (s *Scheduler) every(ctx context.Context, interval time.Duration, task func(context.Context)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			task(ctx)
		}
	}
}

// WarmPools refreshes the pool list and every single pool it contains, so
// page loads are served from the cache. With redis only one instance warms.
func (s *Scheduler) WarmPools(ctx context.Context) {
	if !s.redisClient.AcquireLock(warmLockKey, s.warmInterval) {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, warmTimeout)
	defer cancel()

	state := s.PoolQueryService.AwaitPools(ctx)
	if state.Err != nil || !state.HasData {
		s.Logger.Warn().Err(state.Err).Msg("failed to warm pools")
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, p := range state.Data {
		address := p.Address()
		if address == "" {
			continue
		}
		g.Go(func() error {
			return s.PoolQueryService.AwaitPool(gctx, address).Err
		})
	}
	if err := g.Wait(); err != nil {
		s.Logger.Warn().Err(err).Msg("failed to warm some pools")
		return
	}
	s.Logger.Debug().Int("pools", len(state.Data)).Msg("pools warmed")
}

func (s *Scheduler) Sweep(context.Context) {
	evicted := s.Cache.Sweep()
	pruned := s.RateLimiterService.Prune()
	if evicted > 0 || pruned > 0 {
		s.Logger.Debug().Int("evicted", evicted).Int("limiters", pruned).Msg("cache swept")
	}
}

func (s *Scheduler) FlushRequestLogs(context.Context) {
	if !s.redisClient.AcquireLock(flushLockKey, time.Minute) {
		return
	}
	defer s.redisClient.ReleaseLock(flushLockKey)

	if err := s.RequestLogRepository.ProcessQueue(); err != nil {
		s.Logger.Error().Err(err).Msg("failed to flush request logs")
	}
}

func (s *Scheduler) ListenInvalidations(ctx context.Context) {
	if err := s.Cache.ListenInvalidations(ctx); err != nil && ctx.Err() == nil {
		s.Logger.Error().Err(err).Msg("stopped listening for cache invalidations")
	}
}
