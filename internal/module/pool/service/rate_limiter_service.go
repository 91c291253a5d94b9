package service

import (
	"context"
	"sync"
	"time"

	"github.com/daubit/tracy-web/internal/module/shared"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const rateLimitScript = `
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local interval = tonumber(ARGV[2])
	local current = redis.call("GET", key)
	if current and tonumber(current) >= limit then
		return 0
	else
		local n = redis.call("INCR", key)
		if n == 1 then
			redis.call("PEXPIRE", key, interval)
		end
		return 1
	end
`

type RateLimiterService interface {
	Allow(ctx context.Context, client string) (bool, error)
	// Prune drops idle in-process limiters and returns how many were dropped.
	Prune() int
}

// rateLimiterService counts in redis when it is configured so every instance
// shares the budget, and per process otherwise.
type rateLimiterService struct {
	redisClient *shared.RedisClient
	logger      zerolog.Logger
	max         int
	interval    time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewRateLimiterService(cfg *koanf.Koanf, redisClient *shared.RedisClient, logger zerolog.Logger) RateLimiterService {
	interval := cfg.Duration("ratelimit.interval")
	if interval <= 0 {
		interval = time.Second
	}
	return &rateLimiterService{
		redisClient: redisClient,
		logger:      logger,
		max:         cfg.Int("ratelimit.max"),
		interval:    interval,
		limiters:    make(map[string]*rate.Limiter),
	}
}

func (s *rateLimiterService) Allow(ctx context.Context, client string) (bool, error) {
	if s.max <= 0 {
		return true, nil
	}
	if s.redisClient.Enabled() {
		return s.allowShared(ctx, client)
	}
	return s.limiter(client).Allow(), nil
}

func (s *rateLimiterService) allowShared(ctx context.Context, client string) (bool, error) {
	key := "rate_limit:" + client
	allowed, err := s.redisClient.Eval(ctx, rateLimitScript, []string{key}, s.max, s.interval.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return allowed == 1, nil
}

func (s *rateLimiterService) limiter(client string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[client]
	if !ok {
		l = rate.NewLimiter(rate.Every(s.interval/time.Duration(s.max)), s.max)
		s.limiters[client] = l
	}
	return l
}

// Prune forgets clients whose bucket has refilled; a fresh limiter would
// behave the same.
func (s *rateLimiterService) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for client, l := range s.limiters {
		if l.Tokens() >= float64(l.Burst()) {
			delete(s.limiters, client)
			n++
		}
	}
	return n
}
