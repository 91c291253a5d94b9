package shared

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type RedisClient struct {
	Client           *redis.Client
	url              string
	options          *redis.Options
	retryCount       int
	keepliveInterval time.Duration
	logger           zerolog.Logger
	mu               sync.RWMutex
	stop             chan struct{}
}

const (
	redisQueryPrefix         = "query:"
	redisInvalidationChannel = "query:invalidate"
	batchSize                = 1000
	maxRetries               = 3
)

// NewRedisClient returns a client that stays disabled when redis.url is empty.
func NewRedisClient(cfg *koanf.Koanf, logger zerolog.Logger) *RedisClient {
	url := cfg.String("redis.url")
	r := &RedisClient{
		logger:           logger,
		url:              url,
		retryCount:       cfg.Int("redis.retry-count"),
		keepliveInterval: cfg.Duration("redis.keeplive-interval"),
		stop:             make(chan struct{}),
	}
	if url == "" {
		return r
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Panic().Err(err).Msg("invalid redis.url")
	}
	r.options = opts
	return r
}

func (r *RedisClient) Enabled() bool {
	return r != nil && r.options != nil
}

func (r *RedisClient) client() *redis.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Client
}

func (r *RedisClient) keeplive() {
	ticker := time.NewTicker(r.keepliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
		}

		for i := 1; i <= r.retryCount; i++ {
			err := r.client().Ping(context.Background()).Err()
			if err == nil {
				break
			}
			if i == r.retryCount {
				r.logger.Error().Err(err).Msgf("Failed to reach Redis after %d attempts", i)
				break
			}

			r.logger.Warn().Err(err).Msgf("Failed to reach Redis, reconnecting (%d/%d)", i, r.retryCount)
			r.mu.Lock()
			old := r.Client
			r.Client = redis.NewClient(r.options)
			r.mu.Unlock()
			old.Close()
		}
	}
}

func (r *RedisClient) Connect() {
	if !r.Enabled() {
		r.logger.Info().Msg("Redis is disabled, running with the in-memory cache only")
		return
	}
	r.mu.Lock()
	r.Client = redis.NewClient(r.options)
	r.mu.Unlock()
	if r.keepliveInterval > 0 {
		go r.keeplive()
	}
}

func (r *RedisClient) Close() error {
	if r.client() == nil {
		return nil
	}
	close(r.stop)
	return r.client().Close()
}

// DeleteKeysByPrefix deletes every key starting with the literal prefix.
func (r *RedisClient) DeleteKeysByPrefix(ctx context.Context, prefix string) error {
	iter := r.client().Scan(ctx, 0, escapeGlob(prefix)+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= batchSize {
			if err := r.DeleteKeyBatch(ctx, keys); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}

	// Delete remaining keys if any
	if len(keys) > 0 {
		if err := r.DeleteKeyBatch(ctx, keys); err != nil {
			return err
		}
	}

	return iter.Err()
}

// escapeGlob quotes the characters SCAN MATCH treats as pattern syntax.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '\\', '[', ']', '*', '?':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *RedisClient) DeleteKeyBatch(ctx context.Context, keys []string) error {
	for i := 0; i < len(keys); i += batchSize {
		end := i + batchSize
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[i:end]

		for retries := 0; retries < maxRetries; retries++ {
			pipe := r.client().Pipeline()
			for _, key := range batch {
				pipe.Del(ctx, key)
			}
			_, err := pipe.Exec(ctx)
			if err != nil {
				if retries == maxRetries-1 {
					return err
				}
				continue
			}
			break
		}
	}

	return nil
}

func (r *RedisClient) AcquireLock(lockKey string, ttl time.Duration) bool {
	if r.client() == nil {
		// single instance, nothing to coordinate with
		return true
	}
	ok, err := r.client().SetNX(context.Background(), lockKey, "locked", ttl).Result()
	if err != nil {
		r.logger.Debug().Err(err).Msg("Failed to acquire lock key " + lockKey)
		return false
	}
	if !ok {
		r.logger.Debug().Msg("Lock is held by another instance, key: " + lockKey)
		return false
	}
	return true
}

func (r *RedisClient) ReleaseLock(lockKey string) {
	if r.client() == nil {
		return
	}
	r.client().Del(context.Background(), lockKey)
}

func (r *RedisClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	return r.client().Eval(ctx, script, keys, args...)
}

func (r *RedisClient) RPush(ctx context.Context, key string, value []byte) error {
	return r.client().RPush(ctx, key, value).Err()
}

// PopAll reads and removes a whole list in one transaction.
func (r *RedisClient) PopAll(ctx context.Context, key string) ([]string, error) {
	var values *redis.StringSliceCmd
	_, err := r.client().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		values = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values.Val(), nil
}

// GetQuery reads a cached query result shared between instances.
func (r *RedisClient) GetQuery(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client().Get(ctx, redisQueryPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (r *RedisClient) SetQuery(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client().Set(ctx, redisQueryPrefix+key, value, ttl).Err()
}

// DeleteQueries removes the exact key and every key sharing the given prefix.
func (r *RedisClient) DeleteQueries(ctx context.Context, exact string, prefix string) error {
	if err := r.client().Del(ctx, redisQueryPrefix+exact).Err(); err != nil {
		return err
	}
	return r.DeleteKeysByPrefix(ctx, redisQueryPrefix+prefix)
}

func (r *RedisClient) PublishInvalidation(ctx context.Context, payload string) error {
	return r.client().Publish(ctx, redisInvalidationChannel, payload).Err()
}

// SubscribeInvalidations blocks until ctx is done.
func (r *RedisClient) SubscribeInvalidations(ctx context.Context, handler func(payload string)) error {
	pubsub := r.client().Subscribe(ctx, redisInvalidationChannel)
	defer pubsub.Close()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Err(err).Msgf("Error receiving message from channel: %s", redisInvalidationChannel)
			time.Sleep(time.Second)
			continue
		}
		handler(msg.Payload)
	}
}
