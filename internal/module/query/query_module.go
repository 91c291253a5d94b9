package query

import (
	"github.com/daubit/tracy-web/internal/module/shared"
	"go.uber.org/fx"
)

var NewQueryModule = fx.Options(
	fx.Provide(NewStore),
	fx.Provide(NewCache),
)

// NewStore exposes redis as the shared result store, or nil when redis is
// disabled so the cache stays purely in memory.
func NewStore(redis *shared.RedisClient) Store {
	if !redis.Enabled() {
		return nil
	}
	return redis
}
