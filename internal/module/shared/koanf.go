package shared

import (
	"log"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "tracy_web_"

// DefaultValues are loaded before config/default.yaml and the environment.
func DefaultValues() map[string]interface{} {
	return map[string]interface{}{
		"app.name":                    "tracy-web",
		"app.host":                    ":3000",
		"app.idle-timeout":            50 * time.Second,
		"app.print-routes":            false,
		"app.prefork":                 false,
		"app.production":              false,
		"logger.time-format":          time.RFC3339,
		"logger.level":                1,
		"backend.url":                 "http://localhost:8080",
		"backend.timeout":             10 * time.Second,
		"query.stale-time":            30 * time.Second,
		"query.cache-time":            5 * time.Minute,
		"query.retry":                 3,
		"query.retry-delay":           time.Second,
		"dashboard.chain-filter-mode": "include",
		"dashboard.default-chains":    []string{},
		"dashboard.render-wait":       300 * time.Millisecond,
		"dashboard.api-wait":          15 * time.Second,
		"ratelimit.enable":            true,
		"ratelimit.max":               50,
		"ratelimit.interval":          time.Second,
		"redis.url":                   "",
		"redis.keeplive-interval":     30 * time.Second,
		"redis.retry-count":           3,
		"db.enable":                   false,
		"scheduler.warm-interval":     20 * time.Second,
		"scheduler.sweep-interval":    time.Minute,
		"scheduler.flush-interval":    15 * time.Second,
	}
}

func NewKoanfInstance() *koanf.Koanf {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(DefaultValues(), "."), nil); err != nil {
		log.Fatalf("error loading default values: %v", err)
	}

	if err := k.Load(file.Provider("config/default.yaml"), yaml.Parser()); err != nil {
		log.Panicf("Error loading default config: %v", err)
	}
	log.Println("Load local config!")

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", envValue), nil); err != nil {
		log.Panicf("Error loading env: %v", err)
	}

	return k
}

// envValue strips the prefix and maps "__" to "." and "_" to "-", so
// tracy_web_query__stale_time sets query.stale-time. Values containing
// spaces become slices.
func envValue(s string, v string) (string, interface{}) {
	key := strings.TrimPrefix(strings.ToLower(s), envPrefix)
	key = strings.Replace(key, "__", ".", -1)
	key = strings.Replace(key, "_", "-", -1)

	if strings.Contains(v, " ") {
		return key, strings.Split(v, " ")
	}

	return key, v
}
