package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type app = struct {
	Name        string        `yaml:"name"`
	Host        string        `yaml:"host"`
	IdleTimeout time.Duration `yaml:"idle-timeout"`
	PrintRoutes bool          `yaml:"print-routes"`
	Prefork     bool          `yaml:"prefork"`
	Production  bool          `yaml:"production"`
}

type logger = struct {
	TimeFormat string        `yaml:"time-format"`
	Level      zerolog.Level `yaml:"level"`
	Prettier   bool          `yaml:"prettier"`
}

type backend = struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type query = struct {
	StaleTime  time.Duration `yaml:"stale-time"`
	CacheTime  time.Duration `yaml:"cache-time"`
	Retry      int           `yaml:"retry"`
	RetryDelay time.Duration `yaml:"retry-delay"`
}

type dashboard = struct {
	ChainFilterMode string        `yaml:"chain-filter-mode"`
	DefaultChains   []string      `yaml:"default-chains"`
	RenderWait      time.Duration `yaml:"render-wait"`
	APIWait         time.Duration `yaml:"api-wait"`
}

type ratelimit = struct {
	Enable   bool          `yaml:"enable"`
	Max      int           `yaml:"max"`
	Interval time.Duration `yaml:"interval"`
}

type redis = struct {
	URL              string        `yaml:"url"`
	KeepliveInterval time.Duration `yaml:"keeplive-interval"`
	RetryCount       int           `yaml:"retry-count"`
}

type db = struct {
	Enable   bool `yaml:"enable"`
	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`
	Gorm struct {
		DisableForeignKeyConstraintWhenMigrating bool `yaml:"disable-foreign-key-constraint-when-migrating"`
	} `yaml:"gorm"`
}

type scheduler = struct {
	WarmInterval  time.Duration `yaml:"warm-interval"`
	SweepInterval time.Duration `yaml:"sweep-interval"`
	FlushInterval time.Duration `yaml:"flush-interval"`
}

// Config mirrors config/default.yaml. Startup checks the file with
// ParseConfig and the merged koanf settings with Load and Validate.
type Config struct {
	App       app       `yaml:"app"`
	Logger    logger    `yaml:"logger"`
	Backend   backend   `yaml:"backend"`
	Query     query     `yaml:"query"`
	Dashboard dashboard `yaml:"dashboard"`
	RateLimit ratelimit `yaml:"ratelimit"`
	Redis     redis     `yaml:"redis"`
	DB        db        `yaml:"db"`
	Scheduler scheduler `yaml:"scheduler"`
}

// ParseConfig rejects keys Config does not know, so a misspelled key in the
// file fails instead of silently keeping its default.
func ParseConfig(file []byte) (*Config, error) {
	contents := &Config{}
	decoder := yaml.NewDecoder(bytes.NewReader(file))
	decoder.KnownFields(true)
	if err := decoder.Decode(contents); err != nil && !errors.Is(err, io.EOF) {
		return contents, err
	}
	return contents, nil
}

// Load reads the merged settings (defaults, file, env) into a Config.
func Load(k *koanf.Koanf) (*Config, error) {
	contents := &Config{}
	err := k.UnmarshalWithConf("", contents, koanf.UnmarshalConf{Tag: "yaml"})
	return contents, err
}

func (c *Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.url %q is not an absolute url", c.Backend.URL))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, errors.New("backend.timeout must be positive"))
	}
	if c.Query.StaleTime < 0 || c.Query.CacheTime < 0 {
		errs = append(errs, errors.New("query.stale-time and query.cache-time must not be negative"))
	}
	if c.Query.Retry < 0 {
		errs = append(errs, errors.New("query.retry must not be negative"))
	}
	switch strings.ToLower(strings.TrimSpace(c.Dashboard.ChainFilterMode)) {
	case "include", "exclude":
	default:
		errs = append(errs, fmt.Errorf("dashboard.chain-filter-mode %q must be include or exclude", c.Dashboard.ChainFilterMode))
	}
	if c.RateLimit.Enable && c.RateLimit.Interval <= 0 {
		errs = append(errs, errors.New("ratelimit.interval must be positive"))
	}
	if c.DB.Enable && c.DB.Postgres.DSN == "" {
		errs = append(errs, errors.New("db.postgres.dsn is required when db.enable is set"))
	}
	return errors.Join(errs...)
}

// ReadAndParseConfig reads filename from the repository config directory, or
// from the given path when debug is set.
func ReadAndParseConfig(filename string, debug ...bool) (*Config, error) {
	var (
		file []byte
		err  error
	)

	if len(debug) > 0 {
		file, err = os.ReadFile(filename)
	} else {
		_, b, _, _ := runtime.Caller(0)
		path := filepath.Dir(filepath.Dir(filepath.Dir(b)))
		file, err = os.ReadFile(filepath.Join(path, "./config/", filename))
	}

	if err != nil {
		return &Config{}, err
	}

	return ParseConfig(file)
}

// func to parse address
func ParseAddress(raw string) (hostname, port string) {
	if i := strings.LastIndex(raw, ":"); i >= 0 {
		return raw[:i], raw[i+1:]
	}

	return raw, ""
}
