package app

import (
	"errors"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"60s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"45s"`
	RateLimit         int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	RedisAddr string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	UpstreamBaseURL     string        `envconfig:"UPSTREAM_BASE_URL" required:"true"`
	UpstreamToken       string        `envconfig:"UPSTREAM_TOKEN"`
	UpstreamTimeout     time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"30s"`
	UpstreamItemsPath   string        `envconfig:"UPSTREAM_ITEMS_PATH" default:"/billing-items"`
	UpstreamUpdatePath  string        `envconfig:"UPSTREAM_UPDATE_PATH" default:"/update-billing-item"`
	UpstreamNurseryPath string        `envconfig:"UPSTREAM_NURSERY_PATH" default:"/nursery-financial"`

	FilterStrict   bool   `envconfig:"FILTER_STRICT" default:"true"`
	FallbackUserID string `envconfig:"FALLBACK_USER_ID"`
	PageSize       int    `envconfig:"PAGE_SIZE" default:"50"`

	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`
	WarmCron     string `envconfig:"WARM_CRON" default:"*/15 * * * *"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.UpstreamBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("upstream base url must be an absolute url")
	}
	if c.PageSize <= 0 {
		return errors.New("page size must be positive")
	}
	if c.RateLimit <= 0 {
		return errors.New("rate limit must be positive")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
