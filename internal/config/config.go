// Package config loads LocalPress settings from an optional config file,
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned when the NewsData provider is selected
// without a credential. It is a startup error, never a per-request one.
var ErrMissingAPIKey = errors.New("NEWSDATA_API_KEY environment variable is required")

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	CMS      CMSConfig      `mapstructure:"cms"`
	News     NewsConfig     `mapstructure:"news"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP/MCP server configuration
type ServerConfig struct {
	HTTPAddr         string        `mapstructure:"http_addr"`
	MCPMode          bool          `mapstructure:"mcp_mode"`
	RateLimitDur     time.Duration `mapstructure:"rate_limit"`
	TipRateLimit     time.Duration `mapstructure:"tip_rate_limit"`
	RateLimitBackend string        `mapstructure:"rate_limit_backend"` // "memory" or "redis"
}

// CMSConfig selects and configures the content store.
type CMSConfig struct {
	Backend    string `mapstructure:"backend"` // "cosmic", "postgres" or "sqlite"
	BucketSlug string `mapstructure:"bucket_slug"`
	ReadKey    string `mapstructure:"read_key"`
	WriteKey   string `mapstructure:"write_key"`
	APIURL     string `mapstructure:"api_url"`
	SQLitePath string `mapstructure:"sqlite_path"`
	// EmailKey, when set, seals tipper email addresses before storage.
	EmailKey string `mapstructure:"email_key"`
}

// NewsConfig configures the external news provider.
type NewsConfig struct {
	Provider     string        `mapstructure:"provider"` // "newsdata" or "rss"
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	RSSSearchURL string        `mapstructure:"rss_search_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// CacheConfig controls caching of external provider responses.
type CacheConfig struct {
	Backend string        `mapstructure:"backend"` // "memory", "redis" or "none"
	TTL     time.Duration `mapstructure:"ttl"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

var defaults = map[string]interface{}{
	"server.http_addr":          ":8080",
	"server.mcp_mode":           false,
	"server.rate_limit":         time.Second,
	"server.tip_rate_limit":     30 * time.Second,
	"server.rate_limit_backend": "memory",
	"cms.backend":               "cosmic",
	"cms.api_url":               "https://api.cosmicjs.com/v3",
	"cms.sqlite_path":           "localpress.db",
	"news.provider":             "newsdata",
	"news.base_url":             "https://newsdata.io/api/1/news",
	"news.rss_search_url":       "https://news.google.com/rss/search?q={query}+when:{days}d&hl=en-US&gl=US&ceid=US:en",
	"news.timeout":              10 * time.Second,
	"cache.backend":             "memory",
	"cache.ttl":                 15 * time.Minute,
	"redis.addr":                "localhost:6379",
	"database.host":             "localhost",
	"database.port":             5432,
	"database.user":             "postgres",
	"database.password":         "postgres",
	"database.name":             "localpress",
	"database.sslmode":          "disable",
	"logging.level":             "info",
}

// envNames maps config keys to the environment variables that override them.
var envNames = map[string]string{
	"server.http_addr":          "HTTP_ADDR",
	"server.mcp_mode":           "MCP_MODE",
	"server.rate_limit":         "RATE_LIMIT",
	"server.tip_rate_limit":     "TIP_RATE_LIMIT",
	"server.rate_limit_backend": "RATE_LIMIT_BACKEND",
	"cms.backend":               "CMS_BACKEND",
	"cms.bucket_slug":           "COSMIC_BUCKET_SLUG",
	"cms.read_key":              "COSMIC_READ_KEY",
	"cms.write_key":             "COSMIC_WRITE_KEY",
	"cms.api_url":               "COSMIC_API_URL",
	"cms.sqlite_path":           "SQLITE_PATH",
	"cms.email_key":             "TIP_EMAIL_KEY",
	"news.provider":             "NEWS_PROVIDER",
	"news.api_key":              "NEWSDATA_API_KEY",
	"news.base_url":             "NEWSDATA_BASE_URL",
	"news.rss_search_url":       "RSS_SEARCH_URL",
	"news.timeout":              "NEWS_TIMEOUT",
	"cache.backend":             "CACHE_BACKEND",
	"cache.ttl":                 "CACHE_TTL",
	"redis.addr":                "REDIS_ADDR",
	"database.host":             "DB_HOST",
	"database.port":             "DB_PORT",
	"database.user":             "DB_USER",
	"database.password":         "DB_PASSWORD",
	"database.name":             "DB_NAME",
	"database.sslmode":          "DB_SSLMODE",
	"logging.level":             "LOG_LEVEL",
}

// NewViper returns a viper instance with defaults and environment bindings
// applied. configFile may be empty, in which case config.yaml is looked up
// in the usual places and its absence is not an error.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, env := range envNames {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
		v.AddConfigPath("$HOME/.config/localpress")
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return v, nil
}

// Load decodes the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.CMS.Backend = strings.ToLower(strings.TrimSpace(cfg.CMS.Backend))
	cfg.News.Provider = strings.ToLower(strings.TrimSpace(cfg.News.Provider))
	cfg.Server.RateLimitBackend = strings.ToLower(strings.TrimSpace(cfg.Server.RateLimitBackend))
	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))

	return &cfg, nil
}

// Validate reports configuration that would make the process unusable.
func (c *Config) Validate() error {
	switch c.CMS.Backend {
	case "cosmic":
		if c.CMS.BucketSlug == "" || c.CMS.ReadKey == "" {
			return errors.New("COSMIC_BUCKET_SLUG and COSMIC_READ_KEY are required for the cosmic backend")
		}
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown CMS backend %q", c.CMS.Backend)
	}

	switch c.News.Provider {
	case "newsdata":
		if strings.TrimSpace(c.News.APIKey) == "" {
			return ErrMissingAPIKey
		}
	case "rss":
		if !strings.Contains(c.News.RSSSearchURL, "{query}") {
			return errors.New("RSS_SEARCH_URL must contain a {query} placeholder")
		}
	default:
		return fmt.Errorf("unknown news provider %q", c.News.Provider)
	}

	switch c.Server.RateLimitBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown rate limit backend %q", c.Server.RateLimitBackend)
	}

	switch c.Cache.Backend {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	return nil
}

// DSN renders the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}
