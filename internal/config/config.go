package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/joho/godotenv"
)

// Config is the runtime configuration shared by linkboard and linkctl
type Config struct {
	Port              string
	APIBaseURL        string
	PublicOrigin      string
	Env               string
	RedisAddr         string
	RedisPassword     string
	RateLimit         int
	SessionTTL        time.Duration
	MaxSessions       int
	ToastTTL          time.Duration
	HTTPClientTimeout time.Duration
	ServerTimeout     time.Duration
	SentryDSN         string
	APIToken          string
}

// setting binds an environment variable to its key in the optional config
// file and its default.
type setting struct {
	env string
	key string
	def string
}

var portPattern = regexp.MustCompile(`^[0-9]{1,5}$`)

var settings = []setting{
	{"PORT", "port", "3001"},
	{"API_BASE_URL", "api_base_url", "http://localhost:8081/api"},
	{"PUBLIC_ORIGIN", "public_origin", "http://localhost:3001"},
	{"APP_ENV", "app_env", "local"},
	{"REDIS_ADDR", "redis_addr", ""},
	{"REDIS_PASSWORD", "redis_password", ""},
	{"RATE_LIMIT", "rate_limit", "60"},
	{"SESSION_TTL", "session_ttl", "30m"},
	{"MAX_SESSIONS", "max_sessions", "10000"},
	{"TOAST_TTL", "toast_ttl", "5s"},
	{"HTTP_CLIENT_TIMEOUT", "http_client_timeout", "0"},
	{"SERVER_TIMEOUT", "server_timeout", "0"},
	{"SENTRY_DSN", "sentry_dsn", ""},
	{"API_TOKEN", "api_token", ""},
}

// getEnv retrieves an environment variable or returns the default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Load reads .env (when present), then the YAML or JSON file at path (when
// path is not empty), then the environment. Later sources win.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	fromFile := map[string]string{}
	if path != "" {
		var err error
		if fromFile, err = readFile(path); err != nil {
			return nil, err
		}
	}

	raw := make(map[string]string, len(settings))
	for _, s := range settings {
		def := s.def
		if v, ok := fromFile[s.key]; ok {
			def = v
		}
		raw[s.env] = getEnv(s.env, def)
	}

	return parse(raw)
}

// readFile loads a config file through kratos and flattens the known keys
func readFile(path string) (map[string]string, error) {
	c := config.New(config.WithSource(file.NewSource(path)))
	defer c.Close()

	if err := c.Load(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	values := make(map[string]string)
	for _, s := range settings {
		v, err := c.Value(s.key).String()
		if err != nil {
			continue
		}
		values[s.key] = v
	}
	return values, nil
}

func parse(raw map[string]string) (*Config, error) {
	cfg := &Config{
		Port:          raw["PORT"],
		APIBaseURL:    strings.TrimRight(raw["API_BASE_URL"], "/"),
		PublicOrigin:  strings.TrimRight(raw["PUBLIC_ORIGIN"], "/"),
		Env:           raw["APP_ENV"],
		RedisAddr:     raw["REDIS_ADDR"],
		RedisPassword: raw["REDIS_PASSWORD"],
		SentryDSN:     raw["SENTRY_DSN"],
		APIToken:      raw["API_TOKEN"],
	}

	var err error
	if cfg.RateLimit, err = strconv.Atoi(raw["RATE_LIMIT"]); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT value %q: %w", raw["RATE_LIMIT"], err)
	}
	if cfg.MaxSessions, err = strconv.Atoi(raw["MAX_SESSIONS"]); err != nil {
		return nil, fmt.Errorf("invalid MAX_SESSIONS value %q: %w", raw["MAX_SESSIONS"], err)
	}
	for _, d := range []struct {
		env string
		dst *time.Duration
	}{
		{"SESSION_TTL", &cfg.SessionTTL},
		{"TOAST_TTL", &cfg.ToastTTL},
		{"HTTP_CLIENT_TIMEOUT", &cfg.HTTPClientTimeout},
		{"SERVER_TIMEOUT", &cfg.ServerTimeout},
	} {
		if *d.dst, err = parseDuration(raw[d.env]); err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", d.env, raw[d.env], err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// parseDuration accepts Go durations and a bare "0"
func parseDuration(s string) (time.Duration, error) {
	if s == "0" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Match(portPattern)),
		validation.Field(&c.APIBaseURL, validation.Required, validation.By(httpURL)),
		validation.Field(&c.PublicOrigin, validation.Required, validation.By(httpURL)),
		validation.Field(&c.RateLimit, validation.Required, validation.Min(1)),
		validation.Field(&c.SessionTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.MaxSessions, validation.Required, validation.Min(1)),
		validation.Field(&c.ToastTTL, validation.Min(time.Duration(0))),
		validation.Field(&c.HTTPClientTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.ServerTimeout, validation.Min(time.Duration(0))),
	)
}

func httpURL(value interface{}) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an absolute http(s) URL")
	}
	return nil
}

// IsProduction reports whether APP_ENV selects production logging
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SecureCookies reports whether the public origin is served over HTTPS
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.PublicOrigin, "https://")
}

// Addr is the listen address for the web server
func (c *Config) Addr() string {
	return ":" + c.Port
}
