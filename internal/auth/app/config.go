package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	authhttp "github.com/campusid/auth/internal/auth/http"
	"github.com/campusid/auth/internal/auth/service"
	"github.com/campusid/auth/pkg/httpx"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Refresh registry backends.
const (
	RegistryMemory = "memory"
	RegistryRedis  = "redis"
	RegistrySQL    = "sql"
)

type Config struct {
	Env       string `yaml:"env"        env:"ENV"        env-default:"dev"`
	LogLevel  string `yaml:"log_level"  env:"LOG_LEVEL"  env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`

	Port        int      `yaml:"port"        env:"PORT"        env-default:"4000"`
	CORSOrigins []string `yaml:"cors_origin" env:"CORS_ORIGIN" env-default:"http://localhost:3000" env-separator:","`

	Token    TokenConfig    `yaml:"token"`
	Database DatabaseConfig `yaml:"database"`
	Registry RegistryConfig `yaml:"registry"`

	// SetupToken enables POST /api/auth/setup when non-empty.
	SetupToken string `yaml:"setup_token" env:"SETUP_TOKEN"`

	ShutdownGracePeriod  Duration `yaml:"shutdown_grace_period" env:"SHUTDOWN_GRACE_PERIOD" env-default:"10s"`
	HousekeepingInterval Duration `yaml:"housekeeping_interval" env:"HOUSEKEEPING_INTERVAL" env-default:"1h"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type TokenConfig struct {
	Secret        string   `yaml:"secret"         env:"JWT_SECRET"           env-default:"test_jwt_secret"`
	RefreshSecret string   `yaml:"refresh_secret" env:"REFRESH_TOKEN_SECRET"`
	AccessTTL     Duration `yaml:"expires_in"     env:"JWT_EXPIRES_IN"       env-default:"15m"`
	RefreshTTL    Duration `yaml:"refresh_expires_in" env:"REFRESH_EXPIRES_IN" env-default:"7d"`
	Issuer        string   `yaml:"issuer"         env:"JWT_ISSUER"           env-default:"campus-auth"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER"     env-default:"sqlite"`
	File   string `yaml:"file"   env:"DATABASE_FILE" env-default:"auth.db"`
	URL    string `yaml:"url"    env:"DATABASE_URL"`
}

type RegistryConfig struct {
	Backend       string `yaml:"backend"        env:"REGISTRY_BACKEND" env-default:"memory"`
	RedisAddr     string `yaml:"redis_addr"     env:"REDIS_ADDR"       env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db"       env:"REDIS_DB"         env-default:"0"`
}

// RateLimitConfig overrides the built-in limiter profiles. Unset fields keep
// the defaults.
type RateLimitConfig struct {
	Strict   httpx.RateLimitConfig `yaml:"strict"   env-prefix:"RATELIMIT_STRICT_"`
	Moderate httpx.RateLimitConfig `yaml:"moderate" env-prefix:"RATELIMIT_MODERATE_"`
	Lenient  httpx.RateLimitConfig `yaml:"lenient"  env-prefix:"RATELIMIT_LENIENT_"`
}

// Limits merges the overrides onto the router defaults.
func (c RateLimitConfig) Limits() authhttp.RateLimits {
	def := authhttp.DefaultRateLimits()
	return authhttp.RateLimits{
		Strict:   c.Strict.Or(def.Strict),
		Moderate: c.Moderate.Or(def.Moderate),
		Lenient:  c.Lenient.Or(def.Lenient),
	}
}

// LoadConfig reads the YAML file named by CONFIG_PATH when set, and the
// environment otherwise. Environment variables win over the file.
func LoadConfig() (Config, error) {
	var cfg Config

	var err error
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if cfg.Token.RefreshSecret == "" {
		cfg.Token.RefreshSecret = service.DeriveRefreshSecret(cfg.Token.Secret)
	}

	return cfg, cfg.Validate()
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}

// Validate checks enum values and, in production, refuses the development
// secrets.
func (c Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.File == "" {
			errs = append(errs, errors.New("DATABASE_FILE is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q: want sqlite or postgres", c.Database.Driver))
	}

	switch c.Registry.Backend {
	case RegistryMemory, RegistrySQL:
	case RegistryRedis:
		if c.Registry.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis registry"))
		}
	default:
		errs = append(errs, fmt.Errorf("REGISTRY_BACKEND %q: want memory, redis or sql", c.Registry.Backend))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.Token.AccessTTL <= 0 || c.Token.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if c.Token.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}

	if c.IsProduction() {
		refresh := c.Token.RefreshSecret
		if refresh == "" {
			refresh = service.DeriveRefreshSecret(c.Token.Secret)
		}
		switch {
		case c.Token.Secret == service.DefaultAccessSecret:
			errs = append(errs, errors.New("JWT_SECRET uses the development default"))
		case refresh == service.DefaultRefreshSecret:
			errs = append(errs, errors.New("REFRESH_TOKEN_SECRET uses the development default"))
		case refresh == c.Token.Secret:
			errs = append(errs, errors.New("JWT_SECRET and REFRESH_TOKEN_SECRET must differ"))
		}
	}

	return errors.Join(errs...)
}

// Duration is a time.Duration that also accepts a whole number of days,
// for example "7d".
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// SetValue implements cleanenv.Setter.
func (d *Duration) SetValue(s string) error {
	v, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	return d.SetValue(string(text))
}

// ParseDuration parses Go duration syntax or "<n>d".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
