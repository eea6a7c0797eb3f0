// Package config loads the server configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/sakif/peerhub/internal/auth"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the complete runtime configuration.
type Config struct {
	Port   int    `env:"PORT" envDefault:"8080"`
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"data/peerhub.db"`

	JWTSecret  string `env:"JWT_SECRET,required"`
	BcryptCost int    `env:"BCRYPT_COST" envDefault:"12"`

	FrontendURLs          []string `env:"FRONTEND_URLS" envDefault:"http://localhost:5173" envSeparator:","`
	AllowedOriginSuffixes []string `env:"ALLOWED_ORIGIN_SUFFIXES" envDefault:".vercel.app" envSeparator:","`

	PublicBaseURL  string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`

	S3     S3
	Google Google
}

// S3 configures the object-storage media store. An empty Bucket selects the
// database-backed store instead.
type S3 struct {
	Bucket    string `env:"S3_BUCKET"`
	Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	Endpoint  string `env:"S3_ENDPOINT"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	PublicURL string `env:"S3_PUBLIC_URL"`
	PathStyle bool   `env:"S3_PATH_STYLE" envDefault:"false"`
}

// Enabled reports whether a bucket is configured.
func (s S3) Enabled() bool { return s.Bucket != "" }

// Google configures the server-side OAuth2 flow.
type Google struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `env:"GOOGLE_REDIRECT_URL"`
}

// Enabled reports whether client credentials are present.
func (g Google) Enabled() bool { return g.ClientID != "" && g.ClientSecret != "" }

// Load reads the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads configuration from the given variables only.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.AppEnv = strings.ToLower(strings.TrimSpace(c.AppEnv))
	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat == "" {
		c.LogFormat = "text"
		if c.IsProduction() {
			c.LogFormat = "json"
		}
	}
	c.FrontendURLs = trimAll(c.FrontendURLs)
	c.AllowedOriginSuffixes = trimAll(c.AllowedOriginSuffixes)
	c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")
	if c.Google.RedirectURL == "" {
		c.Google.RedirectURL = c.PublicBaseURL + "/api/v1/auth/google/callback"
	}
}

// Validate checks cross-field constraints the struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.AppEnv != EnvDevelopment && c.AppEnv != EnvProduction {
		errs = append(errs, fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.AppEnv))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	if c.DatabaseDriver != DriverSQLite && c.DatabaseDriver != DriverPostgres {
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DatabaseDriver))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is empty"))
	}
	if len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 characters"))
	}
	if c.BcryptCost < auth.DefaultCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be at least %d, got %d", auth.DefaultCost, c.BcryptCost))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes))
	}
	if c.S3.Enabled() && c.S3.PublicURL == "" && c.S3.Endpoint == "" {
		errs = append(errs, errors.New("S3_PUBLIC_URL or S3_ENDPOINT is required when S3_BUCKET is set"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool { return c.AppEnv == EnvProduction }

// Addr is the listen address.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// SlogLevel converts LOG_LEVEL.
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// NewLogger builds the process logger writing to w: text in development,
// JSON when LOG_FORMAT is json.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// S3PublicBase is the URL prefix under which uploaded objects are served.
func (c *Config) S3PublicBase() string {
	if c.S3.PublicURL != "" {
		return strings.TrimRight(c.S3.PublicURL, "/")
	}
	return strings.TrimRight(c.S3.Endpoint, "/") + "/" + c.S3.Bucket
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
