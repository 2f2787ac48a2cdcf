// Package config loads the server configuration from defaults, an optional
// JSON file, and PEAKFORM_-prefixed environment variables, in that order of
// precedence (later wins).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PEAKFORM_"

type Config struct {
	Debug    bool     `koanf:"debug"`
	Server   Server   `koanf:"server"`
	Database Database `koanf:"database"`
	Auth     Auth     `koanf:"auth"`
	SMTP     SMTP     `koanf:"smtp"`
	Redis    Redis    `koanf:"redis"`
}

type Server struct {
	Addr        string `koanf:"addr"`
	CORSOrigins string `koanf:"cors_origins"`
	RateLimit   int    `koanf:"rate_limit"`
}

type Database struct {
	// Driver is sqlite or postgres.
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
	// Bootstrap creates missing tables on startup. Dev convenience only.
	Bootstrap bool `koanf:"bootstrap"`
}

type Auth struct {
	SigningKey      string `koanf:"signing_key"`
	Issuer          string `koanf:"issuer"`
	CookieName      string `koanf:"cookie_name"`
	SignInPath      string `koanf:"sign_in_path"`
	DefaultRedirect string `koanf:"default_redirect"`
	// BaseURL prefixes links embedded in outbound email.
	BaseURL string `koanf:"base_url"`
	// Durations are expressions like "24h" or "45m".
	SessionTTLExpression      string `koanf:"session_ttl"`
	VerificationTTLExpression string `koanf:"verification_ttl"`
}

type SMTP struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

type Redis struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

func defaults() map[string]any {
	return map[string]any{
		"debug":                 false,
		"server.addr":           ":8080",
		"server.cors_origins":   "*",
		"server.rate_limit":     60,
		"database.driver":       "sqlite",
		"database.dsn":          "file:peakform.db?cache=shared",
		"database.bootstrap":    false,
		"auth.issuer":           "peakform",
		"auth.cookie_name":      "peakform_session",
		"auth.sign_in_path":     "/login",
		"auth.default_redirect": "/dashboard",
		"auth.base_url":         "http://localhost:8080",
		"auth.session_ttl":      "24h",
		"auth.verification_ttl": "48h",
		"smtp.port":             587,
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load config defaults")
	}

	if path != "" {
		if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load config file").
				WithMetadata(map[string]any{"path": path})
		}
	}

	// PEAKFORM_AUTH__SIGNING_KEY -> auth.signing_key
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load config environment")
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.SigningKey == "" {
		return errors.New("auth.signing_key is required", errors.CategoryValidation)
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return errors.New("database.driver must be sqlite or postgres", errors.CategoryValidation).
			WithMetadata(map[string]any{"driver": c.Database.Driver})
	}
	// fail at boot, not at the first login
	if _, err := time.ParseDuration(c.Auth.SessionTTLExpression); err != nil {
		return errors.New("auth.session_ttl must be a duration expression", errors.CategoryValidation).
			WithMetadata(map[string]any{"session_ttl": c.Auth.SessionTTLExpression})
	}
	if _, err := time.ParseDuration(c.Auth.VerificationTTLExpression); err != nil {
		return errors.New("auth.verification_ttl must be a duration expression", errors.CategoryValidation).
			WithMetadata(map[string]any{"verification_ttl": c.Auth.VerificationTTLExpression})
	}
	return nil
}

func (a Auth) GetSessionTTL() time.Duration {
	return mustDuration(a.SessionTTLExpression)
}

func (a Auth) GetVerificationTTL() time.Duration {
	return mustDuration(a.VerificationTTLExpression)
}

func mustDuration(expr string) time.Duration {
	dur, err := time.ParseDuration(expr)
	if err != nil {
		panic(fmt.Sprintf("unable to parse time: expr %s", expr))
	}
	return dur
}
