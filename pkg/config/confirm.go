package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DomainStrategySite   = "site"
	DomainStrategyStatic = "static"
)

// ConfirmationConfig holds the confirmation engine and handler settings
type ConfirmationConfig struct {
	TTLDays        int    `env:"CONFIRM_TTL_DAYS" env-default:"3"`
	RedirectURL    string `env:"CONFIRM_REDIRECT_URL" env-default:"/"`
	LoginURL       string `env:"CONFIRM_LOGIN_URL" env-default:"/login"`
	UniqueEmail    bool   `env:"CONFIRM_UNIQUE_EMAIL" env-default:"true"`
	DomainStrategy string `env:"CONFIRM_DOMAIN_STRATEGY" env-default:"site"`
	StaticDomain   string `env:"CONFIRM_STATIC_DOMAIN" env-default:""`
	URLScheme      string `env:"CONFIRM_URL_SCHEME" env-default:"http"`
	PathPrefix     string `env:"CONFIRM_PATH_PREFIX" env-default:""`
}

// TTL returns the key lifetime
func (c ConfirmationConfig) TTL() time.Duration {
	return time.Duration(c.TTLDays) * 24 * time.Hour
}

// PathTemplate returns the confirmation link path with %s standing for the key
func (c ConfirmationConfig) PathTemplate() string {
	return c.PathPrefix + "/confirm/%s/"
}

// SiteConfig describes the site confirmation links point at
type SiteConfig struct {
	ID     int    `env:"SITE_ID" env-default:"1"`
	Domain string `env:"SITE_DOMAIN" env-default:"example.com"`
	Name   string `env:"SITE_NAME" env-default:"example.com"`
}

// StorageConfig selects and configures the confirmation store
type StorageConfig struct {
	Persistence   string `env:"CONFIRM_PERSISTENCE" env-default:"postgres"`
	SQLitePath    string `env:"CONFIRM_SQLITE_PATH" env-default:"confirm.db"`
	DataDir       string `env:"CONFIRM_DATA_DIR" env-default:"data"`
	MaxTxAttempts int    `env:"CONFIRM_PG_MAX_TX_ATTEMPTS" env-default:"5"`
}

// Config is the complete service configuration
type Config struct {
	Env          string `env:"APP_ENV" env-default:"development"`
	Confirmation ConfirmationConfig
	Site         SiteConfig
	Storage      StorageConfig
	Database     DatabaseConfig
	Email        EmailConfig
	JWT          JWTConfig
}

// Environment returns the parsed APP_ENV
func (c Config) Environment() Environment {
	return ParseEnvironment(c.Env)
}

// IsProduction reports whether APP_ENV names production
func (c Config) IsProduction() bool {
	return c.Environment() == Production
}

// Load reads the configuration from the environment and validates it.
// In production COOKIE_SECURE defaults to true.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if _, set := os.LookupEnv("COOKIE_SECURE"); !set && cfg.IsProduction() {
		cfg.JWT.CookieSecure = true
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.JWT.Secret == DefaultJWTSecret {
		slog.Warn("JWT_SECRET is the development default; viewer tokens and flash cookies can be forged", "env", cfg.Environment())
	}
	return cfg, nil
}

// Validate checks the configuration for values the service cannot run with
func (c Config) Validate() error {
	var v checks

	v.positive("CONFIRM_TTL_DAYS", c.Confirmation.TTLDays)
	v.nonEmpty("CONFIRM_REDIRECT_URL", c.Confirmation.RedirectURL)
	v.nonEmpty("CONFIRM_LOGIN_URL", c.Confirmation.LoginURL)
	v.oneOf("CONFIRM_URL_SCHEME", c.Confirmation.URLScheme, "http", "https")
	v.oneOf("CONFIRM_DOMAIN_STRATEGY", c.Confirmation.DomainStrategy, DomainStrategySite, DomainStrategyStatic)
	switch c.Confirmation.DomainStrategy {
	case DomainStrategyStatic:
		v.nonEmpty("CONFIRM_STATIC_DOMAIN", c.Confirmation.StaticDomain)
	case DomainStrategySite:
		v.nonEmpty("SITE_DOMAIN", c.Site.Domain)
	}

	v.oneOf("CONFIRM_PERSISTENCE", c.Storage.Persistence, "postgres", "postgresql", "sqlite", "file", "memory", "inmem")
	switch c.Storage.Persistence {
	case "postgres", "postgresql":
		v.port("CONFIRM_PG_PORT", c.Database.Port)
		v.positive("CONFIRM_PG_MAX_TX_ATTEMPTS", c.Storage.MaxTxAttempts)
	case "sqlite":
		v.nonEmpty("CONFIRM_SQLITE_PATH", c.Storage.SQLitePath)
	case "file":
		v.nonEmpty("CONFIRM_DATA_DIR", c.Storage.DataDir)
	}

	v.oneOf("EMAIL_TRANSPORT", c.Email.Transport, EmailTransportSMTP, EmailTransportSendGrid)
	v.address("EMAIL_FROM", c.Email.From)
	if c.Email.Transport == EmailTransportSendGrid {
		v.nonEmpty("SENDGRID_API_KEY", c.Email.SendGridAPIKey)
	} else {
		v.port("EMAIL_PORT", c.Email.Port)
	}

	v.nonEmpty("JWT_SECRET", c.JWT.Secret)
	v.minLength("FLASH_SECRET", c.JWT.FlashSigningSecret(), 16)

	if c.IsProduction() {
		if c.JWT.Secret == DefaultJWTSecret {
			v.fail("JWT_SECRET", "must be changed from the development default in production")
		}
		if c.JWT.FlashSigningSecret() == DefaultJWTSecret {
			v.fail("FLASH_SECRET", "must not be the development default in production")
		}
		if !c.JWT.CookieSecure {
			v.fail("COOKIE_SECURE", "must be true in production")
		}
	}

	return v.err()
}
