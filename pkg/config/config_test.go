package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3*24*time.Hour, cfg.Confirmation.TTL())
	assert.True(t, cfg.Confirmation.UniqueEmail)
	assert.Equal(t, DomainStrategySite, cfg.Confirmation.DomainStrategy)
	assert.Equal(t, "/confirm/%s/", cfg.Confirmation.PathTemplate())
	assert.Equal(t, "postgres", cfg.Storage.Persistence)
	assert.Equal(t, EmailTransportSMTP, cfg.Email.Transport)
	assert.Equal(t, cfg.JWT.Secret, cfg.JWT.FlashSigningSecret())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIRM_TTL_DAYS", "7")
	t.Setenv("CONFIRM_UNIQUE_EMAIL", "false")
	t.Setenv("CONFIRM_DOMAIN_STRATEGY", "static")
	t.Setenv("CONFIRM_STATIC_DOMAIN", "accounts.example.org")
	t.Setenv("CONFIRM_PATH_PREFIX", "/email")
	t.Setenv("CONFIRM_PERSISTENCE", "sqlite")
	t.Setenv("CONFIRM_SQLITE_PATH", "/tmp/confirm.db")
	t.Setenv("CONFIRM_PG_PORT", "6543")
	t.Setenv("EMAIL_TRANSPORT", "sendgrid")
	t.Setenv("SENDGRID_API_KEY", "SG.test")
	t.Setenv("FLASH_SECRET", "flash-secret-0123456789")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7*24*time.Hour, cfg.Confirmation.TTL())
	assert.False(t, cfg.Confirmation.UniqueEmail)
	assert.Equal(t, "accounts.example.org", cfg.Confirmation.StaticDomain)
	assert.Equal(t, "/email/confirm/%s/", cfg.Confirmation.PathTemplate())
	assert.Equal(t, "sqlite", cfg.Storage.Persistence)
	assert.Equal(t, "/tmp/confirm.db", cfg.Storage.SQLitePath)
	assert.Equal(t, uint16(6543), cfg.Database.Port)
	assert.Equal(t, "SG.test", cfg.Email.ToSendGridConfig().APIKey)
	assert.Equal(t, "flash-secret-0123456789", cfg.JWT.FlashSigningSecret())
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero ttl", func(c *Config) { c.Confirmation.TTLDays = 0 }, "CONFIRM_TTL_DAYS"},
		{"unknown strategy", func(c *Config) { c.Confirmation.DomainStrategy = "dns" }, "CONFIRM_DOMAIN_STRATEGY"},
		{"static without domain", func(c *Config) { c.Confirmation.DomainStrategy = DomainStrategyStatic }, "CONFIRM_STATIC_DOMAIN"},
		{"bad scheme", func(c *Config) { c.Confirmation.URLScheme = "ftp" }, "CONFIRM_URL_SCHEME"},
		{"unknown store", func(c *Config) { c.Storage.Persistence = "redis" }, "CONFIRM_PERSISTENCE"},
		{"sendgrid without key", func(c *Config) { c.Email.Transport = EmailTransportSendGrid }, "SENDGRID_API_KEY"},
		{"bad from", func(c *Config) { c.Email.From = "nobody" }, "EMAIL_FROM"},
		{"short flash secret", func(c *Config) { c.JWT.FlashSecret = "short" }, "FLASH_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			var fields []string
			for _, e := range verrs {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		in   string
		want Environment
	}{
		{"production", Production},
		{"PROD", Production},
		{"stage", Staging},
		{"testing", Test},
		{"", Development},
		{"qa", Development},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseEnvironment(tt.in))
		})
	}
}

func TestLoadProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "prod-jwt-secret-0123456789")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.JWT.CookieSecure)
}

func TestLoadProductionRejectsUnsafeDefaults(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{"default jwt secret", map[string]string{}, "JWT_SECRET"},
		{"flash secret is the default", map[string]string{"JWT_SECRET": "prod-jwt-secret-0123456789", "FLASH_SECRET": DefaultJWTSecret}, "FLASH_SECRET"},
		{"insecure cookies", map[string]string{"JWT_SECRET": "prod-jwt-secret-0123456789", "COOKIE_SECURE": "false"}, "COOKIE_SECURE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", "production")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			var fields []string
			for _, e := range verrs {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestLoadDevelopmentAllowsDefaultSecret(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, DefaultJWTSecret, cfg.JWT.Secret)
	assert.False(t, cfg.JWT.CookieSecure)
}
