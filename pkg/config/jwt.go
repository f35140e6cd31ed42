package config

// DefaultJWTSecret is the development secret; Validate rejects it in production
const DefaultJWTSecret = "very-secure-jwt-secret"

// JWTConfig holds the secrets used to read the viewer's access token and sign flash cookies
type JWTConfig struct {
	Secret       string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	FlashSecret  string `env:"FLASH_SECRET" env-default:""`
	CookieSecure bool   `env:"COOKIE_SECURE" env-default:"false"`
}

// FlashSigningSecret returns FLASH_SECRET, falling back to the JWT secret
func (j JWTConfig) FlashSigningSecret() string {
	if j.FlashSecret != "" {
		return j.FlashSecret
	}
	return j.Secret
}
