// Package config loads the confirmation service configuration.
//
// Settings are read from environment variables with cleanenv struct tags;
// binaries load a .env file with godotenv first. Load reads and validates
// everything in one call:
//
//	cfg, err := config.Load()
//	if err != nil {
//		slog.Error("Invalid configuration", "err", err)
//		os.Exit(1)
//	}
//
// # Variables
//
//	APP_ENV                   development, staging, production or test (development)
//	CONFIRM_TTL_DAYS          key lifetime in days (3)
//	CONFIRM_REDIRECT_URL      landing page for signed-in users (/)
//	CONFIRM_LOGIN_URL         login page for anonymous visitors (/login)
//	CONFIRM_UNIQUE_EMAIL      one account per confirmed email (true)
//	CONFIRM_DOMAIN_STRATEGY   site or static (site)
//	CONFIRM_STATIC_DOMAIN     host used when the strategy is static
//	CONFIRM_URL_SCHEME        http or https (http)
//	CONFIRM_PATH_PREFIX       mount point of the confirmation routes
//	SITE_ID, SITE_DOMAIN, SITE_NAME
//	CONFIRM_PERSISTENCE       postgres, sqlite, file or memory (postgres)
//	CONFIRM_SQLITE_PATH, CONFIRM_DATA_DIR, CONFIRM_PG_*
//	EMAIL_TRANSPORT           smtp or sendgrid (smtp)
//	EMAIL_HOST, EMAIL_PORT, EMAIL_USERNAME, EMAIL_PASSWORD, EMAIL_FROM, EMAIL_TLS
//	SENDGRID_API_KEY
//	JWT_SECRET, FLASH_SECRET, COOKIE_SECURE
//
// # Validation
//
// Validate reports every rejected setting at once as ValidationErrors.
// In production it also refuses the development JWT secret, a flash key
// equal to it, and cookies without the Secure flag; COOKIE_SECURE defaults
// to true there.
package config
