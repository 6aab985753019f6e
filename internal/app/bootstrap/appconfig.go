// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig carries what is specific to ProjectHub: the Mongo connection,
// cookie sessions, bearer tokens, password hashing, login throttling and
// handler timeouts.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: projecthub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Bearer tokens
	TokenKey string        // Secret for signing and encrypting tokens (≥32 chars)
	TokenTTL time.Duration // How long an issued token stays valid

	// Credentials
	BcryptCost int

	// Login throttling
	LoginRatePerMinute int
	LoginBurst         int
	TrustProxyHeaders  bool // take the client IP from X-Forwarded-For / X-Real-IP

	// Handler timeouts (zero keeps the package defaults)
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
}
