// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/sagov/internal/app/system/timeouts"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework side (ports, TLS, log level, CORS); everything about the site,
// the intranet and newsletter delivery lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: sagov-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration
	CSRFKey       string // blank outside prod means a per-process random key

	SiteName string
	BaseURL  string

	// Newsletter delivery
	UnsubscribeURL      string        // absolute link appended to every message
	NewsletterSignature string        // blank uses the built-in signature
	DispatchPace        time.Duration // pause between recipients
	DispatchSimulation  bool          // allow sends while Discord is disabled
	SubscribeRateLimit  int           // public form posts per IP per window

	// Public page cache
	PageCacheSize int
	PageCacheTTL  time.Duration

	Timeouts timeouts.Config

	// First admin account, created only when no admin exists
	SeedAdminUsername string
	SeedAdminPassword string

	// Journal destinations per category ("all", "db", "log", "off") and
	// how long stored events are kept.
	AuditLogAuth       string
	AuditLogAdmin      string
	AuditLogNewsletter string
	AuditRetention     time.Duration
	AuditPruneInterval time.Duration

	MetricsEnabled bool
}
