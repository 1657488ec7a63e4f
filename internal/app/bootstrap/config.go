// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/sagov/internal/app/system/auditlog"
	"github.com/dalemusser/sagov/internal/app/system/dispatch"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the government site.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: SAGOV_MONGO_URI, SAGOV_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "sagov", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size (default: 5)"},

	// Sessions and CSRF
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "sagov-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session lifetime as a Go duration (e.g., 12h, 168h)"},
	{Name: "csrf_key", Default: "", Desc: "32+ byte CSRF key (blank generates a per-process key outside prod)"},

	// Site
	{Name: "site_name", Default: "Gouvernement de San Andreas", Desc: "Site name shown in page headers"},
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Public base URL of the site"},

	// Newsletter delivery
	{Name: "unsubscribe_url", Default: "http://localhost:3000/newsletter/unsubscribe", Desc: "Absolute unsubscribe link appended to every newsletter"},
	{Name: "newsletter_signature", Default: "", Desc: "Signature block appended to newsletters (blank uses the built-in one)"},
	{Name: "dispatch_pace", Default: "1s", Desc: "Pause between two newsletter recipients"},
	{Name: "dispatch_simulation", Default: false, Desc: "Allow sends while Discord delivery is disabled; recipients are simulated"},
	{Name: "subscribe_rate_limit", Default: 5, Desc: "Public subscribe/unsubscribe posts allowed per IP per 10 minutes"},

	// Page cache
	{Name: "page_cache_size", Default: 64, Desc: "Number of public pages kept in memory"},
	{Name: "page_cache_ttl", Default: "5m", Desc: "How long a cached public page stays fresh"},

	// Handler timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Budget for single-document database calls"},
	{Name: "timeout_medium", Default: "10s", Desc: "Budget for multi-step database work"},
	{Name: "timeout_long", Default: "30s", Desc: "Budget for schema setup and seeding"},

	// First admin account
	{Name: "seed_admin_username", Default: "admin", Desc: "Username of the admin created when none exists (blank disables)"},
	{Name: "seed_admin_password", Default: "", Desc: "Password of the seeded admin (blank disables)"},

	// Journal
	{Name: "audit_log_auth", Default: "all", Desc: "Sign-in events: all, db, log or off"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin actions: all, db, log or off"},
	{Name: "audit_log_newsletter", Default: "all", Desc: "Newsletter sends: all, db, log or off"},
	{Name: "audit_retention", Default: "2160h", Desc: "How long journal events are kept (0 keeps them forever)"},
	{Name: "audit_prune_interval", Default: "1h", Desc: "How often expired journal events are removed"},

	{Name: "metrics_enabled", Default: true, Desc: "Expose Prometheus metrics on /metrics"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, SAGOV_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SAGOV", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),
		CSRFKey:       appValues.String("csrf_key"),

		SiteName: appValues.String("site_name"),
		BaseURL:  appValues.String("base_url"),

		UnsubscribeURL:      appValues.String("unsubscribe_url"),
		NewsletterSignature: appValues.String("newsletter_signature"),
		DispatchPace:        appValues.Duration("dispatch_pace", dispatch.DefaultPace),
		DispatchSimulation:  appValues.Bool("dispatch_simulation"),
		SubscribeRateLimit:  appValues.Int("subscribe_rate_limit"),

		PageCacheSize: appValues.Int("page_cache_size"),
		PageCacheTTL:  appValues.Duration("page_cache_ttl", 5*time.Minute),

		Timeouts: timeouts.Config{
			Short:  appValues.Duration("timeout_short", timeouts.DefaultShort),
			Medium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
			Long:   appValues.Duration("timeout_long", timeouts.DefaultLong),
		},

		SeedAdminUsername: appValues.String("seed_admin_username"),
		SeedAdminPassword: appValues.String("seed_admin_password"),

		AuditLogAuth:       appValues.String("audit_log_auth"),
		AuditLogAdmin:      appValues.String("audit_log_admin"),
		AuditLogNewsletter: appValues.String("audit_log_newsletter"),
		AuditRetention:     appValues.Duration("audit_retention", 90*24*time.Hour),
		AuditPruneInterval: appValues.Duration("audit_prune_interval", time.Hour),

		MetricsEnabled: appValues.Bool("metrics_enabled"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is checked here so a typo fails before any connection
// attempt.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must not be empty")
	}
	if appCfg.DispatchPace <= 0 {
		return fmt.Errorf("dispatch_pace must be positive, got %s", appCfg.DispatchPace)
	}
	if !urlutil.IsValidAbsHTTPURL(appCfg.UnsubscribeURL) {
		return fmt.Errorf("unsubscribe_url must be an absolute http(s) URL, got %q", appCfg.UnsubscribeURL)
	}
	if appCfg.SubscribeRateLimit < 1 {
		return fmt.Errorf("subscribe_rate_limit must be at least 1")
	}
	for key, v := range map[string]string{
		"audit_log_auth":       appCfg.AuditLogAuth,
		"audit_log_admin":      appCfg.AuditLogAdmin,
		"audit_log_newsletter": appCfg.AuditLogNewsletter,
	} {
		switch v {
		case "", auditlog.All, auditlog.DB, auditlog.Log, auditlog.Off:
		default:
			return fmt.Errorf("%s must be all, db, log or off, got %q", key, v)
		}
	}
	if appCfg.AuditRetention < 0 {
		return fmt.Errorf("audit_retention must not be negative")
	}
	if appCfg.AuditRetention > 0 && appCfg.AuditPruneInterval <= 0 {
		return fmt.Errorf("audit_prune_interval must be positive")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.CSRFKey) < 32 {
		return errCSRFKey
	}
	return nil
}

var errCSRFKey = fmt.Errorf("csrf_key must be at least 32 characters in production")
