// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	agendafeature "github.com/dalemusser/sagov/internal/app/features/agenda"
	auditlogfeature "github.com/dalemusser/sagov/internal/app/features/auditlog"
	dashboardfeature "github.com/dalemusser/sagov/internal/app/features/dashboard"
	discordadminfeature "github.com/dalemusser/sagov/internal/app/features/discordadmin"
	editionfeature "github.com/dalemusser/sagov/internal/app/features/edition"
	errorsfeature "github.com/dalemusser/sagov/internal/app/features/errors"
	healthfeature "github.com/dalemusser/sagov/internal/app/features/health"
	loginfeature "github.com/dalemusser/sagov/internal/app/features/login"
	logoutfeature "github.com/dalemusser/sagov/internal/app/features/logout"
	newslettersfeature "github.com/dalemusser/sagov/internal/app/features/newsletters"
	orgchartfeature "github.com/dalemusser/sagov/internal/app/features/orgchart"
	resourcesfeature "github.com/dalemusser/sagov/internal/app/features/resources"
	sitefeature "github.com/dalemusser/sagov/internal/app/features/site"
	subscribersfeature "github.com/dalemusser/sagov/internal/app/features/subscribers"
	todofeature "github.com/dalemusser/sagov/internal/app/features/todo"
	usersfeature "github.com/dalemusser/sagov/internal/app/features/users"
	"github.com/dalemusser/sagov/internal/app/store/audit"
	discordconfigstore "github.com/dalemusser/sagov/internal/app/store/discordconfig"
	newsletterstore "github.com/dalemusser/sagov/internal/app/store/newsletters"
	pagestore "github.com/dalemusser/sagov/internal/app/store/pages"
	subscriberstore "github.com/dalemusser/sagov/internal/app/store/subscribers"
	userstore "github.com/dalemusser/sagov/internal/app/store/users"
	"github.com/dalemusser/sagov/internal/app/system/auditlog"
	"github.com/dalemusser/sagov/internal/app/system/auth"
	"github.com/dalemusser/sagov/internal/app/system/discord"
	"github.com/dalemusser/sagov/internal/app/system/dispatch"
	"github.com/dalemusser/sagov/internal/app/system/newsletter"
	"github.com/dalemusser/sagov/internal/app/system/pagecache"
	"github.com/dalemusser/sagov/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// subscribeWindow is the rate-limit window of the public newsletter forms.
const subscribeWindow = 10 * time.Minute

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It boots the template engine, applies
// the session and CSRF middleware, builds the newsletter delivery pipeline
// and mounts every feature router: the public site, the newsletter forms,
// authentication, and the intranet tools.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Reload the user on each request so role changes and deleted accounts
	// take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:       appCfg.AuditLogAuth,
		Admin:      appCfg.AuditLogAdmin,
		Newsletter: appCfg.AuditLogNewsletter,
	})

	// Public reads go through the cache; editors invalidate on write.
	pages := pagecache.New(pagestore.New(db), appCfg.PageCacheSize, appCfg.PageCacheTTL)

	// Newsletter delivery: Discord DMs, one recipient at a time.
	disp := dispatch.New(
		discord.Connector(&http.Client{Timeout: 15 * time.Second}),
		logger,
		dispatch.WithPace(appCfg.DispatchPace),
	)
	newsletterSvc := newsletter.NewService(
		newsletterstore.New(db),
		subscriberstore.New(db),
		discordconfigstore.New(db),
		disp,
		newsletter.Options{
			Signature:       appCfg.NewsletterSignature,
			UnsubscribeURL:  appCfg.UnsubscribeURL,
			AllowSimulation: appCfg.DispatchSimulation,
		},
		logger,
	)

	csrfKey, err := csrfKeyFor(appCfg, secure, logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	// Health check and metrics sit outside CSRF and sessions.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, db, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	if appCfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Group(func(r chi.Router) {
		if !secure {
			// gorilla/csrf assumes TLS unless told otherwise.
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					next.ServeHTTP(w, csrf.PlaintextHTTPRequest(req))
				})
			})
		}
		r.Use(csrf.Protect(csrfKey,
			csrf.Secure(secure),
			csrf.Path("/"),
			csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				errLog.LogForbidden(w, req, "csrf check failed", csrf.FailureReason(req),
					"Le formulaire a expiré. Rechargez la page et réessayez.", "/")
			})),
		))

		// Loads SessionUser into context when signed in.
		r.Use(sessionMgr.LoadSessionUser)

		// Public site
		siteHandler := sitefeature.NewHandler(pages, errLog, logger)
		r.Mount("/", sitefeature.Routes(siteHandler))

		subsHandler := subscribersfeature.NewHandler(db,
			ratelimit.NewFormLimiter(appCfg.SubscribeRateLimit, subscribeWindow), errLog, auditLog, logger)
		r.Mount("/newsletter", subscribersfeature.PublicRoutes(subsHandler))

		// Authentication
		loginHandler := loginfeature.NewHandler(db, sessionMgr, errLog, auditLog, logger)
		r.Mount("/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
		r.Mount("/logout", logoutfeature.Routes(logoutHandler))

		// Error pages
		errorsHandler := errorsfeature.NewHandler()
		r.Get("/forbidden", errorsHandler.Forbidden)
		r.Get("/unauthorized", errorsHandler.Unauthorized)
		r.NotFound(errorsHandler.NotFound)

		// Intranet
		r.Mount("/intranet/formulaires", sitefeature.FormsRoutes(siteHandler, sessionMgr))

		dashboardHandler := dashboardfeature.NewHandler(db, errLog, logger)
		r.Mount("/intranet", dashboardfeature.Routes(dashboardHandler, sessionMgr))

		editionHandler := editionfeature.NewHandler(db, pages, errLog, logger)
		r.Mount("/intranet/edition", editionfeature.Routes(editionHandler, sessionMgr))

		orgchartHandler := orgchartfeature.NewHandler(db, pages, errLog, logger)
		r.Mount("/intranet/organigramme", orgchartfeature.Routes(orgchartHandler, sessionMgr))

		todoHandler := todofeature.NewHandler(db, errLog, logger)
		r.Mount("/intranet/todo", todofeature.Routes(todoHandler, sessionMgr))

		agendaHandler := agendafeature.NewHandler(db, errLog, logger)
		r.Mount("/intranet/agenda", agendafeature.Routes(agendaHandler, sessionMgr))

		resourcesHandler := resourcesfeature.NewHandler(db, errLog, logger)
		r.Mount("/intranet/ressources", resourcesfeature.Routes(resourcesHandler, sessionMgr))

		newslettersHandler := newslettersfeature.NewHandler(db, newsletterSvc, appCfg.DispatchPace, errLog, auditLog, logger)
		r.Mount("/intranet/newsletter", newslettersfeature.Routes(newslettersHandler, sessionMgr))
		r.Mount("/intranet/newsletter/abonnes", subscribersfeature.AdminRoutes(subsHandler, sessionMgr))

		// Admin
		usersHandler := usersfeature.NewHandler(db, errLog, auditLog, logger)
		r.Mount("/intranet/admin/utilisateurs", usersfeature.Routes(usersHandler, sessionMgr))

		discordHandler := discordadminfeature.NewHandler(db, errLog, auditLog, logger)
		r.Mount("/intranet/admin/discord", discordadminfeature.Routes(discordHandler, sessionMgr))

		journalHandler := auditlogfeature.NewHandler(db, errLog, logger)
		r.Mount("/intranet/admin/journal", auditlogfeature.Routes(journalHandler, sessionMgr))
	})

	return r, nil
}

// csrfKeyFor returns the configured CSRF key. Outside production a blank
// key is replaced by a random one, which invalidates open forms on restart.
func csrfKeyFor(appCfg AppConfig, secure bool, logger *zap.Logger) ([]byte, error) {
	if len(appCfg.CSRFKey) >= 32 {
		return []byte(appCfg.CSRFKey)[:32], nil
	}
	if secure {
		return nil, errCSRFKey
	}
	logger.Warn("csrf_key not set; using a per-process key")
	return securecookie.GenerateRandomKey(32), nil
}
