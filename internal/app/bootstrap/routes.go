// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	apistatsfeature "github.com/dalemusser/stratasite/internal/app/features/apistats"
	auditlogfeature "github.com/dalemusser/stratasite/internal/app/features/auditlog"
	contactfeature "github.com/dalemusser/stratasite/internal/app/features/contact"
	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	healthfeature "github.com/dalemusser/stratasite/internal/app/features/health"
	imagesfeature "github.com/dalemusser/stratasite/internal/app/features/images"
	ledgerfeature "github.com/dalemusser/stratasite/internal/app/features/ledger"
	loginfeature "github.com/dalemusser/stratasite/internal/app/features/login"
	logoutfeature "github.com/dalemusser/stratasite/internal/app/features/logout"
	mediafeature "github.com/dalemusser/stratasite/internal/app/features/media"
	navigationfeature "github.com/dalemusser/stratasite/internal/app/features/navigation"
	pagesfeature "github.com/dalemusser/stratasite/internal/app/features/pages"
	profilefeature "github.com/dalemusser/stratasite/internal/app/features/profile"
	registerfeature "github.com/dalemusser/stratasite/internal/app/features/register"
	reservationsfeature "github.com/dalemusser/stratasite/internal/app/features/reservations"
	servicesfeature "github.com/dalemusser/stratasite/internal/app/features/services"
	settingsfeature "github.com/dalemusser/stratasite/internal/app/features/settings"
	settingsapifeature "github.com/dalemusser/stratasite/internal/app/features/settingsapi"
	apistatsstore "github.com/dalemusser/stratasite/internal/app/store/apistats"
	"github.com/dalemusser/stratasite/internal/app/store/audit"
	ledgerstore "github.com/dalemusser/stratasite/internal/app/store/ledger"
	"github.com/dalemusser/stratasite/internal/app/store/ratelimit"
	settingsstore "github.com/dalemusser/stratasite/internal/app/store/settings"
	userstore "github.com/dalemusser/stratasite/internal/app/store/users"
	"github.com/dalemusser/stratasite/internal/app/system/apicors"
	apistatsystem "github.com/dalemusser/stratasite/internal/app/system/apistats"
	"github.com/dalemusser/stratasite/internal/app/system/auditlog"
	"github.com/dalemusser/stratasite/internal/app/system/auth"
	"github.com/dalemusser/stratasite/internal/app/system/contactsync"
	"github.com/dalemusser/stratasite/internal/app/system/contentops"
	"github.com/dalemusser/stratasite/internal/app/system/imageupload"
	"github.com/dalemusser/stratasite/internal/app/system/ledger"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// Kept so Shutdown can flush pending background writes.
var (
	statsRecorder *apistatsystem.Recorder
	requestLedger *ledger.Ledger
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// # Route layout
//
// The public site API lives under /api and is open to the front end with
// permissive (or configured) CORS. The back office lives under /api/admin
// and requires either an admin session or the configured Bearer API key.
// Uploaded images are served under /images and health probes under /health.
//
// Every /api path is exempt from CSRF: the admin front end sends JSON with
// a SameSite=Lax session cookie, and key-authenticated clients carry no
// cookie at all.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(auth.SessionOptions{
		Key:        appCfg.SessionKey,
		CookieName: appCfg.SessionName,
		Domain:     appCfg.SessionDomain,
		MaxAge:     appCfg.SessionMaxAge,
		Secure:     secure,
	}, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser fetches fresh user data on each request so deleted
	// or demoted accounts lose access immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase, logger))

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	// Create audit store and logger for security event tracking.
	auditStore := audit.New(deps.MongoDatabase)
	auditLogger := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	// API statistics for the public endpoints (nil recorder when disabled).
	apiStatsStore := apistatsstore.New(deps.MongoDatabase)
	statsRecorder = nil
	if appCfg.APIStatsEnabled {
		statsRecorder = apistatsystem.NewRecorder(apiStatsStore, logger, appCfg.APIStatsBucket)
	}

	// Request ledger for failed public API calls (nil when disabled).
	requestLedger = nil
	if appCfg.LedgerEnabled {
		requestLedger = ledger.New(ledger.DefaultConfig(ledgerstore.New(deps.MongoDatabase), logger))
	}

	// Content services shared by the public and admin page routes.
	syncer := contactsync.New(deps.MongoDatabase, logger)
	content := contentops.New(deps.MongoDatabase, syncer, logger)
	uploader := imageupload.New(deps.FileStorage, logger)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	// Request ids tag error logs and ledger entries.
	r.Use(chimw.RequestID)

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Session middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// CSRF protection with a path-based exemption for the JSON API.
	// Cookie name is "stratasite_csrf" to avoid collisions with other
	// services on the same domain.
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("stratasite_csrf"),
		csrf.FieldName("csrf_token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			http.Error(w, "CSRF token invalid or missing", http.StatusForbidden)
		})),
	}
	if !secure {
		// Trust the local front-end dev servers.
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"localhost:5173",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
			"127.0.0.1:5173",
		}))
	}
	if appCfg.SessionDomain != "" {
		csrfOpts = append(csrfOpts, csrf.Domain(appCfg.SessionDomain))
	}
	csrfProtect := csrf.Protect([]byte(appCfg.CSRFKey), csrfOpts...)
	r.Use(func(next http.Handler) http.Handler {
		csrfHandler := csrfProtect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if isAPIPath(req.URL.Path) {
				next.ServeHTTP(w, req)
				return
			}
			csrfHandler.ServeHTTP(w, req)
		})
	})

	// ─────────────────────────────────────────────────────────────────────────────
	// Handlers
	// ─────────────────────────────────────────────────────────────────────────────

	var loginLimiter, contactLimiter *ratelimit.Store
	if appCfg.RateLimitEnabled {
		loginLimiter = ratelimit.New(
			deps.MongoDatabase,
			ratelimit.ScopeLogin,
			appCfg.RateLimitLoginAttempts,
			appCfg.RateLimitLoginWindow,
			appCfg.RateLimitLoginLockout,
		)
		contactLimiter = ratelimit.New(
			deps.MongoDatabase,
			ratelimit.ScopeContact,
			appCfg.RateLimitContactPerIP,
			appCfg.RateLimitContactWindow,
			appCfg.RateLimitContactLockout,
		)
	}

	pagesHandler := pagesfeature.NewHandler(content, syncer, errLog, auditLogger, logger)
	navigationHandler := navigationfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	settingsAPIHandler := settingsapifeature.NewHandler(deps.MongoDatabase, errLog, logger)
	settingsHandler := settingsfeature.NewHandler(deps.MongoDatabase, syncer, uploader, errLog, auditLogger, logger)
	servicesHandler := servicesfeature.NewHandler(deps.MongoDatabase, errLog, auditLogger, logger)
	reservationsHandler := reservationsfeature.NewHandler(deps.MongoDatabase, deps.Mailer, errLog, auditLogger, logger)
	contactHandler := contactfeature.NewHandler(deps.MongoDatabase, contactLimiter, deps.Mailer, errLog, logger)
	mediaHandler := mediafeature.NewHandler(deps.MongoDatabase, uploader, errLog, auditLogger, logger)
	registerHandler := registerfeature.NewHandler(deps.MongoDatabase, errLog, auditLogger, logger)
	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, loginLimiter, errLog, auditLogger, logger)
	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLogger, logger)
	profileHandler := profilefeature.NewHandler(deps.MongoDatabase, errLog, logger)
	auditLogHandler := auditlogfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	ledgerHandler := ledgerfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	apistatsHandler := apistatsfeature.NewHandler(apiStatsStore, statsRecorder, errLog, auditLogger, logger)

	// ─────────────────────────────────────────────────────────────────────────────
	// Public site API
	// ─────────────────────────────────────────────────────────────────────────────
	r.Route("/api", func(api chi.Router) {
		if len(appCfg.CORSOrigins) > 0 {
			api.Use(apicors.MiddlewareWithOrigins(appCfg.CORSOrigins...))
		} else {
			api.Use(apicors.Middleware())
		}

		tracked := func(t apistatsstore.StatType, h http.Handler) http.Handler {
			return apistatsystem.Middleware(statsRecorder, t)(h)
		}

		api.Group(func(pub chi.Router) {
			// Failed public requests are kept for the back office.
			pub.Use(requestLedger.Middleware)

			pub.Mount("/pages", tracked(apistatsstore.StatTypePages, pagesfeature.PublicRoutes(pagesHandler)))
			pub.Mount("/navigation", tracked(apistatsstore.StatTypeNavigation, navigationfeature.Routes(navigationHandler)))
			pub.Mount("/settings", tracked(apistatsstore.StatTypeSettings, settingsapifeature.Routes(settingsAPIHandler)))
			pub.Mount("/services", tracked(apistatsstore.StatTypeServices, servicesfeature.PublicRoutes(servicesHandler)))
			pub.Mount("/reservation-requests", tracked(apistatsstore.StatTypeReservations, reservationsfeature.PublicRoutes(reservationsHandler)))
			pub.Mount("/contact", tracked(apistatsstore.StatTypeContact, contactfeature.Routes(contactHandler)))
			pub.Mount("/media", tracked(apistatsstore.StatTypeMedia, mediafeature.PublicRoutes(mediaHandler)))

			// Authentication
			pub.Mount("/register", registerfeature.Routes(registerHandler))
			pub.Mount("/login", loginfeature.Routes(loginHandler))
			pub.Mount("/logout", logoutfeature.Routes(logoutHandler))
		})

		// ─────────────────────────────────────────────────────────────────────
		// Back office (admin session or Bearer API key)
		// ─────────────────────────────────────────────────────────────────────
		api.Route("/admin", func(ar chi.Router) {
			ar.Use(sessionMgr.RequireRoleOrAPIKey(appCfg.APIKey, "admin"))
			ar.Mount("/me", profilefeature.Routes(profileHandler))
			ar.Mount("/pages", pagesfeature.AdminRoutes(pagesHandler))
			ar.Mount("/settings", settingsfeature.Routes(settingsHandler))
			ar.Mount("/services", servicesfeature.AdminRoutes(servicesHandler))
			ar.Mount("/reservation-requests", reservationsfeature.AdminRoutes(reservationsHandler))
			ar.Mount("/media", mediafeature.AdminRoutes(mediaHandler))
			ar.Mount("/audit", auditlogfeature.Routes(auditLogHandler))
			ar.Mount("/ledger", ledgerfeature.Routes(ledgerHandler))
			if statsRecorder != nil {
				ar.Mount("/stats", apistatsfeature.Routes(apistatsHandler))
			}
		})
	})

	// Uploaded images. Local storage is served straight from disk.
	localDir := ""
	if appCfg.StorageType == "local" || appCfg.StorageType == "" {
		localDir = appCfg.StorageLocalPath
	}
	imagesHandler := imagesfeature.NewHandler(deps.FileStorage, localDir, logger)
	r.Mount(imagesfeature.Prefix, apistatsystem.Middleware(statsRecorder, apistatsstore.StatTypeImages)(imagesfeature.Routes(imagesHandler)))

	// Health check endpoints for load balancers and orchestrators.
	// A missing settings document degrades /health until content is seeded.
	settings := settingsstore.New(deps.MongoDatabase)
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger, healthfeature.Probe{
		Name: "site_settings",
		Check: func(ctx context.Context) error {
			ok, err := settings.Exists(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("site settings not initialized")
			}
			return nil
		},
	})
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// JSON 404/405 for unmatched routes
	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	return r, nil
}

// isAPIPath reports whether path belongs to the JSON API.
func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
