package bootstrap

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dalemusser/stratasite/internal/app/features/images"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix prefixes every environment variable, e.g. STRATASITE_MONGO_URI.
// sitectl reads the same variables.
const EnvVarPrefix = "STRATASITE"

// Placeholder secrets for local runs. Production refuses them.
const (
	devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"
	devCSRFKey    = "dev-only-csrf-key-please-change-0123456789"
)

var (
	mongoKeys = []config.AppKey{
		{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
		{Name: "mongo_database", Default: "stratasite", Desc: "MongoDB database name"},
		{Name: "mongo_max_pool_size", Default: 100, Desc: "Largest MongoDB connection pool"},
		{Name: "mongo_min_pool_size", Default: 10, Desc: "Connections kept open when idle"},
	}

	sessionKeys = []config.AppKey{
		{Name: "session_key", Default: devSessionKey, Desc: "Session cookie signing key, 32+ random characters in production"},
		{Name: "session_name", Default: "stratasite-session", Desc: "Session cookie name"},
		{Name: "session_domain", Default: "", Desc: "Session cookie domain; empty uses the request host"},
		{Name: "session_max_age", Default: "24h", Desc: "Session lifetime"},
		{Name: "csrf_key", Default: devCSRFKey, Desc: "CSRF token signing key, 32+ characters in production"},
		{Name: "api_key", Default: "", Desc: "Bearer key accepted on /api/admin; empty disables key access"},
		{Name: "cors_origins", Default: "", Desc: "Comma-separated browser origins allowed on /api; empty allows any"},
	}

	rateLimitKeys = []config.AppKey{
		{Name: "rate_limit_enabled", Default: true, Desc: "Throttle failed logins and contact messages"},
		{Name: "rate_limit_login_attempts", Default: 5, Desc: "Failed logins per email before lockout"},
		{Name: "rate_limit_login_window", Default: "15m", Desc: "Window over which failed logins are counted"},
		{Name: "rate_limit_login_lockout", Default: "15m", Desc: "Login lockout length"},
		{Name: "rate_limit_contact_attempts", Default: 5, Desc: "Contact messages per IP per window"},
		{Name: "rate_limit_contact_window", Default: "1h", Desc: "Window over which contact messages are counted"},
		{Name: "rate_limit_contact_lockout", Default: "1h", Desc: "Contact block length once the limit is hit"},
	}

	storageKeys = []config.AppKey{
		{Name: "storage_type", Default: "local", Desc: "Image storage: local or s3"},
		{Name: "storage_local_path", Default: "./uploads", Desc: "Directory for uploaded images"},
		{Name: "storage_local_url", Default: images.Prefix, Desc: "URL prefix uploaded images are served under"},
		{Name: "storage_s3_region", Default: "", Desc: "S3 region"},
		{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket"},
		{Name: "storage_s3_prefix", Default: "uploads/", Desc: "S3 key prefix"},
		{Name: "storage_cf_url", Default: "", Desc: "CloudFront base URL in front of the bucket"},
		{Name: "storage_cf_keypair_id", Default: "", Desc: "CloudFront key pair id for signed URLs"},
		{Name: "storage_cf_key_path", Default: "", Desc: "CloudFront private key file"},
	}

	mailKeys = []config.AppKey{
		{Name: "mail_smtp_host", Default: "", Desc: "SMTP relay host; empty disables notification mail"},
		{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP relay port"},
		{Name: "mail_smtp_user", Default: "", Desc: "SMTP user"},
		{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
		{Name: "mail_from", Default: "noreply@helene-massage.fr", Desc: "Sender address of notifications"},
		{Name: "mail_from_name", Default: "Site Helene", Desc: "Sender display name"},
	}

	recordKeepingKeys = []config.AppKey{
		{Name: "audit_log_auth", Default: "all", Desc: "Sign-in events: all, db, log or off"},
		{Name: "audit_log_admin", Default: "all", Desc: "Back-office changes: all, db, log or off"},
		{Name: "audit_retention", Default: "8760h", Desc: "Age at which audit events are pruned; 0 keeps them"},
		{Name: "api_stats_enabled", Default: true, Desc: "Count public API requests"},
		{Name: "api_stats_bucket", Default: "1h", Desc: "Width of an API stats bucket"},
		{Name: "api_stats_retention", Default: "2160h", Desc: "Age at which API stats buckets are pruned"},
		{Name: "ledger_enabled", Default: true, Desc: "Keep a ledger of failed public API requests"},
		{Name: "ledger_retention", Default: "720h", Desc: "Age at which ledger entries are pruned"},
	}

	seedKeys = []config.AppKey{
		{Name: "seed_content", Default: true, Desc: "Create default settings, pages and services when missing"},
		{Name: "seed_admin_email", Default: "", Desc: "Create this admin at startup when no account uses the email"},
		{Name: "seed_admin_name", Default: "Admin", Desc: "Name of the seeded admin"},
		{Name: "seed_admin_password", Default: "", Desc: "Password of the seeded admin"},
	}

	appConfigKeys = slices.Concat(mongoKeys, sessionKeys, rateLimitKeys, storageKeys, mailKeys, recordKeepingKeys, seedKeys)
)

// ConfigKeys returns a copy of the application keys so tools outside the
// server lifecycle resolve the same settings.
func ConfigKeys() []config.AppKey {
	return slices.Clone(appConfigKeys)
}

// LoadConfig merges defaults, config files, STRATASITE_* variables and
// flags, in increasing precedence.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, v, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	return coreCfg, AppConfig{
		MongoURI:         v.String("mongo_uri"),
		MongoDatabase:    v.String("mongo_database"),
		MongoMaxPoolSize: uint64(v.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(v.Int("mongo_min_pool_size")),

		SessionKey:    v.String("session_key"),
		SessionName:   v.String("session_name"),
		SessionDomain: v.String("session_domain"),
		SessionMaxAge: v.Duration("session_max_age", 24*time.Hour),
		CSRFKey:       v.String("csrf_key"),
		APIKey:        v.String("api_key"),
		CORSOrigins:   splitList(v.String("cors_origins")),

		RateLimitEnabled:        v.Bool("rate_limit_enabled"),
		RateLimitLoginAttempts:  v.Int("rate_limit_login_attempts"),
		RateLimitLoginWindow:    v.Duration("rate_limit_login_window", 15*time.Minute),
		RateLimitLoginLockout:   v.Duration("rate_limit_login_lockout", 15*time.Minute),
		RateLimitContactPerIP:   v.Int("rate_limit_contact_attempts"),
		RateLimitContactWindow:  v.Duration("rate_limit_contact_window", time.Hour),
		RateLimitContactLockout: v.Duration("rate_limit_contact_lockout", time.Hour),

		StorageType:        v.String("storage_type"),
		StorageLocalPath:   v.String("storage_local_path"),
		StorageLocalURL:    v.String("storage_local_url"),
		StorageS3Region:    v.String("storage_s3_region"),
		StorageS3Bucket:    v.String("storage_s3_bucket"),
		StorageS3Prefix:    v.String("storage_s3_prefix"),
		StorageCFURL:       v.String("storage_cf_url"),
		StorageCFKeyPairID: v.String("storage_cf_keypair_id"),
		StorageCFKeyPath:   v.String("storage_cf_key_path"),

		MailSMTPHost: v.String("mail_smtp_host"),
		MailSMTPPort: v.Int("mail_smtp_port"),
		MailSMTPUser: v.String("mail_smtp_user"),
		MailSMTPPass: v.String("mail_smtp_pass"),
		MailFrom:     v.String("mail_from"),
		MailFromName: v.String("mail_from_name"),

		AuditLogAuth:      v.String("audit_log_auth"),
		AuditLogAdmin:     v.String("audit_log_admin"),
		AuditRetention:    v.Duration("audit_retention", 365*24*time.Hour),
		APIStatsEnabled:   v.Bool("api_stats_enabled"),
		APIStatsBucket:    v.Duration("api_stats_bucket", time.Hour),
		APIStatsRetention: v.Duration("api_stats_retention", 90*24*time.Hour),
		LedgerEnabled:     v.Bool("ledger_enabled"),
		LedgerRetention:   v.Duration("ledger_retention", 30*24*time.Hour),

		SeedContent:       v.Bool("seed_content"),
		SeedAdminEmail:    v.String("seed_admin_email"),
		SeedAdminName:     v.String("seed_admin_name"),
		SeedAdminPassword: v.String("seed_admin_password"),
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig aborts startup on a malformed Mongo URI or any problem
// found by validateAppConfig.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	err := errors.Join(
		wrapErr("mongo_uri", wafflemongo.ValidateURI(appCfg.MongoURI)),
		validateAppConfig(coreCfg.Env, appCfg),
	)
	if err != nil {
		logger.Error("invalid configuration", zap.Error(err))
	}
	return err
}

func wrapErr(key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", key, err)
}

var auditModes = []string{"all", "db", "log", "off"}

// validateAppConfig reports every problem at once, one joined error per
// failed check.
func validateAppConfig(env string, c AppConfig) error {
	var errs []error
	fail := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if env == "prod" {
		for key, secret := range map[string]struct{ val, dev string }{
			"session_key": {c.SessionKey, devSessionKey},
			"csrf_key":    {c.CSRFKey, devCSRFKey},
		} {
			if secret.val == secret.dev || len(secret.val) < 32 {
				fail("%s must be a strong secret of at least 32 characters in production", key)
			}
		}
	}

	switch c.StorageType {
	case "", "local":
		if c.StorageLocalURL != images.Prefix {
			fail("storage_local_url must be %q", images.Prefix)
		}
	case "s3":
		if c.StorageS3Bucket == "" {
			fail("storage_s3_bucket is required when storage_type is s3")
		}
	default:
		fail("unknown storage_type %q", c.StorageType)
	}

	if c.RateLimitEnabled {
		if c.RateLimitLoginAttempts <= 0 || c.RateLimitContactPerIP <= 0 {
			fail("rate limit attempts must be positive")
		}
		if min(c.RateLimitLoginWindow, c.RateLimitLoginLockout, c.RateLimitContactWindow, c.RateLimitContactLockout) <= 0 {
			fail("rate limit windows and lockouts must be positive")
		}
	}

	for key, mode := range map[string]string{"audit_log_auth": c.AuditLogAuth, "audit_log_admin": c.AuditLogAdmin} {
		if !slices.Contains(auditModes, mode) {
			fail("%s must be one of %s", key, strings.Join(auditModes, ", "))
		}
	}

	if c.SeedAdminEmail != "" && c.SeedAdminPassword == "" {
		fail("seed_admin_password is required when seed_admin_email is set")
	}
	return errors.Join(errs...)
}
