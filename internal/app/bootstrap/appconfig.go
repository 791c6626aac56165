package bootstrap

import "time"

// AppConfig is the site backend's own configuration. Ports, TLS, logging
// and body limits live in waffle's CoreConfig; see config.go for keys and
// defaults.
type AppConfig struct {
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	SessionKey    string
	SessionName   string
	SessionDomain string // empty: the request host
	SessionMaxAge time.Duration
	CSRFKey       string

	// APIKey is accepted as a Bearer token on /api/admin. Empty disables it.
	APIKey string

	// CORSOrigins restricts browsers on /api. Empty allows any origin
	// without credentials.
	CORSOrigins []string

	RateLimitEnabled        bool
	RateLimitLoginAttempts  int // per email
	RateLimitLoginWindow    time.Duration
	RateLimitLoginLockout   time.Duration
	RateLimitContactPerIP   int
	RateLimitContactWindow  time.Duration
	RateLimitContactLockout time.Duration

	StorageType      string // local or s3
	StorageLocalPath string
	StorageLocalURL  string // always /images for local storage

	StorageS3Region    string
	StorageS3Bucket    string
	StorageS3Prefix    string
	StorageCFURL       string
	StorageCFKeyPairID string
	StorageCFKeyPath   string

	// An empty MailSMTPHost turns notification mail off.
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string

	// Audit modes: all (store and log), db, log or off.
	AuditLogAuth   string
	AuditLogAdmin  string
	AuditRetention time.Duration // 0 keeps events forever

	APIStatsEnabled   bool
	APIStatsBucket    time.Duration
	APIStatsRetention time.Duration

	// The ledger records failed public API requests only.
	LedgerEnabled   bool
	LedgerRetention time.Duration

	SeedContent       bool
	SeedAdminEmail    string
	SeedAdminName     string
	SeedAdminPassword string
}
