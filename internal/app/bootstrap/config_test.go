package bootstrap

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() AppConfig {
	return AppConfig{
		SessionKey:              strings.Repeat("k", 40),
		CSRFKey:                 strings.Repeat("c", 40),
		StorageType:             "local",
		StorageLocalURL:         "/images",
		RateLimitEnabled:        true,
		RateLimitLoginAttempts:  5,
		RateLimitLoginWindow:    15 * time.Minute,
		RateLimitLoginLockout:   15 * time.Minute,
		RateLimitContactPerIP:   5,
		RateLimitContactWindow:  time.Hour,
		RateLimitContactLockout: time.Hour,
		AuditLogAuth:            "all",
		AuditLogAdmin:           "db",
	}
}

func TestValidateAppConfig(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		mutate func(*AppConfig)
		want   []string
	}{
		{name: "valid prod", env: "prod", mutate: func(*AppConfig) {}},
		{name: "dev keys allowed outside prod", env: "dev", mutate: func(c *AppConfig) {
			c.SessionKey, c.CSRFKey = devSessionKey, devCSRFKey
		}},
		{name: "dev keys refused in prod", env: "prod", mutate: func(c *AppConfig) {
			c.SessionKey, c.CSRFKey = devSessionKey, "short"
		}, want: []string{"session_key must", "csrf_key must"}},
		{name: "local url pinned", mutate: func(c *AppConfig) { c.StorageLocalURL = "/uploads" },
			want: []string{`storage_local_url must be "/images"`}},
		{name: "s3 needs bucket", mutate: func(c *AppConfig) { c.StorageType = "s3" },
			want: []string{"storage_s3_bucket is required"}},
		{name: "unknown storage", mutate: func(c *AppConfig) { c.StorageType = "ftp" },
			want: []string{`unknown storage_type "ftp"`}},
		{name: "rate limits", mutate: func(c *AppConfig) {
			c.RateLimitContactPerIP = 0
			c.RateLimitLoginLockout = 0
		}, want: []string{"attempts must be positive", "lockouts must be positive"}},
		{name: "rate limits ignored when off", mutate: func(c *AppConfig) {
			c.RateLimitEnabled = false
			c.RateLimitLoginAttempts = 0
		}},
		{name: "audit mode", mutate: func(c *AppConfig) { c.AuditLogAdmin = "verbose" },
			want: []string{"audit_log_admin must be one of all, db, log, off"}},
		{name: "seed admin needs password", mutate: func(c *AppConfig) { c.SeedAdminEmail = "a@example.fr" },
			want: []string{"seed_admin_password is required"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := validateAppConfig(tt.env, cfg)
			if len(tt.want) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, w := range tt.want {
				assert.Contains(t, err.Error(), w)
			}
		})
	}
}

func TestConfigKeys(t *testing.T) {
	keys := ConfigKeys()
	seen := map[string]bool{}
	for _, k := range keys {
		assert.False(t, seen[k.Name], "duplicate key %s", k.Name)
		seen[k.Name] = true
	}
	assert.True(t, seen["mongo_uri"])
	assert.True(t, seen["seed_content"])

	keys[0].Name = "changed"
	assert.Equal(t, "mongo_uri", ConfigKeys()[0].Name, "callers get a copy")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"https://a.fr", "https://b.fr"}, splitList(" https://a.fr, ,https://b.fr "))
	assert.Nil(t, splitList(""))
}
