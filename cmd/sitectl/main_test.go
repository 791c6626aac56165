package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/stratasite/internal/app/system/contactsync"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("mongo-uri", "", "")
	cmd.Flags().String("mongo-database", "", "")
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestLoadViper_Defaults(t *testing.T) {
	v, err := loadViper(testCommand(t))
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", v.GetString("mongo_uri"))
	assert.Equal(t, "stratasite", v.GetString("mongo_database"))
	assert.Equal(t, "15m0s", v.GetDuration("rate_limit_login_window").String())
}

func TestLoadViper_EnvOverrides(t *testing.T) {
	t.Setenv("STRATASITE_MONGO_DATABASE", "from_env")
	t.Setenv("STRATASITE_AUDIT_RETENTION", "48h")

	v, err := loadViper(testCommand(t))
	require.NoError(t, err)

	assert.Equal(t, "from_env", v.GetString("mongo_database"))
	assert.Equal(t, "48h0m0s", v.GetDuration("audit_retention").String())
}

func TestLoadViper_FlagBeatsEnv(t *testing.T) {
	t.Setenv("STRATASITE_MONGO_DATABASE", "from_env")

	v, err := loadViper(testCommand(t, "--mongo-database", "from_flag"))
	require.NoError(t, err)

	assert.Equal(t, "from_flag", v.GetString("mongo_database"))
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, contactsync.Report{
		Infos: contactsync.Result{Applied: true},
		Map:   contactsync.Result{Reason: "no google-map section"},
	})

	assert.Equal(t, "infos  synced\nmap    skipped: no google-map section\n", buf.String())
}

func TestMaintenanceConfig_DefaultsRetention(t *testing.T) {
	v, err := loadViper(testCommand(t))
	require.NoError(t, err)
	v.Set("api_stats_retention", "0s")

	cfg := maintenanceConfig(&env{v: v})
	assert.Equal(t, "2160h0m0s", cfg.APIStatsRetention.String())
	assert.True(t, cfg.APIStatsEnabled)
}

func TestPrintUsers(t *testing.T) {
	last := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	printUsers(&buf, []models.User{
		{Email: "a@example.fr", FullName: "Alice", Status: "active", LastLoginAt: &last},
		{Email: "b@example.fr", FullName: "Bob", Status: "disabled"},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "EMAIL"))
	assert.Contains(t, lines[1], "2026-05-01T08:00:00Z")
	assert.Contains(t, lines[2], "never")
}
