package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
jwt:
  secret: s3cret
auth:
  hash_macro: "{sha256}({password}{salt})"
policies:
  shipping_profile_id: "1"
  return_profile_id: "2"
  payment_profile_id: "3"
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Listen)
	assert.Equal(t, "file", cfg.Auth.UserBackend)
	assert.Equal(t, "1113", cfg.Marketplace.CompatibilityLevel)
	assert.Equal(t, "0", cfg.Marketplace.SiteID)
	assert.Equal(t, 200*time.Millisecond, cfg.Bulk.ItemDelay())
	assert.Equal(t, int64(10<<20), cfg.Bulk.MaxUploadBytes())
	assert.Equal(t, "bulk_upload_errors.log", cfg.Bulk.ErrorLogFile)
	assert.Equal(t, "FixedPriceItem", cfg.Listing.ListingType)
	assert.Zero(t, cfg.Marketplace.Timeout())
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv(EnvAppID, "env-app")
	t.Setenv(EnvJWTSecret, "env-secret")

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)
	assert.Equal(t, "env-app", cfg.Marketplace.AppID)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	_, err := Parse([]byte(`
auth:
  user_backend: oracle
bulk:
  item_delay_ms: -5
`))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "jwt.secret")
	assert.Contains(t, msg, `"oracle"`)
	assert.Contains(t, msg, "policies")
	assert.Contains(t, msg, "item_delay_ms")
}

func TestValidateSQLBackend(t *testing.T) {
	cfg := &Config{}
	cfg.JWT.Secret = "x"
	cfg.Auth.UserBackend = "sqlite"
	cfg.Policies = PolicyConfig{"1", "2", "3"}
	assert.ErrorContains(t, cfg.Validate(), "auth.db_dsn")

	cfg.Auth.DBDSN = "file:users.db"
	cfg.Auth.UserRequest = "SELECT 1"
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "sqlite3", cfg.SQLDriver())
}

func TestLoadConfigResolvesAgainstRoot(t *testing.T) {
	root := t.TempDir()
	t.Setenv("LISTING_MANAGER_ROOT", root)
	require.NoError(t, os.WriteFile(filepath.Join(root, "config.yaml"), []byte(minimalYAML), 0644))

	cfg, err := LoadConfig("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)

	_, err = LoadConfig("missing.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseRejectsBadYAML(t *testing.T) {
	_, err := Parse([]byte("jwt: [unterminated"))
	assert.ErrorContains(t, err, "parse config")
}
