package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"MOODS_CONFIG", "ADDR", "WEB_DIR", "MOODS_LOG_LEVEL", "MOODS_LOG_FORMAT",
		"MOODS_STORAGE_DRIVER", "MOODS_STORAGE_PATH", "DATABASE_URL", "MOODS_STORAGE_KEY",
		"MOODS_INSERT_ORDER", "MOODS_DELETES_ENABLED", "MOODS_AUTH_DISABLED",
		"MOODS_OWNER_USERNAME", "MOODS_OWNER_PASSWORD_HASH",
		"OIDC_ISSUER", "OIDC_CLIENT_ID", "OIDC_CLIENT_SECRET", "OIDC_REDIRECT_URL",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "moods.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, "data", cfg.Storage.Path)
	assert.Equal(t, "my-app-data", cfg.Storage.Key)
	assert.Equal(t, "prepend", cfg.Moods.InsertOrder)
	assert.True(t, cfg.Moods.DeletesEnabled)
	assert.False(t, cfg.Auth.OIDC.Enabled())
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
addr: ":9000"
storage:
  driver: bolt
moods:
  insert_order: append
  deletes_enabled: false
auth:
  owner_username: me
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, DriverBolt, cfg.Storage.Driver)
	assert.Equal(t, "moods.db", cfg.Storage.Path)
	assert.Equal(t, "my-app-data", cfg.Storage.Key, "omitted fields keep defaults")
	assert.Equal(t, "append", cfg.Moods.InsertOrder)
	assert.False(t, cfg.Moods.DeletesEnabled)
	assert.Equal(t, "me", cfg.Auth.OwnerUsername)
}

func TestLoadFileFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("MOODS_CONFIG", writeFile(t, "storage:\n  driver: sqlite\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "moods.sqlite", cfg.Storage.Path)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "storage:\n  driver: bolt\n  path: /tmp/a.db\n")
	t.Setenv("MOODS_STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/moods")
	t.Setenv("MOODS_DELETES_ENABLED", "false")
	t.Setenv("MOODS_AUTH_DISABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/moods", cfg.Storage.DSN)
	assert.False(t, cfg.Moods.DeletesEnabled)
	assert.True(t, cfg.Auth.Disabled)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"MOODS_STORAGE_DRIVER": "redis"}},
		{name: "postgres without dsn", env: map[string]string{"MOODS_STORAGE_DRIVER": "postgres"}},
		{name: "bad insert order", env: map[string]string{"MOODS_INSERT_ORDER": "middle"}},
		{name: "bad bool", env: map[string]string{"MOODS_DELETES_ENABLED": "maybe"}},
		{name: "bad log format", env: map[string]string{"MOODS_LOG_FORMAT": "xml"}},
		{name: "oidc without client", env: map[string]string{"OIDC_ISSUER": "https://id.example.com"}},
		{name: "bad yaml", file: "storage: [unclosed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			path := ""
			if tc.file != "" {
				path = writeFile(t, tc.file)
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
