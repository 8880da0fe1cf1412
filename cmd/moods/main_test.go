package main

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"moods/internal/config"
	"moods/internal/domain"
)

// run executes the CLI against a file store in dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MOODS_CONFIG", "")
	t.Setenv("MOODS_STORAGE_DRIVER", "file")
	t.Setenv("MOODS_STORAGE_PATH", dir)
	t.Setenv("MOODS_LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAddListDelete(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "add", "😀", "Happy")
	require.NoError(t, err)
	fields := strings.Fields(out)
	require.Len(t, fields, 3)
	ts, err := strconv.ParseInt(fields[0], 10, 64)
	require.NoError(t, err)

	_, err = run(t, dir, "add", "😢", "Very", "sad")
	require.NoError(t, err)

	out, err = run(t, dir, "list", "--json")
	require.NoError(t, err)
	var data domain.AppData
	require.NoError(t, json.Unmarshal([]byte(out), &data))
	require.Len(t, data.Moods, 2)
	assert.Equal(t, "Very sad", data.Moods[0].Mood.Description, "newest first")
	assert.Equal(t, ts, data.Moods[1].Timestamp)

	out, err = run(t, dir, "delete", strconv.FormatInt(ts, 10))
	require.NoError(t, err)
	assert.Equal(t, "deleted 1\n", out)

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Very sad")
	assert.NotContains(t, out, "Happy")
}

func TestListEmpty(t *testing.T) {
	out, err := run(t, t.TempDir(), "list")
	require.NoError(t, err)
	assert.Equal(t, "No moods recorded.\n", out)
}

func TestDeleteDisabled(t *testing.T) {
	t.Setenv("MOODS_DELETES_ENABLED", "false")
	_, err := run(t, t.TempDir(), "delete", "123")
	assert.Error(t, err)
}

func TestDeleteBadTimestamp(t *testing.T) {
	_, err := run(t, t.TempDir(), "delete", "yesterday")
	assert.Error(t, err)
}

func TestAnalytics(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "add", "😀", "Happy")
	require.NoError(t, err)

	out, err := run(t, dir, "analytics", "--days", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 1")
	assert.Contains(t, out, "Happy")
}

func TestHashPassword(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"hash-password", "s3cret"})
	require.NoError(t, cmd.Execute())

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}

func TestServeRequiresOwner(t *testing.T) {
	t.Setenv("MOODS_OWNER_USERNAME", "")
	t.Setenv("MOODS_AUTH_DISABLED", "false")
	_, err := run(t, t.TempDir(), "serve")
	assert.ErrorContains(t, err, "MOODS_OWNER_USERNAME")
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	for _, cfg := range []config.StorageConfig{
		{Driver: config.DriverMemory},
		{Driver: config.DriverFile, Path: dir + "/files"},
		{Driver: config.DriverBolt, Path: dir + "/moods.db"},
		{Driver: config.DriverSQLite, Path: dir + "/moods.sqlite"},
	} {
		t.Run(cfg.Driver, func(t *testing.T) {
			kv, closeFn, err := openStore(cfg)
			require.NoError(t, err)
			t.Cleanup(func() { assert.NoError(t, closeFn()) })

			ctx := t.Context()
			require.NoError(t, kv.SetItem(ctx, "k", "v"))
			got, ok, err := kv.GetItem(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v", got)
		})
	}

	_, _, err := openStore(config.StorageConfig{Driver: "redis"})
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger("warn", "json", &buf)
	require.NoError(t, err)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())

	_, err = newLogger("loud", "json", &buf)
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "add", "😀", "Happy")
	require.NoError(t, err)

	_, err = run(t, dir, "reset")
	assert.ErrorContains(t, err, "--force")

	out, err := run(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Happy", "reset without --force keeps data")

	out, err = run(t, dir, "reset", "--force")
	require.NoError(t, err)
	assert.Equal(t, "reset my-app-data\n", out)

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	assert.Equal(t, "No moods recorded.\n", out)
}
