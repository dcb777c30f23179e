package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custody.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db: /var/lib/custody/ledger.db
addr: ":7000"
notify_url: http://bot.local/events
notify_timeout: 2s
contacts_limit: 5
`), 0o644))

	t.Setenv("CUSTODY_ADDR", ":9000")
	t.Setenv("CUSTODY_TOKEN_TTL", "1h")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", "", "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--log-level", "debug"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	// Unset flag: file wins over its default.
	assert.Equal(t, "/var/lib/custody/ledger.db", cfg.DB)
	// Env wins over file.
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	// Set flag wins over everything.
	assert.Equal(t, "debug", cfg.LogLevel)

	assert.Equal(t, "http://bot.local/events", cfg.NotifyURL)
	assert.Equal(t, 2*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, 5, cfg.ContactsLimit)
	assert.Equal(t, 8, cfg.MaxOpenConns)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults().Addr, cfg.Addr)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custody.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o644))

	_, err := Load(path, nil)
	assert.ErrorContains(t, err, "log_level")
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custody.yaml")

	written, err := WriteDefault(path)
	require.NoError(t, err)
	assert.True(t, written)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)

	// Existing files are left alone.
	require.NoError(t, os.WriteFile(path, []byte("addr: \":1234\"\n"), 0o644))
	written, err = WriteDefault(path)
	require.NoError(t, err)
	assert.False(t, written)

	cfg, err = Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, ":1234", cfg.Addr)
}
