package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	home := t.TempDir()

	cfg, err := Load(home, "")
	require.NoError(t, err)
	require.Equal(t, home, cfg.Home)
	require.Equal(t, "0.0.0.0:6000", cfg.Listen)
	require.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())

	hc, err := cfg.HubSettings()
	require.NoError(t, err)
	require.Equal(t, 10*time.Second, hc.HelloTimeout)

	cc, err := cfg.ClientSettings("10.0.0.5")
	require.NoError(t, err)
	require.Equal(t, "10.0.0.5:6000", cc.Addr)
	require.Equal(t, 5*time.Second, cc.DialTimeout)
	require.Equal(t, time.Second, cc.RetryDelay)
}

func TestLoad_FileThenEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, ConfigFilename), []byte(`
listen = "127.0.0.1:7000"
secret = "from-file"

[log]
level = "debug"

[hub]
hello_timeout = "3s"
message_rate = 5.5
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".env"), []byte("RECHAT_SERVER=10.1.1.1:6000\n"), 0o600))
	t.Setenv("RECHAT_SECRET", "from-env")
	// registers a restore for the variable .env is about to set
	t.Setenv("RECHAT_SERVER", "")
	require.NoError(t, os.Unsetenv("RECHAT_SERVER"))

	cfg, err := Load(home, "")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:7000", cfg.Listen)
	require.Equal(t, "from-env", cfg.Secret)
	require.Equal(t, "10.1.1.1:6000", cfg.Server)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 5.5, cfg.Hub.MessageRate)

	hc, err := cfg.HubSettings()
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, hc.HelloTimeout)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	_, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestLoad_BadTOML(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("listen = \n"), 0o600))
	_, err := Load(t.TempDir(), path)
	require.ErrorContains(t, err, "bad.toml")
}

func TestValidate_Rejects(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	cfg.Log.Format = "xml"
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig(t.TempDir())
	cfg.Client.RetryDelay = "soon"
	require.Error(t, cfg.Validate())
	_, err := cfg.ClientSettings("")
	require.ErrorContains(t, err, "client.retry_delay")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"message":"shown"`)

	_, err = NewLogger(LogConfig{Level: "loud"}, &buf)
	require.Error(t, err)
}

func TestNewWire_RoomBoxFollowsSecret(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	w, err := NewWire(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.Nil(t, w.Box)
	_, err = w.Relay()
	require.Error(t, err)

	cfg.Secret = "s3cret"
	cfg.HubURL = "http://127.0.0.1:8080"
	w, err = NewWire(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, w.Box)
	_, err = w.Relay()
	require.NoError(t, err)
}
