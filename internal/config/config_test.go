package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "X-User-ID", cfg.Server.UserHeader)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5, cfg.SRS.UnlockThreshold)
	assert.Equal(t, 1, cfg.SRS.ForceSetLevel)
	assert.Equal(t, 4*time.Hour, cfg.SRS.ForceSetInterval)
	assert.Equal(t, 7, cfg.SRS.ForecastDays)
	assert.False(t, cfg.Reminder.Enabled)
}

func TestLoad_File(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeConfig(t, `server:
  addr: ":9090"
database:
  driver: postgres
  dsn: postgres://lingua@localhost/lingua?sslmode=disable
srs:
  unlock_threshold: 7
  force_set_interval: 90m
log:
  format: text
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 7, cfg.SRS.UnlockThreshold)
	assert.Equal(t, 90*time.Minute, cfg.SRS.ForceSetInterval)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeConfig(t, "srs:\n  unlock_threshold: 7\n")
	t.Setenv("LINGUA_SRS_UNLOCK_THRESHOLD", "3")
	t.Setenv("LINGUA_TELEGRAM_TOKEN", "token-from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.SRS.UnlockThreshold)
	assert.Equal(t, "token-from-env", cfg.Telegram.Token)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LINGUA_LOG_LEVEL=debug\n"), 0644))
	t.Cleanup(func() { _ = os.Unsetenv("LINGUA_LOG_LEVEL") })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name:    "unknown driver",
			content: "database:\n  driver: oracle\n",
			wantMsg: "driver",
		},
		{
			name:    "threshold above max level",
			content: "srs:\n  unlock_threshold: 12\n",
			wantMsg: "unlock_threshold",
		},
		{
			name:    "reminder window reversed",
			content: "reminder:\n  start_hour: 20\n  end_hour: 8\n",
			wantMsg: "reminder.start_hour",
		},
		{
			name:    "unknown log level",
			content: "log:\n  level: loud\n",
			wantMsg: "level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad_UnreadableFile(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := Load(writeConfig(t, "server: [unterminated"))
	require.Error(t, err)
}
