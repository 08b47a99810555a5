package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_FILE", filepath.Join(dir, "missing.toml"))
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 7*24*60, cfg.Auth.JWTExpireMinute)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.RabbitMQ.URL)
	assert.Equal(t, "0.0.0.0:8000", cfg.HTTPAddr())
	assert.Equal(t, "file:lyrnios.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", cfg.DatabaseDSN())
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := isolate(t)

	configPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
[app]
port = 9000
cors_origins = ["https://a.example", "https://b.example"]

[database]
driver = "mysql"

[database.mysql]
host = "db"
port = 3307
user = "u"
password = "p"
db = "chat"
params = "parseTime=true"

[redis]
addr = "redis:6379"
`), 0o644))
	t.Setenv("CONFIG_FILE", configPath)
	t.Setenv("APP_PORT", "9100")
	t.Setenv("LLM_JSON_MODE", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.App.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CORSOrigins)
	assert.Equal(t, "u:p@tcp(db:3307)/chat?parseTime=true", cfg.DatabaseDSN())
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.False(t, cfg.LLM.JSONMode)
	assert.Equal(t, 60, cfg.Redis.HistoryTTLSeconds)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("DEMO_DIR=/srv/demos\nCORS_ORIGINS= https://x.example , ,https://y.example\n"), 0o644))
	t.Setenv("ENV_FILE", envPath)
	t.Cleanup(func() {
		_ = os.Unsetenv("DEMO_DIR")
		_ = os.Unsetenv("CORS_ORIGINS")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/demos", cfg.Demo.Dir)
	assert.Equal(t, []string{"https://x.example", "https://y.example"}, cfg.App.CORSOrigins)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	dir := isolate(t)

	configPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[app\nport = "), 0o644))
	t.Setenv("CONFIG_FILE", configPath)

	_, err := Load()
	assert.ErrorContains(t, err, "decode config file failed")
}
