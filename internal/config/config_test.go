package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "sitepnl", cfg.AppName)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 4, cfg.PnL.Workers)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 60, cfg.RateLimit.Limit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.False(t, cfg.IsProduction())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SITEPNL_ENVIRONMENT", "production")
	t.Setenv("SITEPNL_DATABASE_DRIVER", "sqlite")
	t.Setenv("SITEPNL_DATABASE_DSN", "file::memory:")
	t.Setenv("SITEPNL_PNL_WORKERS", "16")
	t.Setenv("SITEPNL_RATELIMIT_WINDOW", "30s")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
	assert.Equal(t, 16, cfg.PnL.Workers)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	file := filepath.Join(dir, "sitepnl.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
database:
  driver: mysql
  dsn: "user:pass@tcp(localhost:3306)/sitepnl?parseTime=true"
pnl:
  workers: 8
ratelimit:
  limit: 10
`), 0o600))
	t.Setenv("SITEPNL_CONFIG", file)
	t.Setenv("SITEPNL_PNL_WORKERS", "2")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.RateLimit.Limit)
	// Environment wins over the file.
	assert.Equal(t, 2, cfg.PnL.Workers)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	base, err := NewLoader().Load()
	require.NoError(t, err)

	bad := base
	bad.Database.Driver = "oracle"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidDatabaseDriver)

	bad = base
	bad.PnL.Workers = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidWorkers)

	bad = base
	bad.RateLimit.Limit = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidRateLimit)

	bad.RateLimit.Enabled = false
	assert.NoError(t, bad.Validate())
}
