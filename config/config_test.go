package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 720*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Empty(t, cfg.Scheduler.ExpireCron)
	assert.True(t, cfg.Server.ErrorDetail)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("MESS_JWT_EXPIRY", "1h30m")
	t.Setenv("MESS_RATELIMIT_BURST", "3")
	t.Setenv("MESS_SERVER_ERROR_DETAIL", "false")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 90*time.Minute, cfg.JWT.Expiry)
	assert.Equal(t, 3, cfg.RateLimit.Burst)
	assert.False(t, cfg.Server.ErrorDetail)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mess.yaml")
	content := "database:\n  driver: postgres\n  dsn: postgres://localhost/mess\nscheduler:\n  expire_cron: \"@hourly\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/mess", cfg.Database.DSN)
	assert.Equal(t, "@hourly", cfg.Scheduler.ExpireCron)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("MESS_DATABASE_DRIVER", "mongo")
	_, err := Load(viper.New(), "")
	assert.ErrorContains(t, err, "database.driver")
}

func TestInitDBMigratesSqlite(t *testing.T) {
	cfg := DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "mess.db")}
	db, err := InitDB(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	assert.True(t, db.Migrator().HasTable("providers"))
	assert.True(t, db.Migrator().HasTable("order_status_histories"))
	assert.True(t, db.Migrator().HasIndex("reviews", "idx_reviews_provider_student"))
}
