// Package testutil builds throwaway databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"student-mess-api/config"
)

// NewDB opens a migrated sqlite database in a temp dir. A single connection
// keeps sqlite writers serialized.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := config.InitDB(config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)",
		MaxOpenConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, config.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
