package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"maintenance-records-backend/config"
	"maintenance-records-backend/internal/model"
)

func TestInit_SQLiteMigratesAllTables(t *testing.T) {
	db, err := Init(&config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      "file:db_init_test?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	require.NoError(t, err)
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	for _, table := range []any{
		&model.User{},
		&model.Machine{},
		&model.MaintenanceRecord{},
		&model.MaintenanceEvent{},
		&model.MaintenancePhoto{},
		&model.PushSubscription{},
	} {
		assert.True(t, db.Migrator().HasTable(table), "%T should be migrated", table)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, gormLogLevel("SILENT"))
	assert.Equal(t, logger.Info, gormLogLevel("info"))
	assert.Equal(t, logger.Warn, gormLogLevel(""))
}
