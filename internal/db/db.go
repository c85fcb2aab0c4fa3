package db

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"maintenance-records-backend/config"
	"maintenance-records-backend/internal/logging"
	"maintenance-records-backend/internal/model"
)

// Open connects to the configured database and sizes the connection pool. It does not migrate.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, goerr.New("unsupported database driver", goerr.V("driver", cfg.Driver))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to database", goerr.V("driver", cfg.Driver))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get sql.DB")
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}
	return db, nil
}

// Init opens the database and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	logging.Default().Info("database initialization complete", "driver", cfg.Driver)
	return db, nil
}

// Migrate creates or updates every table this service reads or writes.
// Users and machines are owned elsewhere but are migrated so that a fresh database is usable.
func Migrate(db *gorm.DB) error {
	logging.Default().Info("running database migrations")
	if err := db.AutoMigrate(
		&model.User{},
		&model.Machine{},
		&model.MaintenanceRecord{},
		&model.MaintenanceEvent{},
		&model.MaintenancePhoto{},
		&model.PushSubscription{},
	); err != nil {
		return goerr.Wrap(err, "automigrate failed")
	}

	if db.Dialector.Name() == "postgres" {
		if err := applyPostgresIndexes(db); err != nil {
			logging.Default().Warn("failed to apply some postgres indexes, continuing without them", logging.ErrAttrs(err)...)
		}
	}
	return nil
}

// applyPostgresIndexes adds the composite and trigram indexes used by record listings.
func applyPostgresIndexes(db *gorm.DB) error {
	ddls := []string{
		"CREATE INDEX IF NOT EXISTS idx_maintenance_records_machine_created " +
			"ON maintenance_records (machine_id, created_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_maintenance_photos_record_created " +
			"ON maintenance_photos (maintenance_record_id, created_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_maintenance_events_record_date " +
			"ON maintenance_events (maintenance_record_id, event_date DESC, created_at DESC);",
		"CREATE EXTENSION IF NOT EXISTS pg_trgm;",
		"CREATE INDEX IF NOT EXISTS idx_maintenance_records_problem_trgm " +
			"ON maintenance_records USING GIN (problem_description gin_trgm_ops);",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return goerr.Wrap(err, "DDL failed", goerr.V("ddl", ddl))
		}
	}
	return nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
