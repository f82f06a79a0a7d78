package db

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects gorm to a sqlite file or a postgres server.
func Open(driver, dsn string, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		if dsn == "" {
			dsn = "data/socialfeed.db"
		}
		dialector = sqlite.Open(dsn)
	case "postgres":
		if dsn == "" {
			// Fallback for local dev if not set
			dsn = "host=localhost user=postgres password=postgres dbname=socialfeed port=5432 sslmode=disable"
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite" {
		// SQLite only supports one writer at a time; a single connection also
		// keeps ":memory:" databases shared across queries.
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}

	if logger != nil {
		logger.Info("Database connection established", zap.String("driver", driver))
	}
	return gdb, nil
}
