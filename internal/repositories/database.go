package repositories

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"storefront/internal/models"
)

// OpenDatabase connects to the given driver ("sqlite" or "postgres") and migrates the storefront tables.
func OpenDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	if err := db.AutoMigrate(&models.Product{}, &SessionEntry{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return db, nil
}
