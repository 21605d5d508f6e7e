package database

import (
	"fmt"
	"time"

	"highlight-api/internal/domain/billing"
	"highlight-api/internal/domain/plans"
	"highlight-api/internal/domain/projects"
	"highlight-api/internal/domain/users"
	"highlight-api/internal/domain/videos"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table the API owns, in migration order.
func Models() []interface{} {
	return []interface{}{
		// core
		&users.User{},
		&plans.Plan{},

		// projects
		&projects.Project{},
		&videos.Video{},

		// billing
		&billing.Subscription{},
		&billing.Purchase{},
	}
}

// Open connects to Postgres at dsn.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DB_URL not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Migrate auto-migrates all domain models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
