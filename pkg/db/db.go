package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/calebmoore/tweetwatch/pkg/db/models"
)

// DefaultPath is used when TWEETWATCH_DB_PATH is not set
const DefaultPath = "data/tweetwatch.db"

// SetupDatabase opens the embedded database, applies pragmas for
// single-writer/multi-reader access and migrates the schema. The returned
// handle is the process's single write handle; open read-only handles with
// OpenReadOnly if needed.
func SetupDatabase(logger *logrus.Logger) (*gorm.DB, error) {
	logger.Debug("Starting database setup")

	path := os.Getenv("TWEETWATCH_DB_PATH")
	if path == "" {
		path = DefaultPath
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := open(path, logger)
	if err != nil {
		return nil, err
	}

	// WAL lets readers proceed while the single writer holds its lock.
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := db.Exec("PRAGMA busy_timeout=5000").Error; err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Serialize the write path at the connection level: one transaction at
	// a time across the whole process.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Post{}, &models.Account{}, &models.Summary{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database schema: %w", err)
	}

	logger.WithField("path", path).Info("Database setup completed successfully")
	return db, nil
}

// OpenReadOnly opens a second, read-only handle on the same database file.
// Useful for ad hoc inspection while the collector owns the write handle.
func OpenReadOnly(path string, logger *logrus.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	return open(dsn, logger)
}

// OpenInMemory opens a private in-memory database with the schema migrated.
// It exists for tests.
func OpenInMemory(logger *logrus.Logger) (*gorm.DB, error) {
	db, err := open(":memory:", logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Post{}, &models.Account{}, &models.Summary{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database schema: %w", err)
	}
	return db, nil
}

func open(dsn string, logger *logrus.Logger) (*gorm.DB, error) {
	logger.WithField("dsn", dsn).Debug("Establishing GORM database connection")

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: NewGormLogrusLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
