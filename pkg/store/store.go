// Package store provides durable persistence for posts, accounts and
// summaries on top of the embedded database.
package store

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Store owns the three logical tables (posts, accounts, summaries) and the
// query/upsert operations over them. It is safe for concurrent use; the
// write path is serialized by the underlying single-writer connection.
type Store struct {
	logger *logrus.Logger
	db     *gorm.DB
}

// New creates a Store over an initialized database handle
func New(db *gorm.DB, logger *logrus.Logger) *Store {
	return &Store{
		logger: logger,
		db:     db,
	}
}

// Transaction runs fn inside a single database transaction. The Store
// passed to fn issues all its operations against that transaction; a
// returned error rolls the whole transaction back.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{logger: s.logger, db: tx})
	})
}
