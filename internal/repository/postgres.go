package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Store groups the repositories sharing one database connection
type Store struct {
	db        *gorm.DB
	DailyLogs *DailyLogRepository
	Entries   *FoodEntryRepository
}

// NewStore wires every repository onto db
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		DailyLogs: NewDailyLogRepository(db),
		Entries:   NewFoodEntryRepository(db),
	}
}

// GetDB returns the underlying GORM database instance
func (s *Store) GetDB() *gorm.DB {
	return s.db
}

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
