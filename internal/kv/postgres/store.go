// Package postgres provides a kv.Backend in a Postgres table through GORM,
// for desks that share one backing store across machines.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// entry is one stored key.
type entry struct {
	Bucket    string    `gorm:"primaryKey;column:bucket"`
	Payload   string    `gorm:"column:payload;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (entry) TableName() string { return "clinicdesk_kv" }

// Store is a key-value backing store in Postgres.
type Store struct {
	db *gorm.DB
}

// Open connects to dsn and creates the table if needed.
func Open(dsn string) (*Store, error) {
	return open(postgres.Open(dsn))
}

func open(dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		s := &Store{db: db}
		if closeErr := s.Close(); closeErr != nil {
			return nil, errors.Join(fmt.Errorf("migrate kv table: %w", err), closeErr)
		}
		return nil, fmt.Errorf("migrate kv table: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the payload stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var e entry
	err := s.db.WithContext(ctx).Where("bucket = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return e.Payload, true, nil
}

// Set upserts the payload for key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	e := entry{Bucket: key, Payload: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bucket"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key if present.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("bucket = ?", key).Delete(&entry{}).Error; err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
