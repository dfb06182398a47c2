package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type blob struct {
	Namespace string `gorm:"primaryKey;size:15"`
	Key       string `gorm:"column:blob_key;primaryKey;size:15"`
	Value     []byte
	UpdatedAt time.Time
}

func (blob) TableName() string {
	return "blobs"
}

// SQLBackend stores blobs in a single table through gorm
type SQLBackend struct {
	db *gorm.DB
}

var _ Backend = &SQLBackend{}

// OpenSQLite opens (or creates) the database file at path
func OpenSQLite(path string) (*SQLBackend, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite %q: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer. A single connection avoids SQLITE_BUSY between our own goroutines
	sqlDB.SetMaxOpenConns(1)

	return NewSQLBackend(db)
}

// NewSQLBackend migrates the blobs table on an existing connection
func NewSQLBackend(db *gorm.DB) (*SQLBackend, error) {
	err := db.AutoMigrate(&blob{})
	if err != nil {
		return nil, fmt.Errorf("error migrating blobs table: %w", err)
	}
	return &SQLBackend{db: db}, nil
}

// Get implements Backend.
func (s *SQLBackend) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	var b blob
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND blob_key = ?", namespace, key).
		Take(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b.Value, nil
}

// Set implements Backend.
func (s *SQLBackend) Set(ctx context.Context, namespace, key string, value []byte) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "blob_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&blob{
			Namespace: namespace,
			Key:       key,
			Value:     value,
		}).Error
	})
}

// Erase implements Backend.
func (s *SQLBackend) Erase(ctx context.Context, namespace string) error {
	return s.db.WithContext(ctx).Where("namespace = ?", namespace).Delete(&blob{}).Error
}

// Close implements Backend.
func (s *SQLBackend) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
