package storage

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

type storageBlob struct {
	Key   string `gorm:"primaryKey;size:100"`
	Value []byte
}

func (storageBlob) TableName() string {
	return "storage_blobs"
}

// GormBlobs stores each collection blob as one row in a key/value table.
type GormBlobs struct {
	db *gorm.DB
}

// Migrate brings the blob table up to date. It must be called once before
// NewGormBlobs is used on a fresh database.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "0_storage_blobs",
			Migrate: func(txn *gorm.DB) error {
				return txn.Migrator().CreateTable(&storageBlob{})
			},
			Rollback: func(txn *gorm.DB) error {
				return txn.Migrator().DropTable(&storageBlob{})
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("error migrating storage schema: %w", err)
	}
	return nil
}

func NewGormBlobs(db *gorm.DB) *GormBlobs {
	return &GormBlobs{db: db}
}

func (s *GormBlobs) Get(key string) ([]byte, error) {
	var blob storageBlob
	result := s.db.First(&blob, "key = ?", key)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		slog.Error("sql error reading storage blob", "key", key, "error", result.Error)
		return nil, fmt.Errorf("error reading storage key %v: %w", key, result.Error)
	}
	return blob.Value, nil
}

func (s *GormBlobs) Put(key string, value []byte) error {
	result := s.db.Save(&storageBlob{Key: key, Value: value})
	if result.Error != nil {
		slog.Error("sql error writing storage blob", "key", key, "error", result.Error)
		return fmt.Errorf("error writing storage key %v: %w", key, result.Error)
	}
	return nil
}

func (s *GormBlobs) Delete(key string) error {
	result := s.db.Delete(&storageBlob{Key: key})
	if result.Error != nil {
		slog.Error("sql error deleting storage blob", "key", key, "error", result.Error)
		return fmt.Errorf("error deleting storage key %v: %w", key, result.Error)
	}
	return nil
}
