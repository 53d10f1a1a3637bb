package kvstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is the row layout of the SQLite-backed store. The value column is
// JSON so the store file stays inspectable with plain sqlite tooling.
type Record struct {
	Key   string         `gorm:"primaryKey;column:key"`
	Value datatypes.JSON `gorm:"column:value"`
}

// TableName keeps the table named after the original storage area.
func (Record) TableName() string { return "sahayak_store" }

type sqliteStore struct {
	db *gorm.DB
}

// NewSQLite builds a Store persisted in a local SQLite file, the server-side
// analog of the original per-profile local storage.
func NewSQLite(db *gorm.DB) (Store, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate store table: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var record Record
	err := s.db.WithContext(ctx).First(&record, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("store get %q: %w", key, err)
	}
	return string(record.Value), true, nil
}

func (s *sqliteStore) Set(ctx context.Context, key, value string) error {
	record := Record{Key: key, Value: datatypes.JSON(value)}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("store set %q: %w", key, err)
	}
	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&Record{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("store delete %q: %w", key, err)
	}
	return nil
}
