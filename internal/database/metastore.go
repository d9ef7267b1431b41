package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"feedlint/internal/results"
)

// feedMeta is the key-value slot row backing stored result sets.
type feedMeta struct {
	FeedID    int       `gorm:"column:feed_id;primaryKey"`
	MetaKey   string    `gorm:"column:meta_key;primaryKey"`
	MetaValue string    `gorm:"column:meta_value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (feedMeta) TableName() string { return "feed_meta" }

// MetaStore is the gorm-backed implementation of the results key-value
// contract. maxPayloadBytes models the size-limited backends some hosts run
// on: a Set above the limit fails with results.ErrPayloadTooLarge so the
// store's retry path kicks in. Zero means unlimited.
type MetaStore struct {
	db              *gorm.DB
	maxPayloadBytes int
}

// NewMetaStore wraps the database in the results.MetaStore contract.
func (d *Database) NewMetaStore(maxPayloadBytes int) *MetaStore {
	return &MetaStore{db: d.DB, maxPayloadBytes: maxPayloadBytes}
}

func (m *MetaStore) Get(feedID int, key string) ([]byte, error) {
	var row feedMeta
	err := m.db.Where("feed_id = ? AND meta_key = ?", feedID, key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, results.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read feed_meta %d/%s: %w", feedID, key, err)
	}
	return []byte(row.MetaValue), nil
}

func (m *MetaStore) Set(feedID int, key string, value []byte) error {
	if m.maxPayloadBytes > 0 && len(value) > m.maxPayloadBytes {
		return results.ErrPayloadTooLarge
	}
	row := feedMeta{FeedID: feedID, MetaKey: key, MetaValue: string(value), UpdatedAt: time.Now().UTC()}
	err := m.db.Save(&row).Error
	if err != nil {
		return fmt.Errorf("write feed_meta %d/%s: %w", feedID, key, err)
	}
	return nil
}

func (m *MetaStore) Delete(feedID int, key string) error {
	err := m.db.Where("feed_id = ? AND meta_key = ?", feedID, key).Delete(&feedMeta{}).Error
	if err != nil {
		return fmt.Errorf("delete feed_meta %d/%s: %w", feedID, key, err)
	}
	return nil
}
