package siteconfig

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConfigSnapshot is one historical copy of the stored (already filtered)
// document, appended after each successful save.
type ConfigSnapshot struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Payload   datatypes.JSON `gorm:"type:json" json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

// TableName keeps the table name stable across gorm naming strategies.
func (ConfigSnapshot) TableName() string {
	return "config_snapshots"
}

// SnapshotStore appends and lists config snapshots. A nil store disables
// the history without affecting the save path.
type SnapshotStore struct {
	db *gorm.DB
}

// NewSnapshotStore migrates the snapshot table and returns the store. A nil
// database yields a disabled store.
func NewSnapshotStore(db *gorm.DB) (*SnapshotStore, error) {
	if db == nil {
		return nil, nil
	}
	if err := db.AutoMigrate(&ConfigSnapshot{}); err != nil {
		return nil, fmt.Errorf("siteconfig: migrate snapshots: %w", err)
	}
	return &SnapshotStore{db: db}, nil
}

// Append records the document. Failures are the caller's to log; a snapshot
// must never fail the save that produced it.
func (s *SnapshotStore) Append(doc []byte) error {
	if s == nil || s.db == nil {
		return nil
	}
	snapshot := ConfigSnapshot{Payload: datatypes.JSON(doc)}
	return s.db.Create(&snapshot).Error
}

// Recent returns up to limit snapshots, most recent first.
func (s *SnapshotStore) Recent(limit int) ([]ConfigSnapshot, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var snapshots []ConfigSnapshot
	if err := s.db.Order("id desc").Limit(limit).Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}
