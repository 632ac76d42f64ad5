package model

import (
	"time"

	"gorm.io/datatypes"
)

// SnapshotRecord is the stored form of a Snapshot. Version backs the
// optimistic write check; Data holds the full JSON snapshot.
type SnapshotRecord struct {
	PlayerID  string         `gorm:"primaryKey;size:36" json:"player_id"`
	Version   int64          `gorm:"not null;default:0" json:"version"`
	Class     string         `gorm:"size:16;not null" json:"class"`
	Level     int            `gorm:"default:1" json:"level"`
	Exp       int            `gorm:"index:idx_snapshot_exp;default:0" json:"exp"`
	Data      datatypes.JSON `gorm:"not null" json:"data"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}
