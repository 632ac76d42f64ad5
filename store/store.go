// Package store persists character snapshots. The database is the source of
// truth; the cache holds a read-through copy keyed by player id.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kasuganosora/learnquest/cache"
	"github.com/kasuganosora/learnquest/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no snapshot exists for a player.
	ErrNotFound = errors.New("store: snapshot not found")
	// ErrExists is returned by Create when the player already has a snapshot.
	ErrExists = errors.New("store: snapshot already exists")
	// ErrStaleSnapshot is returned by Save when the stored version moved on.
	ErrStaleSnapshot = errors.New("store: stale snapshot version")
)

const defaultTTL = 10 * time.Minute

func snapshotKey(playerID string) string { return "snapshot:" + playerID }

// EventsChannel is the pub/sub channel carrying a player's snapshot events.
func EventsChannel(playerID string) string { return "player:" + playerID + ":events" }

// Event is published after every successful write.
type Event struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id"`
	Version  int64  `json:"version"`
	Level    int    `json:"level"`
	Exp      int    `json:"exp"`
}

// Store loads and saves snapshots.
type Store struct {
	db     *gorm.DB
	cache  cache.Cache
	pubsub cache.PubSub
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a Store. pubsub may be nil when nobody listens for events.
func New(db *gorm.DB, c cache.Cache, ps cache.PubSub, ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, cache: c, pubsub: ps, ttl: ttl, logger: logger}
}

// Load returns the current snapshot for a player.
func (s *Store) Load(ctx context.Context, playerID string) (*model.Snapshot, error) {
	key := snapshotKey(playerID)
	raw, err := s.cache.Get(ctx, key)
	if err == nil {
		var snap model.Snapshot
		if jerr := json.Unmarshal([]byte(raw), &snap); jerr == nil {
			return &snap, nil
		}
		s.logger.Warn("dropping undecodable cached snapshot", zap.String("player_id", playerID))
		_ = s.cache.Del(ctx, key)
	} else if !cache.IsNotFound(err) {
		s.logger.Warn("snapshot cache read failed", zap.String("player_id", playerID), zap.Error(err))
	}

	var rec model.SnapshotRecord
	err = s.db.WithContext(ctx).First(&rec, "player_id = ?", playerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", playerID, err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(rec.Data, &snap); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", playerID, err)
	}
	// The column is authoritative for the version check.
	snap.Version = rec.Version
	s.fill(ctx, &snap)
	return &snap, nil
}

// Create inserts the first snapshot of a new player.
func (s *Store) Create(ctx context.Context, snap *model.Snapshot) error {
	rec, err := toRecord(snap)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.SnapshotRecord{}).Where("player_id = ?", snap.PlayerID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrExists
		}
		return tx.Create(rec).Error
	})
	if err != nil {
		if errors.Is(err, ErrExists) {
			return err
		}
		return fmt.Errorf("store: create %s: %w", snap.PlayerID, err)
	}
	s.fill(ctx, snap)
	s.afterWrite(ctx, snap, "created")
	return nil
}

// Save writes snap only when the stored version still equals expected.
// On a version mismatch nothing is written and ErrStaleSnapshot is returned.
func (s *Store) Save(ctx context.Context, snap *model.Snapshot, expected int64) error {
	rec, err := toRecord(snap)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&model.SnapshotRecord{}).
		Where("player_id = ? AND version = ?", snap.PlayerID, expected).
		Updates(map[string]interface{}{
			"version": rec.Version,
			"class":   rec.Class,
			"level":   rec.Level,
			"exp":     rec.Exp,
			"data":    rec.Data,
		})
	if res.Error != nil {
		return fmt.Errorf("store: save %s: %w", snap.PlayerID, res.Error)
	}
	if res.RowsAffected == 0 {
		// Whatever is cached is no better than what we were given.
		_ = s.cache.Del(ctx, snapshotKey(snap.PlayerID))
		var n int64
		if err := s.db.WithContext(ctx).Model(&model.SnapshotRecord{}).
			Where("player_id = ?", snap.PlayerID).Count(&n).Error; err != nil {
			return fmt.Errorf("store: save %s: %w", snap.PlayerID, err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrStaleSnapshot
	}
	_ = s.cache.Del(ctx, snapshotKey(snap.PlayerID))
	s.afterWrite(ctx, snap, "snapshot")
	return nil
}

func (s *Store) fill(ctx context.Context, snap *model.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, snapshotKey(snap.PlayerID), string(data), s.ttl); err != nil {
		s.logger.Warn("snapshot cache write failed", zap.String("player_id", snap.PlayerID), zap.Error(err))
	}
}

func (s *Store) afterWrite(ctx context.Context, snap *model.Snapshot, kind string) {
	if err := s.cache.ZAdd(ctx, leaderboardKey, float64(snap.Exp), snap.PlayerID); err != nil {
		s.logger.Warn("leaderboard update failed", zap.String("player_id", snap.PlayerID), zap.Error(err))
	}
	if s.pubsub == nil {
		return
	}
	payload, _ := json.Marshal(Event{
		Type:     kind,
		PlayerID: snap.PlayerID,
		Version:  snap.Version,
		Level:    snap.Level,
		Exp:      snap.Exp,
	})
	if err := s.pubsub.Publish(ctx, EventsChannel(snap.PlayerID), string(payload)); err != nil {
		s.logger.Warn("snapshot event publish failed", zap.String("player_id", snap.PlayerID), zap.Error(err))
	}
}

func toRecord(snap *model.Snapshot) (*model.SnapshotRecord, error) {
	if snap.PlayerID == "" {
		return nil, errors.New("store: snapshot has no player id")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("store: encode %s: %w", snap.PlayerID, err)
	}
	return &model.SnapshotRecord{
		PlayerID: snap.PlayerID,
		Version:  snap.Version,
		Class:    snap.Class,
		Level:    snap.Level,
		Exp:      snap.Exp,
		Data:     datatypes.JSON(data),
	}, nil
}
