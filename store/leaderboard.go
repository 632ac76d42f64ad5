package store

import (
	"context"
	"fmt"

	"github.com/kasuganosora/learnquest/model"
	"go.uber.org/zap"
)

const (
	leaderboardKey = "leaderboard:exp"
	leaderboardTop = 100
)

// RankEntry is one row in the EXP leaderboard.
type RankEntry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player_id"`
	Class    string `json:"class"`
	Level    int    `json:"level"`
	Exp      int    `json:"exp"`
}

// Leaderboard returns the top players by total EXP. It reads the cached
// sorted set and falls back to the database when the set is empty.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]RankEntry, error) {
	if limit <= 0 || limit > leaderboardTop {
		limit = 20
	}
	members, err := s.cache.ZRevRange(ctx, leaderboardKey, 0, int64(limit-1))
	if err != nil {
		s.logger.Warn("leaderboard cache read failed", zap.Error(err))
	}
	if err == nil && len(members) > 0 {
		return s.enrich(ctx, members)
	}

	var recs []model.SnapshotRecord
	if err := s.db.WithContext(ctx).Select("player_id, class, level, exp").
		Order("exp DESC").Order("player_id DESC").
		Limit(limit).
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("store: leaderboard: %w", err)
	}
	entries := make([]RankEntry, len(recs))
	for i, r := range recs {
		entries[i] = RankEntry{Rank: i + 1, PlayerID: r.PlayerID, Class: r.Class, Level: r.Level, Exp: r.Exp}
		// Refresh cache entry.
		_ = s.cache.ZAdd(ctx, leaderboardKey, float64(r.Exp), r.PlayerID)
	}
	return entries, nil
}

// RefreshLeaderboard rebuilds the sorted set from the database.
func (s *Store) RefreshLeaderboard(ctx context.Context) (int, error) {
	var recs []model.SnapshotRecord
	if err := s.db.WithContext(ctx).Select("player_id, exp").
		Order("exp DESC").Limit(leaderboardTop).Find(&recs).Error; err != nil {
		return 0, fmt.Errorf("store: refresh leaderboard: %w", err)
	}
	for _, r := range recs {
		if err := s.cache.ZAdd(ctx, leaderboardKey, float64(r.Exp), r.PlayerID); err != nil {
			return 0, err
		}
	}
	return len(recs), nil
}

func (s *Store) enrich(ctx context.Context, members []string) ([]RankEntry, error) {
	var recs []model.SnapshotRecord
	if err := s.db.WithContext(ctx).Select("player_id, class, level, exp").
		Where("player_id IN ?", members).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("store: leaderboard: %w", err)
	}
	byID := make(map[string]model.SnapshotRecord, len(recs))
	for _, r := range recs {
		byID[r.PlayerID] = r
	}
	entries := make([]RankEntry, 0, len(members))
	for _, m := range members {
		e := RankEntry{Rank: len(entries) + 1, PlayerID: m}
		if r, ok := byID[m]; ok {
			e.Class, e.Level, e.Exp = r.Class, r.Level, r.Exp
		} else {
			score, _ := s.cache.ZScore(ctx, leaderboardKey, m)
			e.Exp = int(score)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
