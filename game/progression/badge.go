package progression

import (
	"time"

	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/resource"
)

// Satisfied evaluates a badge predicate against a snapshot.
func Satisfied(b *resource.BadgeDef, s *model.Snapshot, cat *resource.Catalog) bool {
	switch b.Kind {
	case resource.BadgeStreak:
		return s.Streak >= b.Threshold
	case resource.BadgeLevel:
		return s.Level >= b.Threshold
	case resource.BadgeMaxLevel:
		return s.Level >= cat.Progression.MaxLevel()
	case resource.BadgeLessons:
		return len(s.CompletedLessons) >= b.Threshold
	case resource.BadgeAllLessons:
		for _, l := range cat.Lessons {
			if !s.LessonDone(l) {
				return false
			}
		}
		return len(cat.Lessons) > 0
	}
	return false
}

// AwardBadges mints every newly satisfied badge at time at and pays its
// reward. Earned badges are never re-checked or removed. Rewards can raise
// the level, so evaluation repeats until nothing new is earned.
func AwardBadges(s *model.Snapshot, cat *resource.Catalog, at time.Time, day string, percent float64) (*model.Snapshot, []model.EarnedBadge) {
	out := s.Clone()
	var minted []model.EarnedBadge
	for changed := true; changed; {
		changed = false
		for i := range cat.Badges {
			b := &cat.Badges[i]
			if out.HasBadge(b.ID) || !Satisfied(b, out, cat) {
				continue
			}
			e := model.EarnedBadge{ID: b.ID, EarnedAt: at}
			out.Badges = append(out.Badges, e)
			minted = append(minted, e)
			grant(out, cat, b.Reward, percent, day)
			changed = true
		}
	}
	return out, minted
}
