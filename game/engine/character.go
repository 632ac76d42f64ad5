package engine

import (
	"time"

	"github.com/kasuganosora/learnquest/game/player"
	"github.com/kasuganosora/learnquest/game/progression"
	"github.com/kasuganosora/learnquest/game/rule"
	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/resource"
)

// NewCharacter creates a level 1 character of class with the welcome gift.
// seed starts the player's random stream.
func (e *Engine) NewCharacter(playerID, class string, seed uint64, now time.Time) (*Change[progression.ExpGain], error) {
	empty := &model.Snapshot{PlayerID: playerID}
	return run(e, "create", empty, now, func(cat *resource.Catalog) (*model.Snapshot, progression.ExpGain, error) {
		if _, ok := cat.Class(resource.ClassID(class)); !ok {
			return nil, progression.ExpGain{}, rule.Errorf(rule.ReasonNotFound, "unknown class %q", class)
		}
		s := &model.Snapshot{
			PlayerID:         playerID,
			Class:            class,
			UnlockedClasses:  []string{class},
			Level:            1,
			UnlockedSkills:   []string{},
			EquippedSkills:   []string{},
			Inventory:        map[string]int{},
			Pity:             map[string]int{},
			RNG:              rule.RNGState{Seed: seed},
			Partners:         []model.PartnerInstance{},
			CompletedLessons: []string{},
			History:          []model.HistoryRecord{},
			Badges:           []model.EarnedBadge{},
			CreatedAt:        now,
		}
		out, g := progression.Grant(s, cat, cat.Progression.WelcomeGift, 0, e.day(now))
		return out, g, nil
	})
}

// SelectClass makes class the active one, parking the current class's
// progress and restoring what class had when it was last active.
func (e *Engine) SelectClass(s *model.Snapshot, class string, now time.Time) (*Change[player.ClassSwitch], error) {
	return run(e, "select_class", s, now, func(cat *resource.Catalog) (*model.Snapshot, player.ClassSwitch, error) {
		return player.SelectClass(s, cat, class)
	})
}

// Stats is the derived view of s. It is a query and never changes s.
func (e *Engine) Stats(s *model.Snapshot) (*player.Stats, error) {
	return player.CalcStats(s, e.Catalog())
}
