package engine

import (
	"time"

	"github.com/kasuganosora/learnquest/game/item"
	"github.com/kasuganosora/learnquest/game/rule"
	"github.com/kasuganosora/learnquest/game/skill"
	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/resource"
)

// Empty is the result of intents that only change the snapshot.
type Empty struct{}

func lookupSkill(cat *resource.Catalog, id string) (*resource.SkillDef, error) {
	sk, ok := cat.Skill(id)
	if !ok {
		return nil, rule.Errorf(rule.ReasonNotFound, "unknown skill %q", id)
	}
	return sk, nil
}

// UnlockSkill spends SP on a skill. Unlocking twice is a no-op success.
func (e *Engine) UnlockSkill(s *model.Snapshot, skillID string, now time.Time) (*Change[Empty], error) {
	return run(e, "unlock_skill", s, now, func(cat *resource.Catalog) (*model.Snapshot, Empty, error) {
		sk, err := lookupSkill(cat, skillID)
		if err != nil {
			return nil, Empty{}, err
		}
		out, err := skill.Unlock(sk, s)
		return out, Empty{}, err
	})
}

// CanUnlock reports whether UnlockSkill would succeed with a deduction.
func (e *Engine) CanUnlock(s *model.Snapshot, skillID string) bool {
	sk, ok := e.Catalog().Skill(skillID)
	return ok && !s.HasSkill(skillID) && skill.CanUnlock(sk, s)
}

func (e *Engine) EquipSkill(s *model.Snapshot, skillID string, now time.Time) (*Change[Empty], error) {
	return run(e, "equip_skill", s, now, func(cat *resource.Catalog) (*model.Snapshot, Empty, error) {
		sk, err := lookupSkill(cat, skillID)
		if err != nil {
			return nil, Empty{}, err
		}
		out, err := skill.Equip(sk, s, cat.Progression.MaxEquippedSkills)
		return out, Empty{}, err
	})
}

func (e *Engine) UnequipSkill(s *model.Snapshot, skillID string, now time.Time) (*Change[Empty], error) {
	return run(e, "unequip_skill", s, now, func(*resource.Catalog) (*model.Snapshot, Empty, error) {
		return skill.Unequip(skillID, s), Empty{}, nil
	})
}

// EquipItem wears an owned item in the slot of its type.
func (e *Engine) EquipItem(s *model.Snapshot, itemID string, now time.Time) (*Change[item.Modifiers], error) {
	return run(e, "equip_item", s, now, func(cat *resource.Catalog) (*model.Snapshot, item.Modifiers, error) {
		out, err := item.Equip(s, cat, itemID)
		if err != nil {
			return nil, item.Modifiers{}, err
		}
		mods, err := item.EquipmentModifiers(cat, out.Equipment)
		return out, mods, err
	})
}

func (e *Engine) UnequipItem(s *model.Snapshot, slot resource.ItemType, now time.Time) (*Change[item.Modifiers], error) {
	return run(e, "unequip_item", s, now, func(cat *resource.Catalog) (*model.Snapshot, item.Modifiers, error) {
		out, err := item.Unequip(s, slot)
		if err != nil {
			return nil, item.Modifiers{}, err
		}
		mods, err := item.EquipmentModifiers(cat, out.Equipment)
		return out, mods, err
	})
}
