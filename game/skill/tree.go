package skill

import (
	"slices"

	"github.com/kasuganosora/learnquest/game/rule"
	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/resource"
)

// check returns the first unmet requirement for unlocking sk, or nil.
func check(sk *resource.SkillDef, s *model.Snapshot) error {
	if string(sk.Class) != s.Class {
		return rule.Errorf(rule.ReasonPrerequisiteNotMet, "skill %s belongs to class %s", sk.ID, sk.Class)
	}
	if s.Level < sk.RequiredLevel {
		return rule.Errorf(rule.ReasonPrerequisiteNotMet, "skill %s requires level %d, have %d", sk.ID, sk.RequiredLevel, s.Level)
	}
	if sk.RequiredSkillID != "" && !s.HasSkill(sk.RequiredSkillID) {
		return rule.Errorf(rule.ReasonPrerequisiteNotMet, "skill %s requires %s", sk.ID, sk.RequiredSkillID)
	}
	if s.SP < sk.SPCost {
		return rule.Errorf(rule.ReasonInsufficientResource, "skill %s costs %d SP, have %d", sk.ID, sk.SPCost, s.SP)
	}
	return nil
}

// CanUnlock reports whether the character meets every requirement of sk:
// class, level, SP and the parent skill.
func CanUnlock(sk *resource.SkillDef, s *model.Snapshot) bool {
	return check(sk, s) == nil
}

// Unlock spends SP and adds sk to the unlocked set. Unlocking a skill that is
// already unlocked succeeds without spending anything.
func Unlock(sk *resource.SkillDef, s *model.Snapshot) (*model.Snapshot, error) {
	if s.HasSkill(sk.ID) {
		return s.Clone(), nil
	}
	if err := check(sk, s); err != nil {
		return nil, err
	}
	out := s.Clone()
	out.SP -= sk.SPCost
	out.UnlockedSkills = append(out.UnlockedSkills, sk.ID)
	return out, nil
}

// Equip puts an unlocked active skill into one of the battle slots.
func Equip(sk *resource.SkillDef, s *model.Snapshot, slots int) (*model.Snapshot, error) {
	if sk.Type != resource.SkillActive {
		return nil, rule.Errorf(rule.ReasonPrerequisiteNotMet, "skill %s is passive", sk.ID)
	}
	if !s.HasSkill(sk.ID) {
		return nil, rule.Errorf(rule.ReasonPrerequisiteNotMet, "skill %s is not unlocked", sk.ID)
	}
	if slices.Contains(s.EquippedSkills, sk.ID) {
		return s.Clone(), nil
	}
	if len(s.EquippedSkills) >= slots {
		return nil, rule.Errorf(rule.ReasonInsufficientResource, "all %d skill slots are in use", slots)
	}
	out := s.Clone()
	out.EquippedSkills = append(out.EquippedSkills, sk.ID)
	return out, nil
}

// Unequip frees the slot holding id. Unknown ids are ignored.
func Unequip(id string, s *model.Snapshot) *model.Snapshot {
	out := s.Clone()
	out.EquippedSkills = slices.DeleteFunc(out.EquippedSkills, func(x string) bool { return x == id })
	return out
}

// PassiveModifiers sums the percent bonuses of every unlocked passive skill.
func PassiveModifiers(cat *resource.Catalog, s *model.Snapshot) map[resource.PassiveStat]float64 {
	out := make(map[resource.PassiveStat]float64)
	for _, id := range s.UnlockedSkills {
		sk, ok := cat.Skill(id)
		if !ok || sk.Passive == nil {
			continue
		}
		out[sk.Passive.Stat] += sk.Passive.Percent
	}
	return out
}
