package player

import (
	"slices"

	"github.com/kasuganosora/learnquest/game/rule"
	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/resource"
)

// ClassSwitch reports a class change.
type ClassSwitch struct {
	From      string `json:"from"`
	To        string `json:"to"`
	FirstTime bool   `json:"first_time,omitempty"`
}

// SelectClass activates class. The outgoing class's level, EXP, equipment
// and skills are parked in SavedProgress; the incoming class resumes from
// its parked state, or from level 1 the first time it is played. Selecting
// the active class changes nothing.
func SelectClass(s *model.Snapshot, cat *resource.Catalog, class string) (*model.Snapshot, ClassSwitch, error) {
	if _, ok := cat.Class(resource.ClassID(class)); !ok {
		return nil, ClassSwitch{}, rule.Errorf(rule.ReasonNotFound, "unknown class %q", class)
	}
	res := ClassSwitch{From: s.Class, To: class}
	out := s.Clone()
	unlock(out, s.Class)
	if class == s.Class {
		return out, res, nil
	}

	if out.SavedProgress == nil {
		out.SavedProgress = map[string]model.ClassProgress{}
	}
	out.SavedProgress[s.Class] = model.ClassProgress{
		Level:          s.Level,
		Exp:            s.Exp,
		Equipment:      s.Equipment,
		UnlockedSkills: slices.Clone(s.UnlockedSkills),
		EquippedSkills: slices.Clone(s.EquippedSkills),
	}
	next, parked := out.SavedProgress[class]
	if parked {
		delete(out.SavedProgress, class)
	} else {
		next = model.ClassProgress{Level: 1}
	}
	res.FirstTime = !slices.Contains(out.UnlockedClasses, class)
	unlock(out, class)

	out.Class = class
	out.Level = max(next.Level, 1)
	out.Exp = next.Exp
	out.Equipment = next.Equipment
	out.UnlockedSkills = nonNil(next.UnlockedSkills)
	out.EquippedSkills = nonNil(next.EquippedSkills)
	return out, res, nil
}

func unlock(s *model.Snapshot, class string) {
	if class != "" && !slices.Contains(s.UnlockedClasses, class) {
		s.UnlockedClasses = append(s.UnlockedClasses, class)
	}
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
