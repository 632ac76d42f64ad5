package player

import (
	"fmt"
	"math"

	"github.com/kasuganosora/learnquest/game/item"
	"github.com/kasuganosora/learnquest/game/skill"
	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/resource"
)

// MaxTimeSlow caps the combined TIME_SLOW percentage.
const MaxTimeSlow = 90.0

// Stats is the derived view of a character: class curve, passive skill
// percentages and equipment modifiers. It is never persisted.
type Stats struct {
	Class     resource.ClassID `json:"class"`
	Level     int              `json:"level"`
	Stage     int              `json:"stage"`
	StageName string           `json:"stage_name"`
	HP        int              `json:"hp"`
	MP        int              `json:"mp"`
	Atk       int              `json:"atk"`
	Def       int              `json:"def"`
	Spd       int              `json:"spd"`
	Modifiers item.Modifiers   `json:"modifiers"`
}

// CalcStats computes the effective stats for a snapshot.
func CalcStats(s *model.Snapshot, cat *resource.Catalog) (*Stats, error) {
	class, ok := cat.Class(resource.ClassID(s.Class))
	if !ok {
		return nil, fmt.Errorf("unknown class %q", s.Class)
	}
	base := ClassStats(class, s.Level)
	stage := StageOf(class, s.Level)

	passives := skill.PassiveModifiers(cat, s)
	mods, err := item.EquipmentModifiers(cat, s.Equipment)
	if err != nil {
		return nil, err
	}
	mods.ExpBoost += passives[resource.PassiveExpBoost]
	mods.TicketDrop += passives[resource.PassiveTicketDrop]
	mods.TimeSlow = math.Min(MaxTimeSlow, mods.TimeSlow+passives[resource.PassiveTimeSlow]+class.TimeSlowBonus)

	return &Stats{
		Class:     class.ID,
		Level:     s.Level,
		Stage:     stage,
		StageName: class.Stages[stage].Name,
		HP:        scale(base.HP, passives[resource.PassiveHP]),
		MP:        scale(base.MP, passives[resource.PassiveMP]),
		Atk:       scale(base.Atk, passives[resource.PassiveAtk]),
		Def:       scale(base.Def, passives[resource.PassiveDef]),
		Spd:       base.Spd,
		Modifiers: mods,
	}, nil
}

func scale(v int, percent float64) int {
	if percent == 0 {
		return v
	}
	return int(math.Floor(float64(v) * (1 + percent/100)))
}

// StageOf returns the index of the highest class stage reached at level.
func StageOf(class *resource.ClassDef, level int) int {
	idx := 0
	for i, st := range class.Stages {
		if level >= st.Level {
			idx = i
		}
	}
	return idx
}

// ClassStats interpolates the class curve linearly between stage levels,
// flooring each stat. Levels past the last stage use its stats.
func ClassStats(class *resource.ClassDef, level int) resource.Stats {
	i := StageOf(class, level)
	if i == len(class.Stages)-1 {
		return class.Stages[i].Stats
	}
	lo, hi := class.Stages[i], class.Stages[i+1]
	t := float64(level-lo.Level) / float64(hi.Level-lo.Level)
	lerp := func(a, b int) int { return int(math.Floor(float64(a) + float64(b-a)*t)) }
	return resource.Stats{
		HP:  lerp(lo.Stats.HP, hi.Stats.HP),
		MP:  lerp(lo.Stats.MP, hi.Stats.MP),
		Atk: lerp(lo.Stats.Atk, hi.Stats.Atk),
		Def: lerp(lo.Stats.Def, hi.Stats.Def),
		Spd: lerp(lo.Stats.Spd, hi.Stats.Spd),
	}
}
