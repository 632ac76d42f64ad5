package battle

import (
	"slices"

	"github.com/kasuganosora/learnquest/game/rule"
	"github.com/kasuganosora/learnquest/resource"
)

// ActionResult is the outcome of one skill use. Caster and Targets are the
// post-action states; the inputs are left untouched.
type ActionResult struct {
	SkillID      string       `json:"skill_id"`
	MPSpent      int          `json:"mp_spent"`
	Caster       Combatant    `json:"caster"`
	Targets      []Combatant  `json:"targets"`
	Hits         []Hit        `json:"hits,omitempty"`
	ShieldGained int          `json:"shield_gained,omitempty"`
	Scheduled    []PendingHit `json:"scheduled,omitempty"` // ticks relative to the action
}

// Damage is base × multiplier rounded half up. It is computed once per
// target so the result never depends on hit order.
func Damage(base int, multiplier float64) int {
	return rule.RoundHalfUp(float64(base) * multiplier)
}

// ApplyAction resolves an active skill cast by caster against targets.
// designated is the preferred target id for single and multi skills.
func ApplyAction(sk *resource.SkillDef, caster Combatant, targets []Combatant, designated string) (ActionResult, error) {
	if sk.Type != resource.SkillActive || sk.Battle == nil {
		return ActionResult{}, rule.Errorf(rule.ReasonPrerequisiteNotMet, "skill %s is not usable in battle", sk.ID)
	}
	eff := sk.Battle
	if caster.MP < eff.MPCost {
		return ActionResult{}, rule.Errorf(rule.ReasonInsufficientMana, "skill %s needs %d mp, have %d", sk.ID, eff.MPCost, caster.MP)
	}

	res := ActionResult{SkillID: sk.ID, Caster: caster, Targets: slices.Clone(targets)}
	if eff.TargetType == resource.TargetSelf {
		res.Caster.Shield++
		res.ShieldGained = 1
	} else {
		picked := pick(eff, res.Targets, designated)
		if len(picked) == 0 {
			return ActionResult{}, rule.Errorf(rule.ReasonInvalidTarget, "no live target for %s", sk.ID)
		}
		dmg := Damage(caster.Atk, eff.DamageMultiplier)
		for _, i := range picked {
			res.Hits = append(res.Hits, res.Targets[i].takeHit(dmg, 0))
		}
		if eff.TargetType == resource.TargetDot {
			res.Scheduled = schedule(eff, res.Targets, picked, Damage(caster.Atk, eff.TickMultiplier()))
		}
	}
	res.Caster.MP -= eff.MPCost
	res.MPSpent = eff.MPCost
	return res, nil
}

// pick returns indexes of the live targets the skill reaches. For single and
// multi the designated target comes first; all and dot keep list order.
func pick(eff *resource.BattleEffect, ts []Combatant, designated string) []int {
	var live []int
	first := -1
	for i := range ts {
		if !ts[i].Alive() {
			continue
		}
		if first < 0 && designated != "" && ts[i].ID == designated {
			first = i
			continue
		}
		live = append(live, i)
	}

	switch eff.TargetType {
	case resource.TargetSingle, resource.TargetMulti:
		if first >= 0 {
			live = append([]int{first}, live...)
		}
		n := 1
		if eff.TargetType == resource.TargetMulti {
			n = max(eff.HitCount, 1)
		}
		return live[:min(n, len(live))]
	default:
		if first >= 0 {
			live = append(live, first)
			slices.Sort(live)
		}
		return live
	}
}

// schedule lists the DOT repeats at interval, 2·interval, ... up to the
// duration for every picked target still standing.
func schedule(eff *resource.BattleEffect, ts []Combatant, picked []int, dmg int) []PendingHit {
	if eff.DotInterval <= 0 {
		return nil
	}
	var out []PendingHit
	for t := eff.DotInterval; t <= eff.DotDuration; t += eff.DotInterval {
		for _, i := range picked {
			if ts[i].Alive() {
				out = append(out, PendingHit{Target: ts[i].ID, Tick: t, Damage: dmg})
			}
		}
	}
	return out
}
