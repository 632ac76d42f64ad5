package engine

import (
	"slices"
	"time"

	"github.com/kasuganosora/learnquest/game/battle"
	"github.com/kasuganosora/learnquest/game/player"
	"github.com/kasuganosora/learnquest/game/progression"
	"github.com/kasuganosora/learnquest/game/rule"
	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/resource"
)

// BattleAction is one skill use. Wait ticks pass after it resolves.
type BattleAction struct {
	SkillID string `json:"skill_id"`
	Target  string `json:"target,omitempty"`
	Wait    int    `json:"wait,omitempty"`
}

type BattleRequest struct {
	Enemies []battle.Combatant `json:"enemies"`
	Actions []BattleAction     `json:"actions"`
}

// BattleReport is the full resolution of a battle intent.
type BattleReport struct {
	QuickKill string                `json:"quick_kill,omitempty"`
	Actions   []battle.ActionResult `json:"actions"`
	Log       []battle.Hit          `json:"log"`
	Caster    battle.Combatant      `json:"caster"`
	Enemies   []battle.Combatant    `json:"enemies"`
	Victory   bool                  `json:"victory"`
	Exp       progression.ExpGain   `json:"exp"`
}

// Battle resolves a sequence of equipped skills against a set of enemies.
// The caster is built from the character's current stats with one shield
// charge per SHIELD item. EXP of every defeated enemy is awarded. Any
// rejected action rejects the whole battle.
func (e *Engine) Battle(s *model.Snapshot, req BattleRequest, now time.Time) (*Change[BattleReport], error) {
	return run(e, "battle", s, now, func(cat *resource.Catalog) (*model.Snapshot, BattleReport, error) {
		var none BattleReport
		if err := checkEnemies(req.Enemies); err != nil {
			return nil, none, err
		}
		if len(req.Actions) == 0 {
			return nil, none, rule.Errorf(rule.ReasonInvalidTarget, "battle needs at least one action")
		}
		st, err := player.CalcStats(s, cat)
		if err != nil {
			return nil, none, err
		}

		caster := battle.Combatant{ID: s.PlayerID, HP: st.HP, MP: st.MP, Atk: st.Atk, Shield: st.Modifiers.ShieldCharges}
		enc := battle.NewEncounter(caster, req.Enemies)
		rng := rule.NewStream(s.RNG)
		rep := BattleReport{}
		if id, ok := enc.Start(st.Modifiers.QuickKill, rng); ok {
			rep.QuickKill = id
		}
		for _, a := range req.Actions {
			if enc.Victory() {
				break
			}
			sk, err := lookupSkill(cat, a.SkillID)
			if err != nil {
				return nil, none, err
			}
			if !slices.Contains(s.EquippedSkills, sk.ID) {
				return nil, none, rule.Errorf(rule.ReasonPrerequisiteNotMet, "skill %s is not equipped", sk.ID)
			}
			r, err := enc.Act(sk, a.Target)
			if err != nil {
				return nil, none, err
			}
			rep.Actions = append(rep.Actions, r)
			enc.Advance(a.Wait)
		}
		enc.Settle()

		rep.Log = enc.Log
		rep.Caster = enc.Caster
		rep.Enemies = enc.Targets
		rep.Victory = enc.Victory()
		exp := 0
		for _, d := range enc.Defeated() {
			exp = min(exp+d.Exp, progression.MaxExp)
		}

		out := s.Clone()
		out.RNG = rng.State()
		if exp > 0 {
			out, rep.Exp = progression.GainExp(out, cat, exp, st.Modifiers.ExpBoost, e.day(now))
		} else {
			rep.Exp = progression.ExpGain{LevelBefore: s.Level, LevelAfter: s.Level}
		}
		return out, rep, nil
	})
}

func checkEnemies(enemies []battle.Combatant) error {
	if len(enemies) == 0 {
		return rule.Errorf(rule.ReasonInvalidTarget, "battle needs at least one enemy")
	}
	seen := make(map[string]bool, len(enemies))
	live := false
	for _, en := range enemies {
		if en.ID == "" || seen[en.ID] {
			return rule.Errorf(rule.ReasonInvalidTarget, "enemy ids must be unique and non-empty, got %q", en.ID)
		}
		seen[en.ID] = true
		if en.HP < 0 || en.Exp < 0 {
			return rule.Errorf(rule.ReasonInvalidTarget, "enemy %s has negative hp or exp", en.ID)
		}
		if en.Exp > battle.MaxEnemyExp {
			return rule.Errorf(rule.ReasonInvalidRequest, "enemy %s exp %d exceeds %d", en.ID, en.Exp, battle.MaxEnemyExp)
		}
		live = live || en.HP > 0
	}
	if !live {
		return rule.Errorf(rule.ReasonInvalidTarget, "every enemy is already defeated")
	}
	return nil
}
