package battle

import (
	"cmp"
	"slices"

	"github.com/kasuganosora/learnquest/game/rule"
	"github.com/kasuganosora/learnquest/resource"
)

// Encounter is the running state of one fight: a caster, its targets and
// the DOT hits still to land. It is scratch state owned by the caller and
// never persisted.
type Encounter struct {
	Caster  Combatant    `json:"caster"`
	Targets []Combatant  `json:"targets"`
	Pending []PendingHit `json:"pending,omitempty"` // absolute ticks, sorted
	Tick    int          `json:"tick"`
	Log     []Hit        `json:"log,omitempty"`

	started bool
}

func NewEncounter(caster Combatant, targets []Combatant) *Encounter {
	return &Encounter{Caster: caster, Targets: slices.Clone(targets)}
}

// Start resolves QUICK_KILL. It runs once per encounter: with probability
// min(chance, 100)% the first live non-boss target is removed outright.
// The roll is skipped when nothing is eligible.
func (e *Encounter) Start(chance float64, rng rule.RandomSource) (string, bool) {
	if e.started {
		return "", false
	}
	e.started = true
	chance = min(chance, 100)
	if chance <= 0 {
		return "", false
	}
	victim := slices.IndexFunc(e.Targets, func(c Combatant) bool { return c.Alive() && !c.Boss })
	if victim < 0 {
		return "", false
	}
	if rng.Float64()*100 >= chance {
		return "", false
	}
	e.Targets[victim].HP = 0
	return e.Targets[victim].ID, true
}

// Act casts sk at the current tick. On error the encounter is unchanged.
func (e *Encounter) Act(sk *resource.SkillDef, designated string) (ActionResult, error) {
	res, err := ApplyAction(sk, e.Caster, e.Targets, designated)
	if err != nil {
		return res, err
	}
	for i := range res.Hits {
		res.Hits[i].Tick += e.Tick
	}
	e.Caster = res.Caster
	e.Targets = slices.Clone(res.Targets)
	e.Log = append(e.Log, res.Hits...)
	for _, p := range res.Scheduled {
		p.Tick += e.Tick
		e.Pending = append(e.Pending, p)
	}
	slices.SortStableFunc(e.Pending, func(a, b PendingHit) int { return cmp.Compare(a.Tick, b.Tick) })
	return res, nil
}

// Advance moves the clock forward and lands every pending hit that is due.
// Hits aimed at defeated targets are dropped.
func (e *Encounter) Advance(ticks int) []Hit {
	e.Tick += max(ticks, 0)
	var hits []Hit
	n := 0
	for _, p := range e.Pending {
		if p.Tick > e.Tick {
			e.Pending[n] = p
			n++
			continue
		}
		i := e.index(p.Target)
		if i < 0 || !e.Targets[i].Alive() {
			continue
		}
		hits = append(hits, e.Targets[i].takeHit(p.Damage, p.Tick))
	}
	e.Pending = e.Pending[:n]
	e.Log = append(e.Log, hits...)
	return hits
}

// Settle advances until no hit is pending.
func (e *Encounter) Settle() []Hit {
	if len(e.Pending) == 0 {
		return nil
	}
	return e.Advance(e.Pending[len(e.Pending)-1].Tick - e.Tick)
}

// Victory reports whether every target is defeated.
func (e *Encounter) Victory() bool {
	return !slices.ContainsFunc(e.Targets, func(c Combatant) bool { return c.Alive() })
}

// Defeated returns the targets that are down.
func (e *Encounter) Defeated() []Combatant {
	var out []Combatant
	for _, t := range e.Targets {
		if !t.Alive() {
			out = append(out, t)
		}
	}
	return out
}

func (e *Encounter) index(id string) int {
	return slices.IndexFunc(e.Targets, func(c Combatant) bool { return c.ID == id })
}
