package battle

// MaxEnemyExp bounds the EXP a single enemy can award.
const MaxEnemyExp = 10000

// Combatant is one participant of an encounter. HP and MP are current values;
// Shield is the number of whole hits the combatant can still absorb.
type Combatant struct {
	ID     string `json:"id"`
	HP     int    `json:"hp"`
	MP     int    `json:"mp"`
	Atk    int    `json:"atk"`
	Shield int    `json:"shield,omitempty"`
	Boss   bool   `json:"boss,omitempty"`
	Exp    int    `json:"exp,omitempty"` // awarded when defeated
}

func (c *Combatant) Alive() bool { return c.HP > 0 }

// takeHit applies one hit. A shield charge absorbs the hit whatever its
// size and is spent.
func (c *Combatant) takeHit(damage, tick int) Hit {
	h := Hit{Target: c.ID, Tick: tick}
	if c.Shield > 0 {
		c.Shield--
		h.Absorbed = true
	} else {
		h.Damage = damage
		c.HP = max(0, c.HP-damage)
	}
	h.HPAfter = c.HP
	h.Defeated = !c.Alive()
	return h
}

// Hit is one resolved instance of damage.
type Hit struct {
	Target   string `json:"target"`
	Tick     int    `json:"tick"`
	Damage   int    `json:"damage"`
	Absorbed bool   `json:"absorbed,omitempty"`
	HPAfter  int    `json:"hp_after"`
	Defeated bool   `json:"defeated,omitempty"`
}

// PendingHit is a scheduled DOT repeat.
type PendingHit struct {
	Target string `json:"target"`
	Tick   int    `json:"tick"`
	Damage int    `json:"damage"`
}
