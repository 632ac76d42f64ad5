package gacha

import (
	"fmt"

	"github.com/kasuganosora/learnquest/game/rule"
	"github.com/kasuganosora/learnquest/resource"
)

// Outcome is the result of a single draw.
type Outcome struct {
	Rarity resource.Rarity `json:"rarity"`
	ID     string          `json:"id"`
	// Pity is set when a pity rule raised the rarity.
	Pity bool `json:"pity,omitempty"`
	// Guaranteed is set when a multi-draw guarantee replaced this draw.
	Guaranteed bool `json:"guaranteed,omitempty"`
}

// State is the per-player input and output of a draw.
type State struct {
	Balance int `json:"balance"`
	Pity    int `json:"pity"`
}

// Machine binds a banner to its drawable pool.
type Machine struct {
	banner *resource.BannerDef
	pool   map[resource.Rarity][]string
}

// NewMachine builds a machine from a banner and a pool grouped by rarity.
func NewMachine(banner *resource.BannerDef, pool map[resource.Rarity][]string) *Machine {
	return &Machine{banner: banner, pool: pool}
}

// ForBanner looks up a banner in the catalog and binds it to its pool.
func ForBanner(cat *resource.Catalog, id string) (*Machine, error) {
	b, ok := cat.Banner(id)
	if !ok {
		return nil, rule.Errorf(rule.ReasonNotFound, "unknown banner %q", id)
	}
	return NewMachine(b, cat.Pool(b.Pool)), nil
}

func (m *Machine) Banner() *resource.BannerDef { return m.banner }

// RollRarity maps u in [0,100) onto the cumulative rate table in table
// order. Buckets are half-open [lo, hi), so a value equal to a boundary
// belongs to the next bucket and no value is counted twice. Values past the
// last boundary from float drift fall into the last non-empty bucket.
func RollRarity(rates []resource.RateEntry, u float64) resource.Rarity {
	var last resource.Rarity
	cum := 0.0
	for _, r := range rates {
		if r.Percent <= 0 {
			continue
		}
		cum += r.Percent
		if u < cum {
			return r.Rarity
		}
		last = r.Rarity
	}
	return last
}

func (m *Machine) pick(rng rule.RandomSource, r resource.Rarity) (string, error) {
	ids := m.pool[r]
	if len(ids) == 0 {
		return "", fmt.Errorf("banner %s: empty %s pool", m.banner.ID, r)
	}
	return ids[rng.IntN(len(ids))], nil
}

// pityRarity returns the rarity forced by the pity rules for draw number
// count, or "" when no rule fires. The highest rarity wins.
func (m *Machine) pityRarity(count int) resource.Rarity {
	var forced resource.Rarity
	for _, p := range m.banner.Pity {
		if count%p.Every == 0 && (forced == "" || p.Rarity.Rank() > forced.Rank()) {
			forced = p.Rarity
		}
	}
	return forced
}

// Draw performs one draw. It is a pure function of its inputs: the only
// randomness comes from rng, which the caller seeds and persists.
func (m *Machine) Draw(rng rule.RandomSource, st State) (Outcome, State, error) {
	if st.Balance < m.banner.Cost {
		return Outcome{}, st, rule.Errorf(rule.ReasonInsufficientResource,
			"banner %s costs %d %s, have %d", m.banner.ID, m.banner.Cost, m.banner.Currency, st.Balance)
	}
	out, err := m.roll(rng, st.Pity+1)
	if err != nil {
		return Outcome{}, st, err
	}
	return out, State{Balance: st.Balance - m.banner.Cost, Pity: st.Pity + 1}, nil
}

func (m *Machine) roll(rng rule.RandomSource, count int) (Outcome, error) {
	r := RollRarity(m.banner.Rates, rng.Float64()*100)
	out := Outcome{Rarity: r}
	if forced := m.pityRarity(count); forced != "" && r.Rank() < forced.Rank() {
		out.Rarity = forced
		out.Pity = true
	}
	id, err := m.pick(rng, out.Rarity)
	if err != nil {
		return Outcome{}, err
	}
	out.ID = id
	return out, nil
}

// DrawMany performs n draws as one purchase: the balance must cover all of
// them or none is made. With a banner guarantee, a batch of at least
// Guarantee.Count draws with nothing at the guaranteed rarity has its last
// draw replaced by one of that rarity.
func (m *Machine) DrawMany(rng rule.RandomSource, st State, n int) ([]Outcome, State, error) {
	if n < 1 {
		return nil, st, fmt.Errorf("draw count must be positive, got %d", n)
	}
	if need := n * m.banner.Cost; st.Balance < need {
		return nil, st, rule.Errorf(rule.ReasonInsufficientResource,
			"%d draws on banner %s cost %d, have %d", n, m.banner.ID, need, st.Balance)
	}
	outs := make([]Outcome, 0, n)
	next := st
	for i := 0; i < n; i++ {
		var (
			o   Outcome
			err error
		)
		o, next, err = m.Draw(rng, next)
		if err != nil {
			return nil, st, err
		}
		outs = append(outs, o)
	}

	g := m.banner.Guarantee
	if g == nil || n < g.Count {
		return outs, next, nil
	}
	for _, o := range outs {
		if o.Rarity.AtLeast(g.Rarity) {
			return outs, next, nil
		}
	}
	id, err := m.pick(rng, g.Rarity)
	if err != nil {
		return nil, st, err
	}
	outs[n-1] = Outcome{Rarity: g.Rarity, ID: id, Guaranteed: true}
	return outs, next, nil
}
