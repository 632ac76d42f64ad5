package engine

import (
	"fmt"
	"time"

	"github.com/kasuganosora/learnquest/game/fusion"
	"github.com/kasuganosora/learnquest/game/gacha"
	"github.com/kasuganosora/learnquest/game/rule"
	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/resource"
)

// DrawResult reports a gacha purchase.
type DrawResult struct {
	Banner   string                  `json:"banner"`
	Outcomes []gacha.Outcome         `json:"outcomes"`
	Partners []model.PartnerInstance `json:"partners,omitempty"`
	Balance  int                     `json:"balance"`
	Pity     int                     `json:"pity"`
}

func wallet(s *model.Snapshot, c resource.Currency) *int {
	switch c {
	case resource.CurrencyGachaTicket:
		return &s.GachaTickets
	case resource.CurrencyEggTicket:
		return &s.EggTickets
	}
	return nil
}

// Draw buys n draws on a banner. Items go to the inventory, partners into
// the arena. The player's random stream and pity counter advance only when
// the purchase is accepted.
func (e *Engine) Draw(s *model.Snapshot, bannerID string, n int, now time.Time) (*Change[DrawResult], error) {
	return run(e, "draw", s, now, func(cat *resource.Catalog) (*model.Snapshot, DrawResult, error) {
		var none DrawResult
		m, err := gacha.ForBanner(cat, bannerID)
		if err != nil {
			return nil, none, err
		}
		b := m.Banner()
		if wallet(s, b.Currency) == nil {
			return nil, none, fmt.Errorf("banner %s: unknown currency %q", b.ID, b.Currency)
		}

		rng := rule.NewStream(s.RNG)
		outs, st, err := m.DrawMany(rng, gacha.State{Balance: *wallet(s, b.Currency), Pity: s.Pity[b.ID]}, n)
		if err != nil {
			return nil, none, err
		}

		out := s.Clone()
		*wallet(out, b.Currency) = st.Balance
		out.Pity[b.ID] = st.Pity
		out.RNG = rng.State()
		res := DrawResult{Banner: b.ID, Outcomes: outs, Balance: st.Balance, Pity: st.Pity}
		for _, o := range outs {
			switch b.Pool {
			case resource.PoolItem:
				out.Inventory[o.ID]++
			case resource.PoolPartner:
				var p model.PartnerInstance
				out, p, err = fusion.Acquire(out, cat, o.ID, now)
				if err != nil {
					return nil, none, err
				}
				res.Partners = append(res.Partners, p)
			}
		}
		for _, o := range outs {
			e.obs.Draw(b.ID, o.Rarity)
		}
		return out, res, nil
	})
}
