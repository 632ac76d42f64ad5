package item

import (
	"fmt"

	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/resource"
)

// Modifiers are the passive bonuses derived from equipped items. Percent
// values add up across items.
type Modifiers struct {
	ExpBoost      float64 `json:"exp_boost"`
	TimeSlow      float64 `json:"time_slow"`
	TicketDrop    float64 `json:"ticket_drop"`
	ShieldCharges int     `json:"shield_charges"`
	QuickKill     float64 `json:"quick_kill"`
}

// EquipmentModifiers folds the effects of the equipped set. It is computed
// from scratch on every call so a changed slot is always reflected.
func EquipmentModifiers(cat *resource.Catalog, eq model.Equipment) (Modifiers, error) {
	var m Modifiers
	for _, id := range eq.IDs() {
		it, ok := cat.Item(id)
		if !ok {
			return Modifiers{}, fmt.Errorf("equipped item %q not in catalog", id)
		}
		if err := m.apply(it.Effect); err != nil {
			return Modifiers{}, err
		}
	}
	return m, nil
}

func (m *Modifiers) apply(e resource.Effect) error {
	switch e := e.(type) {
	case resource.ExpBoost:
		m.ExpBoost += e.Percent
	case resource.TimeSlow:
		m.TimeSlow += e.Percent
	case resource.TicketDrop:
		m.TicketDrop += e.Percent
	case resource.Shield:
		m.ShieldCharges += e.Charges
	case resource.QuickKill:
		m.QuickKill += e.Chance
	case resource.UnlockRecipe, resource.NoEffect:
	default:
		return fmt.Errorf("unhandled item effect %T", e)
	}
	return nil
}
