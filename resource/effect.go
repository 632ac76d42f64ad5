package resource

import "fmt"

// EffectType is the raw effect discriminator found in catalog files.
type EffectType string

const (
	EffectExpBoost     EffectType = "EXP_BOOST"
	EffectTimeSlow     EffectType = "TIME_SLOW"
	EffectShield       EffectType = "SHIELD"
	EffectQuickKill    EffectType = "QUICK_KILL"
	EffectTicketDrop   EffectType = "TICKET_DROP"
	EffectUnlockRecipe EffectType = "UNLOCK_RECIPE"
	EffectNone         EffectType = "NONE"
)

// Effect is the closed set of item effects. Only the variants in this file
// implement it.
type Effect interface {
	Kind() EffectType
	isEffect()
}

// ExpBoost adds Percent to EXP gains.
type ExpBoost struct{ Percent float64 }

// TimeSlow slows enemy advance by Percent.
type TimeSlow struct{ Percent float64 }

// Shield grants Charges hits absorbed at encounter start.
type Shield struct{ Charges int }

// QuickKill removes one non-boss enemy at encounter start with Chance percent.
type QuickKill struct{ Chance float64 }

// TicketDrop raises ticket drop rate by Percent.
type TicketDrop struct{ Percent float64 }

// UnlockRecipe marks a recipe book for the special fusion producing PartnerID.
type UnlockRecipe struct{ PartnerID string }

type NoEffect struct{}

func (ExpBoost) Kind() EffectType     { return EffectExpBoost }
func (TimeSlow) Kind() EffectType     { return EffectTimeSlow }
func (Shield) Kind() EffectType       { return EffectShield }
func (QuickKill) Kind() EffectType    { return EffectQuickKill }
func (TicketDrop) Kind() EffectType   { return EffectTicketDrop }
func (UnlockRecipe) Kind() EffectType { return EffectUnlockRecipe }
func (NoEffect) Kind() EffectType     { return EffectNone }

func (ExpBoost) isEffect()     {}
func (TimeSlow) isEffect()     {}
func (Shield) isEffect()       {}
func (QuickKill) isEffect()    {}
func (TicketDrop) isEffect()   {}
func (UnlockRecipe) isEffect() {}
func (NoEffect) isEffect()     {}

// DecodeEffect converts the raw effect fields of an item into its variant.
func DecodeEffect(t EffectType, value float64, targetID string) (Effect, error) {
	switch t {
	case EffectExpBoost:
		return ExpBoost{Percent: value}, nil
	case EffectTimeSlow:
		return TimeSlow{Percent: value}, nil
	case EffectShield:
		return Shield{Charges: int(value)}, nil
	case EffectQuickKill:
		return QuickKill{Chance: value}, nil
	case EffectTicketDrop:
		return TicketDrop{Percent: value}, nil
	case EffectUnlockRecipe:
		if targetID == "" {
			return nil, fmt.Errorf("effect %s requires effectTargetId", t)
		}
		return UnlockRecipe{PartnerID: targetID}, nil
	case EffectNone:
		return NoEffect{}, nil
	default:
		return nil, fmt.Errorf("unknown effect type %q", t)
	}
}
