package fusion

import (
	"time"

	"github.com/kasuganosora/learnquest/game/rule"
	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/resource"
)

// Generic fuses exactly Fusion.Requirement instances of one rarity at one
// stage into a single instance at the next stage. The first id is the base
// whose partner evolves; all inputs are consumed.
func Generic(s *model.Snapshot, cat *resource.Catalog, ids []string, at time.Time) (*model.Snapshot, model.PartnerInstance, error) {
	var none model.PartnerInstance
	in, err := collect(s, cat, ids)
	if err != nil {
		return nil, none, err
	}
	if need := cat.Fusion.Requirement; len(in) != need {
		return nil, none, rule.Errorf(rule.ReasonRecipeNotSatisfied, "fusion needs exactly %d instances, got %d", need, len(in))
	}
	base := in[0]
	if base.inst.Stage >= base.def.MaxStage() {
		return nil, none, rule.Errorf(rule.ReasonRecipeNotSatisfied, "instance %s is already at its final stage", base.inst.ID)
	}
	lifetime := 0
	for _, o := range in {
		if o.def.Rarity != base.def.Rarity || o.inst.Stage != base.inst.Stage {
			return nil, none, rule.Errorf(rule.ReasonRecipeNotSatisfied,
				"instance %s is %s stage %d, want %s stage %d",
				o.inst.ID, o.def.Rarity, o.inst.Stage, base.def.Rarity, base.inst.Stage)
		}
		lifetime += o.inst.LifetimeMerged
	}

	out := s.Clone()
	remove(out, ids)
	p := add(out, base.inst.PartnerID, base.inst.Stage+1, at)
	p.LifetimeMerged = lifetime
	out.Partners[len(out.Partners)-1] = p
	return out, p, nil
}

// Special runs a recipe: the ingredients must match the recipe's multiset
// exactly, each at its final stage and full limit break, and the recipe
// book must be owned. Nothing is consumed unless everything matches.
func Special(s *model.Snapshot, cat *resource.Catalog, recipeID string, ids []string, at time.Time) (*model.Snapshot, model.PartnerInstance, error) {
	var none model.PartnerInstance
	recipe, ok := cat.Recipe(recipeID)
	if !ok {
		return nil, none, rule.Errorf(rule.ReasonNotFound, "unknown recipe %q", recipeID)
	}
	in, err := collect(s, cat, ids)
	if err != nil {
		return nil, none, err
	}
	if recipe.BookItemID != "" && s.Inventory[recipe.BookItemID] < 1 {
		return nil, none, rule.Errorf(rule.ReasonRecipeNotSatisfied, "recipe %s requires item %s", recipe.ID, recipe.BookItemID)
	}

	want := make(map[string]int, len(recipe.Ingredients))
	for _, ing := range recipe.Ingredients {
		want[ing.PartnerID] += ing.Count
	}
	for _, o := range in {
		if want[o.inst.PartnerID] == 0 {
			return nil, none, rule.Errorf(rule.ReasonRecipeNotSatisfied, "instance %s is not an ingredient of %s", o.inst.ID, recipe.ID)
		}
		want[o.inst.PartnerID]--
		if o.inst.Stage != o.def.MaxStage() {
			return nil, none, rule.Errorf(rule.ReasonRecipeNotSatisfied, "instance %s is not at its final stage", o.inst.ID)
		}
		if limit := cat.LimitBreakMax(o.def.Rarity); o.inst.MergedCount != limit {
			return nil, none, rule.Errorf(rule.ReasonRecipeNotSatisfied, "instance %s limit break %d/%d", o.inst.ID, o.inst.MergedCount, limit)
		}
	}
	for pid, n := range want {
		if n > 0 {
			return nil, none, rule.Errorf(rule.ReasonRecipeNotSatisfied, "recipe %s is missing %d of partner %s", recipe.ID, n, pid)
		}
	}

	out := s.Clone()
	remove(out, ids)
	p := add(out, recipe.Output, 0, at)
	return out, p, nil
}

// LimitBreak feeds duplicate instances of the same partner into base, one
// mergedCount per material, up to the rarity's cap.
func LimitBreak(s *model.Snapshot, cat *resource.Catalog, baseID string, materials []string) (*model.Snapshot, model.PartnerInstance, error) {
	var none model.PartnerInstance
	in, err := collect(s, cat, append([]string{baseID}, materials...))
	if err != nil {
		return nil, none, err
	}
	if len(materials) == 0 {
		return nil, none, rule.Errorf(rule.ReasonRecipeNotSatisfied, "limit break needs at least one material")
	}
	base := in[0]
	for _, o := range in[1:] {
		if o.inst.PartnerID != base.inst.PartnerID {
			return nil, none, rule.Errorf(rule.ReasonRecipeNotSatisfied,
				"material %s is partner %s, want %s", o.inst.ID, o.inst.PartnerID, base.inst.PartnerID)
		}
	}
	limit := cat.LimitBreakMax(base.def.Rarity)
	if base.inst.MergedCount+len(materials) > limit {
		return nil, none, rule.Errorf(rule.ReasonRecipeNotSatisfied,
			"limit break %d+%d exceeds %d", base.inst.MergedCount, len(materials), limit)
	}

	out := s.Clone()
	remove(out, materials)
	i := out.PartnerIndex(baseID)
	out.Partners[i].MergedCount += len(materials)
	out.Partners[i].LifetimeMerged += len(materials)
	return out, out.Partners[i], nil
}

// DismantleResult reports what a dismantle produced.
type DismantleResult struct {
	Fragments  int `json:"fragments"`
	EggTickets int `json:"egg_tickets"`
}

// Dismantle converts instances into egg fragments by rarity. Every
// FragmentsPerTicket fragments become one egg ticket; the rest carry over.
func Dismantle(s *model.Snapshot, cat *resource.Catalog, ids []string) (*model.Snapshot, DismantleResult, error) {
	in, err := collect(s, cat, ids)
	if err != nil {
		return nil, DismantleResult{}, err
	}
	if len(in) == 0 {
		return nil, DismantleResult{}, rule.Errorf(rule.ReasonIngredientNotOwned, "nothing to dismantle")
	}
	var res DismantleResult
	for _, o := range in {
		res.Fragments += cat.Fusion.FragmentValue[o.def.Rarity]
	}

	out := s.Clone()
	remove(out, ids)
	total := out.EggFragments + res.Fragments
	res.EggTickets = total / cat.Fusion.FragmentsPerTicket
	out.EggFragments = total % cat.Fusion.FragmentsPerTicket
	out.EggTickets += res.EggTickets
	return out, res, nil
}
