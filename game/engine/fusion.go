package engine

import (
	"time"

	"github.com/kasuganosora/learnquest/game/fusion"
	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/resource"
)

// Fuse runs a generic stage-up fusion.
func (e *Engine) Fuse(s *model.Snapshot, ids []string, now time.Time) (*Change[model.PartnerInstance], error) {
	return run(e, "fuse", s, now, func(cat *resource.Catalog) (*model.Snapshot, model.PartnerInstance, error) {
		return fusion.Generic(s, cat, ids, now)
	})
}

// FuseRecipe runs a special recipe.
func (e *Engine) FuseRecipe(s *model.Snapshot, recipeID string, ids []string, now time.Time) (*Change[model.PartnerInstance], error) {
	return run(e, "fuse_recipe", s, now, func(cat *resource.Catalog) (*model.Snapshot, model.PartnerInstance, error) {
		return fusion.Special(s, cat, recipeID, ids, now)
	})
}

func (e *Engine) LimitBreak(s *model.Snapshot, baseID string, materials []string, now time.Time) (*Change[model.PartnerInstance], error) {
	return run(e, "limit_break", s, now, func(cat *resource.Catalog) (*model.Snapshot, model.PartnerInstance, error) {
		return fusion.LimitBreak(s, cat, baseID, materials)
	})
}

func (e *Engine) Dismantle(s *model.Snapshot, ids []string, now time.Time) (*Change[fusion.DismantleResult], error) {
	return run(e, "dismantle", s, now, func(cat *resource.Catalog) (*model.Snapshot, fusion.DismantleResult, error) {
		return fusion.Dismantle(s, cat, ids)
	})
}
